package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
)

const timeBlockColumns = `
	id, coach_id,
	to_char(date, 'YYYY-MM-DD'), to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
	type, title, description, created_at, updated_at
`

type TimeBlockInput struct {
	CoachID     int64
	Date        string
	StartTime   string
	EndTime     string
	Type        string
	Title       string
	Description *string
}

type TimeBlockListFilter struct {
	CoachID int64
	Date    string
	From    string
	To      string
	Type    string
}

type TimeBlockRepository struct {
	db DBTX
}

func NewTimeBlockRepository(db DBTX) *TimeBlockRepository {
	return &TimeBlockRepository{db: db}
}

func scanTimeBlock(row pgx.Row) (*models.TimeBlock, error) {
	var block models.TimeBlock
	err := row.Scan(
		&block.ID,
		&block.CoachID,
		&block.Date,
		&block.StartTime,
		&block.EndTime,
		&block.Type,
		&block.Title,
		&block.Description,
		&block.CreatedAt,
		&block.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *TimeBlockRepository) Create(ctx context.Context, input TimeBlockInput) (*models.TimeBlock, error) {
	query := `
		INSERT INTO time_blocks (coach_id, date, start_time, end_time, type, title, description)
		VALUES ($1, $2::date, $3::time, $4::time, $5, $6, $7)
		RETURNING ` + timeBlockColumns
	return scanTimeBlock(r.db.QueryRow(
		ctx,
		query,
		input.CoachID,
		input.Date,
		input.StartTime,
		input.EndTime,
		input.Type,
		input.Title,
		input.Description,
	))
}

func (r *TimeBlockRepository) GetByID(ctx context.Context, id int64) (*models.TimeBlock, error) {
	query := `SELECT ` + timeBlockColumns + ` FROM time_blocks WHERE id = $1`
	return scanTimeBlock(r.db.QueryRow(ctx, query, id))
}

func (r *TimeBlockRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.TimeBlock, error) {
	query := `SELECT ` + timeBlockColumns + ` FROM time_blocks WHERE id = $1 FOR UPDATE`
	return scanTimeBlock(r.db.QueryRow(ctx, query, id))
}

func (r *TimeBlockRepository) List(ctx context.Context, filter TimeBlockListFilter) ([]models.TimeBlock, error) {
	args := []any{filter.CoachID}
	whereParts := []string{"coach_id = $1"}

	if filter.Date != "" {
		args = append(args, filter.Date)
		whereParts = append(whereParts, fmt.Sprintf("date = $%d::date", len(args)))
	}
	if filter.From != "" {
		args = append(args, filter.From)
		whereParts = append(whereParts, fmt.Sprintf("date >= $%d::date", len(args)))
	}
	if filter.To != "" {
		args = append(args, filter.To)
		whereParts = append(whereParts, fmt.Sprintf("date <= $%d::date", len(args)))
	}
	if blockType := strings.TrimSpace(filter.Type); blockType != "" {
		args = append(args, blockType)
		whereParts = append(whereParts, fmt.Sprintf("type = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM time_blocks
		WHERE %s
		ORDER BY date ASC, start_time ASC, id ASC
	`, timeBlockColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blocks := make([]models.TimeBlock, 0)
	for rows.Next() {
		block, err := scanTimeBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, *block)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *TimeBlockRepository) Update(ctx context.Context, id int64, input TimeBlockInput) (*models.TimeBlock, error) {
	query := `
		UPDATE time_blocks
		SET date = $2::date,
		    start_time = $3::time,
		    end_time = $4::time,
		    type = $5,
		    title = $6,
		    description = $7,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + timeBlockColumns
	return scanTimeBlock(r.db.QueryRow(
		ctx,
		query,
		id,
		input.Date,
		input.StartTime,
		input.EndTime,
		input.Type,
		input.Title,
		input.Description,
	))
}

func (r *TimeBlockRepository) Delete(ctx context.Context, id int64, coachID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM time_blocks WHERE id = $1 AND coach_id = $2`, id, coachID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
