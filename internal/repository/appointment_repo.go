package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
)

const appointmentSelect = `
	a.id, a.coach_id, a.client_id,
	to_char(a.date, 'YYYY-MM-DD'), to_char(a.start_time, 'HH24:MI'), to_char(a.end_time, 'HH24:MI'),
	a.duration, a.type, a.status, a.notes, a.created_at, a.updated_at,
	u.id, u.name, u.email
`

type AppointmentInput struct {
	CoachID   int64
	ClientID  int64
	Date      string
	StartTime string
	EndTime   string
	Duration  int
	Type      string
	Status    string
	Notes     *string
}

type AppointmentListFilter struct {
	CoachID  int64
	ClientID int64
	Date     string
	From     string
	To       string
	Status   string
}

type AppointmentRepository struct {
	db DBTX
}

func NewAppointmentRepository(db DBTX) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func scanAppointment(row pgx.Row) (*models.Appointment, error) {
	var appointment models.Appointment
	var client models.UserSummary
	err := row.Scan(
		&appointment.ID,
		&appointment.CoachID,
		&appointment.ClientID,
		&appointment.Date,
		&appointment.StartTime,
		&appointment.EndTime,
		&appointment.Duration,
		&appointment.Type,
		&appointment.Status,
		&appointment.Notes,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
		&client.ID,
		&client.Name,
		&client.Email,
	)
	if err != nil {
		return nil, err
	}
	appointment.Client = &client
	return &appointment, nil
}

func (r *AppointmentRepository) Create(
	ctx context.Context,
	input AppointmentInput,
) (*models.Appointment, error) {
	query := `
		WITH a AS (
			INSERT INTO appointments (coach_id, client_id, date, start_time, end_time, duration, type, status, notes)
			VALUES ($1, $2, $3::date, $4::time, $5::time, $6, $7, $8, $9)
			RETURNING *
		)
		SELECT ` + appointmentSelect + `
		FROM a
		JOIN users u ON u.id = a.client_id
	`
	return scanAppointment(r.db.QueryRow(
		ctx,
		query,
		input.CoachID,
		input.ClientID,
		input.Date,
		input.StartTime,
		input.EndTime,
		input.Duration,
		input.Type,
		input.Status,
		input.Notes,
	))
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*models.Appointment, error) {
	query := `
		SELECT ` + appointmentSelect + `
		FROM appointments a
		JOIN users u ON u.id = a.client_id
		WHERE a.id = $1
	`
	return scanAppointment(r.db.QueryRow(ctx, query, id))
}

func (r *AppointmentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Appointment, error) {
	query := `
		SELECT ` + appointmentSelect + `
		FROM appointments a
		JOIN users u ON u.id = a.client_id
		WHERE a.id = $1
		FOR UPDATE OF a
	`
	return scanAppointment(r.db.QueryRow(ctx, query, id))
}

func (r *AppointmentRepository) List(
	ctx context.Context,
	filter AppointmentListFilter,
) ([]models.Appointment, error) {
	args := []any{}
	whereParts := []string{}

	if filter.CoachID > 0 {
		args = append(args, filter.CoachID)
		whereParts = append(whereParts, fmt.Sprintf("a.coach_id = $%d", len(args)))
	}
	if filter.ClientID > 0 {
		args = append(args, filter.ClientID)
		whereParts = append(whereParts, fmt.Sprintf("a.client_id = $%d", len(args)))
	}
	if filter.Date != "" {
		args = append(args, filter.Date)
		whereParts = append(whereParts, fmt.Sprintf("a.date = $%d::date", len(args)))
	}
	if filter.From != "" {
		args = append(args, filter.From)
		whereParts = append(whereParts, fmt.Sprintf("a.date >= $%d::date", len(args)))
	}
	if filter.To != "" {
		args = append(args, filter.To)
		whereParts = append(whereParts, fmt.Sprintf("a.date <= $%d::date", len(args)))
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if len(whereParts) == 0 {
		return nil, errors.New("appointment list requires an owner filter")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM appointments a
		JOIN users u ON u.id = a.client_id
		WHERE %s
		ORDER BY a.date ASC, a.start_time ASC, a.id ASC
	`, appointmentSelect, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appointments := make([]models.Appointment, 0)
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, *appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *AppointmentRepository) Update(
	ctx context.Context,
	id int64,
	input AppointmentInput,
) (*models.Appointment, error) {
	query := `
		WITH a AS (
			UPDATE appointments
			SET date = $2::date,
			    start_time = $3::time,
			    end_time = $4::time,
			    duration = $5,
			    type = $6,
			    status = $7,
			    notes = $8,
			    updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + appointmentSelect + `
		FROM a
		JOIN users u ON u.id = a.client_id
	`
	return scanAppointment(r.db.QueryRow(
		ctx,
		query,
		id,
		input.Date,
		input.StartTime,
		input.EndTime,
		input.Duration,
		input.Type,
		input.Status,
		input.Notes,
	))
}

func (r *AppointmentRepository) Delete(ctx context.Context, id int64, coachID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1 AND coach_id = $2`, id, coachID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
