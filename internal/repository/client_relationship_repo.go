package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
)

const relationshipColumns = `id, coach_id, client_id, status, invite_token::text, message, created_at, updated_at`

type CreateRelationshipInput struct {
	CoachID     int64
	ClientID    int64
	Status      string
	InviteToken string
	Message     *string
}

type ClientListFilter struct {
	CoachID int64
	Status  string
	Limit   int
	Offset  int
}

type ClientRelationshipRepository struct {
	db DBTX
}

func NewClientRelationshipRepository(db DBTX) *ClientRelationshipRepository {
	return &ClientRelationshipRepository{db: db}
}

func scanRelationship(row pgx.Row) (*models.ClientRelationship, error) {
	var rel models.ClientRelationship
	err := row.Scan(
		&rel.ID,
		&rel.CoachID,
		&rel.ClientID,
		&rel.Status,
		&rel.InviteToken,
		&rel.Message,
		&rel.CreatedAt,
		&rel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *ClientRelationshipRepository) Create(
	ctx context.Context,
	input CreateRelationshipInput,
) (*models.ClientRelationship, error) {
	query := `
		INSERT INTO client_relationships (coach_id, client_id, status, invite_token, message)
		VALUES ($1, $2, $3, $4::uuid, $5)
		RETURNING ` + relationshipColumns
	return scanRelationship(r.db.QueryRow(
		ctx,
		query,
		input.CoachID,
		input.ClientID,
		input.Status,
		input.InviteToken,
		input.Message,
	))
}

func (r *ClientRelationshipRepository) GetByCoachAndClient(
	ctx context.Context,
	coachID int64,
	clientID int64,
) (*models.ClientRelationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM client_relationships WHERE coach_id = $1 AND client_id = $2`
	return scanRelationship(r.db.QueryRow(ctx, query, coachID, clientID))
}

func (r *ClientRelationshipRepository) GetByInviteToken(
	ctx context.Context,
	token string,
) (*models.ClientRelationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM client_relationships WHERE invite_token = $1::uuid`
	return scanRelationship(r.db.QueryRow(ctx, query, token))
}

func (r *ClientRelationshipRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	id int64,
	currentStatus string,
	nextStatus string,
) (*models.ClientRelationship, error) {
	query := `
		UPDATE client_relationships
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + relationshipColumns
	return scanRelationship(r.db.QueryRow(ctx, query, id, currentStatus, nextStatus))
}

func (r *ClientRelationshipRepository) ListClients(
	ctx context.Context,
	filter ClientListFilter,
) ([]models.ClientListItem, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM client_relationships WHERE coach_id = $1 AND status = $2`
	if err := r.db.QueryRow(ctx, countQuery, filter.CoachID, filter.Status).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT u.id, u.name, u.email, cr.id, cr.status
		FROM client_relationships cr
		JOIN users u ON u.id = cr.client_id
		WHERE cr.coach_id = $1 AND cr.status = $2
		ORDER BY u.name ASC, u.id ASC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, filter.CoachID, filter.Status, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	clients := make([]models.ClientListItem, 0)
	for rows.Next() {
		var item models.ClientListItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Email, &item.RelationshipID, &item.RelationshipStatus); err != nil {
			return nil, 0, err
		}
		clients = append(clients, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}
