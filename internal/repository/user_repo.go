package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const userColumns = `id, email, password_hash, name, role, bio, phone_number, time_zone, image, is_active, created_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

type UpdateProfileInput struct {
	Name        *string
	Bio         *string
	PhoneNumber *string
	TimeZone    *string
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.Bio,
		&user.PhoneNumber,
		&user.TimeZone,
		&user.Image,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, name, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, time_zone, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, user.Email, user.PasswordHash, user.Name, user.Role, user.IsActive).
		Scan(&user.ID, &user.TimeZone, &user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// ClaimInvited turns an invited placeholder into a usable account.
func (r *UserRepository) ClaimInvited(
	ctx context.Context,
	id int64,
	passwordHash string,
	name string,
) (*models.User, error) {
	query := `
		UPDATE users
		SET password_hash = $2,
		    name = CASE WHEN $3::text = '' THEN name ELSE $3::text END,
		    is_active = TRUE,
		    updated_at = NOW()
		WHERE id = $1 AND is_active = FALSE
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, id, passwordHash, name))
}

func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role string) (*models.User, error) {
	query := `
		UPDATE users
		SET role = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, id, role))
}

func (r *UserRepository) UpdateProfile(
	ctx context.Context,
	id int64,
	input UpdateProfileInput,
) (*models.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    bio = COALESCE($3, bio),
		    phone_number = COALESCE($4, phone_number),
		    time_zone = COALESCE($5, time_zone),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, id, input.Name, input.Bio, input.PhoneNumber, input.TimeZone))
}

func (r *UserRepository) UpdateImage(ctx context.Context, id int64, imageURL string) (*models.User, error) {
	query := `
		UPDATE users
		SET image = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, id, imageURL))
}
