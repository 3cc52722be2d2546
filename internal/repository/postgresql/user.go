package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/vontade-empenho/ponto-backend/internal/domain/user"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/database"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `id, email, name, password_hash, api_key, api_secret, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.APIKey,
		&u.APISecret,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, user.ErrUserNotFound
	}
	return u, err
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(q.QueryRow(ctx, query, email))
	if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		return user.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, err
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(q.QueryRow(ctx, query, id))
	if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		return user.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, err
}

// Upsert implements user.UserRepository.
func (r *userRepositoryImpl) Upsert(ctx context.Context, u user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (email, name, password_hash, api_key, api_secret)
		VALUES (LOWER($1), $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name,
			password_hash = EXCLUDED.password_hash,
			api_key = EXCLUDED.api_key,
			api_secret = EXCLUDED.api_secret,
			updated_at = NOW()
		RETURNING ` + userColumns

	saved, err := scanUser(q.QueryRow(ctx, query, u.Email, u.Name, u.PasswordHash, u.APIKey, u.APISecret))
	if err != nil {
		return user.User{}, fmt.Errorf("failed to upsert user: %w", err)
	}
	return saved, nil
}

// UpdateCredentials implements user.UserRepository.
func (r *userRepositoryImpl) UpdateCredentials(ctx context.Context, userID, apiKey, apiSecret string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE users SET api_key = $2, api_secret = $3, updated_at = NOW() WHERE id = $1`
	tag, err := q.Exec(ctx, query, userID, apiKey, apiSecret)
	if err != nil {
		return fmt.Errorf("failed to update credentials: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
