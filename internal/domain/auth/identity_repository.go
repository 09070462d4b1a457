package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

// Identity is a login credential. Its id is shared with the user profile.
type Identity struct {
	ID           uuid.UUID `db:"id"`
	BusinessID   uuid.UUID `db:"business_id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// IdentityRepository stores login credentials.
type IdentityRepository interface {
	Create(ctx context.Context, id *Identity) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByEmail(ctx context.Context, businessID uuid.UUID, email string) (*Identity, error)
	ListByEmail(ctx context.Context, email string) ([]Identity, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type identityRepository struct {
	db *sqlx.DB
}

// NewIdentityRepository creates identity repository
func NewIdentityRepository(db *sqlx.DB) IdentityRepository {
	return &identityRepository{db: db}
}

func (r *identityRepository) Create(ctx context.Context, id *Identity) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO auth_identities (id, business_id, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, id.ID, id.BusinessID, id.Email, id.PasswordHash).Scan(&id.CreatedAt)
	if err != nil {
		return fmt.Errorf("create identity: %w", err)
	}
	return nil
}

func (r *identityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM auth_identities WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}

func (r *identityRepository) GetByEmail(ctx context.Context, businessID uuid.UUID, email string) (*Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var id Identity
	err := r.db.GetContext(ctx, &id, `
		SELECT id, business_id, email, password_hash, created_at
		FROM auth_identities
		WHERE business_id = $1 AND lower(email) = lower($2)
	`, businessID, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get identity: %w", err)
	}
	return &id, nil
}

func (r *identityRepository) ListByEmail(ctx context.Context, email string) ([]Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ids := make([]Identity, 0)
	err := r.db.SelectContext(ctx, &ids, `
		SELECT id, business_id, email, password_hash, created_at
		FROM auth_identities
		WHERE lower(email) = lower($1)
	`, email)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	return ids, nil
}

func (r *identityRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE auth_identities SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
