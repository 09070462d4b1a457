package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/recaudopro/recaudo-api/internal/pkg/database"
)

const queryTimeout = 3 * time.Second

const userColumns = `id, business_id, email, name, avatar_url, employee_code, phone, role,
	commission_percentage, is_active, created_at, updated_at`

// Repository defines user data access interface
type Repository interface {
	// ListByBusinessPrivileged reads the roster through get_users_by_business_id.
	ListByBusinessPrivileged(ctx context.Context, businessID uuid.UUID) ([]User, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, activeOnly bool) ([]User, error)
	ListByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, businessID uuid.UUID, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new user repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListByBusinessPrivileged(ctx context.Context, businessID uuid.UUID) ([]User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	users := make([]User, 0)
	err := r.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM get_users_by_business_id($1)`, businessID)
	if err != nil {
		return nil, fmt.Errorf("get_users_by_business_id: %w", err)
	}
	return users, nil
}

func (r *repository) ListByBusiness(ctx context.Context, businessID uuid.UUID, activeOnly bool) ([]User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE business_id = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY created_at`

	users := make([]User, 0)
	if err := r.db.SelectContext(ctx, &users, query, businessID); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *repository) ListByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]User, error) {
	users := make([]User, 0)
	if len(ids) == 0 {
		return users, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := r.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM users WHERE business_id = $1 AND id = ANY($2::uuid[])`,
		businessID, database.UUIDArray(ids))
	if err != nil {
		return nil, fmt.Errorf("list users by ids: %w", err)
	}
	return users, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var u User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *repository) GetByEmail(ctx context.Context, businessID uuid.UUID, email string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var u User
	err := r.db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM users WHERE business_id = $1 AND lower(email) = lower($2)`,
		businessID, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (r *repository) Create(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO users (id, business_id, email, name, employee_code, phone, role, commission_percentage, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		u.ID, u.BusinessID, u.Email, u.Name, u.EmployeeCode, u.Phone, u.Role, u.CommissionPercentage, u.IsActive,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("user repository create: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("user repository delete: %w", err)
	}
	return nil
}
