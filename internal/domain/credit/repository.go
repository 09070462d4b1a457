package credit

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

const creditColumns = `id, business_id, client_id, total_amount, installment_amount, total_installments,
	paid_installments, overdue_installments, total_balance, last_payment_amount, last_payment_date,
	next_due_date, created_at, updated_at`

// Repository defines credit data access.
type Repository interface {
	// ListPrivileged reads every credit of the business through get_credits_by_business_id.
	ListPrivileged(ctx context.Context, businessID uuid.UUID) ([]Credit, error)
	List(ctx context.Context, filter ListFilter) ([]Credit, error)
	ListByClientIDs(ctx context.Context, businessID uuid.UUID, clientIDs []uuid.UUID) ([]Credit, error)
	ListActive(ctx context.Context, businessID uuid.UUID) ([]Credit, error)
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*Credit, error)
	Create(ctx context.Context, c *Credit) error
	Update(ctx context.Context, c *Credit) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates credit repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListPrivileged(ctx context.Context, businessID uuid.UUID) ([]Credit, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	credits := make([]Credit, 0)
	err := r.db.SelectContext(ctx, &credits,
		`SELECT `+creditColumns+` FROM get_credits_by_business_id($1)`, businessID)
	if err != nil {
		return nil, fmt.Errorf("get_credits_by_business_id: %w", err)
	}
	return credits, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Credit, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT ` + creditColumns + ` FROM credits WHERE business_id = $1`
	args := []interface{}{filter.BusinessID}

	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	credits := make([]Credit, 0)
	if err := r.db.SelectContext(ctx, &credits, query, args...); err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}
	return credits, nil
}

func (r *repository) ListByClientIDs(ctx context.Context, businessID uuid.UUID, clientIDs []uuid.UUID) ([]Credit, error) {
	credits := make([]Credit, 0)
	if len(clientIDs) == 0 {
		return credits, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := r.db.SelectContext(ctx, &credits, `
		SELECT `+creditColumns+`
		FROM credits
		WHERE business_id = $1 AND client_id = ANY($2::uuid[])
		ORDER BY created_at
	`, businessID, database.UUIDArray(clientIDs))
	if err != nil {
		return nil, fmt.Errorf("list credits by client: %w", err)
	}
	return credits, nil
}

func (r *repository) ListActive(ctx context.Context, businessID uuid.UUID) ([]Credit, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	credits := make([]Credit, 0)
	err := r.db.SelectContext(ctx, &credits,
		`SELECT `+creditColumns+` FROM credits WHERE business_id = $1 AND total_balance > 0`, businessID)
	if err != nil {
		return nil, fmt.Errorf("list active credits: %w", err)
	}
	return credits, nil
}

func (r *repository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*Credit, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var c Credit
	err := r.db.GetContext(ctx, &c,
		`SELECT `+creditColumns+` FROM credits WHERE business_id = $1 AND id = $2`, businessID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credit: %w", err)
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, c *Credit) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO credits (id, business_id, client_id, total_amount, installment_amount, total_installments,
			paid_installments, overdue_installments, total_balance, next_due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`, c.ID, c.BusinessID, c.ClientID, c.TotalAmount, c.InstallmentAmount, c.TotalInstallments,
		c.PaidInstallments, c.OverdueInstallments, c.TotalBalance, c.NextDueDate,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create credit: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, c *Credit) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := r.db.QueryRowxContext(ctx, `
		UPDATE credits SET
			total_amount = $3, installment_amount = $4, total_installments = $5,
			paid_installments = $6, overdue_installments = $7, total_balance = $8,
			last_payment_amount = $9, last_payment_date = $10, next_due_date = $11,
			updated_at = NOW()
		WHERE business_id = $1 AND id = $2
		RETURNING updated_at
	`, c.BusinessID, c.ID, c.TotalAmount, c.InstallmentAmount, c.TotalInstallments,
		c.PaidInstallments, c.OverdueInstallments, c.TotalBalance,
		c.LastPaymentAmount, c.LastPaymentDate, c.NextDueDate,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCreditNotFound
		}
		return fmt.Errorf("update credit: %w", err)
	}
	return nil
}
