package collection

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/recaudopro/recaudo-api/internal/pkg/database"
	"github.com/recaudopro/recaudo-api/internal/pkg/logger"
)

const queryTimeout = 3 * time.Second

const collectionColumns = `id, business_id, credit_id, client_id, user_id, amount, payment_date,
	payment_method, transaction_reference, notes, created_at`

// Repository defines collection data access.
type Repository interface {
	// ListPrivileged reads every collection of the business through get_collections_by_business_id.
	ListPrivileged(ctx context.Context, businessID uuid.UUID) ([]Collection, error)
	List(ctx context.Context, filter ListFilter) ([]Collection, error)
	ListByClientIDs(ctx context.Context, businessID uuid.UUID, clientIDs []uuid.UUID) ([]Collection, error)
	ListByCreditIDs(ctx context.Context, businessID uuid.UUID, creditIDs []uuid.UUID) ([]Collection, error)
	ListRecent(ctx context.Context, businessID uuid.UUID, limit int) ([]Collection, error)
	// ListInRange returns collections with from <= payment_date < to.
	ListInRange(ctx context.Context, businessID uuid.UUID, from, to time.Time) ([]Collection, error)
	Create(ctx context.Context, c *Collection) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates collection repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListPrivileged(ctx context.Context, businessID uuid.UUID) ([]Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows := make([]Collection, 0)
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+collectionColumns+` FROM get_collections_by_business_id($1)`, businessID)
	if err != nil {
		return nil, fmt.Errorf("get_collections_by_business_id: %w", err)
	}
	return rows, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT ` + collectionColumns + ` FROM collections WHERE business_id = $1`
	args := []interface{}{filter.BusinessID}

	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	if filter.CreditID != nil {
		args = append(args, *filter.CreditID)
		query += fmt.Sprintf(" AND credit_id = $%d", len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		query += fmt.Sprintf(" AND payment_date >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		query += fmt.Sprintf(" AND payment_date <= $%d", len(args))
	}
	if len(filter.PaymentMethods) > 0 {
		args = append(args, pq.Array(filter.PaymentMethods))
		query += fmt.Sprintf(" AND lower(payment_method) = ANY($%d)", len(args))
	}
	query += " ORDER BY payment_date DESC"

	rows := make([]Collection, 0)
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return rows, nil
}

func (r *repository) ListByClientIDs(ctx context.Context, businessID uuid.UUID, clientIDs []uuid.UUID) ([]Collection, error) {
	return r.listByKey(ctx, "client_id", businessID, clientIDs)
}

func (r *repository) ListByCreditIDs(ctx context.Context, businessID uuid.UUID, creditIDs []uuid.UUID) ([]Collection, error) {
	return r.listByKey(ctx, "credit_id", businessID, creditIDs)
}

// listByKey returns rows in insertion order so callers can tally first occurrences.
func (r *repository) listByKey(ctx context.Context, column string, businessID uuid.UUID, ids []uuid.UUID) ([]Collection, error) {
	rows := make([]Collection, 0)
	if len(ids) == 0 {
		return rows, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+collectionColumns+`
		FROM collections
		WHERE business_id = $1 AND `+column+` = ANY($2::uuid[])
		ORDER BY created_at, id
	`, businessID, database.UUIDArray(ids))
	if err != nil {
		return nil, fmt.Errorf("list collections by %s: %w", column, err)
	}
	return rows, nil
}

func (r *repository) ListRecent(ctx context.Context, businessID uuid.UUID, limit int) ([]Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows := make([]Collection, 0)
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+collectionColumns+`
		FROM collections
		WHERE business_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, businessID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent collections: %w", err)
	}
	return rows, nil
}

func (r *repository) ListInRange(ctx context.Context, businessID uuid.UUID, from, to time.Time) ([]Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows := make([]Collection, 0)
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+collectionColumns+`
		FROM collections
		WHERE business_id = $1 AND payment_date >= $2 AND payment_date < $3
		ORDER BY payment_date
	`, businessID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list collections in range: %w", err)
	}
	return rows, nil
}

// Create inserts the full row. Schemas without the optional payment columns
// reject that with 42703, in which case the reduced row is written instead.
func (r *repository) Create(ctx context.Context, c *Collection) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO collections (id, business_id, credit_id, client_id, user_id, amount, payment_date,
			payment_method, transaction_reference, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`, c.ID, c.BusinessID, c.CreditID, c.ClientID, c.UserID, c.Amount, c.PaymentDate,
		c.PaymentMethod, c.TransactionReference, c.Notes,
	).Scan(&c.CreatedAt)
	if err == nil {
		return nil
	}
	if !database.IsUndefinedColumn(err) {
		return fmt.Errorf("create collection: %w", err)
	}

	logger.LogWarn(ctx, "Collection insert rejected extended columns, retrying reduced row",
		"collection_id", c.ID.String())

	err = r.db.QueryRowxContext(ctx, `
		INSERT INTO collections (id, business_id, credit_id, client_id, user_id, amount, payment_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, c.ID, c.BusinessID, c.CreditID, c.ClientID, c.UserID, c.Amount, c.PaymentDate,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create collection (reduced): %w", err)
	}
	c.PaymentMethod, c.TransactionReference, c.Notes = nil, nil, nil
	return nil
}
