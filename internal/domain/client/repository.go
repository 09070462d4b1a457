package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/recaudopro/recaudo-api/internal/pkg/database"
)

const queryTimeout = 3 * time.Second

const clientColumns = `id, business_id, name, phone, document_id, address, latitude, longitude, created_at, updated_at`

// Repository defines client data access.
type Repository interface {
	// ListPrivileged reads every client of the business through get_clients_by_business_id.
	ListPrivileged(ctx context.Context, businessID uuid.UUID) ([]Client, error)
	List(ctx context.Context, filter ListFilter) ([]Client, error)
	ListByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]Client, error)
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*Client, error)
	Search(ctx context.Context, businessID uuid.UUID, text string, limit int) ([]Client, error)
	Create(ctx context.Context, c *Client) error
	Update(ctx context.Context, businessID, id uuid.UUID, req *UpdateClientRequest) (*Client, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates client repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListPrivileged(ctx context.Context, businessID uuid.UUID) ([]Client, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	clients := make([]Client, 0)
	err := r.db.SelectContext(ctx, &clients,
		`SELECT `+clientColumns+` FROM get_clients_by_business_id($1)`, businessID)
	if err != nil {
		return nil, fmt.Errorf("get_clients_by_business_id: %w", err)
	}
	return clients, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Client, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT ` + clientColumns + ` FROM clients WHERE business_id = $1`
	args := []interface{}{filter.BusinessID}

	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += fmt.Sprintf(" AND id = $%d", len(args))
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

	clients := make([]Client, 0)
	if err := r.db.SelectContext(ctx, &clients, query, args...); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

func (r *repository) ListByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]Client, error) {
	clients := make([]Client, 0)
	if len(ids) == 0 {
		return clients, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := r.db.SelectContext(ctx, &clients,
		`SELECT `+clientColumns+` FROM clients WHERE business_id = $1 AND id = ANY($2::uuid[])`,
		businessID, database.UUIDArray(ids))
	if err != nil {
		return nil, fmt.Errorf("list clients by ids: %w", err)
	}
	return clients, nil
}

func (r *repository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var c Client
	err := r.db.GetContext(ctx, &c,
		`SELECT `+clientColumns+` FROM clients WHERE business_id = $1 AND id = $2`, businessID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}

func (r *repository) Search(ctx context.Context, businessID uuid.UUID, text string, limit int) ([]Client, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	pattern := "%" + escapeLike(text) + "%"
	clients := make([]Client, 0)
	err := r.db.SelectContext(ctx, &clients, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE business_id = $1 AND (name ILIKE $2 OR document_id ILIKE $2)
		ORDER BY name
		LIMIT $3
	`, businessID, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search clients: %w", err)
	}
	return clients, nil
}

func (r *repository) Create(ctx context.Context, c *Client) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO clients (id, business_id, name, phone, document_id, address, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, c.ID, c.BusinessID, c.Name, c.Phone, c.DocumentID, c.Address, c.Latitude, c.Longitude,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, businessID, id uuid.UUID, req *UpdateClientRequest) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	sets := []string{"updated_at = NOW()"}
	args := []interface{}{businessID, id}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if req.Name != nil {
		add("name", *req.Name)
	}
	if req.Phone != nil {
		add("phone", *req.Phone)
	}
	if req.DocumentID != nil {
		add("document_id", *req.DocumentID)
	}
	if req.Address != nil {
		add("address", *req.Address)
	}
	if req.Latitude != nil {
		add("latitude", *req.Latitude)
	}
	if req.Longitude != nil {
		add("longitude", *req.Longitude)
	}

	var c Client
	err := r.db.GetContext(ctx, &c, `
		UPDATE clients SET `+strings.Join(sets, ", ")+`
		WHERE business_id = $1 AND id = $2
		RETURNING `+clientColumns, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update client: %w", err)
	}
	return &c, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
