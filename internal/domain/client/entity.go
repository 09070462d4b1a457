package client

import (
	"time"

	"github.com/google/uuid"
)

// Client is a borrower of a business.
type Client struct {
	ID         uuid.UUID `db:"id" json:"id"`
	BusinessID uuid.UUID `db:"business_id" json:"business_id"`
	Name       string    `db:"name" json:"name"`
	Phone      string    `db:"phone" json:"phone"`
	DocumentID *string   `db:"document_id" json:"document_id"`
	Address    *string   `db:"address" json:"address"`
	Latitude   *float64  `db:"latitude" json:"latitude"`
	Longitude  *float64  `db:"longitude" json:"longitude"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ListFilter narrows a direct client listing. Dates bound created_at inclusively.
type ListFilter struct {
	BusinessID uuid.UUID
	ClientID   *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

// Matches applies the filter to an already-loaded row.
func (f ListFilter) Matches(c *Client) bool {
	if f.ClientID != nil && c.ID != *f.ClientID {
		return false
	}
	if f.StartDate != nil && c.CreatedAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && c.CreatedAt.After(*f.EndDate) {
		return false
	}
	return true
}
