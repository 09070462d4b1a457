package client

import "strings"

// CreateClientRequest is the body of POST /clients.
type CreateClientRequest struct {
	Name       string   `json:"name" validate:"required,notblank,max=160"`
	Phone      string   `json:"phone" validate:"required,notblank,max=30"`
	DocumentID *string  `json:"document_id" validate:"omitempty,max=40"`
	Address    *string  `json:"address" validate:"omitempty,max=240"`
	Latitude   *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

// UpdateClientRequest is the body of PATCH /clients/{id}. Nil fields are left unchanged.
type UpdateClientRequest struct {
	Name       *string  `json:"name" validate:"omitempty,notblank,max=160"`
	Phone      *string  `json:"phone" validate:"omitempty,notblank,max=30"`
	DocumentID *string  `json:"document_id" validate:"omitempty,max=40"`
	Address    *string  `json:"address" validate:"omitempty,max=240"`
	Latitude   *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

func (r *CreateClientRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.DocumentID = trimOrNil(r.DocumentID)
	r.Address = trimOrNil(r.Address)
}

func (r *UpdateClientRequest) empty() bool {
	return r.Name == nil && r.Phone == nil && r.DocumentID == nil &&
		r.Address == nil && r.Latitude == nil && r.Longitude == nil
}

func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
