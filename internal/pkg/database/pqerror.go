package database

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	sqlStateUniqueViolation  = "23505"
	sqlStateUndefinedColumn  = "42703"
	sqlStateUndefinedFunc    = "42883"
	sqlStateUndefinedTable   = "42P01"
	sqlStateInsufficientPriv = "42501"
)

// SQLState returns the PostgreSQL error code carried by err, or "".
func SQLState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsUniqueViolation reports a unique constraint failure.
func IsUniqueViolation(err error) bool {
	return SQLState(err) == sqlStateUniqueViolation
}

// IsUndefinedColumn reports a statement that named a column the table lacks.
func IsUndefinedColumn(err error) bool {
	return SQLState(err) == sqlStateUndefinedColumn
}

// IsPrivilegedPathUnavailable reports errors meaning a SECURITY DEFINER
// function cannot be used: it does not exist or the role may not run it.
func IsPrivilegedPathUnavailable(err error) bool {
	switch SQLState(err) {
	case sqlStateUndefinedFunc, sqlStateUndefinedTable, sqlStateInsufficientPriv:
		return true
	}
	return false
}

// UUIDArray binds ids as a text[] parameter; cast it with $n::uuid[] in SQL.
func UUIDArray(ids []uuid.UUID) interface{} {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return pq.Array(out)
}
