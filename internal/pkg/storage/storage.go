// Package storage archives generated report files.
package storage

import (
	"context"
	"io"
	"path"
	"time"
)

// Storage is a write-mostly object store.
type Storage interface {
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	GetURL(key string) string
}

// ExportKey builds the archive key for a report export: exports/<business>/<yyyy>/<mm>/<name>.
func ExportKey(businessID string, at time.Time, filename string) string {
	return path.Join("exports", businessID, at.Format("2006"), at.Format("01"), path.Base(filename))
}
