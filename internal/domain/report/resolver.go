package report

import (
	"context"

	"github.com/recaudopro/recaudo-api/internal/pkg/apperr"
	"github.com/recaudopro/recaudo-api/internal/pkg/database"
	"github.com/recaudopro/recaudo-api/internal/pkg/logger"
)

// Source names the access path that produced a primary row set.
type Source string

const (
	SourcePrivileged Source = "privileged"
	SourceDirect     Source = "direct"
)

// Result is an enriched view together with how it was obtained.
type Result[T any] struct {
	Rows   []T
	Source Source
	// Degraded is set when the user roster could not be resolved and
	// user emails are missing.
	Degraded bool
}

// twoPath fetches a primary row set through the tenant-wide privileged reader,
// filtering in memory, and falls back to the direct filtered query when the
// reader is unavailable, fails or returns nothing.
type twoPath[T any] struct {
	what       string
	privileged func(context.Context) ([]T, error)
	keep       func(*T) bool
	direct     func(context.Context) ([]T, error)
}

func (p twoPath[T]) fetch(ctx context.Context) ([]T, Source, error) {
	rows, err := p.privileged(ctx)
	switch {
	case err == nil && len(rows) > 0:
		kept := make([]T, 0, len(rows))
		for i := range rows {
			if p.keep(&rows[i]) {
				kept = append(kept, rows[i])
			}
		}
		logger.LogDebug(ctx, "report rows loaded", "what", p.what, "source", SourcePrivileged,
			"fetched", len(rows), "kept", len(kept))
		return kept, SourcePrivileged, nil
	case err == nil:
		logger.LogDebug(ctx, "privileged reader returned no rows", "what", p.what)
	case database.IsPrivilegedPathUnavailable(err):
		logger.LogDebug(ctx, "privileged reader unavailable", "what", p.what, "error", err.Error())
	default:
		logger.LogWarn(ctx, "privileged reader failed", "what", p.what, "error", err.Error())
	}

	rows, err = p.direct(ctx)
	if err != nil {
		return nil, SourceDirect, apperr.FetchFailed("fetch "+p.what, err)
	}
	logger.LogDebug(ctx, "report rows loaded", "what", p.what, "source", SourceDirect, "fetched", len(rows))
	return rows, SourceDirect, nil
}
