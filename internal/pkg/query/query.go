// Package query parses typed URL query parameters.
package query

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dateOnly = "2006-01-02"

// Date parses an RFC 3339 timestamp or a YYYY-MM-DD date in loc. A bare date
// resolves to the start of that day, or to its last instant when endOfDay is set.
func Date(r *http.Request, name string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateOnly, raw, loc)
	if err != nil {
		return nil, fmt.Errorf("%s: expected RFC 3339 or YYYY-MM-DD", name)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}

// UUID parses an optional identifier parameter.
func UUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid identifier", name)
	}
	return &id, nil
}

// String returns a trimmed optional parameter.
func String(r *http.Request, name string) *string {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	return &raw
}

// Int parses an integer parameter, returning def when absent.
func Int(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: expected an integer", name)
	}
	return v, nil
}
