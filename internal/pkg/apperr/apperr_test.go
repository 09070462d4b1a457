package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestFetchFailedPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("clients report: %w", FetchFailed("fetch clients", cause))

	if !Is(err, KindFetchFailed) {
		t.Fatalf("expected fetch_failed kind, got %q", KindOf(err))
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause must stay reachable through errors.Is")
	}
	if got := err.Error(); got != "clients report: fetch_failed: fetch clients: connection refused" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestPreconditionFailedField(t *testing.T) {
	err := PreconditionFailed("business_id")
	if FieldOf(err) != "business_id" {
		t.Fatalf("expected business_id field, got %q", FieldOf(err))
	}
	if KindOf(errors.New("plain")) != "" {
		t.Fatalf("plain errors carry no kind")
	}
}
