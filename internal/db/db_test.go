package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestWrapNotFound(t *testing.T) {
	if got := WrapNotFound(nil); got != nil {
		t.Fatalf("nil should pass through, got %v", got)
	}
	if got := WrapNotFound(pgx.ErrNoRows); !errors.Is(got, ErrNotFound) {
		t.Fatalf("pgx.ErrNoRows should map to ErrNotFound, got %v", got)
	}
	wrapped := WrapNotFound(fmt.Errorf("scan: %w", pgx.ErrNoRows))
	if !errors.Is(wrapped, ErrNotFound) {
		t.Fatalf("wrapped pgx.ErrNoRows should map to ErrNotFound, got %v", wrapped)
	}

	other := errors.New("connection reset")
	got := WrapNotFound(other)
	if errors.Is(got, ErrNotFound) {
		t.Fatalf("unrelated error must not look like not-found: %v", got)
	}
	if !errors.Is(got, other) {
		t.Fatalf("unrelated error should stay unwrappable, got %v", got)
	}
}

func TestIsNotFound(t *testing.T) {
	for _, err := range []error{ErrNotFound, pgx.ErrNoRows, fmt.Errorf("job: %w", ErrNotFound)} {
		if !IsNotFound(err) {
			t.Errorf("IsNotFound(%v) = false, want true", err)
		}
	}
	if IsNotFound(nil) || IsNotFound(errors.New("boom")) {
		t.Error("IsNotFound matched an error that is not not-found")
	}
}
