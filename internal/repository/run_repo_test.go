package repository

import (
	"errors"
	"testing"
)

func TestRunRepository_GetRunByID_MalformedID(t *testing.T) {
	// No connection: a malformed ID must be rejected before any query
	repo := NewRunRepositoryWithDB(nil)

	tests := []string{
		"not-a-uuid",
		"",
		"123",
		"6f1c2d7e-0000-0000-0000",
	}

	for _, id := range tests {
		t.Run(id, func(t *testing.T) {
			run, err := repo.GetRunByID(id)
			if !errors.Is(err, ErrRunNotFound) {
				t.Errorf("expected ErrRunNotFound for %q, got %v", id, err)
			}
			if run != nil {
				t.Errorf("expected no run, got %+v", run)
			}
		})
	}
}
