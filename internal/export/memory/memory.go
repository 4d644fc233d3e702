// Package memory provides an in-memory summary writer for tests and local
// runs without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fincoach/internal/export"
)

type Store struct {
	mu   sync.Mutex
	rows []export.SummaryRow
}

var _ export.SummaryWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, row export.SummaryRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []export.SummaryRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]export.SummaryRow(nil), s.rows...)
}
