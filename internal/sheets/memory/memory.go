// Package memory is an in-process snapshot sink for tests and
// AMQP-less development runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/elishgi/moneyPlusMinus/internal/storage"
)

type Sink struct {
	mu    sync.Mutex
	items []storage.Snapshot
}

func New() *Sink {
	return &Sink{}
}

// Append stores the snapshot and returns a synthetic row reference.
func (s *Sink) Append(_ context.Context, snap storage.Snapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, snap)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Snapshots returns a copy of everything appended so far.
func (s *Sink) Snapshots() []storage.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storage.Snapshot(nil), s.items...)
}
