package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/elishgi/moneyPlusMinus/internal/core"
)

// Status reports where a scheduled save currently stands.
type Status string

const (
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusError  Status = "error"
)

// BudgetSaver is the slice of the API client the Saver needs.
type BudgetSaver interface {
	SaveBudget(ctx context.Context, userID string, budget core.BudgetSnapshot) error
}

// Saver debounces budget saves and keeps at most one request in
// flight per (user, month). Scheduling a newer edit for the same key
// cancels the in-flight save: the latest payload always wins and a
// stale response can never overwrite it. Failures surface through the
// status callback only; there is no automatic retry.
type Saver struct {
	api      BudgetSaver
	debounce time.Duration
	notify   func(Status, error)

	mu      sync.Mutex
	flights map[string]*flight
	wg      sync.WaitGroup
}

type flight struct {
	timer   *time.Timer
	pending *pendingSave
	cancel  context.CancelFunc
}

type pendingSave struct {
	userID string
	budget core.BudgetSnapshot
}

// NewSaver builds a Saver. notify may be nil when the caller does not
// care about save progress.
func NewSaver(api BudgetSaver, debounce time.Duration, notify func(Status, error)) *Saver {
	if notify == nil {
		notify = func(Status, error) {}
	}
	return &Saver{
		api:      api,
		debounce: debounce,
		notify:   notify,
		flights:  make(map[string]*flight),
	}
}

// Schedule queues a save after the debounce window. Further calls for
// the same (user, month) within the window replace the payload and
// restart the clock.
func (s *Saver) Schedule(userID string, budget core.BudgetSnapshot) {
	key := userID + "\x00" + budget.MonthLabel

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flights[key]
	if !ok {
		f = &flight{}
		s.flights[key] = f
	}
	f.pending = &pendingSave{userID: userID, budget: budget}
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(s.debounce, func() { s.fire(key) })
}

// Flush starts every pending save immediately and waits for all
// in-flight requests to finish. Call on shutdown so the last edits
// reach the server.
func (s *Saver) Flush() {
	s.mu.Lock()
	keys := make([]string, 0, len(s.flights))
	for key, f := range s.flights {
		if f.pending != nil {
			if f.timer != nil {
				f.timer.Stop()
			}
			keys = append(keys, key)
		}
	}
	s.mu.Unlock()

	for _, key := range keys {
		s.fire(key)
	}
	s.wg.Wait()
}

func (s *Saver) fire(key string) {
	s.mu.Lock()
	f, ok := s.flights[key]
	if !ok || f.pending == nil {
		s.mu.Unlock()
		return
	}
	save := *f.pending
	f.pending = nil

	// Supersede the previous request for this key, if still running.
	if f.cancel != nil {
		f.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	s.mu.Unlock()

	s.notify(StatusSaving, nil)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		err := s.api.SaveBudget(ctx, save.userID, save.budget)
		if errors.Is(err, context.Canceled) {
			// A newer edit took over; stay quiet.
			return
		}
		if err != nil {
			s.notify(StatusError, err)
			return
		}
		s.notify(StatusSaved, nil)
	}()
}
