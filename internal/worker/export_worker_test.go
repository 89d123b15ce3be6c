package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/elishgi/moneyPlusMinus/internal/amqp"
	"github.com/elishgi/moneyPlusMinus/internal/sheets/memory"
	"github.com/elishgi/moneyPlusMinus/internal/storage"
)

type fakeStore struct {
	snapshots map[string]*storage.Snapshot
}

func newFakeStore(snaps ...storage.Snapshot) *fakeStore {
	s := &fakeStore{snapshots: make(map[string]*storage.Snapshot)}
	for i := range snaps {
		snap := snaps[i]
		s.snapshots[snap.ID] = &snap
	}
	return s
}

func (s *fakeStore) GetSnapshot(_ context.Context, id string) (storage.Snapshot, error) {
	if snap, ok := s.snapshots[id]; ok {
		return *snap, nil
	}
	return storage.Snapshot{}, storage.ErrNotFound
}

func (s *fakeStore) PendingSnapshots(_ context.Context, limit int) ([]storage.Snapshot, error) {
	var out []storage.Snapshot
	for _, snap := range s.snapshots {
		if snap.ExportStatus == storage.ExportPending && len(out) < limit {
			out = append(out, *snap)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkExported(_ context.Context, id string) error {
	s.snapshots[id].ExportStatus = storage.ExportDone
	return nil
}

func (s *fakeStore) MarkExportError(_ context.Context, id string) error {
	s.snapshots[id].ExportStatus = storage.ExportError
	return nil
}

type failingSink struct{}

func (failingSink) Append(context.Context, storage.Snapshot) (string, error) {
	return "", errors.New("sink unavailable")
}

func TestHandleExportMessage(t *testing.T) {
	store := newFakeStore(storage.Snapshot{
		ID:           "snap-1",
		MonthLabel:   "March 2025",
		Remaining:    5500,
		ExportStatus: storage.ExportPending,
	})
	sink := memory.New()
	w := NewExportWorker(store, sink, nil, 10)

	err := w.HandleExportMessage(context.Background(), &amqp.SnapshotExportMessage{ID: "snap-1"})
	if err != nil {
		t.Fatalf("HandleExportMessage: %v", err)
	}
	if got := store.snapshots["snap-1"].ExportStatus; got != storage.ExportDone {
		t.Errorf("status = %q, want %q", got, storage.ExportDone)
	}
	if len(sink.Snapshots()) != 1 {
		t.Errorf("sink rows = %d, want 1", len(sink.Snapshots()))
	}
}

func TestHandleExportMessageSkipsProcessed(t *testing.T) {
	store := newFakeStore(storage.Snapshot{ID: "snap-1", ExportStatus: storage.ExportDone})
	sink := memory.New()
	w := NewExportWorker(store, sink, nil, 10)

	if err := w.HandleExportMessage(context.Background(), &amqp.SnapshotExportMessage{ID: "snap-1"}); err != nil {
		t.Fatalf("HandleExportMessage: %v", err)
	}
	if len(sink.Snapshots()) != 0 {
		t.Error("already-exported snapshot was appended again")
	}
}

func TestHandleExportMessageUnknownID(t *testing.T) {
	w := NewExportWorker(newFakeStore(), memory.New(), nil, 10)
	err := w.HandleExportMessage(context.Background(), &amqp.SnapshotExportMessage{ID: "nope"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want wrapped ErrNotFound", err)
	}
}

func TestProcessPendingMarksErrors(t *testing.T) {
	store := newFakeStore(storage.Snapshot{ID: "snap-1", ExportStatus: storage.ExportPending})
	w := NewExportWorker(store, failingSink{}, nil, 10)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if got := store.snapshots["snap-1"].ExportStatus; got != storage.ExportError {
		t.Errorf("status = %q, want %q", got, storage.ExportError)
	}
}

func TestStartupCheckDrainsBacklog(t *testing.T) {
	store := newFakeStore(
		storage.Snapshot{ID: "a", ExportStatus: storage.ExportPending},
		storage.Snapshot{ID: "b", ExportStatus: storage.ExportPending},
		storage.Snapshot{ID: "c", ExportStatus: storage.ExportDone},
	)
	sink := memory.New()
	w := NewExportWorker(store, sink, nil, 10)

	if err := w.StartupCheck(context.Background()); err != nil {
		t.Fatalf("StartupCheck: %v", err)
	}
	if len(sink.Snapshots()) != 2 {
		t.Fatalf("sink rows = %d, want 2", len(sink.Snapshots()))
	}
}
