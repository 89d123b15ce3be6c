// Package worker exports totals snapshots from the database to the
// configured sink, driven by AMQP messages with a periodic sweep as
// backup for lost messages.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/elishgi/moneyPlusMinus/internal/amqp"
	"github.com/elishgi/moneyPlusMinus/internal/metrics"
	"github.com/elishgi/moneyPlusMinus/internal/sheets"
	"github.com/elishgi/moneyPlusMinus/internal/storage"
)

// SnapshotStore is the slice of the repository the worker needs.
type SnapshotStore interface {
	GetSnapshot(ctx context.Context, id string) (storage.Snapshot, error)
	PendingSnapshots(ctx context.Context, limit int) ([]storage.Snapshot, error)
	MarkExported(ctx context.Context, id string) error
	MarkExportError(ctx context.Context, id string) error
}

// Consumer delivers export messages from the queue.
type Consumer interface {
	ConsumeSnapshotExports(ctx context.Context, handler func(*amqp.SnapshotExportMessage) error) error
}

// ExportWorker moves pending snapshots to the export sink.
type ExportWorker struct {
	store     SnapshotStore
	sink      sheets.SnapshotAppender
	metrics   *metrics.Metrics
	batchSize int
}

// NewExportWorker creates a worker. metrics may be nil.
func NewExportWorker(store SnapshotStore, sink sheets.SnapshotAppender, m *metrics.Metrics, batchSize int) *ExportWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	return &ExportWorker{
		store:     store,
		sink:      sink,
		metrics:   m,
		batchSize: batchSize,
	}
}

// HandleExportMessage processes a single export message from AMQP.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.SnapshotExportMessage) error {
	snap, err := w.store.GetSnapshot(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get snapshot from storage: %w", err)
	}
	// A sweep may already have exported this one.
	if snap.ExportStatus != storage.ExportPending {
		slog.InfoContext(ctx, "Snapshot already processed, skipping",
			"snapshot_id", snap.ID,
			"status", snap.ExportStatus)
		return nil
	}
	return w.exportSnapshot(ctx, snap)
}

// ProcessPending exports snapshots that are still queued. This is the
// backup mechanism in case AMQP messages are lost.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.PendingSnapshots(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending snapshots: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending snapshots", "count", len(pending))
	for _, snap := range pending {
		if err := w.exportSnapshot(ctx, snap); err != nil {
			slog.ErrorContext(ctx, "Failed to export snapshot",
				"snapshot_id", snap.ID,
				"error", err)
		}
	}
	return nil
}

// StartupCheck drains a larger backlog once at worker startup to
// recover from downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.store.PendingSnapshots(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending snapshots for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending snapshots found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending snapshots on startup, processing...",
		"count", len(pending))

	exported := 0
	failed := 0
	for _, snap := range pending {
		if err := w.exportSnapshot(ctx, snap); err != nil {
			slog.ErrorContext(ctx, "Failed to export snapshot during startup",
				"snapshot_id", snap.ID,
				"error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)
	return nil
}

// Run consumes the queue and sweeps for pending snapshots until the
// context is cancelled.
func (w *ExportWorker) Run(ctx context.Context, consumer Consumer, sweepInterval time.Duration) error {
	if sweepInterval <= 0 {
		sweepInterval = 30 * time.Second
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.ConsumeSnapshotExports(ctx, func(msg *amqp.SnapshotExportMessage) error {
			return w.HandleExportMessage(ctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.ProcessPending(ctx); err != nil {
					slog.ErrorContext(ctx, "Pending sweep failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}

func (w *ExportWorker) exportSnapshot(ctx context.Context, snap storage.Snapshot) error {
	ref, err := w.sink.Append(ctx, snap)
	if err != nil {
		if markErr := w.store.MarkExportError(ctx, snap.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error",
				"snapshot_id", snap.ID,
				"error", markErr)
		}
		if w.metrics != nil {
			w.metrics.SnapshotErrors.Inc()
		}
		return fmt.Errorf("append to sink: %w", err)
	}

	if err := w.store.MarkExported(ctx, snap.ID); err != nil {
		// The export itself succeeded; the sweep will retry the mark.
		slog.ErrorContext(ctx, "Failed to mark as exported",
			"snapshot_id", snap.ID,
			"error", err)
	}
	if w.metrics != nil {
		w.metrics.SnapshotsExported.Inc()
	}

	slog.InfoContext(ctx, "Snapshot exported",
		"snapshot_id", snap.ID,
		"month", snap.MonthLabel,
		"sink_ref", ref)
	return nil
}
