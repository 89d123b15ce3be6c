// Package sheets defines the outbound port for snapshot export sinks.
package sheets

import (
	"context"

	"github.com/elishgi/moneyPlusMinus/internal/storage"
)

// SnapshotAppender appends one totals snapshot to an external sink and
// returns a sink-specific row reference.
type SnapshotAppender interface {
	Append(ctx context.Context, s storage.Snapshot) (rowRef string, err error)
}
