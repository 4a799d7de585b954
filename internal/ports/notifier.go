package ports

import (
	"context"
	"pallet-queue-service/internal/domain"
)

// Observer of local state changes and sync outcomes.
// Implementations must not block for long: CountsChanged runs on the
// debounce timer and Notify runs inside the drain loop.
type Notifier interface {
	CountsChanged(ctx context.Context, counts domain.Counts)
	Notify(ctx context.Context, ev domain.SyncEvent)
}
