package notify

import (
	"context"
	"pallet-queue-service/internal/domain"
	"pallet-queue-service/internal/ports"
)

// Multi fans every notification out to each sink in order.
type Multi []ports.Notifier

func (m Multi) CountsChanged(ctx context.Context, c domain.Counts) {
	for _, n := range m {
		n.CountsChanged(ctx, c)
	}
}

func (m Multi) Notify(ctx context.Context, ev domain.SyncEvent) {
	for _, n := range m {
		n.Notify(ctx, ev)
	}
}
