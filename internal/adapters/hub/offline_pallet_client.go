package hub

import (
	"context"
	"pallet-queue-service/internal/domain"
	"pallet-queue-service/internal/ports"
)

// OfflinePalletClient is used when no hub is configured. Every call fails,
// so queued pallets stay queued until a hub is set up.
type OfflinePalletClient struct{}

const offlineMessage = "hub not configured"

func (OfflinePalletClient) AllocatePallet(context.Context) (ports.SubmitResult, error) {
	return ports.SubmitResult{Outcome: ports.OutcomeFailure, Message: offlineMessage}, nil
}

func (OfflinePalletClient) SubmitPackages(_ context.Context, palletID int, _ domain.QueueEntry) (ports.SubmitResult, error) {
	return ports.SubmitResult{Outcome: ports.OutcomeFailure, PalletID: palletID, Message: offlineMessage}, nil
}

func (OfflinePalletClient) AppendPackages(_ context.Context, palletID int, _ domain.QueueEntry) (ports.SubmitResult, error) {
	return ports.SubmitResult{Outcome: ports.OutcomeFailure, PalletID: palletID, Message: offlineMessage}, nil
}
