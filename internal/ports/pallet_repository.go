package ports

import (
	"context"
	"pallet-queue-service/internal/domain"
)

// Port: the working set (pallet being built) persisted in the local store.
type WorkingSetRepository interface {
	// Return the working set in scan order. An empty slice means nothing stored yet.
	WorkingSet(ctx context.Context) ([]domain.PackageRecord, error)
	// Append a record to the working set and persist it.
	AppendPackage(ctx context.Context, rec domain.PackageRecord) error
	// Append rec only if admit accepts the stored records; the check and the
	// write are atomic with respect to every other mutation.
	AppendPackageIf(ctx context.Context, rec domain.PackageRecord, admit func([]domain.PackageRecord) error) error
	// Remove the record with the given (normalized) code; reports whether one was removed.
	RemovePackage(ctx context.Context, brCode string) (bool, error)
	// Remove the persisted working set entirely.
	ClearWorkingSet(ctx context.Context) error
}

// Port: the durable FIFO of finalized pallets awaiting hub confirmation.
type SendQueueRepository interface {
	// Return all pending entries, head first.
	SendQueue(ctx context.Context) ([]domain.QueueEntry, error)
	// Return the head entry; ok is false when the queue is empty.
	Head(ctx context.Context) (entry domain.QueueEntry, ok bool, err error)
	// Append an entry at the tail and persist it.
	PushEntry(ctx context.Context, entry domain.QueueEntry) error
	// Remove the head if it is still entry and persist the remainder.
	// removed is false when the head has changed since it was read.
	PopHead(ctx context.Context, entry domain.QueueEntry) (removed bool, err error)
}

// Port: station settings stored beside the pallet data.
type SettingsRepository interface {
	// Return persisted settings, falling back to defaults per missing key.
	Settings(ctx context.Context, defaults domain.StationSettings) (domain.StationSettings, error)
	SaveSettings(ctx context.Context, s domain.StationSettings) error
}

type PalletRepository interface {
	WorkingSetRepository
	SendQueueRepository
	SettingsRepository
}
