package ports

import (
	"context"
	"pallet-queue-service/internal/domain"
)

// Outcome classifies a hub answer so the drain worker can branch on it.
type Outcome int

const (
	// The hub accepted the request.
	OutcomeSuccess Outcome = iota
	// The request failed (transport error, timeout, non-2xx, ok:false or an error field).
	// Safe to retry on the next trigger.
	OutcomeFailure
	// No pallet is available for allocation right now. Expected, not an error.
	OutcomeExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Result of a single hub call.
type SubmitResult struct {
	Outcome  Outcome
	PalletID int
	Message  string
}

// Contract for the remote hub that receives pallets.
// The hub must tolerate replays of the same package set: a lost success
// response is retried exactly like a failure.
type PalletClient interface {
	// Return the next available pallet id, or OutcomeExhausted when none is free.
	AllocatePallet(ctx context.Context) (SubmitResult, error)
	// Create/fill palletID with the batch.
	SubmitPackages(ctx context.Context, palletID int, entry domain.QueueEntry) (SubmitResult, error)
	// Append the batch to a pallet that already exists.
	AppendPackages(ctx context.Context, palletID int, entry domain.QueueEntry) (SubmitResult, error)
}
