package services

import (
	"context"
	"fmt"
	"pallet-queue-service/internal/domain"
	"pallet-queue-service/internal/ports"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EnqueueOptions selects the destination of a finalized pallet.
type EnqueueOptions struct {
	TargetPallet int    // > 0 appends to that pallet and forces mode "existing"
	Mode         string // used only when TargetPallet is not positive
}

// SubmissionQueue moves the working set into the send queue.
type SubmissionQueue struct {
	repo    ports.PalletRepository
	counter *Counter
	trigger func()
	now     func() time.Time
	log     logrus.FieldLogger
}

// NewSubmissionQueue wires the enqueue path. trigger starts a drain pass
// without waiting for it; nil disables triggering.
func NewSubmissionQueue(repo ports.PalletRepository, counter *Counter, trigger func(), log logrus.FieldLogger) *SubmissionQueue {
	return &SubmissionQueue{
		repo:    repo,
		counter: counter,
		trigger: trigger,
		now:     time.Now,
		log:     log,
	}
}

// EnqueueWorkingSet finalizes the pallet being built.
//
// ok is false when there was nothing to enqueue. The entry is committed to the
// send queue before the working set is cleared: a failure in between leaves the
// packages in both places rather than in neither. Storage errors are returned.
func (q *SubmissionQueue) EnqueueWorkingSet(ctx context.Context, opts EnqueueOptions) (domain.QueueEntry, bool, error) {
	recs, err := q.repo.WorkingSet(ctx)
	if err != nil {
		return domain.QueueEntry{}, false, fmt.Errorf("enqueue working set: %w", err)
	}
	if len(recs) == 0 {
		return domain.QueueEntry{}, false, nil
	}

	batch := domain.NewPallet(0, recs).Batch()
	if len(batch) == 0 {
		return domain.QueueEntry{}, false, nil
	}

	entry := domain.QueueEntry{
		ID:        uuid.NewString(),
		Packages:  batch,
		CreatedAt: q.now().UTC(),
		Mode:      opts.Mode,
	}
	if opts.TargetPallet > 0 {
		entry.TargetPallet = opts.TargetPallet
		entry.Mode = domain.ModeExisting
	}

	if err := q.repo.PushEntry(ctx, entry); err != nil {
		return domain.QueueEntry{}, false, fmt.Errorf("enqueue working set: %w", err)
	}
	q.counter.Changed()

	if err := q.repo.ClearWorkingSet(ctx); err != nil {
		q.log.WithError(err).WithField("entry_id", entry.ID).Error("entry queued but working set not cleared")
		q.kick()
		return entry, true, fmt.Errorf("enqueue working set: entry %s queued, clear working set: %w", entry.ID, err)
	}

	q.log.WithFields(logrus.Fields{
		"entry_id":      entry.ID,
		"count":         len(entry.Packages),
		"target_pallet": entry.TargetPallet,
	}).Info("pallet queued for sync")

	q.kick()
	return entry, true, nil
}

// Pending lists the send queue, head first.
func (q *SubmissionQueue) Pending(ctx context.Context) ([]domain.QueueEntry, error) {
	entries, err := q.repo.SendQueue(ctx)
	if err != nil {
		return nil, fmt.Errorf("pending entries: %w", err)
	}
	return entries, nil
}

func (q *SubmissionQueue) kick() {
	if q.trigger != nil {
		q.trigger()
	}
}
