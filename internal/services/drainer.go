package services

import (
	"context"
	"fmt"
	"pallet-queue-service/internal/domain"
	"pallet-queue-service/internal/platform/obs"
	"pallet-queue-service/internal/ports"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// StopReason tells why a drain pass ended.
type StopReason string

const (
	StopEmpty     StopReason = "empty"     // queue drained
	StopExhausted StopReason = "exhausted" // hub has no pallet free
	StopFailed    StopReason = "failed"    // head entry could not be delivered
	StopCanceled  StopReason = "canceled"
	StopBusy      StopReason = "busy" // another pass was already running
)

// DrainReport summarizes one drain pass.
type DrainReport struct {
	Submitted int        `json:"submitted"`
	Discarded int        `json:"discarded"`
	Stop      StopReason `json:"stop"`
	Message   string     `json:"message,omitempty"`
}

// Drainer is the queue drain worker. At most one pass runs at a time; a
// trigger arriving while a pass is running is dropped. With a shared lock
// set, that holds across every process draining the same store.
//
// Each iteration re-reads the head from the repository, so entries pushed
// while a pass is running are picked up by that same pass.
type Drainer struct {
	repo        ports.SendQueueRepository
	client      ports.PalletClient
	notifier    ports.Notifier
	counter     *Counter
	callTimeout time.Duration
	lock        ports.Locker
	log         logrus.FieldLogger

	processing atomic.Bool
	wg         sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

func NewDrainer(
	repo ports.SendQueueRepository,
	client ports.PalletClient,
	notifier ports.Notifier,
	counter *Counter,
	callTimeout time.Duration,
	log logrus.FieldLogger,
) *Drainer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Drainer{
		repo:        repo,
		client:      client,
		notifier:    notifier,
		counter:     counter,
		callTimeout: callTimeout,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Trigger starts a drain pass in the background. The returned channel
// yields the report once the pass ends; callers may ignore it.
func (d *Drainer) Trigger() <-chan DrainReport {
	out := make(chan DrainReport, 1)
	if !d.processing.CompareAndSwap(false, true) {
		out <- DrainReport{Stop: StopBusy}
		close(out)
		return out
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.processing.Store(false)
		out <- d.exclusive(d.ctx)
		close(out)
	}()
	return out
}

// Drain runs a pass on the calling goroutine.
func (d *Drainer) Drain(ctx context.Context) DrainReport {
	if !d.processing.CompareAndSwap(false, true) {
		return DrainReport{Stop: StopBusy}
	}
	defer d.processing.Store(false)
	return d.exclusive(ctx)
}

// SetLock makes passes also take l, so only one process drains a shared store.
func (d *Drainer) SetLock(l ports.Locker) { d.lock = l }

// Busy reports whether a pass is in flight.
func (d *Drainer) Busy() bool { return d.processing.Load() }

// Wait blocks until background passes started by Trigger have finished.
func (d *Drainer) Wait() { d.wg.Wait() }

// Close cancels background passes and waits for them.
func (d *Drainer) Close() {
	d.cancel()
	d.wg.Wait()
}

// exclusive runs a pass while holding the shared drain lock.
func (d *Drainer) exclusive(ctx context.Context) DrainReport {
	if d.lock == nil {
		return d.drain(ctx)
	}

	ok, err := d.lock.TryLock(ctx)
	if err != nil {
		d.log.WithError(err).Warn("drain: take drain lock")
		return DrainReport{Stop: StopFailed, Message: err.Error()}
	}
	if !ok {
		d.log.Debug("drain: another process is draining")
		return DrainReport{Stop: StopBusy, Message: "drain running in another process"}
	}
	defer func() {
		if err := d.lock.Unlock(context.WithoutCancel(ctx)); err != nil {
			d.log.WithError(err).Warn("drain: release drain lock")
		}
	}()
	return d.drain(ctx)
}

func (d *Drainer) drain(ctx context.Context) (report DrainReport) {
	log := d.log.WithField("req_id", obs.RequestID(ctx))
	defer func() {
		log.WithFields(logrus.Fields{
			"submitted": report.Submitted,
			"discarded": report.Discarded,
			"stop":      report.Stop,
		}).Debug("drain pass finished")
	}()

	for {
		if err := ctx.Err(); err != nil {
			report.Stop, report.Message = StopCanceled, err.Error()
			return report
		}

		entry, ok, err := d.repo.Head(ctx)
		if err != nil {
			log.WithError(err).Warn("drain: read send queue")
			report.Stop, report.Message = StopFailed, err.Error()
			return report
		}
		if !ok {
			report.Stop = StopEmpty
			return report
		}

		if !entry.Valid() {
			removed, err := d.repo.PopHead(ctx, entry)
			if err != nil {
				log.WithError(err).Error("drain: discard malformed entry")
				report.Stop, report.Message = StopFailed, err.Error()
				return report
			}
			if removed {
				log.WithFields(logrus.Fields{
					"entry_id":   entry.ID,
					"created_at": entry.CreatedAt,
					"count":      len(entry.Packages),
				}).Warn("drain: discarded malformed queue entry")
				report.Discarded++
				d.counter.Changed()
			}
			continue
		}

		batch, dropped := entry.Deliverable()
		elog := log.WithFields(logrus.Fields{"entry_id": entry.ID, "count": len(batch.Packages)})
		if len(dropped) > 0 {
			elog.WithField("dropped", dropped).Warn("drain: skipping packages with a blank code or route")
		}

		res := d.deliver(ctx, batch)

		switch res.Outcome {
		case ports.OutcomeSuccess:
			removed, err := d.repo.PopHead(ctx, entry)
			if err != nil {
				// The hub has the batch; the next pass resubmits it.
				elog.WithError(err).Error("drain: remove delivered entry")
				report.Stop, report.Message = StopFailed, err.Error()
				return report
			}
			if !removed {
				elog.Info("drain: entry already removed by another worker")
				continue
			}
			elog.WithField("pallet_id", res.PalletID).Debug("drain: entry delivered")
			d.notifier.Notify(ctx, domain.SyncEvent{
				Type:     domain.SyncEventSuccess,
				PalletID: res.PalletID,
				Count:    len(batch.Packages),
				EntryID:  entry.ID,
			})
			report.Submitted++
			d.counter.Changed()

		case ports.OutcomeExhausted:
			elog.Info("drain: no pallet available, pausing")
			report.Stop = StopExhausted
			return report

		default:
			if err := ctx.Err(); err != nil {
				report.Stop, report.Message = StopCanceled, err.Error()
				return report
			}
			elog.WithField("reason", res.Message).Warn("drain: submission failed, entry kept at head")
			d.notifier.Notify(ctx, domain.SyncEvent{
				Type:     domain.SyncEventError,
				PalletID: res.PalletID,
				EntryID:  entry.ID,
				Message:  res.Message,
			})
			report.Stop, report.Message = StopFailed, res.Message
			return report
		}
	}
}

// deliver resolves the destination pallet and submits the batch.
func (d *Drainer) deliver(ctx context.Context, entry domain.QueueEntry) ports.SubmitResult {
	if entry.Appends() {
		res := d.call(ctx, "hub.append", func(ctx context.Context) (ports.SubmitResult, error) {
			return d.client.AppendPackages(ctx, entry.TargetPallet, entry)
		})
		res.PalletID = entry.TargetPallet
		return res
	}

	alloc := d.call(ctx, "hub.allocate", d.client.AllocatePallet)
	if alloc.Outcome != ports.OutcomeSuccess {
		return alloc
	}
	res := d.call(ctx, "hub.submit", func(ctx context.Context) (ports.SubmitResult, error) {
		return d.client.SubmitPackages(ctx, alloc.PalletID, entry)
	})
	res.PalletID = alloc.PalletID
	return res
}

// call runs one remote operation under the per-call timeout. Errors and
// panics become OutcomeFailure.
func (d *Drainer) call(ctx context.Context, op string, fn func(context.Context) (ports.SubmitResult, error)) (res ports.SubmitResult) {
	if d.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.callTimeout)
		defer cancel()
	}

	var err error
	defer obs.Time(ctx, d.log, op)(&err)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", op, r)
			res = ports.SubmitResult{Outcome: ports.OutcomeFailure, Message: err.Error()}
		}
	}()

	res, err = fn(ctx)
	if err != nil {
		msg := res.Message
		if msg == "" {
			msg = err.Error()
		}
		res = ports.SubmitResult{Outcome: ports.OutcomeFailure, PalletID: res.PalletID, Message: msg}
	}
	return res
}
