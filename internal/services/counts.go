package services

import (
	"context"
	"pallet-queue-service/internal/domain"
	"pallet-queue-service/internal/ports"
	"time"

	"github.com/sirupsen/logrus"
)

// Counter publishes the debounced "counts changed" signal.
type Counter struct {
	repo     ports.PalletRepository
	notifier ports.Notifier
	log      logrus.FieldLogger
	debounce *Debouncer
}

func NewCounter(repo ports.PalletRepository, notifier ports.Notifier, delay time.Duration, log logrus.FieldLogger) *Counter {
	c := &Counter{repo: repo, notifier: notifier, log: log}
	c.debounce = NewDebouncer(delay, func() {
		ctx := context.Background()
		c.notifier.CountsChanged(ctx, c.Counts(ctx))
	})
	return c
}

// Changed schedules a notification; bursts collapse into one.
func (c *Counter) Changed() {
	if c == nil {
		return
	}
	c.debounce.Schedule()
}

// Counts reads both collections. Read failures count as empty and are logged.
func (c *Counter) Counts(ctx context.Context) domain.Counts {
	var out domain.Counts

	recs, err := c.repo.WorkingSet(ctx)
	if err != nil {
		c.log.WithError(err).Warn("count working set")
	}
	out.WorkingSet = len(recs)

	entries, err := c.repo.SendQueue(ctx)
	if err != nil {
		c.log.WithError(err).Warn("count send queue")
	}
	out.Pending = len(entries)

	return out
}

// Flush delivers a pending notification immediately.
func (c *Counter) Flush() { c.debounce.Flush() }

// Stop drops pending notifications.
func (c *Counter) Stop() { c.debounce.Stop() }
