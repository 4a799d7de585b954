package services

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// Scheduler re-triggers the drain worker on a timer. After a failed pass the
// next attempt is delayed by a capped exponential backoff; any pass that does
// not fail resets it to the plain interval.
type Scheduler struct {
	drainer    *Drainer
	interval   time.Duration
	maxBackoff time.Duration
	log        logrus.FieldLogger

	// OnPass, when set, receives every report. Used by tests.
	OnPass func(DrainReport, time.Duration)
}

func NewScheduler(drainer *Drainer, interval, maxBackoff time.Duration, log logrus.FieldLogger) *Scheduler {
	if maxBackoff < interval {
		maxBackoff = interval
	}
	return &Scheduler{drainer: drainer, interval: interval, maxBackoff: maxBackoff, log: log}
}

// Run drains once immediately, then keeps draining until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	b := s.newBackOff()
	delay := time.Duration(0)

	for {
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}

		report := s.drainer.Drain(ctx)
		delay = s.next(report, b)
		if s.OnPass != nil {
			s.OnPass(report, delay)
		}
	}
}

func (s *Scheduler) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.interval
	b.MaxInterval = s.maxBackoff
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func (s *Scheduler) next(report DrainReport, b *backoff.ExponentialBackOff) time.Duration {
	if report.Stop != StopFailed {
		b.Reset()
		return s.interval
	}

	d := b.NextBackOff()
	if d == backoff.Stop || d > s.maxBackoff {
		d = s.maxBackoff
	}
	s.log.WithFields(logrus.Fields{
		"retry_in": d.String(),
		"reason":   report.Message,
	}).Warn("sync failed; backing off")
	return d
}
