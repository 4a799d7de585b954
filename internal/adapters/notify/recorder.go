package notify

import (
	"context"
	"pallet-queue-service/internal/domain"
	"sync"
)

// Recorder keeps every notification in memory. Used by tests and by the
// API to expose the last sync outcome.
type Recorder struct {
	mu     sync.Mutex
	counts []domain.Counts
	events []domain.SyncEvent
}

func (r *Recorder) CountsChanged(_ context.Context, c domain.Counts) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = append(r.counts, c)
}

func (r *Recorder) Notify(_ context.Context, ev domain.SyncEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) Counts() []domain.Counts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Counts(nil), r.counts...)
}

func (r *Recorder) Events() []domain.SyncEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.SyncEvent(nil), r.events...)
}

// LastEvent returns the most recent sync event, if any.
func (r *Recorder) LastEvent() (domain.SyncEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return domain.SyncEvent{}, false
	}
	return r.events[len(r.events)-1], true
}
