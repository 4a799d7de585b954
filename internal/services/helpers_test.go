package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"pallet-queue-service/internal/adapters/hub"
	"pallet-queue-service/internal/adapters/notify"
	"pallet-queue-service/internal/adapters/repositories"
	"pallet-queue-service/internal/adapters/storage"
	"pallet-queue-service/internal/domain"
	"pallet-queue-service/internal/platform/obs"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

type harness struct {
	kv      *faultyStore
	repo    *repositories.JSONPalletRepository
	hub     *hub.MockPalletClient
	events  *notify.Recorder
	counter *Counter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	kv := &faultyStore{MemoryKVStore: storage.NewMemoryKVStore()}
	repo := repositories.NewJSONPalletRepository(kv, obs.Discard())
	events := &notify.Recorder{}
	counter := NewCounter(repo, events, 5*time.Millisecond, obs.Discard())
	t.Cleanup(counter.Stop)

	return &harness{
		kv:      kv,
		repo:    repo,
		hub:     hub.NewMockPalletClient(100),
		events:  events,
		counter: counter,
	}
}

func (h *harness) drainer(callTimeout time.Duration) *Drainer {
	return NewDrainer(h.repo, h.hub, h.events, h.counter, callTimeout, obs.Discard())
}

func (h *harness) push(t *testing.T, entries ...domain.QueueEntry) {
	t.Helper()
	for _, e := range entries {
		require.NoError(t, h.repo.PushEntry(context.Background(), e))
	}
}

func (h *harness) queue(t *testing.T) []domain.QueueEntry {
	t.Helper()
	entries, err := h.repo.SendQueue(context.Background())
	require.NoError(t, err)
	return entries
}

func (h *harness) workingSet(t *testing.T) []domain.PackageRecord {
	t.Helper()
	recs, err := h.repo.WorkingSet(context.Background())
	require.NoError(t, err)
	return recs
}

func brCode(n int) string {
	return fmt.Sprintf("BR%013d", n)
}

func record(code, route string) domain.PackageRecord {
	return domain.PackageRecord{BRCode: code, Route: route, Datetime: fixedNow}
}

func entry(id string, codes ...string) domain.QueueEntry {
	items := make([]domain.QueueItem, 0, len(codes))
	for _, c := range codes {
		items = append(items, domain.QueueItem{BRCode: c, Route: "A-1"})
	}
	return domain.QueueEntry{ID: id, Packages: items, CreatedAt: fixedNow}
}

// submitted returns the entry ids the hub received through submit or append.
func submitted(calls []hub.MockCall) []string {
	var ids []string
	for _, c := range calls {
		if c.Op == "submit" || c.Op == "append" {
			ids = append(ids, c.Entry.ID)
		}
	}
	return ids
}

// faultyStore fails Put or Delete for selected keys.
type faultyStore struct {
	*storage.MemoryKVStore

	mu        sync.Mutex
	putErr    map[string]error
	deleteErr map[string]error
}

func (s *faultyStore) FailPut(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr == nil {
		s.putErr = map[string]error{}
	}
	s.putErr[key] = err
}

func (s *faultyStore) FailDelete(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr == nil {
		s.deleteErr = map[string]error{}
	}
	s.deleteErr[key] = err
}

func (s *faultyStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	err := s.putErr[key]
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.MemoryKVStore.Put(ctx, key, value)
}

func (s *faultyStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	err := s.deleteErr[key]
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.MemoryKVStore.Delete(ctx, key)
}
