package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"pallet-queue-service/internal/adapters/repositories"
	"pallet-queue-service/internal/domain"
	"pallet-queue-service/internal/platform/obs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueue(h *harness) *SubmissionQueue {
	q := NewSubmissionQueue(h.repo, h.counter, nil, obs.Discard())
	q.now = func() time.Time { return fixedNow }
	return q
}

func TestEnqueueWorkingSetMovesPackages(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.repo.AppendPackage(ctx, record(" br0000000000001 ", "A-1")))
	require.NoError(t, h.repo.AppendPackage(ctx, record(brCode(2), " B-7 ")))
	require.NoError(t, h.repo.AppendPackage(ctx, record(brCode(3), "C-12")))

	got, ok, err := newQueue(h).EnqueueWorkingSet(ctx, EnqueueOptions{})
	require.NoError(t, err)
	require.True(t, ok)

	want := []domain.QueueItem{
		{BRCode: brCode(1), Route: "A-1"},
		{BRCode: brCode(2), Route: "B-7"},
		{BRCode: brCode(3), Route: "C-12"},
	}
	assert.Equal(t, want, got.Packages)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, fixedNow, got.CreatedAt)
	assert.Equal(t, 0, got.TargetPallet)

	queue := h.queue(t)
	require.Len(t, queue, 1)
	assert.Equal(t, want, queue[0].Packages)
	assert.Equal(t, got.ID, queue[0].ID)
	assert.Empty(t, h.workingSet(t))
}

func TestEnqueueEmptyWorkingSetIsNoop(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.push(t, entry("e1", brCode(1)))

	_, ok, err := newQueue(h).EnqueueWorkingSet(ctx, EnqueueOptions{TargetPallet: 5})
	require.NoError(t, err)
	assert.False(t, ok)

	queue := h.queue(t)
	require.Len(t, queue, 1)
	assert.Equal(t, "e1", queue[0].ID)
	assert.Empty(t, h.workingSet(t))
}

func TestEnqueueTargetPalletForcesExistingMode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.repo.AppendPackage(ctx, record(brCode(1), "A-1")))

	got, ok, err := newQueue(h).EnqueueWorkingSet(ctx, EnqueueOptions{TargetPallet: 42, Mode: "new"})
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 42, got.TargetPallet)
	assert.Equal(t, domain.ModeExisting, got.Mode)
	assert.True(t, got.Appends())

	queue := h.queue(t)
	require.Len(t, queue, 1)
	assert.Equal(t, 42, queue[0].TargetPallet)
	assert.Equal(t, domain.ModeExisting, queue[0].Mode)
}

func TestEnqueueWithoutTargetKeepsMode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.repo.AppendPackage(ctx, record(brCode(1), "A-1")))

	got, _, err := newQueue(h).EnqueueWorkingSet(ctx, EnqueueOptions{TargetPallet: -3, Mode: "new"})
	require.NoError(t, err)
	assert.Equal(t, 0, got.TargetPallet)
	assert.Equal(t, "new", got.Mode)
}

func TestEnqueueKeepsEntryWhenClearFails(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.repo.AppendPackage(ctx, record(brCode(1), "A-1")))
	h.kv.FailDelete(repositories.KeyWorkingSet, errors.New("disk full"))

	got, ok, err := newQueue(h).EnqueueWorkingSet(ctx, EnqueueOptions{})
	require.Error(t, err)
	assert.True(t, ok)
	assert.Contains(t, err.Error(), "disk full")

	// Packages may show up twice; they are never lost.
	queue := h.queue(t)
	require.Len(t, queue, 1)
	assert.Equal(t, got.ID, queue[0].ID)
	assert.Len(t, h.workingSet(t), 1)
}

func TestEnqueuePushFailureLeavesWorkingSet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.repo.AppendPackage(ctx, record(brCode(1), "A-1")))
	h.kv.FailPut(repositories.KeySendQueue, errors.New("quota exceeded"))

	_, ok, err := newQueue(h).EnqueueWorkingSet(ctx, EnqueueOptions{})
	require.Error(t, err)
	assert.False(t, ok)

	assert.Empty(t, h.queue(t))
	assert.Len(t, h.workingSet(t), 1)
}

func TestEnqueueTriggersDrain(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	st := NewStation(h.repo, h.hub, h.events, StationOptions{
		Defaults:    domain.DefaultStationSettings(),
		Debounce:    time.Millisecond,
		CallTimeout: time.Second,
	}, obs.Discard())
	t.Cleanup(st.Close)

	_, err := st.Scanner.Scan(ctx, brCode(1), "A-1")
	require.NoError(t, err)
	_, err = st.Scanner.Scan(ctx, brCode(2), "B-2")
	require.NoError(t, err)

	got, ok, err := st.Queue.EnqueueWorkingSet(ctx, EnqueueOptions{})
	require.NoError(t, err)
	require.True(t, ok)

	st.Drainer.Wait()

	assert.Empty(t, h.queue(t))
	assert.Equal(t, []string{got.ID}, submitted(h.hub.Calls()))

	ev, ok := h.events.LastEvent()
	require.True(t, ok)
	assert.Equal(t, domain.SyncEventSuccess, ev.Type)
	assert.Equal(t, 100, ev.PalletID)
	assert.Equal(t, 2, ev.Count)
}
