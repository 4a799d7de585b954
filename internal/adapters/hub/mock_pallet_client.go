package hub

import (
	"context"
	"pallet-queue-service/internal/domain"
	"pallet-queue-service/internal/ports"
	"sync"
)

type MockCall struct {
	Op       string // "allocate", "submit" or "append"
	PalletID int
	Entry    domain.QueueEntry
}

// MockPalletClient is a scriptable in-memory hub. Allocation hands out
// increasing ids from NextPalletID; submissions succeed unless a failure is set.
type MockPalletClient struct {
	mu        sync.Mutex
	calls     []MockCall
	nextID    int
	exhausted bool
	failErr   error
	failMsg   string
	// Hook, when set, runs before each call returns; tests use it to
	// observe or block in-flight calls.
	Hook func(call MockCall)
}

func NewMockPalletClient(firstPalletID int) *MockPalletClient {
	return &MockPalletClient{nextID: firstPalletID}
}

// SetExhausted makes AllocatePallet report that no pallet is free.
func (m *MockPalletClient) SetExhausted(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exhausted = v
}

// FailWithError makes every call return err (transport failure). nil clears it.
func (m *MockPalletClient) FailWithError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

// RejectWith makes submissions come back as a hub-reported failure. "" clears it.
func (m *MockPalletClient) RejectWith(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failMsg = msg
}

func (m *MockPalletClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

func (m *MockPalletClient) AllocatePallet(ctx context.Context) (ports.SubmitResult, error) {
	m.mu.Lock()
	call := MockCall{Op: "allocate"}
	m.calls = append(m.calls, call)
	var res ports.SubmitResult
	err := m.failErr
	switch {
	case err != nil:
		res = ports.SubmitResult{Outcome: ports.OutcomeFailure, Message: err.Error()}
	case m.exhausted:
		res = ports.SubmitResult{Outcome: ports.OutcomeExhausted}
	default:
		res = ports.SubmitResult{Outcome: ports.OutcomeSuccess, PalletID: m.nextID}
		m.nextID++
	}
	hook := m.Hook
	m.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	return res, err
}

func (m *MockPalletClient) SubmitPackages(ctx context.Context, palletID int, entry domain.QueueEntry) (ports.SubmitResult, error) {
	return m.submit(ctx, MockCall{Op: "submit", PalletID: palletID, Entry: entry})
}

func (m *MockPalletClient) AppendPackages(ctx context.Context, palletID int, entry domain.QueueEntry) (ports.SubmitResult, error) {
	return m.submit(ctx, MockCall{Op: "append", PalletID: palletID, Entry: entry})
}

func (m *MockPalletClient) submit(ctx context.Context, call MockCall) (ports.SubmitResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	err := m.failErr
	res := ports.SubmitResult{Outcome: ports.OutcomeSuccess, PalletID: call.PalletID}
	switch {
	case err != nil:
		res = ports.SubmitResult{Outcome: ports.OutcomeFailure, PalletID: call.PalletID, Message: err.Error()}
	case m.failMsg != "":
		res = ports.SubmitResult{Outcome: ports.OutcomeFailure, PalletID: call.PalletID, Message: m.failMsg}
	}
	hook := m.Hook
	m.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if err := ctx.Err(); err != nil {
		return ports.SubmitResult{Outcome: ports.OutcomeFailure, PalletID: call.PalletID, Message: err.Error()}, err
	}
	return res, err
}
