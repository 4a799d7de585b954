package domain

// Counts is the snapshot shown to the operator: packages on the pallet being
// built and finalized pallets still waiting for hub confirmation.
type Counts struct {
	WorkingSet int `json:"workingSet"`
	Pending    int `json:"pending"`
}

type SyncEventType string

const (
	SyncEventSuccess SyncEventType = "success"
	SyncEventError   SyncEventType = "error"
)

// SyncEvent is emitted once per submission attempt outcome.
type SyncEvent struct {
	Type     SyncEventType `json:"type"`
	PalletID int           `json:"palletId,omitempty"`
	Count    int           `json:"count,omitempty"`
	EntryID  string        `json:"entryId,omitempty"`
	Message  string        `json:"message,omitempty"`
}
