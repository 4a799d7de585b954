package domain

import (
	"slices"
	"time"
)

// ModeExisting tags an entry that appends to a pallet the hub already knows.
const ModeExisting = "existing"

// A package as the hub receives it: timestamps and tokens are dropped.
type QueueItem struct {
	BRCode string `json:"brCode"`
	Route  string `json:"route"`
}

func (q QueueItem) normalized() (QueueItem, bool) {
	return PackageRecord{BRCode: q.BRCode, Route: q.Route}.QueueItem()
}

// Represents one finalized pallet submission that the hub has not confirmed yet.
// TargetPallet 0 means "allocate a new pallet"; a positive value appends to that pallet.
type QueueEntry struct {
	ID           string      `json:"id,omitempty"`
	Packages     []QueueItem `json:"packages"`
	CreatedAt    time.Time   `json:"createdAt"`
	TargetPallet int         `json:"targetPallet"`
	Mode         string      `json:"mode"`
}

// Valid reports whether the entry has at least one package the hub can
// take. Entries failing this check are corrupt and are discarded by the
// drain worker.
func (e QueueEntry) Valid() bool {
	for _, p := range e.Packages {
		if _, ok := p.normalized(); ok {
			return true
		}
	}
	return false
}

// Deliverable returns a copy of the entry holding only the packages with both
// fields set, plus the packages it left out.
func (e QueueEntry) Deliverable() (QueueEntry, []QueueItem) {
	out := e
	out.Packages = make([]QueueItem, 0, len(e.Packages))
	var dropped []QueueItem
	for _, p := range e.Packages {
		item, ok := p.normalized()
		if !ok {
			dropped = append(dropped, p)
			continue
		}
		out.Packages = append(out.Packages, item)
	}
	return out, dropped
}

// Same reports whether o is the same queued submission as e. Entries carry
// an id since they were first written with one; older ones are compared by
// content.
func (e QueueEntry) Same(o QueueEntry) bool {
	if e.ID != "" || o.ID != "" {
		return e.ID == o.ID
	}
	return e.CreatedAt.Equal(o.CreatedAt) &&
		e.TargetPallet == o.TargetPallet &&
		e.Mode == o.Mode &&
		slices.Equal(e.Packages, o.Packages)
}

// Appends reports whether the entry targets an existing pallet.
func (e QueueEntry) Appends() bool {
	return e.TargetPallet > 0
}
