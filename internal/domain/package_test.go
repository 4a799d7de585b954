package domain

import (
	"errors"
	"slices"
	"testing"
	"time"
)

func TestParseBRCode(t *testing.T) {
	got, err := ParseBRCode("  br12345abc90123 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "BR12345ABC90123" {
		t.Fatalf("code = %q", got)
	}

	for _, bad := range []string{"BR123", "XX1234567890123", "BR12345678901234", "BR-234567890123"} {
		if _, err := ParseBRCode(bad); !errors.Is(err, ErrInvalidBRCode) {
			t.Errorf("ParseBRCode(%q) err = %v, want ErrInvalidBRCode", bad, err)
		}
	}
}

func TestQueueEntryValid(t *testing.T) {
	valid := QueueEntry{Packages: []QueueItem{{BRCode: "BR1234567890123", Route: "B-7"}}}
	if !valid.Valid() {
		t.Fatalf("expected entry to be valid")
	}

	if (QueueEntry{}).Valid() {
		t.Fatalf("entry without packages must be invalid")
	}
	if (QueueEntry{Packages: []QueueItem{{BRCode: "BR1234567890123"}}}).Valid() {
		t.Fatalf("entry with a routeless package must be invalid")
	}
	if !(QueueEntry{Packages: []QueueItem{{BRCode: "BR1234567890123"}, {BRCode: "BR0000000000001", Route: "A-1"}}}).Valid() {
		t.Fatalf("entry with one deliverable package must be valid")
	}
}

func TestQueueEntryDeliverableDropsBlankPackages(t *testing.T) {
	e := QueueEntry{
		ID: "e1",
		Packages: []QueueItem{
			{BRCode: "BR0000000000001", Route: "A-1"},
			{BRCode: "BR0000000000002", Route: ""},
			{BRCode: " ", Route: "B-2"},
			{BRCode: "br0000000000003", Route: " C-3 "},
		},
	}

	out, dropped := e.Deliverable()

	want := []QueueItem{
		{BRCode: "BR0000000000001", Route: "A-1"},
		{BRCode: "BR0000000000003", Route: "C-3"},
	}
	if !slices.Equal(out.Packages, want) {
		t.Fatalf("Packages = %v, want %v", out.Packages, want)
	}
	if len(dropped) != 2 || dropped[0].BRCode != "BR0000000000002" {
		t.Fatalf("dropped = %v", dropped)
	}
	if out.ID != "e1" || len(e.Packages) != 4 {
		t.Fatalf("Deliverable must copy the entry, got %+v from %+v", out, e)
	}
}

func TestQueueEntrySame(t *testing.T) {
	at := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	items := []QueueItem{{BRCode: "BR0000000000001", Route: "A-1"}}

	if !(QueueEntry{ID: "a"}).Same(QueueEntry{ID: "a", CreatedAt: at}) {
		t.Fatalf("entries with the same id must match")
	}
	if (QueueEntry{ID: "a", Packages: items}).Same(QueueEntry{ID: "b", Packages: items}) {
		t.Fatalf("entries with different ids must not match")
	}
	if (QueueEntry{ID: "a", Packages: items}).Same(QueueEntry{Packages: items}) {
		t.Fatalf("an id-less entry must not match one with an id")
	}

	legacy := QueueEntry{Packages: items, CreatedAt: at}
	if !legacy.Same(QueueEntry{Packages: slices.Clone(items), CreatedAt: at}) {
		t.Fatalf("id-less entries with equal content must match")
	}
	if legacy.Same(QueueEntry{Packages: items, CreatedAt: at.Add(time.Second)}) {
		t.Fatalf("id-less entries created at different times must not match")
	}
}
