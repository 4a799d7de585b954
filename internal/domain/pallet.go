package domain

import (
	"fmt"
	"strings"
)

// Pallet under construction: the ordered working set plus the operator-facing cap.
// The cap is a scan policy; the assembler's storage always appends what it is given.
type Pallet struct {
	Capacity int
	Packages []PackageRecord
}

func NewPallet(capacity int, packages []PackageRecord) *Pallet {
	return &Pallet{Capacity: capacity, Packages: packages}
}

// Contains matches brCode case-insensitively against the stored records.
func (p *Pallet) Contains(brCode string) bool {
	norm := NormalizeBRCode(brCode)
	if norm == "" {
		return false
	}
	for _, rec := range p.Packages {
		if strings.EqualFold(NormalizeBRCode(rec.BRCode), norm) {
			return true
		}
	}
	return false
}

func (p *Pallet) Full() bool {
	return p.Capacity > 0 && len(p.Packages) >= p.Capacity
}

// Admit checks whether rec may be loaded onto the pallet.
func (p *Pallet) Admit(rec PackageRecord) error {
	if p.Contains(rec.BRCode) {
		return fmt.Errorf("admit %s: %w", rec.BRCode, ErrDuplicatePackage)
	}
	if p.Full() {
		return fmt.Errorf("admit %s: %w (capacity=%d)", rec.BRCode, ErrPalletFull, p.Capacity)
	}
	return nil
}

// Batch normalizes every record into a QueueItem, dropping records missing a field.
func (p *Pallet) Batch() []QueueItem {
	items := make([]QueueItem, 0, len(p.Packages))
	for _, rec := range p.Packages {
		if item, ok := rec.QueueItem(); ok {
			items = append(items, item)
		}
	}
	return items
}
