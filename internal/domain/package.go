package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrInvalidBRCode    = errors.New("invalid BR code")
	ErrDuplicatePackage = errors.New("package already in pallet")
	ErrPalletFull       = errors.New("pallet is full")
)

var brCodePattern = regexp.MustCompile(`^BR[A-Z0-9]{13}$`)

// Represents a single scanned package waiting on the pallet being built.
// BRCode is stored normalized (trimmed, uppercase). UserToken is empty
// when the operator is not authenticated.
type PackageRecord struct {
	BRCode    string    `json:"brCode"`
	Route     string    `json:"route"`
	Datetime  time.Time `json:"datetime"`
	UserToken *string   `json:"userToken"`
}

// NormalizeBRCode trims surrounding whitespace and uppercases the code.
func NormalizeBRCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ParseBRCode normalizes code and checks it against the BR + 13 alphanumerics format.
func ParseBRCode(code string) (string, error) {
	norm := NormalizeBRCode(code)
	if !brCodePattern.MatchString(norm) {
		return "", ErrInvalidBRCode
	}
	return norm, nil
}

// Strip the record down to the fields the hub needs for submission.
// ok is false when either field is missing after normalization.
func (p PackageRecord) QueueItem() (QueueItem, bool) {
	item := QueueItem{
		BRCode: NormalizeBRCode(p.BRCode),
		Route:  strings.TrimSpace(p.Route),
	}
	if item.BRCode == "" || item.Route == "" {
		return QueueItem{}, false
	}
	return item, true
}
