package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidSettings = errors.New("invalid station settings")

// Station settings held alongside the pallet data. The scan policy reads
// them before handing records to the assembler.
type StationSettings struct {
	MaxPackages int
	LetterRange string
	NumberRange string
}

func DefaultStationSettings() StationSettings {
	return StationSettings{MaxPackages: 15, LetterRange: "A-G", NumberRange: "1-40"}
}

// Validate checks the cap and parses both ranges.
func (s StationSettings) Validate() (RouteRange, error) {
	if s.MaxPackages <= 0 {
		return RouteRange{}, fmt.Errorf("%w: max packages must be positive, got %d", ErrInvalidSettings, s.MaxPackages)
	}
	rr, err := ParseRouteRange(s.LetterRange, s.NumberRange)
	if err != nil {
		return RouteRange{}, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return rr, nil
}
