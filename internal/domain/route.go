package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidRoute    = errors.New("invalid route")
	ErrRouteOutOfRange = errors.New("route out of hub range")
	ErrInvalidRange    = errors.New("invalid range")
)

var routePattern = regexp.MustCompile(`^([A-Z])-(\d{1,3})$`)

// Route is a letter-dash-number sorting destination such as "B-7".
type Route struct {
	Letter byte
	Number int
}

func (r Route) String() string {
	return fmt.Sprintf("%c-%d", r.Letter, r.Number)
}

// ParseRoute accepts "b-7", "B-07" or " B-7 " and returns the canonical route.
func ParseRoute(s string) (Route, error) {
	m := routePattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return Route{}, fmt.Errorf("%w: %q", ErrInvalidRoute, s)
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n <= 0 {
		return Route{}, fmt.Errorf("%w: %q", ErrInvalidRoute, s)
	}
	return Route{Letter: m[1][0], Number: n}, nil
}

// RouteRange is the HUB-configured window of valid routes, e.g. letters "A-G"
// and numbers "1-40". Both bounds are inclusive.
type RouteRange struct {
	FirstLetter byte
	LastLetter  byte
	MinNumber   int
	MaxNumber   int
}

// ParseRouteRange builds a RouteRange from the "A-G" and "1-40" settings strings.
func ParseRouteRange(letters, numbers string) (RouteRange, error) {
	lo, hi, ok := strings.Cut(strings.ToUpper(strings.TrimSpace(letters)), "-")
	lo, hi = strings.TrimSpace(lo), strings.TrimSpace(hi)
	if !ok || len(lo) != 1 || len(hi) != 1 || lo[0] < 'A' || hi[0] > 'Z' || lo[0] > hi[0] {
		return RouteRange{}, fmt.Errorf("%w: letter range %q", ErrInvalidRange, letters)
	}

	nlo, nhi, ok := strings.Cut(strings.TrimSpace(numbers), "-")
	if !ok {
		return RouteRange{}, fmt.Errorf("%w: number range %q", ErrInvalidRange, numbers)
	}
	min, err := strconv.Atoi(strings.TrimSpace(nlo))
	if err != nil {
		return RouteRange{}, fmt.Errorf("%w: number range %q", ErrInvalidRange, numbers)
	}
	max, err := strconv.Atoi(strings.TrimSpace(nhi))
	if err != nil || min <= 0 || min > max {
		return RouteRange{}, fmt.Errorf("%w: number range %q", ErrInvalidRange, numbers)
	}

	return RouteRange{FirstLetter: lo[0], LastLetter: hi[0], MinNumber: min, MaxNumber: max}, nil
}

func (rr RouteRange) Contains(r Route) bool {
	return r.Letter >= rr.FirstLetter && r.Letter <= rr.LastLetter &&
		r.Number >= rr.MinNumber && r.Number <= rr.MaxNumber
}

// Letters and Numbers render the range back into its settings form.
func (rr RouteRange) Letters() string {
	return fmt.Sprintf("%c-%c", rr.FirstLetter, rr.LastLetter)
}

func (rr RouteRange) Numbers() string {
	return fmt.Sprintf("%d-%d", rr.MinNumber, rr.MaxNumber)
}
