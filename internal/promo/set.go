package promo

import (
	"slices"
	"strings"
)

// mapCodeSet implements CodeSet using a map for O(1) lookups.
type mapCodeSet struct {
	codes map[string]struct{}
}

// NewCodeSet creates an empty code set.
func NewCodeSet(capacity int) CodeSet {
	return &mapCodeSet{
		codes: make(map[string]struct{}, capacity),
	}
}

// Normalize trims and upper-cases a code the way it is stored.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *mapCodeSet) Contains(code string) bool {
	_, exists := s.codes[Normalize(code)]
	return exists
}

func (s *mapCodeSet) Size() int {
	return len(s.codes)
}

func (s *mapCodeSet) Codes() []string {
	out := make([]string, 0, len(s.codes))
	for c := range s.codes {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Add inserts code; blank codes are ignored.
func (s *mapCodeSet) Add(code string) {
	if c := Normalize(code); c != "" {
		s.codes[c] = struct{}{}
	}
}

// merge adds every member of other.
func (s *mapCodeSet) merge(other CodeSet) {
	for _, c := range other.Codes() {
		s.codes[c] = struct{}{}
	}
}
