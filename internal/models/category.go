package models

import (
	"fmt"
	"strings"
)

// CategorySet is the configured, ordered set of report categories plus the
// category used when a submission names none of them.
type CategorySet struct {
	names    []string
	fallback string
}

// NewCategorySet builds a category set. Names are normalised to lower case
// and de-duplicated; the fallback must be one of them.
func NewCategorySet(names []string, fallback string) (CategorySet, error) {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		n = normalizeCategory(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	if len(out) == 0 {
		return CategorySet{}, fmt.Errorf("category set is empty")
	}
	fallback = normalizeCategory(fallback)
	if !seen[fallback] {
		return CategorySet{}, fmt.Errorf("fallback category %q is not in the category set", fallback)
	}
	return CategorySet{names: out, fallback: fallback}, nil
}

// Names returns a copy of the configured categories in order
func (s CategorySet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Fallback returns the catch-all category
func (s CategorySet) Fallback() string {
	return s.fallback
}

// Contains reports whether name (after normalisation) is a configured category
func (s CategorySet) Contains(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Lookup normalises name and returns it if it is a configured category
func (s CategorySet) Lookup(name string) (string, bool) {
	name = normalizeCategory(name)
	for _, n := range s.names {
		if n == name {
			return n, true
		}
	}
	return "", false
}

// Resolve picks the first candidate that is a configured category, falling
// back to the catch-all category when none match.
func (s CategorySet) Resolve(candidates ...string) string {
	for _, c := range candidates {
		if n, ok := s.Lookup(c); ok {
			return n
		}
	}
	return s.fallback
}

func normalizeCategory(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
