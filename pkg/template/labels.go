package template

import (
	"sort"
	"strings"
)

// LabelSet is a set of scheduling label atoms
type LabelSet map[string]struct{}

// ParseLabels tokenizes a label expression on whitespace runs. Duplicates
// collapse. An empty or blank expression yields an empty, non-nil set.
func ParseLabels(expr string) LabelSet {
	set := make(LabelSet)
	for _, atom := range strings.Fields(expr) {
		set[atom] = struct{}{}
	}
	return set
}

// Has reports whether the set contains label
func (s LabelSet) Has(label string) bool {
	_, ok := s[label]
	return ok
}

// Len returns the number of labels
func (s LabelSet) Len() int {
	return len(s)
}

// Sorted returns the labels in lexical order
func (s LabelSet) Sorted() []string {
	labels := make([]string, 0, len(s))
	for label := range s {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Matches reports whether every label in required is present in s.
// An empty requirement matches any set, including an empty one; whether
// that makes a template a catch-all is left to the scheduler.
func (s LabelSet) Matches(required LabelSet) bool {
	for label := range required {
		if !s.Has(label) {
			return false
		}
	}
	return true
}

func (s LabelSet) String() string {
	return strings.Join(s.Sorted(), " ")
}
