package template

import "strings"

// ParseList splits s on single spaces and drops empty tokens, keeping order.
// Runs of spaces therefore never produce empty entries.
func ParseList(s string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(s, " ") {
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// JoinList is the inverse of ParseList modulo collapsed space runs.
func JoinList(items []string) string {
	return strings.Join(items, " ")
}
