package watch

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// OrderChange summarises how the visible list changed between two refreshes.
type OrderChange struct {
	// Added and Removed are names that appeared or disappeared.
	Added   []string
	Removed []string
	// Reordered is true when the surviving names changed relative order.
	Reordered bool
	// Unified is a unified diff of the two orderings, one name per line.
	Unified string
}

// Empty reports whether nothing changed.
func (c OrderChange) Empty() bool {
	return c.Unified == ""
}

// Summary returns a one-line description of the change.
func (c OrderChange) Summary() string {
	if c.Empty() {
		return "no changes"
	}

	var parts []string
	if len(c.Added) > 0 {
		parts = append(parts, fmt.Sprintf("+%d shown", len(c.Added)))
	}

	if len(c.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("-%d hidden", len(c.Removed)))
	}

	if c.Reordered {
		parts = append(parts, "reordered")
	}

	return strings.Join(parts, ", ")
}

// OrderDiff compares two visible orderings.
func OrderDiff(prev, curr []string) (OrderChange, error) {
	unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        lines(prev),
		B:        lines(curr),
		FromFile: "previous",
		ToFile:   "current",
		Context:  1,
	})
	if err != nil {
		return OrderChange{}, fmt.Errorf("computing order diff: %w", err)
	}

	prevSet := toSet(prev)
	currSet := toSet(curr)

	var change OrderChange

	change.Unified = unified

	for _, n := range curr {
		if !prevSet[n] {
			change.Added = append(change.Added, n)
		}
	}

	for _, n := range prev {
		if !currSet[n] {
			change.Removed = append(change.Removed, n)
		}
	}

	change.Reordered = !equalStrings(common(prev, currSet), common(curr, prevSet))

	return change, nil
}

// lines turns names into newline-terminated lines for difflib.
func lines(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n + "\n"
	}

	return out
}

func toSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}

	return m
}

// common keeps the names also present in other, preserving order.
func common(names []string, other map[string]bool) []string {
	var out []string

	for _, n := range names {
		if other[n] {
			out = append(out, n)
		}
	}

	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
