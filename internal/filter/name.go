package filter

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/reslist/internal/resource"
)

// Terms splits a free-text name query on whitespace and lower-cases each
// term. A blank query yields no terms.
func Terms(query string) []string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return nil
	}

	terms := make([]string, len(fields))
	for i, f := range fields {
		terms[i] = strings.ToLower(f)
	}

	return terms
}

// MatchesName reports whether name contains every term, ignoring case.
// Terms must already be lower-cased, as returned by [Terms].
func MatchesName(name string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}

	lower := strings.ToLower(name)

	for _, t := range terms {
		if !strings.Contains(lower, t) {
			return false
		}
	}

	return true
}

// NameFilter keeps resources whose name matches all terms of a query.
type NameFilter struct {
	query string
	terms []string
}

// NewNameFilter creates a filter from a free-text name query.
func NewNameFilter(query string) *NameFilter {
	return &NameFilter{query: query, terms: Terms(query)}
}

// Active reports whether the filter has any terms.
func (f *NameFilter) Active() bool { return len(f.terms) > 0 }

// Match reports whether r passes the filter. Nil resources never match.
func (f *NameFilter) Match(r *resource.Resource) bool {
	return r != nil && MatchesName(r.Name, f.terms)
}

// Apply keeps matching resources in input order.
func (f *NameFilter) Apply(_ context.Context, resources []*resource.Resource) (*Result, error) {
	r := NewResult()

	for _, res := range resources {
		if res == nil {
			continue
		}

		if f.Match(res) {
			r.Included = append(r.Included, res)
		} else {
			r.Excluded = append(r.Excluded, ExcludedResource{Resource: res, Reason: f.reason()})
		}
	}

	return r, nil
}

// Explain records every resource of candidates that is missing from kept,
// where kept is the output of an earlier match over candidates. Names are
// not matched again.
func (f *NameFilter) Explain(candidates, kept []*resource.Resource) []ExcludedResource {
	survivors := make(map[*resource.Resource]bool, len(kept))
	for _, r := range kept {
		survivors[r] = true
	}

	var excluded []ExcludedResource

	for _, res := range candidates {
		if res == nil || survivors[res] {
			continue
		}

		excluded = append(excluded, ExcludedResource{Resource: res, Reason: f.reason()})
	}

	return excluded
}

func (f *NameFilter) reason() string {
	return fmt.Sprintf("name does not match %q", strings.TrimSpace(f.query))
}
