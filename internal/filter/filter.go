package filter

import (
	"context"

	"github.com/hupe1980/reslist/internal/resource"
)

// Filter is the interface for all resource filters.
// Filters are stateless: they receive a set of resources and return
// a result without modifying shared state.
type Filter interface {
	// Apply runs the filter on the given resources and returns a result.
	// Included resources keep their input order.
	Apply(ctx context.Context, resources []*resource.Resource) (*Result, error)
}

// ExcludedResource records a resource that was removed by a filter.
type ExcludedResource struct {
	// Resource is the excluded resource.
	Resource *resource.Resource
	// Reason is a human-readable explanation for the exclusion.
	Reason string
}

// Result holds the outcome of a filter application.
type Result struct {
	// Included are the resources that passed the filter. Never nil.
	Included []*resource.Resource
	// Excluded are the resources removed by the filter.
	Excluded []ExcludedResource
}

// NewResult creates an empty Result.
func NewResult() *Result {
	return &Result{Included: []*resource.Resource{}}
}

// Chain applies multiple filters sequentially, passing the included
// resources from each filter as input to the next.
type Chain struct {
	filters []Filter
}

// NewChain creates a filter chain from the given filters. Nil filters are
// ignored.
func NewChain(filters ...Filter) *Chain {
	c := &Chain{}

	for _, f := range filters {
		if f != nil {
			c.filters = append(c.filters, f)
		}
	}

	return c
}

// Len returns the number of filters in the chain.
func (c *Chain) Len() int { return len(c.filters) }

// Apply runs all filters in order, accumulating excluded resources.
func (c *Chain) Apply(ctx context.Context, resources []*resource.Resource) (*Result, error) {
	combined := NewResult()
	current := resources

	for _, f := range c.filters {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		r, err := f.Apply(ctx, current)
		if err != nil {
			return nil, err
		}

		current = r.Included

		combined.Excluded = append(combined.Excluded, r.Excluded...)
	}

	if current != nil {
		combined.Included = current
	}

	return combined, nil
}
