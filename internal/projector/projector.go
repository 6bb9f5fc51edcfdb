// Package projector turns the canonical resource list and the current list
// options into the ordered sequence of visible resources.
//
// Projection does not mutate its inputs and always returns a non-nil slice.
package projector

import (
	"github.com/hupe1980/reslist/internal/filter"
	"github.com/hupe1980/reslist/internal/options"
	"github.com/hupe1980/reslist/internal/resource"
)

// Project filters resources by the name query in opts and, when
// opts.AlertsOnTop is set, stably moves alerting resources to the front.
// Filtering happens first; the partition only sees the survivors.
// Nil entries in resources are skipped.
func Project(resources []*resource.Resource, opts options.Options) []*resource.Resource {
	terms := filter.Terms(opts.ResourceNameFilter)

	if !opts.AlertsOnTop {
		visible := make([]*resource.Resource, 0, len(resources))

		for _, r := range resources {
			if r != nil && filter.MatchesName(r.Name, terms) {
				visible = append(visible, r)
			}
		}

		return visible
	}

	alerting := make([]*resource.Resource, 0, len(resources))
	var rest []*resource.Resource

	for _, r := range resources {
		if r == nil || !filter.MatchesName(r.Name, terms) {
			continue
		}

		if r.HasAlert {
			alerting = append(alerting, r)
		} else {
			rest = append(rest, r)
		}
	}

	return append(alerting, rest...)
}

// Projection is a projected list together with the options it was built
// from. It is a view and has no lifetime of its own.
type Projection struct {
	Options   options.Options
	Resources []*resource.Resource
	// Total is the number of resources before filtering.
	Total int
}

// New projects resources with opts and records the inputs.
func New(resources []*resource.Resource, opts options.Options) Projection {
	total := 0

	for _, r := range resources {
		if r != nil {
			total++
		}
	}

	return Projection{
		Options:   opts,
		Resources: Project(resources, opts),
		Total:     total,
	}
}

// Empty reports whether no resource is visible.
func (p Projection) Empty() bool {
	return len(p.Resources) == 0
}

// NoMatches reports whether the list is empty because of the name filter.
// This is the condition under which a "No matching resources" row is shown.
func (p Projection) NoMatches() bool {
	return p.Empty() && p.Options.FilterActive()
}

// AlertCount returns the number of visible alerting resources.
func (p Projection) AlertCount() int {
	n := 0

	for _, r := range p.Resources {
		if r.HasAlert {
			n++
		}
	}

	return n
}

// Names returns the visible resource names in order.
func (p Projection) Names() []string {
	return resource.Names(p.Resources)
}
