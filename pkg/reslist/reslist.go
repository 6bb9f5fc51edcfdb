// Package reslist provides a public Go API for filtering and ordering
// resource lists.
//
// This package exposes the reslist projection as a library, allowing
// programmatic use without the CLI.
//
// Basic usage:
//
//	result := reslist.Project(resources,
//	    reslist.WithNameFilter("api test"),
//	    reslist.WithAlertsOnTop(true),
//	)
//	fmt.Println(result.Names)
//
// From a snapshot or manifest file:
//
//	result, err := reslist.ProjectFile(ctx, "resources.yaml",
//	    reslist.WithSelector("tier=backend"),
//	)
package reslist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hupe1980/reslist/internal/filter"
	"github.com/hupe1980/reslist/internal/logging"
	"github.com/hupe1980/reslist/internal/options"
	"github.com/hupe1980/reslist/internal/projector"
	"github.com/hupe1980/reslist/internal/resource"
)

// Resource is a named entry of a resource list.
type Resource = resource.Resource

// Options are the list options: name filter text and alerts-on-top.
type Options = options.Options

// Option configures a projection.
// Use the With* functions to create Options.
type Option func(*settings)

type settings struct {
	opts     Options
	selector string
	logger   *slog.Logger
}

// WithOptions replaces all list options at once.
func WithOptions(o Options) Option { return func(s *settings) { s.opts = o } }

// WithNameFilter sets the name filter. Whitespace separates terms; a
// resource is visible when its name contains every term, ignoring case.
func WithNameFilter(text string) Option {
	return func(s *settings) { s.opts.ResourceNameFilter = text }
}

// WithAlertsOnTop moves alerting resources to the front, keeping the
// relative order within both groups.
func WithAlertsOnTop(on bool) Option { return func(s *settings) { s.opts.AlertsOnTop = on } }

// WithSelector restricts ProjectFile to resources whose labels match a
// selector such as "tier=backend,env in (dev, qa)".
func WithSelector(selector string) Option { return func(s *settings) { s.selector = selector } }

// WithLogger sets the logger used by ProjectFile (default: discard).
func WithLogger(l *slog.Logger) Option { return func(s *settings) { s.logger = l } }

// Result holds the visible list.
type Result struct {
	// Resources is the visible list in display order. Never nil.
	Resources []*Resource
	// Names are the names of Resources, in the same order.
	Names []string
	// Total is the number of resources before the name filter.
	Total int
	// Alerts is the number of visible resources with an alert.
	Alerts int
	// NoMatches is true when a filter is active and hides everything.
	NoMatches bool
	// Options are the options the list was projected with.
	Options Options
}

func newSettings(opts []Option) *settings {
	s := &settings{opts: options.Default(), logger: logging.Discard()}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Project filters and orders resources. It never modifies its input.
func Project(resources []*Resource, opts ...Option) *Result {
	s := newSettings(opts)
	return newResult(projector.New(resources, s.opts))
}

// ProjectFile loads a snapshot or manifest file and projects it.
func ProjectFile(ctx context.Context, path string, opts ...Option) (*Result, error) {
	if path == "" {
		return nil, errors.New("resource source path must not be empty")
	}

	s := newSettings(opts)

	resources, err := resource.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	labels, err := filter.NewLabelFilter(s.selector)
	if err != nil {
		return nil, err
	}

	if labels != nil {
		scoped, applyErr := labels.Apply(ctx, resources)
		if applyErr != nil {
			return nil, fmt.Errorf("applying selector: %w", applyErr)
		}

		s.logger.Debug("selector applied",
			slog.String("selector", s.selector),
			slog.Int("excluded", len(scoped.Excluded)))

		resources = scoped.Included
	}

	return newResult(projector.New(resources, s.opts)), nil
}

func newResult(p projector.Projection) *Result {
	return &Result{
		Resources: p.Resources,
		Names:     p.Names(),
		Total:     p.Total,
		Alerts:    p.AlertCount(),
		NoMatches: p.NoMatches(),
		Options:   p.Options,
	}
}
