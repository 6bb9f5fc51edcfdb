// Package resource defines the dashboard resource model and the loaders
// that turn snapshot documents or Kubernetes manifests into an ordered
// resource list.
package resource

import "strings"

// Status values reported by a resource's build or runtime.
const (
	StatusOK      = "ok"
	StatusPending = "pending"
	StatusError   = "error"
)

// Resource is a named entity tracked by the dashboard.
type Resource struct {
	// Name is the unique, stable identity of the resource.
	Name string

	// HasAlert flags the resource as currently failing or needing attention.
	HasAlert bool

	// Index is the position in the canonical list the resource was loaded from.
	Index int

	// Kind is an optional type label (e.g. "Deployment", "test").
	Kind string

	// Labels are optional grouping labels.
	Labels map[string]string

	// BuildStatus and RuntimeStatus are optional status strings as reported
	// by the source. They feed alert derivation when no explicit alert is set.
	BuildStatus   string
	RuntimeStatus string
}

// DeriveAlert reports whether either status indicates a failure.
func DeriveAlert(buildStatus, runtimeStatus string) bool {
	return strings.EqualFold(buildStatus, StatusError) ||
		strings.EqualFold(runtimeStatus, StatusError)
}

// Names returns the names of resources in order. Nil entries are skipped.
func Names(resources []*Resource) []string {
	names := make([]string, 0, len(resources))

	for _, r := range resources {
		if r == nil {
			continue
		}

		names = append(names, r.Name)
	}

	return names
}

// Reindex assigns Index in slice order.
func Reindex(resources []*Resource) {
	for i, r := range resources {
		if r != nil {
			r.Index = i
		}
	}
}
