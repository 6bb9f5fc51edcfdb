package resource

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	sigsyaml "sigs.k8s.io/yaml"
)

// Format identifies the layout of a resource source document.
type Format string

// Supported source formats.
const (
	FormatSnapshot Format = "snapshot"
	FormatManifest Format = "manifest"
)

// Loader turns raw source bytes into an ordered resource list.
type Loader interface {
	Load(ctx context.Context, data []byte) ([]*Resource, error)
}

// compile-time interface conformance checks.
var (
	_ Loader = (*SnapshotLoader)(nil)
	_ Loader = (*ManifestLoader)(nil)
)

// snapshotDocument is the on-disk shape of a snapshot file.
type snapshotDocument struct {
	Resources []snapshotEntry `json:"resources"`
}

type snapshotEntry struct {
	Name          string            `json:"name"`
	Alert         *bool             `json:"alert,omitempty"`
	Kind          string            `json:"kind,omitempty"`
	Labels        map[string]string `json:"labels,omitempty"`
	BuildStatus   string            `json:"buildStatus,omitempty"`
	RuntimeStatus string            `json:"runtimeStatus,omitempty"`
}

// SnapshotLoader parses a YAML or JSON snapshot document.
type SnapshotLoader struct{}

// Load parses data as a snapshot. Entries keep their document order.
func (SnapshotLoader) Load(_ context.Context, data []byte) ([]*Resource, error) {
	var doc snapshotDocument
	if err := sigsyaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
	}

	resources := make([]*Resource, 0, len(doc.Resources))

	for _, e := range doc.Resources {
		alert := DeriveAlert(e.BuildStatus, e.RuntimeStatus)
		if e.Alert != nil {
			alert = *e.Alert
		}

		resources = append(resources, &Resource{
			Name:          e.Name,
			HasAlert:      alert,
			Kind:          e.Kind,
			Labels:        e.Labels,
			BuildStatus:   e.BuildStatus,
			RuntimeStatus: e.RuntimeStatus,
		})
	}

	return finish(resources)
}

// DetectFormat guesses the source format from the top-level keys of its
// documents. The first document with a resources key, or with both
// apiVersion and kind, decides. Anything else is treated as a snapshot so
// the snapshot loader reports the problem.
func DetectFormat(data []byte) Format {
	for _, doc := range SplitDocuments(data) {
		var top map[string]interface{}
		if err := sigsyaml.Unmarshal(doc, &top); err != nil || top == nil {
			continue
		}

		if _, ok := top["resources"]; ok {
			return FormatSnapshot
		}

		_, hasAPIVersion := top["apiVersion"]
		_, hasKind := top["kind"]

		if hasAPIVersion && hasKind {
			return FormatManifest
		}
	}

	return FormatSnapshot
}

// Load auto-detects the format of data and parses it.
func Load(ctx context.Context, data []byte) ([]*Resource, error) {
	return LoaderFor(DetectFormat(data)).Load(ctx, data)
}

// LoaderFor returns the loader for the given format.
func LoaderFor(f Format) Loader {
	if f == FormatManifest {
		return NewManifestLoader()
	}

	return SnapshotLoader{}
}

// LoadFile reads path and parses its content with auto-detection.
func LoadFile(ctx context.Context, path string) ([]*Resource, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied source path
	if err != nil {
		return nil, fmt.Errorf("reading resource source %q: %w", path, err)
	}

	resources, err := Load(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}

	return resources, nil
}

// finish assigns canonical indices and rejects duplicate names.
func finish(resources []*Resource) ([]*Resource, error) {
	seen := make(map[string]int, len(resources))

	for i, r := range resources {
		if prev, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("duplicate resource name %q at positions %d and %d",
				r.Name, prev, i)
		}

		seen[r.Name] = i
		r.Index = i
	}

	return resources, nil
}

// docSeparator matches YAML document separators: a line containing only "---"
// optionally followed by whitespace.
var docSeparator = regexp.MustCompile(`(?m)^---\s*$`)

// SplitDocuments splits a multi-document YAML stream, dropping empty documents.
func SplitDocuments(data []byte) [][]byte {
	parts := docSeparator.Split(string(data), -1)

	docs := make([][]byte, 0, len(parts))

	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			docs = append(docs, []byte(part))
		}
	}

	return docs
}
