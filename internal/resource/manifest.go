package resource

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	sigsyaml "sigs.k8s.io/yaml"
)

// ManifestLoader parses a multi-document Kubernetes manifest stream. Each
// object becomes one resource named by its qualified identity; alerts are
// derived from status.conditions.
type ManifestLoader struct{}

// NewManifestLoader creates a ManifestLoader.
func NewManifestLoader() *ManifestLoader {
	return &ManifestLoader{}
}

// Load parses every document. Documents without apiVersion or kind are
// skipped; List objects are flattened into their items.
func (l *ManifestLoader) Load(ctx context.Context, data []byte) ([]*Resource, error) {
	var resources []*Resource

	for i, doc := range SplitDocuments(data) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		objs, err := parseDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("parsing document %d: %w", i, err)
		}

		for _, u := range objs {
			resources = append(resources, fromUnstructured(u))
		}
	}

	if resources == nil {
		resources = []*Resource{}
	}

	return finish(resources)
}

// parseDocument parses a single YAML document into zero or more objects.
func parseDocument(doc []byte) ([]*unstructured.Unstructured, error) {
	var obj map[string]interface{}
	if err := sigsyaml.Unmarshal(doc, &obj); err != nil {
		return nil, fmt.Errorf("unmarshaling YAML: %w", err)
	}

	if obj == nil {
		return nil, nil
	}

	apiVersion, _ := obj["apiVersion"].(string)
	kind, _ := obj["kind"].(string)

	if apiVersion == "" || kind == "" {
		return nil, nil
	}

	u := &unstructured.Unstructured{Object: obj}
	if !u.IsList() {
		return []*unstructured.Unstructured{u}, nil
	}

	var items []*unstructured.Unstructured

	err := u.EachListItem(func(o runtime.Object) error {
		item, ok := o.(*unstructured.Unstructured)
		if !ok {
			return fmt.Errorf("unexpected list item type %T", o)
		}

		items = append(items, item)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s items: %w", kind, err)
	}

	return items, nil
}

func fromUnstructured(u *unstructured.Unstructured) *Resource {
	gvk := schema.FromAPIVersionAndKind(u.GetAPIVersion(), u.GetKind())

	return &Resource{
		Name:     QualifiedName(gvk.Kind, u.GetNamespace(), u.GetName()),
		HasAlert: conditionsAlert(u),
		Kind:     gvk.Kind,
		Labels:   u.GetLabels(),
	}
}

// QualifiedName returns "Kind/name", prefixed with "namespace/" when the
// object is namespaced. Objects of different kinds may share a name.
func QualifiedName(kind, namespace, name string) string {
	id := kind + "/" + name
	if namespace != "" {
		id = namespace + "/" + id
	}

	return id
}

// conditionsAlert reports whether status.conditions signal a failure.
func conditionsAlert(u *unstructured.Unstructured) bool {
	conds, found, err := unstructured.NestedSlice(u.Object, "status", "conditions")
	if err != nil || !found {
		return false
	}

	for _, c := range conds {
		m, ok := c.(map[string]interface{})
		if !ok {
			continue
		}

		typ, _ := m["type"].(string)
		status, _ := m["status"].(string)

		switch typ {
		case "Ready", "Available":
			if status == "False" {
				return true
			}
		case "Failed":
			if status == "True" {
				return true
			}
		}
	}

	return false
}
