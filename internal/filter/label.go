package filter

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/reslist/internal/resource"
)

// LabelFilter keeps resources whose labels match a selector.
// Supports key=value (equality), key!=value (inequality), and
// key in (v1,v2) (set membership). All selectors must match.
type LabelFilter struct {
	expr      string
	selectors []labelSelector
}

type labelSelector struct {
	key    string
	op     labelOp
	values []string
}

type labelOp int

const (
	labelOpEqual labelOp = iota
	labelOpNotEqual
	labelOpIn
)

// NewLabelFilter creates a filter from a comma-separated selector string.
// An empty expression yields a nil filter and no error.
func NewLabelFilter(selectorExpr string) (*LabelFilter, error) {
	if strings.TrimSpace(selectorExpr) == "" {
		return nil, nil
	}

	parts := splitSelectors(selectorExpr)
	selectors := make([]labelSelector, 0, len(parts))

	for _, part := range parts {
		sel, err := parseLabelSelector(part)
		if err != nil {
			return nil, err
		}

		selectors = append(selectors, sel)
	}

	return &LabelFilter{expr: selectorExpr, selectors: selectors}, nil
}

// Apply keeps resources whose labels match every selector.
func (f *LabelFilter) Apply(_ context.Context, resources []*resource.Resource) (*Result, error) {
	r := NewResult()

	for _, res := range resources {
		if res == nil {
			continue
		}

		if f.matches(res.Labels) {
			r.Included = append(r.Included, res)
		} else {
			r.Excluded = append(r.Excluded, ExcludedResource{
				Resource: res,
				Reason:   fmt.Sprintf("labels do not match %q", f.expr),
			})
		}
	}

	return r, nil
}

func (f *LabelFilter) matches(labels map[string]string) bool {
	for _, sel := range f.selectors {
		val, exists := labels[sel.key]

		switch sel.op {
		case labelOpEqual:
			if !exists || val != sel.values[0] {
				return false
			}
		case labelOpNotEqual:
			if exists && val == sel.values[0] {
				return false
			}
		case labelOpIn:
			if !exists || !slices.Contains(sel.values, val) {
				return false
			}
		}
	}

	return true
}

// splitSelectors splits a selector expression on commas, but not inside parentheses.
func splitSelectors(expr string) []string {
	var parts []string

	depth := 0
	start := 0

	for i, ch := range expr {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(expr[start:i]))
				start = i + 1
			}
		}
	}

	if start < len(expr) {
		parts = append(parts, strings.TrimSpace(expr[start:]))
	}

	return parts
}

// parseLabelSelector parses a single label selector expression.
func parseLabelSelector(expr string) (labelSelector, error) {
	expr = strings.TrimSpace(expr)

	if inIdx := strings.Index(expr, " in ("); inIdx > 0 {
		key := strings.TrimSpace(expr[:inIdx])
		valStr := strings.TrimSuffix(expr[inIdx+5:], ")")

		values := strings.Split(valStr, ",")
		for i := range values {
			values[i] = strings.TrimSpace(values[i])
		}

		return labelSelector{key: key, op: labelOpIn, values: values}, nil
	}

	if neqIdx := strings.Index(expr, "!="); neqIdx > 0 {
		return labelSelector{
			key:    strings.TrimSpace(expr[:neqIdx]),
			op:     labelOpNotEqual,
			values: []string{strings.TrimSpace(expr[neqIdx+2:])},
		}, nil
	}

	if eqIdx := strings.Index(expr, "="); eqIdx > 0 {
		return labelSelector{
			key:    strings.TrimSpace(expr[:eqIdx]),
			op:     labelOpEqual,
			values: []string{strings.TrimSpace(expr[eqIdx+1:])},
		}, nil
	}

	return labelSelector{}, fmt.Errorf("invalid label selector: %q", expr)
}
