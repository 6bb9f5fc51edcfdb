// Package watch re-renders the resource list whenever its inputs change.
// It monitors the resource source and the persisted options record,
// debounces rapid events, and reports how the visible ordering moved
// between refreshes.
package watch
