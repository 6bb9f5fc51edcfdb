// Package options holds the resource list options shared by the list view:
// the name filter text and the alerts-on-top toggle. Options are owned by an
// [Accessor]; readers receive them by value.
package options

import (
	"strings"
	"sync"
)

// Key is the storage key of the options record within a session.
const Key = "resource-list-options"

// Options configures how the resource list is projected.
type Options struct {
	// ResourceNameFilter is free text; whitespace separates AND-ed terms.
	ResourceNameFilter string `yaml:"resourceNameFilter" json:"resourceNameFilter"`

	// AlertsOnTop moves alerting resources to the front of the list.
	AlertsOnTop bool `yaml:"alertsOnTop" json:"alertsOnTop"`
}

// Default returns the documented default options.
func Default() Options {
	return Options{}
}

// FilterActive reports whether the name filter contains any term.
func (o Options) FilterActive() bool {
	return strings.TrimSpace(o.ResourceNameFilter) != ""
}

// Normalize returns the options for a possibly missing record. A nil record
// yields the defaults.
func Normalize(o *Options) Options {
	if o == nil {
		return Default()
	}

	return *o
}

// Accessor reads, writes and observes the current options.
type Accessor interface {
	Get() Options
	Set(Options)
	// Subscribe registers fn to run after every Set. The returned function
	// removes the subscription.
	Subscribe(fn func(Options)) (unsubscribe func())
}

// compile-time interface conformance check.
var _ Accessor = (*MemoryStore)(nil)

// MemoryStore is an in-process Accessor. Subscribers run synchronously on
// the goroutine that called Set, after the new value is visible to Get.
type MemoryStore struct {
	mu    sync.RWMutex
	value Options
	subs  notifier
}

// NewMemoryStore creates a store holding initial.
func NewMemoryStore(initial Options) *MemoryStore {
	return &MemoryStore{value: initial}
}

// Get returns the current options.
func (s *MemoryStore) Get() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.value
}

// Set replaces the options and notifies subscribers.
func (s *MemoryStore) Set(o Options) {
	s.mu.Lock()
	s.value = o
	s.mu.Unlock()

	s.subs.notify(o)
}

// Subscribe registers fn for change notifications.
func (s *MemoryStore) Subscribe(fn func(Options)) func() {
	return s.subs.add(fn)
}

// notifier fans a value out to subscribers in registration order.
type notifier struct {
	mu     sync.Mutex
	subs   map[int]func(Options)
	nextID int
}

func (n *notifier) add(fn func(Options)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subs == nil {
		n.subs = make(map[int]func(Options))
	}

	id := n.nextID
	n.nextID++
	n.subs[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

func (n *notifier) notify(o Options) {
	n.mu.Lock()
	fns := make([]func(Options), 0, len(n.subs))

	for id := 0; id < n.nextID; id++ {
		if fn, ok := n.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(o)
	}
}
