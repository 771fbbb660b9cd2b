package viewstate

import (
	"net/url"
	"slices"
	"sync"
)

// Navigator abstracts the address bar. Replace rewrites the current entry
// without adding history. OnExternalChange fires on user navigation only,
// never for Replace.
type Navigator interface {
	Read() url.Values
	Replace(q url.Values)
	OnExternalChange(fn func(url.Values)) (cancel func())
}

// Preferences is a small persisted key-value store.
type Preferences interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}

type listener struct {
	id int
	fn func(url.Values)
}

// MemoryNavigator is an in-process Navigator with a history stack.
type MemoryNavigator struct {
	mu        sync.Mutex
	history   []url.Values
	pos       int
	replaces  int
	listeners []listener
	nextID    int
}

// NewMemoryNavigator starts with q as the only history entry.
func NewMemoryNavigator(q url.Values) *MemoryNavigator {
	if q == nil {
		q = url.Values{}
	}
	return &MemoryNavigator{
		history: []url.Values{cloneValues(q)},
	}
}

// Read returns a copy of the current entry.
func (n *MemoryNavigator) Read() url.Values {
	n.mu.Lock()
	defer n.mu.Unlock()
	return cloneValues(n.history[n.pos])
}

// Replace overwrites the current entry.
func (n *MemoryNavigator) Replace(q url.Values) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.history[n.pos] = cloneValues(q)
	n.replaces++
}

// Push appends a new entry after the current one, dropping forward
// history. It models following a link and notifies listeners.
func (n *MemoryNavigator) Push(q url.Values) {
	n.mu.Lock()
	n.history = append(n.history[:n.pos+1], cloneValues(q))
	n.pos = len(n.history) - 1
	n.mu.Unlock()
	n.notify()
}

// Navigate moves delta entries through history, as back (-1) or forward
// (+1) do. It reports false when the target is out of range.
func (n *MemoryNavigator) Navigate(delta int) bool {
	n.mu.Lock()
	target := n.pos + delta
	if delta == 0 || target < 0 || target >= len(n.history) {
		n.mu.Unlock()
		return false
	}
	n.pos = target
	n.mu.Unlock()
	n.notify()
	return true
}

func (n *MemoryNavigator) notify() {
	n.mu.Lock()
	q := n.history[n.pos]
	fns := make([]func(url.Values), 0, len(n.listeners))
	for _, l := range n.listeners {
		fns = append(fns, l.fn)
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn(cloneValues(q))
	}
}

// OnExternalChange registers fn for Push and Navigate events.
func (n *MemoryNavigator) OnExternalChange(fn func(url.Values)) (cancel func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.listeners = append(n.listeners, listener{id: id, fn: fn})
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.listeners = slices.DeleteFunc(n.listeners, func(l listener) bool { return l.id == id })
	}
}

// Len returns the number of history entries.
func (n *MemoryNavigator) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.history)
}

// Replaces returns how many times Replace was called.
func (n *MemoryNavigator) Replaces() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.replaces
}

// MemoryPreferences is an in-process Preferences map.
type MemoryPreferences struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryPreferences returns an empty store.
func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{values: make(map[string]string)}
}

func (p *MemoryPreferences) Get(key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[key]
	return v, ok
}

func (p *MemoryPreferences) Set(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
	return nil
}

func (p *MemoryPreferences) Remove(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.values, key)
	return nil
}
