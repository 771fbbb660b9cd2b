package viewstate

import (
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/vlmbench/vlmbench/internal/debounce"
)

// SearchInput echoes keystrokes immediately and propagates the search text
// to the store once typing settles. When the store's search changes from
// elsewhere, such as back/forward navigation, the box adopts it and drops
// any pending keystrokes.
type SearchInput struct {
	store *Store
	deb   *debounce.Debouncer[string]
	unsub func()

	mu   sync.Mutex
	text string
	sent string
}

// NewSearchInput binds a debounced search box to store. A nil clock uses
// the real clock.
func NewSearchInput(store *Store, clk clock.WithDelayedExecution, delay time.Duration) *SearchInput {
	current := store.Snapshot().Search
	in := &SearchInput{store: store, text: current, sent: current}
	in.deb = debounce.New(clk, delay, func(text string) {
		in.mu.Lock()
		in.sent = text
		in.mu.Unlock()
		store.Update(SetSearch(text))
	})
	in.unsub = store.Subscribe(in.observe)
	return in
}

// observe adopts a search value this input did not send.
func (in *SearchInput) observe(s ViewState) {
	in.mu.Lock()
	if s.Search == in.sent {
		in.mu.Unlock()
		return
	}
	in.sent = s.Search
	in.text = s.Search
	in.mu.Unlock()
	in.deb.Cancel()
}

// Type replaces the local buffer and restarts the quiet period.
func (in *SearchInput) Type(text string) {
	in.mu.Lock()
	in.text = text
	in.mu.Unlock()
	in.deb.Push(text)
}

// Text returns the local buffer.
func (in *SearchInput) Text() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.text
}

// Clear empties the box and propagates immediately.
func (in *SearchInput) Clear() {
	in.mu.Lock()
	in.text = ""
	in.mu.Unlock()
	in.deb.Push("")
	in.deb.Flush()
}

// Submit propagates any pending text without waiting.
func (in *SearchInput) Submit() {
	in.deb.Flush()
}

// Close drops pending text and stops following the store.
func (in *SearchInput) Close() {
	in.unsub()
	in.deb.Stop()
}
