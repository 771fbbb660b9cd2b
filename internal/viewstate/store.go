package viewstate

import (
	"encoding/json"
	"net/url"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vlmbench/vlmbench/internal/pipeline"
)

// FamiliesPreferenceKey holds the last non-"all" family selection as a
// JSON array of strings.
const FamiliesPreferenceKey = "vlm-chart-last-families"

// Store is the single writer of ViewState. It mirrors every change into
// the navigator and the persisted family preference, and adopts external
// navigation wholesale.
type Store struct {
	nav    Navigator
	prefs  Preferences
	logger zerolog.Logger

	mu        sync.Mutex
	state     ViewState
	subs      []subscriber
	nextSub   int
	cancelNav func()
	closed    bool
}

// NewStore initializes the state from the navigator. When the query has no
// families parameter, the persisted selection is used, then "all".
func NewStore(nav Navigator, prefs Preferences, logger zerolog.Logger) *Store {
	s := &Store{
		nav:    nav,
		prefs:  prefs,
		logger: logger.With().Str("component", "viewstate").Logger(),
	}

	q := nav.Read()
	state := Parse(q)
	if !q.Has(ParamFamilies) || q.Get(ParamFamilies) == "" {
		state.Families = s.persistedFamilies()
	}

	s.mu.Lock()
	s.state = state
	s.syncLocked()
	s.mu.Unlock()

	s.cancelNav = nav.OnExternalChange(s.handleNavigation)
	return s
}

func (s *Store) persistedFamilies() []string {
	fallback := []string{pipeline.AllFamilies}
	raw, ok := s.prefs.Get(FamiliesPreferenceKey)
	if !ok {
		return fallback
	}
	var families []string
	if err := json.Unmarshal([]byte(raw), &families); err != nil {
		s.logger.Debug().Err(err).Str("value", raw).Msg("ignoring corrupt family preference")
		return fallback
	}
	return normalizeFamilies(families)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Update merges p into the current state, writes it out and notifies
// subscribers. It returns the new state.
func (s *Store) Update(p Patch) ViewState {
	s.mu.Lock()
	if s.closed {
		defer s.mu.Unlock()
		return s.state.Clone()
	}
	s.state = p.Apply(s.state)
	s.syncLocked()
	snap, subs := s.state.Clone(), s.subscribersLocked()
	s.mu.Unlock()

	s.notify(snap, subs)
	return snap
}

// handleNavigation replaces the state with what the address bar says.
// The persisted preference is not consulted on this path.
func (s *Store) handleNavigation(q url.Values) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	mode := s.state.ComparisonMode
	s.state = Parse(q)
	s.state.ComparisonMode = mode
	s.syncLocked()
	snap, subs := s.state.Clone(), s.subscribersLocked()
	s.mu.Unlock()

	s.logger.Debug().Str("query", q.Encode()).Msg("adopted external navigation")
	s.notify(snap, subs)
}

// syncLocked writes the state to the navigator, keeping parameters the
// store does not own, and persists the family selection.
func (s *Store) syncLocked() {
	q := s.nav.Read()
	encodeInto(q, s.state)
	s.nav.Replace(q)

	if s.state.AllFamilies() {
		if err := s.prefs.Remove(FamiliesPreferenceKey); err != nil {
			s.logger.Warn().Err(err).Msg("clear family preference")
		}
		return
	}
	data, err := json.Marshal(s.state.Families)
	if err != nil {
		s.logger.Warn().Err(err).Msg("encode family preference")
		return
	}
	if err := s.prefs.Set(FamiliesPreferenceKey, string(data)); err != nil {
		s.logger.Warn().Err(err).Msg("persist family preference")
	}
}

type subscriber struct {
	id int
	fn func(ViewState)
}

// subscribersLocked returns the callbacks in subscription order.
func (s *Store) subscribersLocked() []func(ViewState) {
	out := make([]func(ViewState), 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub.fn)
	}
	return out
}

func (s *Store) notify(snap ViewState, subs []func(ViewState)) {
	for _, fn := range subs {
		fn(snap.Clone())
	}
}

// Subscribe registers fn to receive every new state.
func (s *Store) Subscribe(fn func(ViewState)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool { return sub.id == id })
	}
}

// Close stops listening for navigation. Later updates are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel := s.cancelNav
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
