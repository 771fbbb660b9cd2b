// Package catalog owns the immutable model dataset for the lifetime of the
// process and reports its load state.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vlmbench/vlmbench/internal/database"
)

// State is the load state of the catalog.
type State int

const (
	StateLoading State = iota
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrNotLoaded is returned while the dataset is still loading.
var ErrNotLoaded = errors.New("catalog not loaded")

// StateError reports that the dataset could not be loaded.
type StateError struct {
	Source string
	Err    error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("load catalog from %s: %v", e.Source, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

// Status is a point-in-time view of the catalog.
type Status struct {
	State    State     `json:"-"`
	Name     string    `json:"state"`
	Source   string    `json:"source"`
	Count    int       `json:"count"`
	Error    string    `json:"error,omitempty"`
	LoadedAt time.Time `json:"loadedAt,omitempty"`
}

// Catalog holds the dataset loaded from a Source.
type Catalog struct {
	source Source
	logger zerolog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	state    State
	records  []database.ModelRecord
	byName   map[string]int
	err      error
	loadedAt time.Time
	gen      uint64
}

// Dataset is a copy of the records from one successful load. Generation
// increases with every load, so it identifies which load the records came
// from.
type Dataset struct {
	Records    []database.ModelRecord
	Generation uint64
}

// New creates a catalog in the loading state.
func New(source Source, logger zerolog.Logger) *Catalog {
	return &Catalog{
		source: source,
		logger: logger.With().Str("component", "catalog").Str("source", source.Name()).Logger(),
		now:    time.Now,
		state:  StateLoading,
	}
}

// Load reads and validates the dataset. It is a no-op once the catalog is
// ready; after a failure it may be called again to retry.
func (c *Catalog) Load(ctx context.Context) error {
	c.mu.RLock()
	ready := c.state == StateReady
	c.mu.RUnlock()
	if ready {
		return nil
	}
	return c.load(ctx)
}

// Reload replaces the dataset with a fresh read of the source. On failure
// the previous dataset is discarded and the catalog enters the error state.
func (c *Catalog) Reload(ctx context.Context) error {
	return c.load(ctx)
}

func (c *Catalog) load(ctx context.Context) error {
	start := c.now()
	records, err := c.source.Load(ctx)
	if err == nil {
		err = database.ValidateRecords(records)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateError
		c.err = &StateError{Source: c.source.Name(), Err: err}
		c.records = nil
		c.byName = nil
		c.logger.Error().Err(err).Msg("dataset load failed")
		return c.err
	}

	byName := make(map[string]int, len(records))
	for i, m := range records {
		if _, dup := byName[m.Name]; dup {
			c.logger.Warn().Str("model", m.Name).Msg("duplicate model name, keeping first")
			continue
		}
		byName[m.Name] = i
	}
	c.records = records
	c.byName = byName
	c.err = nil
	c.state = StateReady
	c.gen++
	c.loadedAt = c.now()
	c.logger.Info().
		Int("models", len(records)).
		Dur("took", c.loadedAt.Sub(start)).
		Msg("dataset loaded")
	return nil
}

// Records returns a copy of the dataset. The slice is never nil, also when
// an error is returned.
func (c *Catalog) Records() ([]database.ModelRecord, error) {
	ds, err := c.Dataset()
	return ds.Records, err
}

// Dataset returns a copy of the records together with their load
// generation, read atomically with respect to reloads. Records is never
// nil, also when an error is returned.
func (c *Catalog) Dataset() (Dataset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch c.state {
	case StateLoading:
		return Dataset{Records: []database.ModelRecord{}}, ErrNotLoaded
	case StateError:
		return Dataset{Records: []database.ModelRecord{}}, c.err
	}
	out := make([]database.ModelRecord, len(c.records))
	for i, m := range c.records {
		out[i] = m.Clone()
	}
	return Dataset{Records: out, Generation: c.gen}, nil
}

// Get returns the named model, or nil if the catalog has no such model or
// is not ready.
func (c *Catalog) Get(name string) *database.ModelRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byName[name]
	if !ok {
		return nil
	}
	m := c.records[i].Clone()
	return &m
}

// Status reports the current load state.
func (c *Catalog) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := Status{
		State:    c.state,
		Name:     c.state.String(),
		Source:   c.source.Name(),
		Count:    len(c.records),
		LoadedAt: c.loadedAt,
	}
	if c.err != nil {
		st.Error = c.err.Error()
	}
	return st
}
