package database

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MockRepo is an in-memory implementation of Repo for testing.
type MockRepo struct {
	mu     sync.Mutex
	models map[string]ModelRecord // keyed by name
	err    error
}

// NewMockRepo creates a new MockRepo.
func NewMockRepo() *MockRepo {
	return &MockRepo{models: make(map[string]ModelRecord)}
}

// SeedModel adds a model to the mock store.
func (m *MockRepo) SeedModel(model ModelRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.models[model.Name] = model.Clone()
}

// FailWith makes every subsequent call return err. Pass nil to reset.
func (m *MockRepo) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockRepo) GetModel(_ context.Context, name string) (*ModelRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	model, ok := m.models[name]
	if !ok {
		return nil, nil
	}
	out := model.Clone()
	return &out, nil
}

func (m *MockRepo) ListModels(_ context.Context, f ModelFilter) ([]ModelRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	var result []ModelRecord
	for _, model := range m.models {
		if f.Family != "" && model.Family != f.Family {
			continue
		}
		if f.NameLike != "" && !strings.Contains(strings.ToLower(model.Name), strings.ToLower(f.NameLike)) {
			continue
		}
		result = append(result, model.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].ReleaseDate.Equal(result[j].ReleaseDate) {
			return result[i].ReleaseDate.Before(result[j].ReleaseDate)
		}
		return result[i].Name < result[j].Name
	})

	if f.Offset > 0 {
		if f.Offset >= len(result) {
			return nil, nil
		}
		result = result[f.Offset:]
	}
	limit := 1000
	if f.Limit > 0 && f.Limit <= 5000 {
		limit = f.Limit
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockRepo) UpsertModel(_ context.Context, model *ModelRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.models[model.Name] = model.Clone()
	return nil
}

func (m *MockRepo) UpsertModels(_ context.Context, models []ModelRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, model := range models {
		m.models[model.Name] = model.Clone()
	}
	return nil
}

func (m *MockRepo) DeleteModel(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.models, name)
	return nil
}

func (m *MockRepo) ListFamilies(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	seen := make(map[string]bool)
	var result []string
	for _, model := range m.models {
		if !seen[model.Family] {
			seen[model.Family] = true
			result = append(result, model.Family)
		}
	}
	sort.Strings(result)
	return result, nil
}

// Compile-time check that *MockRepo implements Repo.
var _ Repo = (*MockRepo)(nil)
