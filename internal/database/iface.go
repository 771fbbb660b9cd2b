package database

import "context"

// Repo defines the interface for model record storage.
// The concrete *Repository satisfies this interface. Use this interface
// as a dependency in consumers to enable testing with mocks.
type Repo interface {
	GetModel(ctx context.Context, name string) (*ModelRecord, error)
	ListModels(ctx context.Context, f ModelFilter) ([]ModelRecord, error)
	UpsertModel(ctx context.Context, m *ModelRecord) error
	UpsertModels(ctx context.Context, models []ModelRecord) error
	DeleteModel(ctx context.Context, name string) error
	ListFamilies(ctx context.Context) ([]string, error)
}

// Compile-time check that *Repository implements Repo.
var _ Repo = (*Repository)(nil)
