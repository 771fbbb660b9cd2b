package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vlmbench/vlmbench/internal/database"
)

//go:embed data/models.json
var embeddedModels []byte

// Source produces the full dataset once.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]database.ModelRecord, error)
}

// DecodeRecords reads a JSON array of model records.
func DecodeRecords(r io.Reader) ([]database.ModelRecord, error) {
	var records []database.ModelRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode model records: %w", err)
	}
	return records, nil
}

// EmbeddedSource serves the dataset compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Name() string { return "embedded" }

func (EmbeddedSource) Load(_ context.Context) ([]database.ModelRecord, error) {
	return DecodeRecords(bytes.NewReader(embeddedModels))
}

// FileSource reads a dataset file in the same format as the embedded one.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Load(_ context.Context) ([]database.ModelRecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return DecodeRecords(f)
}

// RepoSource reads every stored model from a repository.
type RepoSource struct {
	Repo database.Repo
}

func (s RepoSource) Name() string { return "database" }

func (s RepoSource) Load(ctx context.Context) ([]database.ModelRecord, error) {
	const page = 5000
	var all []database.ModelRecord
	for offset := 0; ; offset += page {
		batch, err := s.Repo.ListModels(ctx, database.ModelFilter{Limit: page, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}
		all = append(all, batch...)
		if len(batch) < page {
			return all, nil
		}
	}
}

// StaticSource serves a fixed slice. Useful in tests and tools.
type StaticSource []database.ModelRecord

func (StaticSource) Name() string { return "static" }

func (s StaticSource) Load(_ context.Context) ([]database.ModelRecord, error) {
	out := make([]database.ModelRecord, len(s))
	for i, m := range s {
		out[i] = m.Clone()
	}
	return out, nil
}
