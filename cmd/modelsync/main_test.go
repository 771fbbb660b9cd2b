package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vlmbench/vlmbench/internal/catalog"
	"github.com/vlmbench/vlmbench/internal/database"
)

func records() []database.ModelRecord {
	scores := make(database.BenchmarkScores)
	for _, b := range database.Benchmarks {
		scores[b] = 60
	}
	return []database.ModelRecord{
		{Name: "A-VL", Family: "Other", ReleaseDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Score: 60, Params: 7, Benchmarks: scores},
		{Name: "B-VL", Family: "Other", ReleaseDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Score: 60, Params: 13, Benchmarks: scores},
	}
}

func TestWriteDatasetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "models.json")
	if err := writeDataset(path, records()); err != nil {
		t.Fatalf("writeDataset: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	got, err := catalog.FileSource{Path: path}.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[1].Name != "B-VL" || !got[1].ReleaseDate.Equal(records()[1].ReleaseDate) {
		t.Errorf("round trip = %+v", got)
	}
}

func TestUpsertRecords(t *testing.T) {
	repo := database.NewMockRepo()
	n := upsertRecords(context.Background(), repo, records(), 2, zerolog.Nop())
	if n != 2 {
		t.Errorf("updated = %d, want 2", n)
	}
	stored, _ := repo.ListModels(context.Background(), database.ModelFilter{})
	if len(stored) != 2 {
		t.Errorf("stored = %d, want 2", len(stored))
	}

	repo.FailWith(errors.New("conn reset"))
	if n := upsertRecords(context.Background(), repo, records(), 0, zerolog.Nop()); n != 0 {
		t.Errorf("updated = %d after failure, want 0", n)
	}
}
