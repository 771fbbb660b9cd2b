package catalog

import (
	"context"
	"fmt"

	"github.com/vlmbench/vlmbench/internal/config"
	"github.com/vlmbench/vlmbench/internal/database"
)

// Open builds the source selected by cfg. The returned func releases the
// database pool, if any, and is never nil.
func Open(ctx context.Context, cfg *config.Config) (Source, func(), error) {
	noop := func() {}
	switch cfg.DataSource {
	case config.SourceFile:
		return FileSource{Path: cfg.DataFile}, noop, nil
	case config.SourceDatabase:
		connString, err := cfg.DatabaseConnString(ctx)
		if err != nil {
			return nil, noop, err
		}
		repo, err := database.NewRepository(ctx, connString)
		if err != nil {
			return nil, noop, err
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, noop, err
		}
		return RepoSource{Repo: repo}, repo.Close, nil
	case config.SourceEmbedded, "":
		return EmbeddedSource{}, noop, nil
	}
	return nil, noop, fmt.Errorf("unknown data source %q", cfg.DataSource)
}
