package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides database operations for model records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository with a connection pool.
func NewRepository(ctx context.Context, connString string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Repository{pool: pool}, nil
}

// Close closes the connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

const modelColumns = `name, family, release_date, params, params_estimated, score, benchmarks`

func scanModel(row pgx.Row) (*ModelRecord, error) {
	var (
		m   ModelRecord
		raw []byte
	)
	if err := row.Scan(&m.Name, &m.Family, &m.ReleaseDate, &m.Params, &m.ParamsEstimated, &m.Score, &raw); err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &m.Benchmarks); err != nil {
			return nil, fmt.Errorf("decode benchmarks of %s: %w", m.Name, err)
		}
	}
	return &m, nil
}

// GetModel returns a model by name, or nil if not found.
func (r *Repository) GetModel(ctx context.Context, name string) (*ModelRecord, error) {
	m, err := scanModel(r.pool.QueryRow(ctx,
		`SELECT `+modelColumns+` FROM vlm_models WHERE name = $1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query model: %w", err)
	}
	return m, nil
}

// ListModels returns models matching the filter ordered by release date.
func (r *Repository) ListModels(ctx context.Context, f ModelFilter) ([]ModelRecord, error) {
	var (
		conditions []string
		args       []any
		argIdx     int
	)

	if f.Family != "" {
		argIdx++
		conditions = append(conditions, fmt.Sprintf("family = $%d", argIdx))
		args = append(args, f.Family)
	}
	if f.NameLike != "" {
		argIdx++
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argIdx))
		args = append(args, "%"+f.NameLike+"%")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := 1000
	if f.Limit > 0 && f.Limit <= 5000 {
		limit = f.Limit
	}
	argIdx++
	limitClause := fmt.Sprintf("LIMIT $%d", argIdx)
	args = append(args, limit)

	offsetClause := ""
	if f.Offset > 0 {
		argIdx++
		offsetClause = fmt.Sprintf("OFFSET $%d", argIdx)
		args = append(args, f.Offset)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM vlm_models
		%s
		ORDER BY release_date, name
		%s %s
	`, modelColumns, where, limitClause, offsetClause)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query models: %w", err)
	}
	defer rows.Close()

	var models []ModelRecord
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan model row: %w", err)
		}
		models = append(models, *m)
	}
	return models, rows.Err()
}

// UpsertModel inserts or updates a model keyed by name.
func (r *Repository) UpsertModel(ctx context.Context, m *ModelRecord) error {
	return upsertModel(ctx, r.pool, m)
}

// UpsertModels writes all models within a single transaction.
func (r *Repository) UpsertModels(ctx context.Context, models []ModelRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i := range models {
		if err := upsertModel(ctx, tx, &models[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func upsertModel(ctx context.Context, db execer, m *ModelRecord) error {
	benchmarks, err := json.Marshal(m.Benchmarks)
	if err != nil {
		return fmt.Errorf("encode benchmarks of %s: %w", m.Name, err)
	}
	_, err = db.Exec(ctx, `
		INSERT INTO vlm_models (name, family, release_date, params, params_estimated, score, benchmarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			family           = EXCLUDED.family,
			release_date     = EXCLUDED.release_date,
			params           = EXCLUDED.params,
			params_estimated = EXCLUDED.params_estimated,
			score            = EXCLUDED.score,
			benchmarks       = EXCLUDED.benchmarks`,
		m.Name, m.Family, m.ReleaseDate, m.Params, m.ParamsEstimated, m.Score, benchmarks,
	)
	if err != nil {
		return fmt.Errorf("upsert model %s: %w", m.Name, err)
	}
	return nil
}

// DeleteModel removes a model by name.
func (r *Repository) DeleteModel(ctx context.Context, name string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM vlm_models WHERE name = $1`, name); err != nil {
		return fmt.Errorf("delete model: %w", err)
	}
	return nil
}

// ListFamilies returns the distinct families in alphabetical order.
func (r *Repository) ListFamilies(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT family FROM vlm_models ORDER BY family`)
	if err != nil {
		return nil, fmt.Errorf("list families: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var family string
		if err := rows.Scan(&family); err != nil {
			return nil, fmt.Errorf("scan family: %w", err)
		}
		result = append(result, family)
	}
	return result, rows.Err()
}
