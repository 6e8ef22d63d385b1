package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/nulzo/prism-fanout/internal/store"
	"github.com/nulzo/prism-fanout/internal/store/model"
)

// Repository implements store.Repository. Inside WithTx the same type runs
// against the transaction instead of the pool.
type Repository struct {
	db *sqlx.DB
	// ext is db, or the open transaction
	ext sqlx.ExtContext
}

var _ store.Repository = (*Repository)(nil)

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, ext: db}
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// WithTx runs fn in one transaction, committing only when fn returns nil.
func (r *Repository) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	if _, nested := r.ext.(*sqlx.Tx); nested {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&Repository{db: r.db, ext: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *Repository) Runs() store.RunRepository {
	return runs{ext: r.ext}
}

type runs struct {
	ext sqlx.ExtContext
}

const insertRun = `
INSERT INTO run_records (
	id, run_id, provider_id, outcome, reason,
	latency_ms, prompt_chars, output_chars, created_at
) VALUES (
	:id, :run_id, :provider_id, :outcome, :reason,
	:latency_ms, :prompt_chars, :output_chars, :created_at
)`

func (r runs) Log(ctx context.Context, rec *model.RunRecord) error {
	row := *rec
	// DATETIME('now') comparisons in stats need UTC text
	row.CreatedAt = row.CreatedAt.UTC()
	_, err := sqlx.NamedExecContext(ctx, r.ext, insertRun, &row)
	return err
}

func (r runs) GetRecent(ctx context.Context, limit int) ([]model.RunRecord, error) {
	out := []model.RunRecord{}
	err := sqlx.SelectContext(ctx, r.ext, &out,
		`SELECT * FROM run_records ORDER BY created_at DESC, provider_id ASC LIMIT ?`, limit)
	return out, err
}

func (r runs) GetByRunID(ctx context.Context, runID string) ([]model.RunRecord, error) {
	out := []model.RunRecord{}
	err := sqlx.SelectContext(ctx, r.ext, &out,
		`SELECT * FROM run_records WHERE run_id = ? ORDER BY provider_id ASC`, runID)
	return out, err
}

// attempts and mean latency leave skipped rows out, nothing was called
const providerStats = `
SELECT
	provider_id,
	SUM(outcome != 'skipped')                                 AS attempts,
	SUM(outcome = 'text')                                     AS succeeded,
	SUM(outcome = 'failed')                                   AS failed,
	SUM(outcome = 'skipped')                                  AS skipped,
	COALESCE(AVG(CASE WHEN outcome != 'skipped' THEN latency_ms END), 0) AS avg_latency_ms
FROM run_records
WHERE created_at >= DATETIME('now', ?)
GROUP BY provider_id
ORDER BY provider_id ASC`

func (r runs) GetProviderStats(ctx context.Context, days int) ([]model.ProviderStats, error) {
	out := []model.ProviderStats{}
	err := sqlx.SelectContext(ctx, r.ext, &out, providerStats, fmt.Sprintf("-%d days", days))
	return out, err
}
