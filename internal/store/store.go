package store

import (
	"context"

	"github.com/nulzo/prism-fanout/internal/store/model"
)

// Repository is the main contract for the data layer.
type Repository interface {
	Runs() RunRepository

	// transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	Close() error
}

type RunRepository interface {
	// Log stores one provider record of a run.
	Log(ctx context.Context, rec *model.RunRecord) error
	// GetRecent returns the last N records, newest first.
	GetRecent(ctx context.Context, limit int) ([]model.RunRecord, error)
	// GetByRunID returns every record of one run ordered by provider.
	GetByRunID(ctx context.Context, runID string) ([]model.RunRecord, error)
	// GetProviderStats aggregates outcomes per provider over the last days.
	GetProviderStats(ctx context.Context, days int) ([]model.ProviderStats, error)
}
