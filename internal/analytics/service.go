package analytics

import (
	"context"

	"github.com/nulzo/prism-fanout/internal/store"
	"github.com/nulzo/prism-fanout/internal/store/model"
)

const (
	DefaultRunLimit  = 50
	DefaultStatsDays = 7
)

// Service is the read side of the run history.
type Service interface {
	RecentRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
	Run(ctx context.Context, runID string) ([]model.RunRecord, error)
	ProviderStats(ctx context.Context, days int) ([]model.ProviderStats, error)
}

type service struct {
	repo store.Repository
}

func NewService(repo store.Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) RecentRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if limit <= 0 {
		limit = DefaultRunLimit
	}
	return s.repo.Runs().GetRecent(ctx, limit)
}

func (s *service) Run(ctx context.Context, runID string) ([]model.RunRecord, error) {
	return s.repo.Runs().GetByRunID(ctx, runID)
}

func (s *service) ProviderStats(ctx context.Context, days int) ([]model.ProviderStats, error) {
	if days <= 0 {
		days = DefaultStatsDays
	}
	return s.repo.Runs().GetProviderStats(ctx, days)
}
