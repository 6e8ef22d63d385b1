package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nulzo/prism-fanout/internal/store"
	"github.com/nulzo/prism-fanout/internal/store/model"
	"github.com/redis/go-redis/v9"
)

// StoreSink writes each batch inside one database transaction.
type StoreSink struct {
	repo store.Repository
}

func NewStoreSink(repo store.Repository) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Write(ctx context.Context, batch []*model.RunRecord) error {
	return s.repo.WithTx(ctx, func(tx store.Repository) error {
		for _, rec := range batch {
			if err := tx.Runs().Log(ctx, rec); err != nil {
				return fmt.Errorf("log run record %s: %w", rec.ID, err)
			}
		}
		return nil
	})
}

// RedisSink appends JSON encoded records to a capped Redis list so other
// services can tail fan-out activity.
type RedisSink struct {
	client *redis.Client
	key    string
	maxLen int64
}

func NewRedisSink(client *redis.Client, key string, maxLen int64) *RedisSink {
	return &RedisSink{client: client, key: key, maxLen: maxLen}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Write(ctx context.Context, batch []*model.RunRecord) error {
	if len(batch) == 0 {
		return nil
	}

	values := make([]interface{}, len(batch))
	for i, rec := range batch {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal run record %d: %w", i, err)
		}
		values[i] = data
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, s.key, values...)
	if s.maxLen > 0 {
		pipe.LTrim(ctx, s.key, -s.maxLen, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push run records: %w", err)
	}
	return nil
}
