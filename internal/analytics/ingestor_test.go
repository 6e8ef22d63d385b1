package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nulzo/prism-fanout/internal/config"
	"github.com/nulzo/prism-fanout/internal/store/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	mu      sync.Mutex
	batches [][]*model.RunRecord
	err     error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Write(_ context.Context, batch []*model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, batch)
	return s.err
}

func (s *recordingSink) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

func TestIngestor_FlushesOnBatchSize(t *testing.T) {
	sink := &recordingSink{}
	ing := NewIngestor(zap.NewNop(), config.AnalyticsConfig{BufferSize: 10, BatchSize: 2, FlushInterval: time.Hour}, sink)
	ing.Start(context.Background())
	defer ing.Stop()

	ing.Log(&model.RunRecord{ID: "1"})
	ing.Log(&model.RunRecord{ID: "2"})

	assert.Eventually(t, func() bool { return sink.total() == 2 }, time.Second, 5*time.Millisecond)
}

func TestIngestor_StopFlushesRemainder(t *testing.T) {
	sink := &recordingSink{}
	failing := &recordingSink{err: errors.New("down")}
	ing := NewIngestor(zap.NewNop(), config.AnalyticsConfig{BatchSize: 100, FlushInterval: time.Hour}, failing, sink)
	ing.Start(context.Background())

	for i := 0; i < 3; i++ {
		ing.Log(&model.RunRecord{ID: "r"})
	}
	ing.Stop()

	assert.Equal(t, 3, sink.total(), "a failing sink does not starve the others")
	assert.Equal(t, 3, failing.total())

	// logging after stop is a no-op rather than a panic
	ing.Log(&model.RunRecord{ID: "late"})
	ing.Stop()
	assert.Equal(t, 3, sink.total())
}

func TestIngestor_DropsWhenFull(t *testing.T) {
	sink := &recordingSink{}
	// not started, so nothing drains the buffer
	ing := NewIngestor(zap.NewNop(), config.AnalyticsConfig{BufferSize: 1, BatchSize: 10, FlushInterval: time.Hour}, sink)

	ing.Log(&model.RunRecord{ID: "kept"})
	ing.Log(&model.RunRecord{ID: "dropped"})

	ing.Start(context.Background())
	ing.Stop()

	require.Len(t, sink.batches, 1)
	assert.Equal(t, "kept", sink.batches[0][0].ID)
}
