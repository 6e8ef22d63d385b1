package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/nulzo/prism-fanout/internal/config"
	"github.com/nulzo/prism-fanout/internal/store/model"
	"go.uber.org/zap"
)

// Sink receives batches of run records. Implementations must be safe to call
// from the single ingestor worker; they are never called concurrently.
type Sink interface {
	Name() string
	Write(ctx context.Context, batch []*model.RunRecord) error
}

// Ingestor handles the asynchronous persistence of run records. Log never
// blocks the request path: when the buffer is full the record is dropped.
type Ingestor interface {
	Log(rec *model.RunRecord)
	Start(ctx context.Context)
	Stop()
}

type ingestor struct {
	logger    *zap.Logger
	sinks     []Sink
	recChan   chan *model.RunRecord
	batchSize int
	flushTime time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewIngestor(logger *zap.Logger, cfg config.AnalyticsConfig, sinks ...Sink) Ingestor {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	return &ingestor{
		logger:    logger,
		sinks:     sinks,
		recChan:   make(chan *model.RunRecord, cfg.BufferSize),
		batchSize: cfg.BatchSize,
		flushTime: cfg.FlushInterval,
		done:      make(chan struct{}),
	}
}

func (i *ingestor) Log(rec *model.RunRecord) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.closed {
		return
	}

	select {
	case i.recChan <- rec:
	default:
		i.logger.Warn("Analytics buffer full, dropping run record",
			zap.String("run_id", rec.RunID),
			zap.String("provider", rec.ProviderID))
	}
}

func (i *ingestor) Start(ctx context.Context) {
	go i.worker(ctx)
}

// Stop closes the buffer and waits until the worker flushed what was left.
func (i *ingestor) Stop() {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return
	}
	i.closed = true
	close(i.recChan)
	i.mu.Unlock()

	<-i.done
}

func (i *ingestor) worker(ctx context.Context) {
	defer close(i.done)

	batch := make([]*model.RunRecord, 0, i.batchSize)
	ticker := time.NewTicker(i.flushTime)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// the run context may already be gone, writes outlive it
		writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		for _, sink := range i.sinks {
			if err := sink.Write(writeCtx, batch); err != nil {
				i.logger.Error("Failed to persist run records",
					zap.String("sink", sink.Name()),
					zap.Int("count", len(batch)),
					zap.Error(err))
			}
		}
		batch = make([]*model.RunRecord, 0, i.batchSize)
	}

	for {
		select {
		case rec, ok := <-i.recChan:
			if !ok {
				flush()
				return
			}
			batch = append(batch, rec)
			if len(batch) >= i.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			// drain what is already buffered
			for {
				select {
				case rec, ok := <-i.recChan:
					if !ok {
						flush()
						return
					}
					batch = append(batch, rec)
				default:
					flush()
					return
				}
			}
		}
	}
}
