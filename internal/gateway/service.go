package gateway

import (
	"context"
	"errors"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/nulzo/prism-fanout/internal/analytics"
	"github.com/nulzo/prism-fanout/internal/credentials"
	"github.com/nulzo/prism-fanout/internal/llm"
	"github.com/nulzo/prism-fanout/internal/store/model"
	"github.com/nulzo/prism-fanout/pkg/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/nulzo/prism-fanout/internal/gateway"

var ErrNilRequest = errors.New("nil generation request")

// Service runs one prompt against every eligible provider.
type Service interface {
	// Run invokes all enabled providers concurrently and waits for every one
	// of them. Provider failures are part of the result, not an error.
	// req.Enabled may hold duplicates or come unsorted when Run is called
	// directly rather than through the HTTP validator; ids are deduped and
	// run in sorted order either way. Unknown ids are dropped and only
	// counted, they produce no outcome and no run record.
	Run(ctx context.Context, req *GenerationRequest) (*Result, error)

	// Providers describes the registry without exposing any secret.
	Providers() []api.ProviderInfo
}

type service struct {
	logger   *zap.Logger
	registry *llm.Registry
	resolver *credentials.Resolver
	ingestor analytics.Ingestor
	tracer   trace.Tracer
	timeout  time.Duration
}

// NewService wires the orchestrator. ingestor may be nil when run history is
// disabled. A zero timeout leaves provider calls bounded only by ctx.
func NewService(logger *zap.Logger, registry *llm.Registry, resolver *credentials.Resolver, ingestor analytics.Ingestor, timeout time.Duration) Service {
	return &service{
		logger:   logger,
		registry: registry,
		resolver: resolver,
		ingestor: ingestor,
		tracer:   otel.Tracer(tracerName),
		timeout:  timeout,
	}
}

type invocation struct {
	slot       int
	entry      llm.Entry
	credential string
}

func (s *service) Run(ctx context.Context, req *GenerationRequest) (*Result, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	runID := uuid.NewString()
	log := s.logger.With(zap.String("run_id", runID))

	ctx, span := s.tracer.Start(ctx, "fanout.run", trace.WithAttributes(
		attribute.String("fanout.run_id", runID),
		attribute.Int("fanout.enabled", len(req.Enabled)),
	))
	defer span.End()

	// unknown ids are caller controlled and unbounded, they are only counted
	ids := uniqueSorted(req.Enabled)
	outcomes := make([]Outcome, 0, min(len(ids), s.registry.Len()))
	calls := make([]invocation, 0, cap(outcomes))
	unknown := 0

	for _, id := range ids {
		entry, ok := s.registry.Lookup(id)
		if !ok {
			unknown++
			continue
		}
		secret, ok := s.resolver.Resolve(entry.CredentialName, req.Credentials)
		if !ok {
			outcomes = append(outcomes, Outcome{ProviderID: id, Kind: KindSkipped, SkipReason: SkipMissingCredential})
			continue
		}
		calls = append(calls, invocation{slot: len(outcomes), entry: entry, credential: secret})
		outcomes = append(outcomes, Outcome{ProviderID: id})
	}

	// every goroutine owns exactly one slot of outcomes
	var wg sync.WaitGroup
	for _, call := range calls {
		wg.Add(1)
		go func(call invocation) {
			defer wg.Done()
			outcomes[call.slot] = s.invoke(ctx, log, call, req.Prompt)
		}(call)
	}
	wg.Wait()

	results := make(map[string]string, len(calls))
	var failed, skipped int
	for _, o := range outcomes {
		switch o.Kind {
		case KindText:
			results[o.ProviderID] = o.Text
		case KindFailed:
			failed++
			results[o.ProviderID] = "Error: " + o.Message
		case KindSkipped:
			skipped++
			log.Debug("Provider skipped",
				zap.String("provider", o.ProviderID),
				zap.String("reason", o.SkipReason))
		}
	}

	span.SetAttributes(
		attribute.Int("fanout.results", len(results)),
		attribute.Int("fanout.failed", failed),
		attribute.Int("fanout.skipped", skipped),
		attribute.Int("fanout.unknown", unknown),
	)
	log.Info("Fan-out run completed",
		zap.Int("prompt_chars", utf8.RuneCountInString(req.Prompt)),
		zap.Int("enabled", len(ids)),
		zap.Int("invoked", len(calls)),
		zap.Int("failed", failed),
		zap.Int("skipped", skipped),
		zap.Int("unknown", unknown),
	)

	s.record(runID, req.Prompt, outcomes)

	return &Result{RunID: runID, Results: results, Outcomes: outcomes}, nil
}

// invoke runs one adapter under its own deadline and span. It never panics.
func (s *service) invoke(ctx context.Context, log *zap.Logger, call invocation, prompt string) (out Outcome) {
	out.ProviderID = call.entry.ID

	ctx, span := s.tracer.Start(ctx, "fanout.provider", trace.WithAttributes(
		attribute.String("fanout.provider.id", call.entry.ID),
		attribute.String("fanout.provider.type", call.entry.Provider.Type()),
	))
	defer span.End()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error("Provider panicked",
				zap.String("provider", call.entry.ID),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			out.Kind = KindFailed
			out.Text = ""
			out.Message = "provider panicked"
			out.Failure = FailurePanic
		}
		out.Latency = time.Since(start)

		span.SetAttributes(attribute.String("fanout.outcome", string(out.Kind)))
		if out.Kind == KindFailed {
			span.SetStatus(codes.Error, out.Failure)
			log.Warn("Provider call failed",
				zap.String("provider", call.entry.ID),
				zap.String("failure", out.Failure),
				zap.Duration("latency", out.Latency))
		}
	}()

	text, err := call.entry.Provider.Generate(ctx, prompt, call.credential)
	if err != nil {
		out.Kind = KindFailed
		out.Message, out.Failure = describeFailure(ctx, err)
		return out
	}

	out.Kind = KindText
	out.Text = text
	return out
}

// describeFailure turns an adapter error into the caller visible message and
// the failure class.
func describeFailure(ctx context.Context, err error) (string, string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "timeout", FailureTimeout
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return "canceled", FailureCanceled
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "failed", FailureError
	}
	return msg, FailureError
}

func (s *service) record(runID, prompt string, outcomes []Outcome) {
	if s.ingestor == nil {
		return
	}
	now := time.Now().UTC()
	promptChars := utf8.RuneCountInString(prompt)
	for _, o := range outcomes {
		s.ingestor.Log(&model.RunRecord{
			ID:          uuid.NewString(),
			RunID:       runID,
			ProviderID:  o.ProviderID,
			Outcome:     string(o.Kind),
			Reason:      o.reason(),
			LatencyMS:   o.Latency.Milliseconds(),
			PromptChars: promptChars,
			OutputChars: utf8.RuneCountInString(o.Text),
			CreatedAt:   now,
		})
	}
}

func (s *service) Providers() []api.ProviderInfo {
	entries := s.registry.Entries()
	out := make([]api.ProviderInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, api.ProviderInfo{
			ID:          e.ID,
			Type:        e.Provider.Type(),
			Name:        e.Name,
			Credential:  e.CredentialName,
			HasFallback: s.resolver.HasFallback(e.CredentialName),
		})
	}
	return out
}

// uniqueSorted copies ids without duplicates in sorted order. The HTTP path
// already sorts, direct callers of Run may not.
func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
