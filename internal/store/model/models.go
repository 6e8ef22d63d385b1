package model

import (
	"time"
)

// Outcome kinds of a single provider attempt.
const (
	OutcomeText    = "text"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// RunRecord is one provider's part of a fan-out run. Skipped providers get a
// record too, so the history shows what the caller never saw.
type RunRecord struct {
	ID         string `db:"id" json:"id"`
	RunID      string `db:"run_id" json:"run_id"`
	ProviderID string `db:"provider_id" json:"provider_id"`
	Outcome    string `db:"outcome" json:"outcome"`
	// Reason is the skip reason or the failure class, never the raw error
	Reason      string    `db:"reason" json:"reason,omitempty"`
	LatencyMS   int64     `db:"latency_ms" json:"latency_ms"`
	PromptChars int       `db:"prompt_chars" json:"prompt_chars"`
	OutputChars int       `db:"output_chars" json:"output_chars"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ProviderStats aggregates run records per provider.
type ProviderStats struct {
	ProviderID   string  `db:"provider_id" json:"provider_id"`
	Attempts     int64   `db:"attempts" json:"attempts"`
	Succeeded    int64   `db:"succeeded" json:"succeeded"`
	Failed       int64   `db:"failed" json:"failed"`
	Skipped      int64   `db:"skipped" json:"skipped"`
	AvgLatencyMS float64 `db:"avg_latency_ms" json:"avg_latency_ms"`
}
