package gateway

import "time"

// GenerationRequest is a validated fan-out request. It is not modified after
// validation.
type GenerationRequest struct {
	Prompt      string            `json:"prompt" validate:"required"`
	Enabled     []string          `json:"toggles" validate:"min=1,dive,required"`
	Credentials map[string]string `json:"-"`
}

type OutcomeKind string

const (
	KindText    OutcomeKind = "text"
	KindFailed  OutcomeKind = "failed"
	KindSkipped OutcomeKind = "skipped"
)

// SkipMissingCredential marks a registered provider left out because no
// credential resolved.
const SkipMissingCredential = "missing_credential"

// Failure classes kept in the run history instead of raw upstream messages.
const (
	FailureTimeout  = "timeout"
	FailureCanceled = "canceled"
	FailurePanic    = "panic"
	FailureError    = "error"
)

// Outcome is what happened to one enabled, registered provider.
type Outcome struct {
	ProviderID string
	Kind       OutcomeKind
	Text       string
	// Message is the failure text shown to the caller after "Error: "
	Message    string
	SkipReason string
	Failure    string
	Latency    time.Duration
}

// Result of one fan-out run.
type Result struct {
	RunID string
	// Results maps provider id to text or "Error: <message>". Skipped
	// providers are absent.
	Results map[string]string
	// Outcomes has one entry per registered enabled provider, sorted by id.
	Outcomes []Outcome
}

func (o Outcome) reason() string {
	if o.Kind == KindSkipped {
		return o.SkipReason
	}
	return o.Failure
}
