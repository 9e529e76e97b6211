package aggregator

import "time"

// Outcome is the result of the most recent attempt against a provider.
type Outcome string

const (
	OutcomeNone    Outcome = ""
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
)

// ProviderState is the reliability snapshot of one provider: consecutive
// failures since the last success, the last attempt outcome and time, and
// whether the provider is currently demoted in the attempt order. State
// lives in memory for the lifetime of the process and is mutated only by
// the aggregator.
type ProviderState struct {
	ID                string    `json:"id"`
	ConsecutiveErrors int       `json:"consecutive_errors"`
	LastOutcome       Outcome   `json:"last_outcome"`
	LastAttemptAt     time.Time `json:"last_attempt_at"`
	Degraded          bool      `json:"degraded"`
}
