package aggregator

import "strings"

// AggregationError reports total provider exhaustion: every attempted
// provider failed and no table could be produced. It carries one error per
// attempt so callers can see which source failed how.
type AggregationError struct {
	Errs []error
}

func (e *AggregationError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return "all providers failed: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the per-provider errors to errors.Is and errors.As.
func (e *AggregationError) Unwrap() []error {
	return e.Errs
}
