package inference

import "fmt"

// AlignmentError means the backend returned a parseable response whose
// cardinality does not match the request. Guessing which answer belongs to
// which word would mis-attribute definitions, so the whole batch fails and
// nothing from it is cached. It is never retried.
type AlignmentError struct {
	Requested int
	Received  int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("response has %d items for %d requested words", e.Received, e.Requested)
}

// TransientCallError wraps a transport-level failure (timeout, 5xx, rate
// limit, malformed full response) that exhausted its retry budget. The
// affected keys become unresolved ledger entries, not cache entries.
type TransientCallError struct {
	Attempts uint
	Err      error
}

func (e *TransientCallError) Error() string {
	return fmt.Sprintf("generation call failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransientCallError) Unwrap() error {
	return e.Err
}
