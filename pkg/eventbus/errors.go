package eventbus

import (
	"errors"
	"fmt"

	"github.com/agnivade/levenshtein"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrNotRegistered is wrapped by emission or attach failures on event
	// names that were never registered.
	ErrNotRegistered = errors.New("event not registered")

	// ErrInvalidRegistration is wrapped by failures caused by malformed
	// registration entries.
	ErrInvalidRegistration = errors.New("invalid registration")
)

// NotRegisteredError reports an operation on an event name that has not been
// registered on the bus. Suggestion, when non-empty, is the closest
// registered name by edit distance.
type NotRegisteredError struct {
	Event      string
	Suggestion string
}

func (e *NotRegisteredError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("event %q is not registered (did you mean %q?)", e.Event, e.Suggestion)
	}
	return fmt.Sprintf("event %q is not registered; call RegisterEvents first", e.Event)
}

func (e *NotRegisteredError) Unwrap() error { return ErrNotRegistered }

// InvalidRegistrationError reports a malformed entry passed to
// RegisterEvents. Index is the entry's position in the batch, or -1 when the
// failure is not batch-related.
type InvalidRegistrationError struct {
	Index  int
	Event  string
	Reason string
}

func (e *InvalidRegistrationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("registration %d (event %q): %s", e.Index, e.Event, e.Reason)
	}
	return fmt.Sprintf("registration for event %q: %s", e.Event, e.Reason)
}

func (e *InvalidRegistrationError) Unwrap() error { return ErrInvalidRegistration }

// ListenerError wraps a single listener's failure during dispatch.
type ListenerError struct {
	Event      string
	ListenerID string
	Err        error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %s for event %q: %v", e.ListenerID, e.Event, e.Err)
}

func (e *ListenerError) Unwrap() error { return e.Err }

// maxSuggestDistance bounds how far a name may be from a registered one to
// still be offered as a suggestion.
const maxSuggestDistance = 3

// suggest returns the registered name closest to name, or "" when nothing is
// within maxSuggestDistance edits.
func suggest(name string, registered []string) string {
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, candidate := range registered {
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}
