package event

import (
	"github.com/cockroachdb/errors"
)

// ErrGrammarViolation is returned if a sequence of events does not conform to the termination grammar.
var ErrGrammarViolation = errors.New("termination grammar violated")

// ValidateSequence checks that the events conform to next* (failed | completed | interrupted)?.
func ValidateSequence[V any](events ...Event[V]) error {
	for i, e := range events {
		if !e.kind.IsValid() {
			return errors.Wrapf(ErrGrammarViolation, "event %d has unknown kind %d", i, uint8(e.kind))
		}

		if e.IsTerminating() && i != len(events)-1 {
			return errors.Wrapf(ErrGrammarViolation, "event %d (%s) follows terminating event %d (%s)", i+1, events[i+1].kind, i, e.kind)
		}
	}

	return nil
}
