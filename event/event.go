// Package event implements the values that flow through a signal.
//
// Every signal conforms to the termination grammar
//
//	next* (failed | completed | interrupted)?
//
// A single Event cannot know which events preceded it, so the grammar is
// enforced by the signal runtime (see package signal), which refuses to deliver
// anything after a terminating event. The transformations in this package keep
// the grammar intact: they only ever touch the payload of the variant they are
// written for, and a terminating event is never dropped.
//
// The zero value of Event is not an event: it has no kind, and every operation
// that dispatches on the kind panics on it. Events are only created through
// Next, Failed, Completed and Interrupted.
package event

import (
	"fmt"
)

// Event is one occurrence on a signal. It is immutable and owns its payload.
type Event[V any] struct {
	kind  Kind
	value V
	err   error
}

// Next creates an event carrying a value produced by the signal.
func Next[V any](value V) Event[V] {
	return Event[V]{kind: NextKind, value: value}
}

// Failed creates an event that terminates the signal with the given error.
func Failed[V any](err error) Event[V] {
	return Event[V]{kind: FailedKind, err: err}
}

// Completed creates an event that terminates the signal successfully.
func Completed[V any]() Event[V] {
	return Event[V]{kind: CompletedKind}
}

// Interrupted creates an event that terminates the signal because of a cancellation.
func Interrupted[V any]() Event[V] {
	return Event[V]{kind: InterruptedKind}
}

// Kind returns the variant of the event.
func (e Event[V]) Kind() Kind {
	return e.kind
}

// IsTerminating returns true if no further events will be received after this one.
func (e Event[V]) IsTerminating() bool {
	return e.kind.IsTerminating()
}

// Value returns the value of a next event. The second return value is false for all other variants.
func (e Event[V]) Value() (value V, ok bool) {
	if e.kind != NextKind {
		return value, false
	}

	return e.value, true
}

// Err returns the error of a failed event and nil for all other variants.
func (e Event[V]) Err() error {
	if e.kind != FailedKind {
		return nil
	}

	return e.err
}

// MapError lifts the given function over the error of a failed event. All other variants are returned unchanged.
func (e Event[V]) MapError(f func(error) error) Event[V] {
	switch e.kind {
	case FailedKind:
		return Failed[V](f(e.err))
	case NextKind, CompletedKind, InterruptedKind:
		return e
	default:
		panic(unknownKind(e.kind))
	}
}

// Handle calls the callback that matches the variant of the event. Nil callbacks are skipped.
func (e Event[V]) Handle(onNext func(V), onFailed func(error), onCompleted func(), onInterrupted func()) {
	switch e.kind {
	case NextKind:
		if onNext != nil {
			onNext(e.value)
		}
	case FailedKind:
		if onFailed != nil {
			onFailed(e.err)
		}
	case CompletedKind:
		if onCompleted != nil {
			onCompleted()
		}
	case InterruptedKind:
		if onInterrupted != nil {
			onInterrupted()
		}
	default:
		panic(unknownKind(e.kind))
	}
}

// String returns a human-readable version of the event.
func (e Event[V]) String() string {
	switch e.kind {
	case NextKind:
		return fmt.Sprintf("next(%v)", e.value)
	case FailedKind:
		return fmt.Sprintf("failed(%s)", description(e.err))
	default:
		return e.kind.String()
	}
}

// Map lifts the given function over the value of a next event. Terminating events keep their variant and error.
func Map[V, U any](e Event[V], f func(V) U) Event[U] {
	switch e.kind {
	case NextKind:
		return Next(f(e.value))
	case FailedKind:
		return Failed[U](e.err)
	case CompletedKind:
		return Completed[U]()
	case InterruptedKind:
		return Interrupted[U]()
	default:
		panic(unknownKind(e.kind))
	}
}

// FlatMap lifts the given function over the value of a next event.
//
// If f yields no value (ok == false) the event is swallowed and FlatMap returns ok == false. Terminating events are
// never swallowed: they are always returned with ok == true.
func FlatMap[V, U any](e Event[V], f func(V) (U, bool)) (mapped Event[U], ok bool) {
	switch e.kind {
	case NextKind:
		value, hasValue := f(e.value)
		if !hasValue {
			return mapped, false
		}

		return Next(value), true
	case FailedKind:
		return Failed[U](e.err), true
	case CompletedKind:
		return Completed[U](), true
	case InterruptedKind:
		return Interrupted[U](), true
	default:
		panic(unknownKind(e.kind))
	}
}

// Equal compares two events.
//
// Failed events are compared by the text of their errors, not by identity: two distinct errors with the same
// message are considered equal. Events of different variants are never equal.
func Equal[V comparable](a, b Event[V]) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case NextKind:
		return a.value == b.value
	case FailedKind:
		return description(a.err) == description(b.err)
	case CompletedKind, InterruptedKind:
		return true
	default:
		panic(unknownKind(a.kind))
	}
}

// description returns the message of the error, nil errors have an empty description.
func description(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
