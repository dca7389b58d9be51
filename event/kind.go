package event

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind identifies one of the four variants of an Event.
type Kind uint8

const (
	// NextKind is a value produced by the signal. It does not terminate the signal.
	NextKind Kind = iota + 1

	// FailedKind terminates the signal because of an error.
	FailedKind

	// CompletedKind terminates the signal successfully.
	CompletedKind

	// InterruptedKind terminates the signal because event production was cancelled.
	InterruptedKind
)

// IsValid returns true if the kind is one of the four defined variants.
func (k Kind) IsValid() bool {
	return k >= NextKind && k <= InterruptedKind
}

// IsTerminating returns true for every kind except NextKind.
func (k Kind) IsTerminating() bool {
	switch k {
	case NextKind:
		return false
	case FailedKind, CompletedKind, InterruptedKind:
		return true
	default:
		panic(unknownKind(k))
	}
}

// String returns the lower case name of the kind.
func (k Kind) String() string {
	switch k {
	case NextKind:
		return "next"
	case FailedKind:
		return "failed"
	case CompletedKind:
		return "completed"
	case InterruptedKind:
		return "interrupted"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

func unknownKind(k Kind) error {
	return errors.Newf("unknown event kind %d", uint8(k))
}
