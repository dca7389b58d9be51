//go:build deadlock

package syncutils

import (
	"time"

	"github.com/sasha-s/go-deadlock"
)

type (
	Mutex   = deadlock.Mutex
	RWMutex = deadlock.RWMutex
)

// DeadlockDetectionEnabled reports whether the deadlock detecting mutexes are in use.
const DeadlockDetectionEnabled = true

// DeadlockTimeout is the time a lock may be waited for before go-deadlock reports it.
const DeadlockTimeout = 20 * time.Second

func init() {
	deadlock.Opts.DeadlockTimeout = DeadlockTimeout
}
