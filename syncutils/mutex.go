//go:build !deadlock

// Package syncutils provides the mutex types used throughout streamkit.
//
// Building with the "deadlock" tag swaps them for the go-deadlock
// implementations, which report lock-order inversions and locks held for longer
// than DeadlockTimeout.
package syncutils

import (
	"sync"
)

type (
	Mutex   = sync.Mutex
	RWMutex = sync.RWMutex
)

// DeadlockDetectionEnabled reports whether the deadlock detecting mutexes are in use.
const DeadlockDetectionEnabled = false
