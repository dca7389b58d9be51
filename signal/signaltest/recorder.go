// Package signaltest provides helpers to inspect signals in tests.
package signaltest

import (
	"github.com/iotaledger/streamkit/event"
	"github.com/iotaledger/streamkit/signal"
	"github.com/iotaledger/streamkit/syncutils"
)

// Recorder records the events of a signal.
//
// Recorder is safe under concurrent delivery.
type Recorder[V any] struct {
	events []event.Event[V]
	mutex  syncutils.RWMutex
}

// NewRecorder creates a Recorder.
func NewRecorder[V any]() *Recorder[V] {
	return &Recorder[V]{}
}

// Record creates a Recorder that observes the given signal.
func Record[V any](s *signal.Signal[V]) (*Recorder[V], signal.Disposable) {
	r := NewRecorder[V]()

	return r, s.Observe(r.Handle)
}

// Handle appends the event to the recorder.
func (r *Recorder[V]) Handle(e event.Event[V]) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.events = append(r.events, e)
}

// Events returns a snapshot copy of the recorded events.
func (r *Recorder[V]) Events() []event.Event[V] {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	cp := make([]event.Event[V], len(r.events))
	copy(cp, r.events)

	return cp
}

// Values returns the values of the recorded next events in arrival order.
func (r *Recorder[V]) Values() []V {
	events := r.Events()

	values := make([]V, 0, len(events))
	for _, e := range events {
		if value, ok := e.Value(); ok {
			values = append(values, value)
		}
	}

	return values
}

// Terminated returns true if a terminating event was recorded.
func (r *Recorder[V]) Terminated() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.events) > 0 && r.events[len(r.events)-1].IsTerminating()
}

// Reset clears the recorder.
func (r *Recorder[V]) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.events = nil
}
