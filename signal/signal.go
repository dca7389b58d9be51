// Package signal implements a minimal hot signal: a stream of zero or more next events followed by at most one
// terminating event.
//
// The Observer handed to the generator is the guard of the termination grammar. Once a terminating event has been
// delivered, every later event is dropped and counted as a violation. Events sent from several goroutines are
// delivered one at a time, in the order they were admitted, and observers may safely send to or dispose the signal
// from within their callbacks: such calls are queued behind the event that is currently being delivered.
package signal

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"go.uber.org/atomic"

	"github.com/iotaledger/streamkit/event"
	"github.com/iotaledger/streamkit/logger"
	"github.com/iotaledger/streamkit/options"
	"github.com/iotaledger/streamkit/syncutils"
)

// Signal is a push-driven stream of events.
type Signal[V any] struct {
	// hooks contains the registered observers in attachment order (uint64 -> *hook[V]).
	hooks        *linkedhashmap.Map
	hooksCounter atomic.Uint64
	hooksMutex   syncutils.RWMutex

	// queue contains the pending actions; only the goroutine that set draining executes them.
	queue      []func()
	draining   bool
	queueMutex syncutils.Mutex

	// replay is only accessed by the draining goroutine.
	replay []event.Event[V]

	terminated atomic.Bool
	disposed   atomic.Bool
	violations atomic.Uint64

	generatorDisposable Disposable
	generatorReleased   bool
	generatorMutex      syncutils.Mutex

	*settings
}

// New creates a signal and immediately runs the generator with the observer that feeds it. The Disposable returned
// by the generator is released when the signal terminates or is disposed.
func New[V any](generator func(observer *Observer[V]) Disposable, opts ...Option) *Signal[V] {
	s := &Signal[V]{
		hooks:    linkedhashmap.New(),
		settings: options.Apply(new(settings), opts, func(s *settings) { s.log = logger.OrNop(s.log) }),
	}

	if generator != nil {
		s.setGeneratorDisposable(generator(&Observer[V]{signal: s}))
	}

	return s
}

// Pipe creates a signal together with the observer that feeds it.
func Pipe[V any](opts ...Option) (*Signal[V], *Observer[V]) {
	var observer *Observer[V]
	s := New(func(o *Observer[V]) Disposable {
		observer = o

		return nil
	}, opts...)

	return s, observer
}

// Observe registers a callback for every event of the signal.
//
// Observing a signal that already terminated delivers the replay buffer, or a single interrupted event if the
// signal keeps no replay buffer. The returned Disposable detaches the callback.
func (s *Signal[V]) Observe(callback func(event.Event[V])) Disposable {
	h := &hook[V]{callback: callback}

	s.serialize(func() {
		if h.detached.Load() {
			return
		}

		for _, e := range s.replay {
			h.trigger(e)
		}

		if s.terminated.Load() {
			if len(s.replay) == 0 || !s.replay[len(s.replay)-1].IsTerminating() {
				h.trigger(event.Interrupted[V]())
			}

			return
		}

		s.hooksMutex.Lock()
		defer s.hooksMutex.Unlock()

		h.id = s.hooksCounter.Inc()
		s.hooks.Put(h.id, h)
	})

	return NewDisposable(func() {
		h.detached.Store(true)

		s.hooksMutex.Lock()
		defer s.hooksMutex.Unlock()

		if h.id != 0 {
			s.hooks.Remove(h.id)
		}
	})
}

// OnNext registers a callback for the values of the signal.
func (s *Signal[V]) OnNext(callback func(V)) Disposable {
	return s.Observe(func(e event.Event[V]) {
		e.Handle(callback, nil, nil, nil)
	})
}

// OnFailed registers a callback for the error that terminates the signal.
func (s *Signal[V]) OnFailed(callback func(error)) Disposable {
	return s.Observe(func(e event.Event[V]) {
		e.Handle(nil, callback, nil, nil)
	})
}

// OnCompleted registers a callback for the successful termination of the signal.
func (s *Signal[V]) OnCompleted(callback func()) Disposable {
	return s.Observe(func(e event.Event[V]) {
		e.Handle(nil, nil, callback, nil)
	})
}

// OnInterrupted registers a callback for the interruption of the signal.
func (s *Signal[V]) OnInterrupted(callback func()) Disposable {
	return s.Observe(func(e event.Event[V]) {
		e.Handle(nil, nil, nil, callback)
	})
}

// Dispose cancels the signal. If the signal has not terminated yet, its observers receive a single interrupted event
// and nothing is emitted afterwards.
func (s *Signal[V]) Dispose() {
	s.serialize(func() {
		if s.terminated.Load() {
			return
		}

		s.disposed.Store(true)
		s.deliver(event.Interrupted[V]())
	})
}

// IsTerminated returns true once a terminating event was delivered (or the signal was disposed).
func (s *Signal[V]) IsTerminated() bool {
	return s.terminated.Load()
}

// IsDisposed returns true if the signal was cancelled through Dispose.
func (s *Signal[V]) IsDisposed() bool {
	return s.disposed.Load()
}

// Violations returns the number of events that were dropped because they were sent after termination.
func (s *Signal[V]) Violations() uint64 {
	return s.violations.Load()
}

// send is called by the Observer and enforces the termination grammar.
func (s *Signal[V]) send(e event.Event[V]) {
	s.serialize(func() {
		switch {
		case !e.Kind().IsValid():
			s.violations.Inc()
			s.log.Warnf("dropped event with unknown kind %d", e.Kind())
		case s.disposed.Load():
			s.log.Debugf("dropped %s sent to disposed signal", e)
		case s.terminated.Load():
			s.violations.Inc()
			s.log.Warnf("dropped %s sent after termination", e)
		default:
			s.deliver(e)
		}
	})
}

// deliver records the event and triggers the hooks. It must only be called by the draining goroutine.
func (s *Signal[V]) deliver(e event.Event[V]) {
	terminating := e.IsTerminating()
	if terminating {
		s.terminated.Store(true)
	}

	s.record(e)

	// a panicking hook does not keep the event from the remaining hooks, the first panic is re-raised afterwards
	var recovered interface{}
	for _, h := range s.currentHooks(terminating) {
		if r := h.triggerRecovering(e); r != nil && recovered == nil {
			recovered = r
		}
	}

	if terminating {
		s.releaseGenerator()
	}

	if recovered != nil {
		panic(recovered)
	}
}

// record appends the event to the replay buffer, keeping at most replaySize next events.
func (s *Signal[V]) record(e event.Event[V]) {
	if s.replaySize == 0 {
		return
	}

	s.replay = append(s.replay, e)
	if !e.IsTerminating() && len(s.replay) > s.replaySize {
		s.replay[0] = event.Event[V]{}
		s.replay = s.replay[1:]
	}
}

// currentHooks returns a snapshot of the registered hooks and removes them all if the signal terminates.
func (s *Signal[V]) currentHooks(clear bool) []*hook[V] {
	s.hooksMutex.Lock()
	defer s.hooksMutex.Unlock()

	values := s.hooks.Values()
	hooks := make([]*hook[V], 0, len(values))
	for _, value := range values {
		//nolint:forcetypeassert // only *hook[V] are stored in the map
		hooks = append(hooks, value.(*hook[V]))
	}

	if clear {
		s.hooks.Clear()
	}

	return hooks
}

// serialize runs the action after all previously queued actions. The calling goroutine executes the queue unless
// another goroutine is already doing so.
func (s *Signal[V]) serialize(action func()) {
	s.queueMutex.Lock()
	s.queue = append(s.queue, action)
	if s.draining {
		s.queueMutex.Unlock()

		return
	}
	s.draining = true
	s.queueMutex.Unlock()

	s.drain()
}

func (s *Signal[V]) drain() {
	drained := false
	defer func() {
		if drained {
			return
		}

		// an action panicked (or called runtime.Goexit): other goroutines may have queued actions and returned,
		// so they are run before the panic is passed on
		recovered := recover()
		s.drain()

		if recovered != nil {
			panic(recovered)
		}
	}()

	for {
		s.queueMutex.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.queueMutex.Unlock()
			drained = true

			return
		}

		action := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.queueMutex.Unlock()

		action()
	}
}

func (s *Signal[V]) setGeneratorDisposable(disposable Disposable) {
	if disposable == nil {
		return
	}

	s.generatorMutex.Lock()
	if !s.generatorReleased {
		s.generatorDisposable = disposable
		s.generatorMutex.Unlock()

		return
	}
	s.generatorMutex.Unlock()

	disposable.Dispose()
}

func (s *Signal[V]) releaseGenerator() {
	s.generatorMutex.Lock()
	disposable := s.generatorDisposable
	s.generatorDisposable = nil
	s.generatorReleased = true
	s.generatorMutex.Unlock()

	if disposable != nil {
		disposable.Dispose()
	}
}

// hook is a registered observer callback.
type hook[V any] struct {
	id       uint64
	callback func(event.Event[V])
	detached atomic.Bool
}

// triggerRecovering triggers the hook and returns the value of a panic raised by its callback.
func (h *hook[V]) triggerRecovering(e event.Event[V]) (recovered interface{}) {
	defer func() {
		recovered = recover()
	}()

	h.trigger(e)

	return nil
}

func (h *hook[V]) trigger(e event.Event[V]) {
	if h.callback == nil || h.detached.Load() {
		return
	}

	h.callback(e)
}
