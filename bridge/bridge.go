// Package bridge converts between promises, which settle exactly once, and signals, which emit any number of values
// followed by at most one terminating event.
//
// ToSignal turns the single outcome of a promise into next+completed or failed. ToPromise collects the values of a
// signal and settles once the signal terminates.
package bridge

import (
	"github.com/cockroachdb/errors"

	"github.com/iotaledger/streamkit/event"
	"github.com/iotaledger/streamkit/promise"
	"github.com/iotaledger/streamkit/signal"
	"github.com/iotaledger/streamkit/syncutils"
)

// ErrInterrupted is the default rejection reason of a promise created by ToPromise whose signal was interrupted.
var ErrInterrupted = errors.New("signal interrupted before completion")

// ToSignal converts the promise into a signal that emits next(value) followed by completed if the promise resolves,
// or failed(err) if it is rejected.
//
// The promise is observed right away. The returned signal retains its events and replays them to every observer, so
// observers that attach after the promise settled still receive the outcome. Disposing the signal before the promise
// settles delivers interrupted to the current observers and the outcome of the promise is never emitted.
func ToSignal[V any](p *promise.Promise[V], opts ...Option) *signal.Signal[V] {
	s := newSettings(opts)

	// at most one value is ever sent, so a replay buffer of one keeps the whole history
	return signal.New(func(observer *signal.Observer[V]) signal.Disposable {
		p.Then(func(value V) {
			observer.SendNext(value)
			observer.SendCompleted()
		}).Catch(func(err error) {
			observer.SendFailed(err)
		})

		return nil
	}, s.signalOptions(1)...)
}

// ToPromise converts the signal into a promise of all values it emits.
//
// The promise resolves with the values in emission order once the signal completes (an empty slice if there were
// none), is rejected with the error of a failed signal (collected values are discarded), and is rejected with
// ErrInterrupted (or the error set through WithInterruptedError) if the signal is interrupted.
func ToPromise[V any](s *signal.Signal[V], opts ...Option) *promise.Promise[[]V] {
	c := newCollector[V](newSettings(opts))

	return promise.New(func(resolve func([]V), reject func(error)) {
		c.resolve, c.reject = resolve, reject

		c.attach(s)
	}, c.promiseOptions()...)
}

// collector accumulates the values of one signal for one pending promise.
type collector[V any] struct {
	values  []V
	settled bool
	mutex   syncutils.Mutex

	resolve func([]V)
	reject  func(error)

	detach      signal.Disposable
	detachMutex syncutils.Mutex

	*settings
}

func newCollector[V any](s *settings) *collector[V] {
	return &collector[V]{
		values:   make([]V, 0),
		settings: s,
	}
}

// attach observes the signal and releases the observation once the promise settled.
func (c *collector[V]) attach(s *signal.Signal[V]) {
	disposable := s.Observe(c.handle)

	c.detachMutex.Lock()
	defer c.detachMutex.Unlock()

	if c.isSettled() {
		disposable.Dispose()

		return
	}

	c.detach = disposable
}

// handle processes an event of the signal.
func (c *collector[V]) handle(e event.Event[V]) {
	values, settle, ok := c.apply(e)
	if !ok {
		c.log.Warnf("ignored %s received after the promise settled", e)

		return
	}

	if settle == nil {
		return
	}

	settle(values)
	c.release()
}

// apply updates the buffer under the lock and returns the settlement to perform outside of it (nil for next events).
func (c *collector[V]) apply(e event.Event[V]) (values []V, settle func([]V), ok bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.settled {
		return nil, nil, false
	}

	switch e.Kind() {
	case event.NextKind:
		value, _ := e.Value()
		c.values = append(c.values, value)

		return nil, nil, true
	case event.CompletedKind:
		values, c.values, c.settled = c.values, nil, true
		c.log.Debugf("signal completed, resolving promise with %d values", len(values))

		return values, c.resolve, true
	case event.FailedKind:
		c.log.Debugf("signal failed, discarding %d values", len(c.values))

		return c.rejectWith(e.Err())
	case event.InterruptedKind:
		c.log.Debugf("signal interrupted, discarding %d values", len(c.values))

		return c.rejectWith(c.interruptedErr)
	default:
		panic(errors.Newf("unknown event kind %d", e.Kind()))
	}
}

func (c *collector[V]) rejectWith(err error) (values []V, settle func([]V), ok bool) {
	c.values, c.settled = nil, true

	return nil, func([]V) { c.reject(err) }, true
}

func (c *collector[V]) isSettled() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.settled
}

// release detaches the collector from the signal.
func (c *collector[V]) release() {
	c.detachMutex.Lock()
	detach := c.detach
	c.detach = nil
	c.detachMutex.Unlock()

	if detach != nil {
		detach.Dispose()
	}
}
