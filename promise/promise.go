// Package promise implements a single-resolution asynchronous value.
//
// A Promise is settled exactly once, either resolved with a value or rejected with an error. Continuations that are
// registered after the promise settled are called immediately, so a resolution can never be missed. A panicking
// continuation is recovered and logged, the other continuations still run.
package promise

import (
	"context"
	"runtime/debug"

	"github.com/cockroachdb/errors"

	"github.com/iotaledger/streamkit/logger"
	"github.com/iotaledger/streamkit/options"
	"github.com/iotaledger/streamkit/syncutils"
)

var (
	// ErrExecutorPanicked is the rejection reason of a promise whose executor panicked.
	ErrExecutorPanicked = errors.New("promise executor panicked")

	// ErrNilRejection is the rejection reason of a promise that was rejected with a nil error.
	ErrNilRejection = errors.New("promise rejected with nil error")
)

// Promise is a value that becomes available asynchronously.
type Promise[V any] struct {
	value V
	err   error

	// callbacks contains the continuations that wait for the promise to settle.
	callbacks []func()
	settled   bool
	done      chan struct{}
	mutex     syncutils.Mutex

	*settings
}

// New creates a promise and runs the executor immediately. Only the first call to resolve or reject settles the
// promise, later calls are ignored. A panic in the executor rejects the promise with ErrExecutorPanicked.
func New[V any](executor func(resolve func(V), reject func(error)), opts ...Option) *Promise[V] {
	p := newPromise[V](opts...)

	func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				p.settle(*new(V), errors.Wrapf(ErrExecutorPanicked, "%v", recovered))
			}
		}()

		executor(p.resolve, p.reject)
	}()

	return p
}

// Resolved creates a promise that is resolved with the given value.
func Resolved[V any](value V, opts ...Option) *Promise[V] {
	p := newPromise[V](opts...)
	p.resolve(value)

	return p
}

// Rejected creates a promise that is rejected with the given error.
func Rejected[V any](err error, opts ...Option) *Promise[V] {
	p := newPromise[V](opts...)
	p.reject(err)

	return p
}

func newPromise[V any](opts ...Option) *Promise[V] {
	return &Promise[V]{
		callbacks: make([]func(), 0),
		done:      make(chan struct{}),
		settings:  options.Apply(new(settings), opts, func(s *settings) { s.log = logger.OrNop(s.log) }),
	}
}

// Then registers a continuation that is called with the value if the promise resolves.
func (p *Promise[V]) Then(onSuccess func(V)) *Promise[V] {
	p.register(func() {
		if p.err == nil {
			onSuccess(p.value)
		}
	})

	return p
}

// Catch registers a continuation that is called with the error if the promise is rejected.
func (p *Promise[V]) Catch(onFailure func(error)) *Promise[V] {
	p.register(func() {
		if p.err != nil {
			onFailure(p.err)
		}
	})

	return p
}

// Finally registers a continuation that is called once the promise settled, regardless of the outcome.
func (p *Promise[V]) Finally(callback func()) *Promise[V] {
	p.register(callback)

	return p
}

// Await blocks until the promise settled or the context is done.
func (p *Promise[V]) Await(ctx context.Context) (value V, err error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		return value, ctx.Err()
	}
}

// Done returns a channel that is closed once the promise settled.
func (p *Promise[V]) Done() <-chan struct{} {
	return p.done
}

// IsPending returns true if the promise has not settled yet.
func (p *Promise[V]) IsPending() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return !p.settled
}

func (p *Promise[V]) resolve(value V) {
	p.settle(value, nil)
}

func (p *Promise[V]) reject(err error) {
	if err == nil {
		err = ErrNilRejection
	}

	p.settle(*new(V), err)
}

// settle stores the outcome and runs the waiting continuations. It returns false if the promise already settled.
func (p *Promise[V]) settle(value V, err error) bool {
	callbacks, settled := func() ([]func(), bool) {
		p.mutex.Lock()
		defer p.mutex.Unlock()

		if p.settled {
			return nil, false
		}

		p.value, p.err, p.settled = value, err, true
		callbacks := p.callbacks
		p.callbacks = nil
		close(p.done)

		return callbacks, true
	}()

	if !settled {
		p.log.Debugf("ignored additional settlement of promise (value: %v, err: %v)", value, err)

		return false
	}

	for _, callback := range callbacks {
		p.dispatch(callback)
	}

	return true
}

// register adds the callback to the waiting continuations or dispatches it right away if the promise already settled.
func (p *Promise[V]) register(callback func()) {
	if !func() (callbackRegistered bool) {
		p.mutex.Lock()
		defer p.mutex.Unlock()

		if p.settled {
			return false
		}

		p.callbacks = append(p.callbacks, callback)

		return true
	}() {
		p.dispatch(callback)
	}
}

func (p *Promise[V]) dispatch(callback func()) {
	if p.workerPool == nil {
		p.run(callback)

		return
	}

	if err := p.workerPool.Submit(func() { p.run(callback) }); err != nil {
		p.log.Warnf("running continuation in place: %s", err)

		p.run(callback)
	}
}

// run executes the continuation and recovers from its panic, so that it cannot keep the other continuations from
// running.
func (p *Promise[V]) run(callback func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			p.log.Errorf("recovered from panic in promise continuation: %v\n%s", recovered, debug.Stack())
		}
	}()

	callback()
}
