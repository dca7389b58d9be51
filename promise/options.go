package promise

import (
	"github.com/iotaledger/streamkit/logger"
	"github.com/iotaledger/streamkit/options"
	"github.com/iotaledger/streamkit/workerpool"
)

// Option configures a Promise.
type Option = options.Option[settings]

// WithWorkerPool dispatches the continuations of the promise on the given worker pool instead of running them on
// the goroutine that resolves the promise (or registers the continuation).
func WithWorkerPool(workerPool *workerpool.WorkerPool) Option {
	return func(s *settings) {
		s.workerPool = workerPool
	}
}

// WithLogger sets the logger of the promise.
func WithLogger(log *logger.Logger) Option {
	return func(s *settings) {
		s.log = log
	}
}

type settings struct {
	workerPool *workerpool.WorkerPool
	log        *logger.Logger
}

// options returns the options that recreate the settings, used to derive promises.
func (s *settings) options() []Option {
	return []Option{WithWorkerPool(s.workerPool), WithLogger(s.log)}
}
