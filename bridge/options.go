package bridge

import (
	"github.com/iotaledger/streamkit/logger"
	"github.com/iotaledger/streamkit/options"
	"github.com/iotaledger/streamkit/promise"
	"github.com/iotaledger/streamkit/signal"
	"github.com/iotaledger/streamkit/workerpool"
)

// Option configures a conversion.
type Option = options.Option[settings]

// WithLogger sets the logger that reports settlements and grammar violations.
func WithLogger(log *logger.Logger) Option {
	return func(s *settings) {
		s.log = log
	}
}

// WithWorkerPool sets the worker pool that the continuations of a promise created by ToPromise are dispatched on.
func WithWorkerPool(workerPool *workerpool.WorkerPool) Option {
	return func(s *settings) {
		s.workerPool = workerPool
	}
}

// WithInterruptedError sets the error that ToPromise rejects with when the signal is interrupted.
func WithInterruptedError(err error) Option {
	return func(s *settings) {
		if err != nil {
			s.interruptedErr = err
		}
	}
}

type settings struct {
	log            *logger.Logger
	workerPool     *workerpool.WorkerPool
	interruptedErr error
}

func newSettings(opts []Option) *settings {
	return options.Apply(&settings{interruptedErr: ErrInterrupted}, opts, func(s *settings) {
		s.log = logger.OrNop(s.log)
	})
}

func (s *settings) promiseOptions() []promise.Option {
	return []promise.Option{promise.WithLogger(s.log), promise.WithWorkerPool(s.workerPool)}
}

func (s *settings) signalOptions(replaySize int) []signal.Option {
	return []signal.Option{signal.WithLogger(s.log), signal.WithReplay(replaySize)}
}
