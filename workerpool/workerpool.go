// Package workerpool provides the goroutine pool that promise continuations can be dispatched on.
package workerpool

import (
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/atomic"

	"github.com/iotaledger/streamkit/logger"
	"github.com/iotaledger/streamkit/options"
	"github.com/iotaledger/streamkit/syncutils"
)

// ErrShutdown is returned when a task is submitted to a pool that was shut down.
var ErrShutdown = errors.New("worker pool was shut down")

// WorkerPool executes submitted tasks on a bounded set of ants workers.
type WorkerPool struct {
	// Name is the name of the pool, used in log messages.
	Name string

	pool         *ants.Pool
	pendingTasks sync.WaitGroup
	pendingCount atomic.Int64
	shutdown     atomic.Bool
	shutdownOnce sync.Once
	shutdownMu   syncutils.RWMutex

	workerCount int
	log         *logger.Logger
}

// New creates a new WorkerPool with the given name.
func New(name string, opts ...options.Option[WorkerPool]) (*WorkerPool, error) {
	w := options.Apply(&WorkerPool{
		Name:        name,
		workerCount: 2 * runtime.NumCPU(),
	}, opts, func(w *WorkerPool) {
		w.log = logger.OrNop(w.log).Named(name)
	})

	pool, err := ants.NewPool(w.workerCount, ants.WithPanicHandler(w.handlePanic))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create worker pool %s", name)
	}
	w.pool = pool

	return w, nil
}

// Submit queues the task for execution. It blocks while all workers are busy.
func (w *WorkerPool) Submit(task func()) error {
	if !w.trackTask() {
		return errors.Wrapf(ErrShutdown, "failed to submit task to %s", w.Name)
	}

	if err := w.pool.Submit(func() {
		defer w.taskDone()

		task()
	}); err != nil {
		w.taskDone()

		if errors.Is(err, ants.ErrPoolClosed) {
			return errors.Wrapf(ErrShutdown, "failed to submit task to %s", w.Name)
		}

		return errors.Wrapf(err, "failed to submit task to %s", w.Name)
	}

	return nil
}

// PendingTasks returns the number of submitted tasks that did not finish yet.
func (w *WorkerPool) PendingTasks() int {
	return int(w.pendingCount.Load())
}

// WorkerCount returns the maximum number of concurrently running tasks.
func (w *WorkerPool) WorkerCount() int {
	return w.workerCount
}

// IsShutdown returns true if the pool does not accept new tasks anymore.
func (w *WorkerPool) IsShutdown() bool {
	return w.shutdown.Load()
}

// Shutdown stops accepting new tasks, waits for the pending ones and releases the workers.
func (w *WorkerPool) Shutdown() {
	w.shutdownOnce.Do(func() {
		w.shutdownMu.Lock()
		w.shutdown.Store(true)
		w.shutdownMu.Unlock()

		w.pendingTasks.Wait()
		w.pool.Release()

		w.log.Debugf("worker pool %s shut down", w.Name)
	})
}

// trackTask registers a pending task unless the pool was shut down.
func (w *WorkerPool) trackTask() bool {
	w.shutdownMu.RLock()
	defer w.shutdownMu.RUnlock()

	if w.shutdown.Load() {
		return false
	}

	w.pendingTasks.Add(1)
	w.pendingCount.Inc()

	return true
}

func (w *WorkerPool) taskDone() {
	w.pendingCount.Dec()
	w.pendingTasks.Done()
}

func (w *WorkerPool) handlePanic(recovered interface{}) {
	w.log.Errorf("recovered from panic in worker pool %s: %v\n%s", w.Name, recovered, debug.Stack())
}

// WithWorkerCount sets the maximum number of concurrently running tasks.
func WithWorkerCount(workerCount int) options.Option[WorkerPool] {
	return func(w *WorkerPool) {
		if workerCount > 0 {
			w.workerCount = workerCount
		}
	}
}

// WithLogger sets the logger that reports recovered panics.
func WithLogger(log *logger.Logger) options.Option[WorkerPool] {
	return func(w *WorkerPool) {
		w.log = log
	}
}
