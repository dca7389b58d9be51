package promise

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/iotaledger/streamkit/workerpool"
)

var errTest = errors.New("test error")

func TestResolve(t *testing.T) {
	var resolve func(int)
	p := New(func(res func(int), _ func(error)) {
		resolve = res
	})
	require.True(t, p.IsPending())

	var (
		value    int
		failed   bool
		finished bool
	)
	p.Then(func(v int) { value = v }).Catch(func(error) { failed = true }).Finally(func() { finished = true })

	resolve(42)

	require.False(t, p.IsPending())
	require.Equal(t, 42, value)
	require.False(t, failed)
	require.True(t, finished)
}

func TestReject(t *testing.T) {
	p := Rejected[int](errTest)

	var (
		failure  error
		resolved bool
	)
	p.Then(func(int) { resolved = true }).Catch(func(err error) { failure = err })

	require.False(t, resolved)
	require.Equal(t, errTest, failure)

	_, err := p.Await(context.Background())
	require.Equal(t, errTest, err)
}

func TestSettlesOnlyOnce(t *testing.T) {
	var (
		resolve func(int)
		reject  func(error)
	)
	p := New(func(res func(int), rej func(error)) {
		resolve, reject = res, rej
	})

	calls := atomic.NewInt32(0)
	p.Finally(func() { calls.Inc() })

	resolve(1)
	resolve(2)
	reject(errTest)

	value, err := p.Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, value)
	require.EqualValues(t, 1, calls.Load())
}

func TestLateContinuationIsCalledImmediately(t *testing.T) {
	p := Resolved("done")

	var value string
	p.Then(func(v string) { value = v })

	require.Equal(t, "done", value)
}

func TestContinuationsRunInRegistrationOrder(t *testing.T) {
	var resolve func(int)
	p := New(func(res func(int), _ func(error)) { resolve = res })

	var calls []string
	for i := 0; i < 5; i++ {
		i := i
		p.Then(func(int) { calls = append(calls, strconv.Itoa(i)) })
	}
	resolve(0)

	require.Equal(t, []string{"0", "1", "2", "3", "4"}, calls)
}

func TestExecutorPanicRejects(t *testing.T) {
	p := New(func(func(int), func(error)) {
		panic("boom")
	})

	_, err := p.Await(context.Background())
	require.True(t, errors.Is(err, ErrExecutorPanicked))
	require.Contains(t, err.Error(), "boom")
}

func TestNilRejection(t *testing.T) {
	_, err := Rejected[int](nil).Await(context.Background())
	require.True(t, errors.Is(err, ErrNilRejection))
}

func TestAwaitContextCancelled(t *testing.T) {
	p := New(func(func(int), func(error)) {})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Await(ctx)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	require.True(t, p.IsPending())
}

func TestAwaitFromOtherGoroutine(t *testing.T) {
	p := New(func(resolve func(int), _ func(error)) {
		go func() {
			time.Sleep(5 * time.Millisecond)
			resolve(7)
		}()
	})

	<-p.Done()

	value, err := p.Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, value)
}

func TestMap(t *testing.T) {
	mapped := Map(Resolved(21), func(v int) (string, error) {
		return strconv.Itoa(v * 2), nil
	})
	value, err := mapped.Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, "42", value)

	_, err = Map(Resolved(21), func(int) (string, error) {
		return "", errTest
	}).Await(context.Background())
	require.Equal(t, errTest, err)

	called := false
	_, err = Map(Rejected[int](errTest), func(int) (string, error) {
		called = true

		return "", nil
	}).Await(context.Background())
	require.Equal(t, errTest, err)
	require.False(t, called)
}

func TestWorkerPoolDispatch(t *testing.T) {
	pool, err := workerpool.New("promise-test", workerpool.WithWorkerCount(2))
	require.NoError(t, err)
	defer pool.Shutdown()

	var resolve func(int)
	p := New(func(res func(int), _ func(error)) { resolve = res }, WithWorkerPool(pool))

	var (
		wg  sync.WaitGroup
		sum atomic.Int64
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		p.Then(func(v int) {
			defer wg.Done()

			sum.Add(int64(v))
		})
	}

	resolve(3)
	wg.Wait()

	require.EqualValues(t, 30, sum.Load())
}

func TestWorkerPoolShutdownRunsInPlace(t *testing.T) {
	pool, err := workerpool.New("promise-test", workerpool.WithWorkerCount(1))
	require.NoError(t, err)
	pool.Shutdown()

	var value int
	Resolved(5, WithWorkerPool(pool)).Then(func(v int) { value = v })

	require.Equal(t, 5, value)
}

func TestPanickingContinuationDoesNotBlockOthers(t *testing.T) {
	var resolve func(int)
	p := New(func(res func(int), _ func(error)) { resolve = res })

	var calls []string
	p.Then(func(int) { calls = append(calls, "first") })
	p.Then(func(int) { panic("boom") })
	p.Then(func(v int) { calls = append(calls, strconv.Itoa(v)) })
	p.Finally(func() { calls = append(calls, "finally") })

	require.NotPanics(t, func() { resolve(42) })
	require.Equal(t, []string{"first", "42", "finally"}, calls)

	require.NotPanics(t, func() { p.Then(func(int) { panic("late") }) })

	var late int
	p.Then(func(v int) { late = v })
	require.Equal(t, 42, late)
}

func TestPanickingContinuationOnWorkerPool(t *testing.T) {
	pool, err := workerpool.New("promise-test", workerpool.WithWorkerCount(1))
	require.NoError(t, err)
	defer pool.Shutdown()

	p := New(func(func(int), func(error)) {}, WithWorkerPool(pool))
	p.Catch(func(error) { panic("boom") })

	failures := make(chan error, 1)
	p.Catch(func(err error) { failures <- err })

	p.reject(errTest)

	select {
	case err := <-failures:
		require.Equal(t, errTest, err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "continuation after the panicking one did not run")
	}
}
