package syncutils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMutexSerializesWriters(t *testing.T) {
	var (
		mutex   Mutex
		counter int
		wg      sync.WaitGroup
	)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			mutex.Lock()
			defer mutex.Unlock()

			counter++
		}()
	}
	wg.Wait()

	require.Equal(t, 100, counter)
}

func TestRWMutexAllowsConcurrentReaders(t *testing.T) {
	var mutex RWMutex

	mutex.RLock()
	mutex.RLock()
	mutex.RUnlock()
	mutex.RUnlock()

	mutex.Lock()
	mutex.Unlock() //nolint:staticcheck // empty critical section is the point of the test
}
