package signal

import (
	"sync"
)

// Disposable represents something that can be cancelled or released.
type Disposable interface {
	// Dispose releases the resource. It is safe to call Dispose multiple times.
	Dispose()
}

// DisposableFunc turns a function into a Disposable. It does not protect against repeated calls.
type DisposableFunc func()

// Dispose calls the function if it is not nil.
func (f DisposableFunc) Dispose() {
	if f != nil {
		f()
	}
}

// NewDisposable returns a Disposable that calls f at most once.
func NewDisposable(f func()) Disposable {
	var once sync.Once

	return DisposableFunc(func() {
		once.Do(func() {
			if f != nil {
				f()
			}
		})
	})
}

// NopDisposable is a Disposable that does nothing.
var NopDisposable Disposable = DisposableFunc(nil)
