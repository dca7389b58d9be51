package signal

import (
	"github.com/iotaledger/streamkit/event"
)

// Observer feeds events into the Signal it was created for.
type Observer[V any] struct {
	signal *Signal[V]
}

// Send delivers the event, unless the signal already terminated.
func (o *Observer[V]) Send(e event.Event[V]) {
	o.signal.send(e)
}

// SendNext delivers a value.
func (o *Observer[V]) SendNext(value V) {
	o.Send(event.Next(value))
}

// SendFailed terminates the signal with the given error.
func (o *Observer[V]) SendFailed(err error) {
	o.Send(event.Failed[V](err))
}

// SendCompleted terminates the signal successfully.
func (o *Observer[V]) SendCompleted() {
	o.Send(event.Completed[V]())
}

// SendInterrupted terminates the signal because event production was cancelled.
func (o *Observer[V]) SendInterrupted() {
	o.Send(event.Interrupted[V]())
}
