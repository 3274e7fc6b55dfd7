package app

import (
	"sync"

	"gameshow-service/internal/protocol"
)

// outbox is the unbounded FIFO of outbound messages for one connection.
// Producers (the phase loop and the inbound flow) never block on Push; the
// single consumer blocks in Next until a message or Close arrives.
type outbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []protocol.ServerMessage
	closed bool
}

func newOutbox() *outbox {
	o := &outbox{}
	o.cond = sync.NewCond(&o.mu)
	return o
}

// Push enqueues msg. It is a no-op once the outbox is closed.
func (o *outbox) Push(msg protocol.ServerMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.queue = append(o.queue, msg)
	o.cond.Signal()
}

// Next blocks for the next message in arrival order. ok is false once the
// outbox is closed and drained.
func (o *outbox) Next() (protocol.ServerMessage, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for len(o.queue) == 0 && !o.closed {
		o.cond.Wait()
	}
	if len(o.queue) == 0 {
		return nil, false
	}
	msg := o.queue[0]
	o.queue = o.queue[1:]
	return msg, true
}

// Close stops accepting new messages and wakes the consumer. Messages already
// queued can still be drained.
func (o *outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.cond.Broadcast()
}
