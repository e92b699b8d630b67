// mailbox
package replica

import (
	"sync"
)

// mailbox is an unbounded FIFO queue with any number of producers
// and a single consumer. Senders never block; the consumer blocks
// in take while the queue is empty. This is what gives the replica
// its "callers are never blocked on send, only on awaiting an
// outcome" property.
type mailbox[T any] struct {
	mu    sync.Mutex
	items []T
	wake  chan struct{}
}

func newMailbox[T any]() *mailbox[T] {
	return &mailbox[T]{wake: make(chan struct{}, 1)}
}

// put enqueues an item. Never blocks.
func (mb *mailbox[T]) put(item T) {
	mb.mu.Lock()
	mb.items = append(mb.items, item)
	mb.mu.Unlock()
	select {
	case mb.wake <- struct{}{}:
	default:
	}
}

// take dequeues the next item, blocking while the queue is empty.
// Only the owning loop may call take.
func (mb *mailbox[T]) take() T {
	for {
		mb.mu.Lock()
		if len(mb.items) > 0 {
			item := mb.items[0]
			mb.items = mb.items[1:]
			if len(mb.items) == 0 {
				mb.items = nil
			}
			mb.mu.Unlock()
			return item
		}
		mb.mu.Unlock()
		<-mb.wake
	}
}

// len reports the number of queued items.
func (mb *mailbox[T]) len() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return len(mb.items)
}
