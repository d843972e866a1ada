package signal

import (
	"sync"
	"sync/atomic"
)

// queue is an unbounded multi-producer, single-consumer FIFO.
//
// Producers never take a lock: push swaps the tail and links the previous
// node. The consumer side is serialized by drainMu. A push that has swapped
// the tail but not yet linked hides itself and every later node until it
// completes; the next drain picks them up in order.
type queue[V any] struct {
	head    *qnode[V] // consumer-owned stub
	tail    atomic.Pointer[qnode[V]]
	drainMu sync.Mutex
}

type qnode[V any] struct {
	value V
	next  atomic.Pointer[qnode[V]]
}

func newQueue[V any]() *queue[V] {
	stub := &qnode[V]{}
	q := &queue[V]{head: stub}
	q.tail.Store(stub)
	return q
}

func (q *queue[V]) push(v V) {
	n := &qnode[V]{value: v}
	prev := q.tail.Swap(n)
	prev.next.Store(n)
}

// drain removes every linked value in FIFO order.
func (q *queue[V]) drain() []V {
	q.drainMu.Lock()
	defer q.drainMu.Unlock()

	var out []V
	for {
		next := q.head.next.Load()
		if next == nil {
			return out
		}
		out = append(out, next.value)
		var zero V
		next.value = zero
		q.head = next
	}
}
