package pipeline

import "sync"

// eventQueue is an unbounded FIFO. Push never blocks; a pump goroutine feeds
// the buffered events to the consumer channel in order and closes it after
// the queue is closed and drained.
type eventQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []Event
	closed bool
	out    chan Event
}

func newEventQueue() *eventQueue {
	q := &eventQueue{out: make(chan Event)}
	q.cond = sync.NewCond(&q.mu)
	go q.pump()
	return q
}

func (q *eventQueue) Push(ev Event) {
	q.mu.Lock()
	if !q.closed {
		q.buf = append(q.buf, ev)
		q.cond.Signal()
	}
	q.mu.Unlock()
}

func (q *eventQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Signal()
	q.mu.Unlock()
}

func (q *eventQueue) Events() <-chan Event { return q.out }

func (q *eventQueue) pump() {
	defer close(q.out)
	for {
		q.mu.Lock()
		for len(q.buf) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.buf) == 0 {
			q.mu.Unlock()
			return
		}
		ev := q.buf[0]
		q.buf[0] = nil
		q.buf = q.buf[1:]
		q.mu.Unlock()
		q.out <- ev
	}
}
