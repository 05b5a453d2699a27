package pipeline

// workQueue is an unbounded multi-producer/multi-consumer stream of
// descriptors. Sends never block on slow consumers; a pump goroutine
// buffers the backlog in between. Closing the send side is the only
// termination signal consumers observe: once the sender closes and the
// backlog drains, the receive side closes. Each descriptor is delivered to
// exactly one receiver.
type workQueue struct {
	in   chan Descriptor
	out  chan Descriptor
	done chan struct{}
}

func newWorkQueue() *workQueue {
	q := &workQueue{
		in:   make(chan Descriptor),
		out:  make(chan Descriptor),
		done: make(chan struct{}),
	}
	go q.pump()
	return q
}

func (q *workQueue) pump() {
	defer close(q.out)
	var backlog []Descriptor
	in := q.in
	for {
		var out chan Descriptor
		var next Descriptor
		if len(backlog) > 0 {
			out = q.out
			next = backlog[0]
		} else if in == nil {
			return
		}
		select {
		case d, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			backlog = append(backlog, d)
		case out <- next:
			backlog = backlog[1:]
		case <-q.done:
			// All consumers are gone; undelivered items are dropped.
			return
		}
	}
}

// send enqueues one descriptor. It must not be called after closeSend.
func (q *workQueue) send(d Descriptor) {
	q.in <- d
}

// closeSend signals that no further descriptors will arrive. The receive
// channel closes once the backlog is drained.
func (q *workQueue) closeSend() {
	close(q.in)
}

// receive returns the channel consumers range over.
func (q *workQueue) receive() <-chan Descriptor {
	return q.out
}

// shutdown releases the pump once every task has terminated, so a run whose
// workers all failed early does not leak the pump on an undelivered backlog.
func (q *workQueue) shutdown() {
	close(q.done)
}
