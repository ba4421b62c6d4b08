package vm

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// DefaultQueueSize is the capacity of the input and output queues of a
// Machine created without the QueueSize option.
const DefaultQueueSize = 32

var (
	// ErrQueueFull is the panic value of a push to a full queue.
	ErrQueueFull = errors.New("push to full queue")
	// ErrQueueEmpty is the panic value of a pop from an empty queue.
	ErrQueueEmpty = errors.New("pop from empty queue")
)

// Queue is a bounded FIFO of machine words.
//
// A Queue is not safe for concurrent use. When two machines are connected
// the upstream machine is its only writer and the downstream machine its only
// reader, and both are driven from the same goroutine.
type Queue struct {
	buf  []int64
	r, w uint
}

// NewQueue returns an empty queue holding at most size values.
func NewQueue(size int) *Queue {
	if size <= 0 {
		panic(fmt.Errorf("invalid queue size %d", size))
	}
	return &Queue{buf: make([]int64, size)}
}

func (q *Queue) Len() int    { return int(q.w - q.r) }
func (q *Queue) Cap() int    { return len(q.buf) }
func (q *Queue) Empty() bool { return q.r == q.w }
func (q *Queue) Full() bool  { return q.w-q.r == uint(len(q.buf)) }

// Push appends v to the queue. It panics with ErrQueueFull if the queue is
// at capacity.
func (q *Queue) Push(v int64) {
	if q.Full() {
		panic(ErrQueueFull)
	}
	q.buf[q.w%uint(len(q.buf))] = v
	q.w++
}

// Pop removes and returns the oldest value. It panics with ErrQueueEmpty if
// the queue is empty.
func (q *Queue) Pop() int64 {
	if q.Empty() {
		panic(ErrQueueEmpty)
	}
	v := q.buf[q.r%uint(len(q.buf))]
	q.r++
	return v
}

// Peek returns the oldest value without removing it.
func (q *Queue) Peek() (int64, bool) {
	if q.Empty() {
		return 0, false
	}
	return q.buf[q.r%uint(len(q.buf))], true
}

// Values returns a copy of the pending values, oldest first.
func (q *Queue) Values() []int64 {
	vs := make([]int64, 0, q.Len())
	for i := q.r; i != q.w; i++ {
		vs = append(vs, q.buf[i%uint(len(q.buf))])
	}
	return vs
}

// Reset discards all pending values.
func (q *Queue) Reset() { q.r, q.w = 0, 0 }

func (q *Queue) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, v := range q.Values() {
		b.WriteByte(' ')
		fmt.Fprintf(&b, "%d", v)
	}
	b.WriteByte(' ')
	b.WriteByte(')')
	return b.String()
}
