package queue

import (
	"sync"

	"github.com/oshokin/study-safe-server/internal/domain/safe"
)

// CommandQueue is the FIFO buffer between push-based mode changes and the
// device's pull-based polling. It is unbounded and keeps no history:
// a dequeued command is gone.
//
// Enqueue and DequeueOrEmpty may race (browser clients mutate mode while
// the device polls); the mutex guarantees at-most-one poll wins the head
// and no command is duplicated or lost.
type CommandQueue struct {
	// mu protects pending.
	mu sync.Mutex
	// pending holds commands in arrival order, oldest first.
	pending []safe.Command
}

// New returns an empty command queue.
func New() *CommandQueue {
	return &CommandQueue{}
}

// Enqueue appends a command to the tail. It never fails and never
// coalesces: two identical consecutive commands are both delivered.
func (q *CommandQueue) Enqueue(cmd safe.Command) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = append(q.pending, cmd)
}

// DequeueOrEmpty removes and returns the oldest command.
// The second return value is false when the queue is empty; an empty queue
// is a normal condition, not an error.
func (q *CommandQueue) DequeueOrEmpty() (safe.Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return "", false
	}

	head := q.pending[0]
	q.pending = q.pending[1:]

	return head, true
}

// Len returns the number of pending commands.
func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.pending)
}
