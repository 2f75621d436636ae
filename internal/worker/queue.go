package worker

import (
	"context"

	"github.com/tallerapp/notifier/internal/domain"
)

// Job is one queued background notification request. The queue carries only
// the trigger facts; the worker re-reads the order from the database so the
// view is always current at delivery time.
type Job struct {
	OrderID       int64
	Trigger       domain.Trigger
	PreviousState string
	NewState      string
}

// Queue is a bounded FIFO of notification jobs. Enqueue never blocks: a
// full queue is an explicit error the HTTP trigger reports to its caller.
type Queue struct {
	jobs chan Job
}

func NewQueue(capacity int) *Queue {
	return &Queue{jobs: make(chan Job, capacity)}
}

func (q *Queue) Enqueue(j Job) error {
	select {
	case q.jobs <- j:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Dequeue blocks until a job is available or ctx is cancelled.
// The second return value is false only on cancellation.
func (q *Queue) Dequeue(ctx context.Context) (Job, bool) {
	select {
	case <-ctx.Done():
		return Job{}, false
	case j := <-q.jobs:
		return j, true
	}
}

func (q *Queue) Depth() int {
	return len(q.jobs)
}
