// Package worker runs the background dispatch pool for triggers that chose
// not to await the pipeline. The triggering mutation has already committed
// by the time a job is enqueued, so a worker always sees the new state.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/tallerapp/notifier/internal/domain"
	"github.com/tallerapp/notifier/internal/orchestrator"
)

// Pool consumes the dispatch queue with a fixed number of workers.
type Pool struct {
	size    int
	q       *Queue
	orch    *orchestrator.Orchestrator
	logger  *zap.Logger
	onDepth func(depth int) // metrics hook, optional

	wg sync.WaitGroup
}

func NewPool(size int, q *Queue, orch *orchestrator.Orchestrator, logger *zap.Logger, onDepth func(int)) *Pool {
	if onDepth == nil {
		onDepth = func(int) {}
	}
	return &Pool{size: size, q: q, orch: orch, logger: logger, onDepth: onDepth}
}

// Start launches the workers. Cancelling ctx stops them after their current
// job; in-flight channel deliveries stay bounded by their own timeouts.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id)
		}(i)
	}
}

// Wait blocks until every worker has returned after ctx is cancelled.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context, id int) {
	p.logger.Info("dispatch worker started", zap.Int("worker_id", id))
	for {
		job, ok := p.q.Dequeue(ctx)
		if !ok {
			p.logger.Info("dispatch worker stopping", zap.Int("worker_id", id))
			return
		}
		p.onDepth(p.q.Depth())

		switch job.Trigger {
		case domain.TriggerStateChanged:
			p.orch.ProcessStateChange(ctx, job.OrderID, job.PreviousState, job.NewState)
		default:
			p.orch.Process(ctx, job.OrderID)
		}
	}
}
