// Package worker runs a fixed pool of goroutines over a job source.
package worker

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/okian/mvpshare/pkg/logger"
	"github.com/okian/mvpshare/pkg/metrics"
)

// Handler processes a single job.
type Handler[T any] func(ctx context.Context, job T) error

// Source defines how workers receive jobs.
type Source[T any] interface {
	Dequeue(ctx context.Context) <-chan T
}

// Pool fans jobs from a Source out to a bounded number of workers.
type Pool[T any] struct {
	size    int
	handler Handler[T]
	name    string
	logger  logger.Logger
}

// NewPool creates a pool of size workers. Sizes below 1 fall back to the
// number of CPUs.
func NewPool[T any](size int, handler Handler[T], opts ...Option) *Pool[T] {
	if size < 1 {
		size = runtime.NumCPU()
	}
	s := settings{name: "worker-pool"}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named(s.name)
	}
	return &Pool[T]{
		size:    size,
		handler: handler,
		name:    s.name,
		logger:  s.logger,
	}
}

// Size returns the number of workers Run starts.
func (p *Pool[T]) Size() int { return p.size }

// Run consumes src until it is drained. The first handler error cancels the
// remaining workers and is returned; a cancelled ctx returns ctx.Err().
func (p *Pool[T]) Run(ctx context.Context, src Source[T]) error {
	g, gctx := errgroup.WithContext(ctx)
	jobs := src.Dequeue(gctx)

	metrics.UpdateWorkerCount(p.size)
	defer metrics.UpdateWorkerCount(0)

	for i := 0; i < p.size; i++ {
		id := i
		g.Go(func() error {
			return p.loop(gctx, id, jobs)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	// Dequeue also closes its channel on cancellation, so a clean exit can
	// still mean the caller gave up.
	return ctx.Err()
}

func (p *Pool[T]) loop(ctx context.Context, id int, jobs <-chan T) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job, ok := <-jobs:
			if !ok {
				return nil
			}
			if err := p.process(ctx, job); err != nil {
				p.logger.Debug(ctx, "worker stopping on error",
					logger.Int("worker_id", id),
					logger.Error(err),
				)
				return err
			}
		}
	}
}

func (p *Pool[T]) process(ctx context.Context, job T) error {
	metrics.IncWorkerActive()
	defer metrics.DecWorkerActive()

	if err := p.handler(ctx, job); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "handler_error")
		return fmt.Errorf("%s: %w", p.name, err)
	}
	metrics.RecordJobProcessed()
	return nil
}
