package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/mvpshare/internal/adapters/mq/queue"
	"github.com/okian/mvpshare/internal/adapters/mq/worker"
	"github.com/okian/mvpshare/pkg/logger"
)

func filled(t *testing.T, n int) *queue.InMemoryQueue[int] {
	t.Helper()
	q := queue.NewInMemoryQueue[int](queue.WithCapacity(n + 1))
	for i := 0; i < n; i++ {
		if err := q.Enqueue(context.Background(), i); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return q
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of 4 workers", t, func() {
		ctx := context.Background()

		convey.Convey("When every job succeeds", func() {
			var (
				mu   sync.Mutex
				done []int
			)
			p := worker.NewPool(4, func(_ context.Context, job int) error {
				mu.Lock()
				done = append(done, job)
				mu.Unlock()
				return nil
			}, worker.WithName("test-pool"), worker.WithLogger(logger.Nop()))

			err := p.Run(ctx, filled(t, 50))

			convey.Convey("Then each job is handled exactly once", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(p.Size(), convey.ShouldEqual, 4)
				convey.So(len(done), convey.ShouldEqual, 50)
				seen := make(map[int]bool)
				for _, j := range done {
					convey.So(seen[j], convey.ShouldBeFalse)
					seen[j] = true
				}
			})
		})

		convey.Convey("When one job fails", func() {
			boom := errors.New("boom")
			var handled atomic.Int32
			p := worker.NewPool(4, func(ctx context.Context, job int) error {
				handled.Add(1)
				if job == 3 {
					return boom
				}
				select {
				case <-ctx.Done():
				case <-time.After(time.Millisecond):
				}
				return nil
			}, worker.WithName("test-pool"), worker.WithLogger(logger.Nop()))

			err := p.Run(ctx, filled(t, 500))

			convey.Convey("Then the failure is returned wrapped with the pool name", func() {
				convey.So(err, convey.ShouldWrap, boom)
				convey.So(err.Error(), convey.ShouldStartWith, "test-pool: ")
			})

			convey.Convey("Then the remaining jobs are abandoned", func() {
				convey.So(handled.Load(), convey.ShouldBeLessThan, 500)
			})
		})

		convey.Convey("When the context is cancelled before Run", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			var handled atomic.Int32
			p := worker.NewPool(4, func(context.Context, int) error {
				handled.Add(1)
				return nil
			}, worker.WithLogger(logger.Nop()))

			q := queue.NewInMemoryQueue[int]()
			err := p.Run(cctx, q)

			convey.Convey("Then Run returns the context error without waiting on the open queue", func() {
				convey.So(err, convey.ShouldWrap, context.Canceled)
			})
		})
	})

	convey.Convey("Given a non-positive pool size", t, func() {
		p := worker.NewPool(0, func(context.Context, int) error { return nil }, worker.WithLogger(logger.Nop()))

		convey.Convey("Then it falls back to at least one worker", func() {
			convey.So(p.Size(), convey.ShouldBeGreaterThanOrEqualTo, 1)
		})
	})
}
