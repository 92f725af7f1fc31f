package queue_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/mvpshare/internal/adapters/mq/queue"
)

func drain[T any](ch <-chan T, timeout time.Duration) ([]T, bool) {
	var got []T
	deadline := time.After(timeout)
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return got, true
			}
			got = append(got, v)
		case <-deadline:
			return got, false
		}
	}
}

func TestInMemoryQueue(t *testing.T) {
	convey.Convey("Given a queue with capacity 2", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue[int](queue.WithCapacity(2), queue.WithName("seasons"))

		convey.Convey("When it is empty", func() {
			convey.So(q.Len(), convey.ShouldEqual, 0)
			convey.So(q.IsClosed(), convey.ShouldBeFalse)
		})

		convey.Convey("When filled past capacity", func() {
			convey.So(q.Enqueue(ctx, 1), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, 2), convey.ShouldBeNil)
			err := q.Enqueue(ctx, 3)

			convey.Convey("Then the extra item is rejected", func() {
				convey.So(err, convey.ShouldWrap, queue.ErrFull)
				convey.So(err.Error(), convey.ShouldContainSubstring, "seasons")
				convey.So(q.Len(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When closed with items still queued", func() {
			convey.So(q.Enqueue(ctx, 7), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, 8), convey.ShouldBeNil)
			convey.So(q.Close(), convey.ShouldBeNil)

			convey.Convey("Then queued items are still delivered in order", func() {
				got, closed := drain(q.Dequeue(ctx), time.Second)
				convey.So(closed, convey.ShouldBeTrue)
				convey.So(got, convey.ShouldResemble, []int{7, 8})
			})

			convey.Convey("Then further enqueues fail and a second close is a no-op", func() {
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				convey.So(q.Enqueue(ctx, 9), convey.ShouldWrap, queue.ErrClosed)
				convey.So(q.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the enqueue context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			convey.Convey("Then the item is rejected with the context error", func() {
				convey.So(q.Enqueue(cctx, 1), convey.ShouldWrap, context.Canceled)
				convey.So(q.Len(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the dequeue context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			ch := q.Dequeue(cctx)
			cancel()

			convey.Convey("Then the channel closes without the queue being closed", func() {
				_, closed := drain(ch, time.Second)
				convey.So(closed, convey.ShouldBeTrue)
				convey.So(q.IsClosed(), convey.ShouldBeFalse)
			})
		})
	})

	convey.Convey("Given several consumers on one queue", t, func() {
		ctx := context.Background()
		const n = 200
		q := queue.NewInMemoryQueue[int](queue.WithCapacity(n))
		for i := 0; i < n; i++ {
			convey.So(q.Enqueue(ctx, i), convey.ShouldBeNil)
		}
		convey.So(q.Close(), convey.ShouldBeNil)

		var (
			mu   sync.Mutex
			seen = make(map[int]int)
			wg   sync.WaitGroup
		)
		ch := q.Dequeue(ctx)
		for c := 0; c < 4; c++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for v := range ch {
					mu.Lock()
					seen[v]++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		convey.Convey("Then every item is delivered exactly once", func() {
			convey.So(len(seen), convey.ShouldEqual, n)
			for _, c := range seen {
				convey.So(c, convey.ShouldEqual, 1)
			}
			convey.So(q.Len(), convey.ShouldEqual, 0)
		})
	})
}
