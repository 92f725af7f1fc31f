package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/mvpshare/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKey(t *testing.T) {
	Convey("Given a player and a year", t, func() {
		Convey("Then Key joins them into one identity", func() {
			So(dedupe.Key("Michael Jordan", 1996), ShouldEqual, "Michael Jordan|1996")
			So(dedupe.Key("A", 1), ShouldNotEqual, dedupe.Key("A", 2))
		})
	})
}

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		Convey("When the key is new", func() {
			seen := d.SeenAndRecord(ctx, dedupe.Key("A", 1991))

			Convey("Then it should return false", func() {
				So(seen, ShouldBeFalse)
			})
		})

		Convey("When the key was already seen", func() {
			d.SeenAndRecord(ctx, dedupe.Key("A", 1991))

			Convey("Then it should return true", func() {
				So(d.SeenAndRecord(ctx, dedupe.Key("A", 1991)), ShouldBeTrue)
			})
		})

		Convey("When many other keys are recorded in between", func() {
			d.SeenAndRecord(ctx, dedupe.Key("A", 1991))
			for i := 0; i < 10_000; i++ {
				d.SeenAndRecord(ctx, dedupe.Key(fmt.Sprintf("P%d", i), 1991))
			}

			Convey("Then the first key is still reported as a duplicate", func() {
				So(d.SeenAndRecord(ctx, dedupe.Key("A", 1991)), ShouldBeTrue)
			})
		})

		Convey("When many goroutines record the same keys", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			fresh := 0

			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < 100; i++ {
						if !d.SeenAndRecord(ctx, fmt.Sprintf("p%d", i)) {
							mu.Lock()
							fresh++
							mu.Unlock()
						}
					}
				}()
			}
			wg.Wait()

			Convey("Then each key is new exactly once", func() {
				So(fresh, ShouldEqual, 100)
			})
		})
	})
}
