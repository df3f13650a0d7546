package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/novara/casebook/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSeenAndRecord(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fresh deduper", t, func() {
		d := dedupe.New()

		Convey("When a fingerprint is recorded for the first time", func() {
			So(d.SeenAndRecord(ctx, "fp-1"), ShouldBeFalse)

			Convey("Then the second sighting is a duplicate", func() {
				So(d.SeenAndRecord(ctx, "fp-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When distinct fingerprints are recorded", func() {
			So(d.SeenAndRecord(ctx, "fp-1"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "fp-2"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 2)
		})
	})
}

func TestUnrecord(t *testing.T) {
	ctx := context.Background()

	Convey("Given a deduper with a recorded fingerprint", t, func() {
		d := dedupe.New()
		So(d.SeenAndRecord(ctx, "fp-1"), ShouldBeFalse)

		Convey("When the fingerprint is unrecorded", func() {
			d.Unrecord(ctx, "fp-1")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "fp-1"), ShouldBeFalse)
			})
		})

		Convey("When an unknown fingerprint is unrecorded", func() {
			d.Unrecord(ctx, "never-seen")
			So(d.Size(), ShouldEqual, 1)
		})
	})

	Convey("Given a bounded deduper where a fingerprint is unrecorded and retried", t, func() {
		d := dedupe.New(dedupe.WithMaxSize(3))
		So(d.SeenAndRecord(ctx, "fp-1"), ShouldBeFalse)
		d.Unrecord(ctx, "fp-1")
		So(d.SeenAndRecord(ctx, "fp-1"), ShouldBeFalse)
		So(d.SeenAndRecord(ctx, "fp-2"), ShouldBeFalse)
		So(d.SeenAndRecord(ctx, "fp-3"), ShouldBeFalse)

		Convey("Then the retried fingerprint occupies one slot, not two", func() {
			// Three live fingerprints fit the bound of three, so none
			// may have been evicted through the vacated slot.
			So(d.SeenAndRecord(ctx, "fp-1"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "fp-2"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "fp-3"), ShouldBeTrue)
			So(d.Size(), ShouldEqual, 3)
		})
	})
}

func TestEviction(t *testing.T) {
	ctx := context.Background()

	Convey("Given a deduper bounded to three fingerprints", t, func() {
		d := dedupe.New(dedupe.WithMaxSize(3))
		for i := 1; i <= 3; i++ {
			So(d.SeenAndRecord(ctx, fmt.Sprintf("fp-%d", i)), ShouldBeFalse)
		}

		Convey("When a fourth fingerprint arrives", func() {
			So(d.SeenAndRecord(ctx, "fp-4"), ShouldBeFalse)

			Convey("Then the oldest fingerprint is forgotten", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "fp-1"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "fp-3"), ShouldBeTrue)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.New(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			So(d.SeenAndRecord(ctx, fmt.Sprintf("fp-%d", i)), ShouldBeFalse)
		}
		So(d.Size(), ShouldEqual, 1000)
	})
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()

	Convey("Given many goroutines hammering the same fingerprint", t, func() {
		d := dedupe.New()
		const workers = 32

		var wg sync.WaitGroup
		fresh := make(chan bool, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				fresh <- !d.SeenAndRecord(ctx, "contested")
			}()
		}
		wg.Wait()
		close(fresh)

		Convey("Then exactly one goroutine saw it first", func() {
			firsts := 0
			for f := range fresh {
				if f {
					firsts++
				}
			}
			So(firsts, ShouldEqual, 1)
			So(d.Size(), ShouldEqual, 1)
		})
	})
}
