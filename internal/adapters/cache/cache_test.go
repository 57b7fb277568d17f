package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCacheTTL(t *testing.T) {
	Convey("Given a cache with a short TTL", t, func() {
		c := New[string](WithTTL(100*time.Millisecond), WithName("test"))
		c.Set("gps", "rows")

		Convey("Then a fresh entry is served", func() {
			v, ok := c.Get("gps")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "rows")
		})

		Convey("Then an expired entry is dropped", func() {
			time.Sleep(200 * time.Millisecond)
			_, ok := c.Get("gps")
			So(ok, ShouldBeFalse)
			So(c.Len(), ShouldEqual, 0)
		})

		Convey("Then Set restarts the TTL", func() {
			time.Sleep(60 * time.Millisecond)
			c.Set("gps", "newer")
			time.Sleep(60 * time.Millisecond)
			v, ok := c.Get("gps")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "newer")
		})
	})

	Convey("Given a cache without TTL", t, func() {
		c := New[int]()
		c.Set("k", 1)
		time.Sleep(10 * time.Millisecond)

		Convey("Then entries never expire", func() {
			v, ok := c.Get("k")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 1)
		})
	})
}

func TestCacheBound(t *testing.T) {
	Convey("Given a cache bounded to two entries", t, func() {
		c := New[int](WithMaxEntries(2))
		c.Set("a", 1)
		c.Set("b", 2)
		c.Set("c", 3)

		Convey("Then the oldest insert is evicted", func() {
			_, ok := c.Get("a")
			So(ok, ShouldBeFalse)
			So(c.Len(), ShouldEqual, 2)
		})

		Convey("Then replacing a key moves it to the back", func() {
			c.Set("b", 20)
			c.Set("d", 4)
			_, hasC := c.Get("c")
			v, hasB := c.Get("b")
			So(hasC, ShouldBeFalse)
			So(hasB, ShouldBeTrue)
			So(v, ShouldEqual, 20)
		})

		Convey("Then Delete and Purge empty it", func() {
			c.Delete("b")
			So(c.Len(), ShouldEqual, 1)
			c.Purge()
			So(c.Len(), ShouldEqual, 0)
		})
	})
}

func TestGetOrLoad(t *testing.T) {
	Convey("Given concurrent loads of one key", t, func() {
		c := New[string]()
		var calls atomic.Int32
		release := make(chan struct{})
		load := func(context.Context) (string, error) {
			calls.Add(1)
			<-release
			return "loaded", nil
		}

		var wg sync.WaitGroup
		results := make([]string, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], _ = c.GetOrLoad(context.Background(), "k", load)
			}(i)
		}
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		Convey("Then the loader runs once", func() {
			So(calls.Load(), ShouldEqual, 1)
			for _, r := range results {
				So(r, ShouldEqual, "loaded")
			}
		})
	})

	Convey("Given a failing loader", t, func() {
		c := New[string]()
		boom := errors.New("boom")
		_, err := c.GetOrLoad(context.Background(), "k", func(context.Context) (string, error) {
			return "", boom
		})

		Convey("Then the error is returned and not cached", func() {
			So(errors.Is(err, boom), ShouldBeTrue)
			v, err := c.GetOrLoad(context.Background(), "k", func(context.Context) (string, error) {
				return "ok", nil
			})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "ok")
		})
	})

	Convey("Given a load shared by two callers", t, func() {
		c := New[string]()
		started := make(chan struct{})
		release := make(chan struct{})
		var loadErr error
		load := func(ctx context.Context) (string, error) {
			close(started)
			<-release
			loadErr = ctx.Err()
			return "loaded", nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		firstErr := make(chan error, 1)
		go func() {
			_, err := c.GetOrLoad(ctx, "k", load)
			firstErr <- err
		}()
		<-started

		second := make(chan string, 1)
		go func() {
			v, _ := c.GetOrLoad(context.Background(), "k", load)
			second <- v
		}()
		time.Sleep(20 * time.Millisecond)
		cancel()

		Convey("Then the cancelled caller returns its own error", func() {
			So(errors.Is(<-firstErr, context.Canceled), ShouldBeTrue)
			close(release)

			Convey("And the other caller still gets the value", func() {
				So(<-second, ShouldEqual, "loaded")
				So(loadErr, ShouldBeNil)
				v, ok := c.Get("k")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, "loaded")
			})
		})
	})
}
