package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/cupstats/internal/adapters/mq/queue"
	worker "github.com/okian/cupstats/internal/adapters/mq/worker"
	logging "github.com/okian/cupstats/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs       chan queue.Job
	closeError error
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 10)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Job {
	return mq.jobs
}

func (mq *mockQueue) Close() error {
	close(mq.jobs)
	return mq.closeError
}

type collector struct {
	mu       sync.Mutex
	outcomes []worker.Outcome
}

func (c *collector) Report(_ context.Context, o worker.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, o)
}

func (c *collector) byID() map[string]worker.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]worker.Outcome, len(c.outcomes))
	for _, o := range c.outcomes {
		out[o.Job.ID] = o
	}
	return out
}

func job(id, path string, err error) queue.Job {
	return queue.Job{
		ID:   id,
		Kind: "chart",
		Run: func(context.Context) (string, error) {
			return path, err
		},
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a mock queue", t, func() {
		mq := newMockQueue()
		c := &collector{}
		w := worker.NewInMemoryWorker(mq, c,
			worker.WithName("test-worker"),
			worker.WithLogger(logging.Discard()),
		)

		convey.Convey("It reports every job and keeps going after a failure", func() {
			boom := errors.New("boom")
			mq.jobs <- job("a", "out/a.png", nil)
			mq.jobs <- job("b", "", boom)
			mq.jobs <- job("c", "out/c.png", nil)
			close(mq.jobs)

			w.Run(context.Background())

			got := c.byID()
			convey.So(got, convey.ShouldHaveLength, 3)
			convey.So(got["a"].Path, convey.ShouldEqual, "out/a.png")
			convey.So(got["a"].Err, convey.ShouldBeNil)
			convey.So(errors.Is(got["b"].Err, boom), convey.ShouldBeTrue)
			convey.So(got["c"].Path, convey.ShouldEqual, "out/c.png")
		})

		convey.Convey("A panicking job is reported as an error", func() {
			mq.jobs <- queue.Job{ID: "p", Kind: "chart", Run: func(context.Context) (string, error) {
				panic("render exploded")
			}}
			close(mq.jobs)

			w.Run(context.Background())

			got := c.byID()
			convey.So(got["p"].Err, convey.ShouldNotBeNil)
			convey.So(got["p"].Err.Error(), convey.ShouldContainSubstring, "render exploded")
		})

		convey.Convey("Done is closed after Run returns", func() {
			close(mq.jobs)
			w.Run(context.Background())

			select {
			case <-w.Done():
			case <-time.After(time.Second):
				convey.So("done not closed", convey.ShouldBeEmpty)
			}
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over an in-memory queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		c := &collector{}
		p := worker.NewPool(3, q, c, logging.Discard())
		convey.So(p.Size(), convey.ShouldEqual, 3)

		ctx := context.Background()
		p.Start(ctx)

		convey.Convey("Shutdown drains every queued job", func() {
			for _, id := range []string{"j1", "j2", "j3", "j4", "j5"} {
				convey.So(q.Enqueue(ctx, job(id, id+".png", nil)), convey.ShouldBeNil)
			}

			convey.So(p.Shutdown(ctx), convey.ShouldBeNil)

			got := c.byID()
			convey.So(got, convey.ShouldHaveLength, 5)
			convey.So(got["j4"].Path, convey.ShouldEqual, "j4.png")
			convey.So(q.IsClosed(), convey.ShouldBeTrue)
		})
	})

	convey.Convey("A non-positive worker count falls back to the CPU count", t, func() {
		p := worker.NewPool(0, newMockQueue(), nil, nil)
		convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
	})
}
