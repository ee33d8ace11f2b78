package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/kickhub/internal/adapters/mq/queue"
	worker "github.com/okian/kickhub/internal/adapters/mq/worker"
	"github.com/okian/kickhub/internal/domain/live"
	model "github.com/okian/kickhub/internal/domain/model"
	logging "github.com/okian/kickhub/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}

func TestLiveWorker(t *testing.T) {
	_ = logging.Init()
	ctx := context.Background()

	convey.Convey("Given a worker over a queue of match records", t, func() {
		q := queue.NewFIFO("worker-test")
		var mu sync.Mutex
		var updates []int
		w := worker.NewLiveWorker(q, live.NewReducer(),
			worker.WithName("test-worker"),
			worker.WithTickInterval(time.Millisecond),
			worker.WithOnUpdate(func(s *live.MatchState) {
				mu.Lock()
				updates = append(updates, s.EventCount)
				mu.Unlock()
			}),
		)

		records := []model.Event{
			{Type: model.KindStart, Stadium: "Classic"},
			{Type: model.KindPass, FromTeam: model.TeamRed, FromName: "a", ToTeam: model.TeamRed, ToName: "b", Time: model.Float(1)},
			{Type: model.KindGoal, FromTeam: model.TeamRed, FromName: "b", Time: model.Float(2), ScoreRed: model.Int(1)},
		}
		for i, e := range records {
			convey.So(q.Push(ctx, queue.Record{Key: string(rune('a' + i)), Event: e}), convey.ShouldBeNil)
		}

		convey.Convey("Then the initial snapshot is empty", func() {
			convey.So(w.Snapshot().EventCount, convey.ShouldEqual, 0)
		})

		convey.Convey("When the worker runs", func() {
			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			go w.Run(runCtx)

			folded := waitFor(func() bool { return w.Processed() == 3 })
			convey.So(w.Shutdown(ctx), convey.ShouldBeNil)

			convey.Convey("Then records are folded one per tick in order", func() {
				convey.So(folded, convey.ShouldBeTrue)
				snap := w.Snapshot()
				convey.So(snap.EventCount, convey.ShouldEqual, 3)
				convey.So(snap.StadiumName, convey.ShouldEqual, "Classic")
				convey.So(snap.Score.Red, convey.ShouldEqual, 1)
				convey.So(snap.Roster(model.TeamRed)["b"].GoalsScored, convey.ShouldEqual, 1)

				mu.Lock()
				defer mu.Unlock()
				convey.So(updates, convey.ShouldResemble, []int{1, 2, 3})
			})

			convey.Convey("And shutting down twice is safe", func() {
				convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the context is cancelled", func() {
			runCtx, cancel := context.WithCancel(ctx)
			go w.Run(runCtx)
			cancel()

			convey.Convey("Then the loop exits", func() {
				select {
				case <-w.Done():
				case <-time.After(time.Second):
				}
				convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When shutdown waits past its deadline", func() {
			expired, cancel := context.WithCancel(ctx)
			cancel()

			convey.Convey("Then it reports the timeout", func() {
				convey.So(w.Shutdown(expired), convey.ShouldNotBeNil)
			})
		})
	})
}
