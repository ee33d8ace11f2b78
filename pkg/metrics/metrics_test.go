package metrics_test

import (
	"strings"
	"testing"

	"github.com/okian/kickhub/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		registry := prometheus.NewRegistry()
		manager := metrics.NewManager(
			metrics.WithNamespace("test"),
			metrics.WithSubsystem("live"),
			metrics.WithHistogramBuckets([]float64{1, 10}),
			metrics.WithInstance("node-1"),
			metrics.WithPrometheusRegistry(registry),
		)

		Convey("Then every collector is registered under the namespace", func() {
			So(manager, ShouldNotBeNil)
			families, err := registry.Gather()
			So(err, ShouldBeNil)
			for _, f := range families {
				So(strings.HasPrefix(f.GetName(), "test_live_"), ShouldBeTrue)
				for _, m := range f.GetMetric() {
					labels := map[string]string{}
					for _, l := range m.GetLabel() {
						labels[l.GetName()] = l.GetValue()
					}
					So(labels["instance"], ShouldEqual, "node-1")
				}
			}
		})

		Convey("When a second manager uses the same registry", func() {
			Convey("Then registration panics on the duplicate collectors", func() {
				So(func() { metrics.NewManager(metrics.WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When live pipeline metrics are recorded", func() {
			So(func() {
				metrics.RecordEventReceived("memory")
				metrics.RecordEventDuplicate()
				metrics.RecordEventReduced()
				metrics.RecordReducerLatency(0.2)
				metrics.RecordIntegrityViolation("negative_counter")
				metrics.UpdateQueueSize("s1", 4)
				metrics.UpdateActiveSessions(1)
			}, ShouldNotPanic)

			Convey("Then the custom registry exposes them", func() {
				n, err := testutil.GatherAndCount(metrics.GetRegistry(), "kickhub_stats_live_events_duplicate_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})

			Convey("And a stopped session's backlog series can be dropped", func() {
				So(func() { metrics.DeleteQueueSize("s1") }, ShouldNotPanic)
			})
		})

		Convey("When comparison, store, HTTP and system metrics are recorded", func() {
			So(func() {
				metrics.RecordPipelineDuration(1.5)
				metrics.RecordPlayerFetch("ok")
				metrics.UpdateComparisons(2)
				metrics.RecordStoreQueryLatency("player_kicks", 3)
				metrics.RecordHTTPRequest("/stats", "GET", "200")
				metrics.RecordHTTPRequestDuration("/stats", "GET", "200", 2)
				metrics.RecordErrorByComponent("store", "query")
				metrics.UpdateSystemMemoryUsage(1024)
				metrics.UpdateSystemGoroutineCount(8)
			}, ShouldNotPanic)
		})
	})
}
