package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			m := NewManager()

			Convey("Then it registers on its own registry", func() {
				So(m, ShouldNotBeNil)
				So(m.Registry(), ShouldNotBeNil)
				So(m.Registry(), ShouldNotEqual, GetRegistry())
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("sim"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			m.RecordSchedulesEvaluated(3)

			Convey("Then metric names follow the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_sim_schedules_evaluated_total"], ShouldBeTrue)
			})
		})
	})
}

func TestManagerRecording(t *testing.T) {
	Convey("Given a fresh manager", t, func() {
		m := NewManager()

		Convey("When recording progress", func() {
			m.RecordSchedulesEvaluated(4096)
			m.RecordSchedulesEvaluated(904)
			m.RecordCacheStats(10, 2)

			Convey("Then counters accumulate", func() {
				So(testutil.ToFloat64(m.schedulesEvaluated), ShouldEqual, 5000)
				So(testutil.ToFloat64(m.cacheHits), ShouldEqual, 10)
				So(testutil.ToFloat64(m.cacheMisses), ShouldEqual, 2)
			})
		})

		Convey("When updating team states", func() {
			So(m.UpdateTeamsByState("aggregated", 3), ShouldBeNil)
			err := m.UpdateTeamsByState("lost", 1)

			Convey("Then known states are set and unknown ones rejected", func() {
				So(testutil.ToFloat64(m.teamsByState.WithLabelValues("aggregated")), ShouldEqual, 3)
				So(errors.Is(err, ErrUnknownState), ShouldBeTrue)
			})
		})

		Convey("When moving worker and queue gauges", func() {
			m.AddWorkerActive(4)
			m.AddWorkerActive(-1)
			m.UpdateQueueSize(7)

			Convey("Then gauges reflect the latest value", func() {
				So(testutil.ToFloat64(m.workerActive), ShouldEqual, 3)
				So(testutil.ToFloat64(m.queueSize), ShouldEqual, 7)
			})
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Package-level helpers never panic", t, func() {
		So(func() {
			RecordSchedulesEvaluated(1)
			_ = UpdateTeamsByState("pending", 2)
			RecordTeamDuration(12)
			RecordRangeLatency(3)
			RecordCacheStats(1, 1)
			UpdateQueueSize(0)
			RecordQueueEnqueue()
			RecordQueueDequeue()
			AddWorkerActive(1)
			AddWorkerActive(-1)
			RecordWorkerFailure()
			RecordHTTPRequest("stats", "GET", "200")
			RecordHTTPRequestDuration("stats", "GET", "200", 1)
			RecordErrorByComponent("worker", "panic")
			RecordStoreWrite()
		}, ShouldNotPanic)
	})
}
