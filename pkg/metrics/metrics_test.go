package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "cupstats")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the collectors should be registered under the new names", func() {
				manager.predictions.WithLabelValues("goals", "ok").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_namespace_test_subsystem_predictions_total")
			})
		})

		Convey("When registering two managers on the same registry", func() {
			registry := prometheus.NewRegistry()
			_ = NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration should panic", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording aggregations", func() {
			before := testutil.ToFloat64(globalManager.aggregations.WithLabelValues("titles", OutcomeNoData))
			RecordAggregation("titles", true)
			RecordAggregation("titles", false)

			Convey("Then no-data outcomes are counted separately", func() {
				after := testutil.ToFloat64(globalManager.aggregations.WithLabelValues("titles", OutcomeNoData))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When recording predictions", func() {
			before := testutil.ToFloat64(globalManager.predictions.WithLabelValues("goals", "ok"))
			RecordPrediction("goals", "ok", 1.5)
			UpdatePredictionForecast("goals", 171.2)

			Convey("Then the counter and gauge reflect the call", func() {
				So(testutil.ToFloat64(globalManager.predictions.WithLabelValues("goals", "ok"))-before, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.predictionForecast.WithLabelValues("goals")), ShouldEqual, 171.2)
			})
		})

		Convey("When recording dataset, export and MCP metrics", func() {
			UpdateDatasetRows("editions", 20)
			RecordDatasetLoadDuration(12)
			RecordExport("chart", true)
			RecordExport("report", false)
			RecordMCPToolCall("predict_trend", true)
			RecordExportLatency("chart", 40)
			UpdateExportQueueSize(3)
			UpdateExportWorkers(2)

			Convey("Then the values are visible", func() {
				So(testutil.ToFloat64(globalManager.exportQueueSize), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.exportWorkers), ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.datasetRows.WithLabelValues("editions")), ShouldEqual, 20)
				So(testutil.ToFloat64(globalManager.exports.WithLabelValues("report", OutcomeFailed)), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording HTTP and system metrics", func() {
			So(func() {
				RecordHTTPRequest("predictions", "GET", "200")
				RecordHTTPRequestDuration("predictions", "GET", "200", 3)
				RecordErrorByEndpoint("predictions", "GET", "client_error")
				RecordErrorByType("client_error", "medium")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry is exposed", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
