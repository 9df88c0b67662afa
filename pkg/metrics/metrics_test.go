package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created with defaults", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Enabled(), ShouldBeTrue)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("pfx"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(false),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.itemsCreated.Inc()

			Convey("Then the options should shape metric names and labels", func() {
				So(manager.Enabled(), ShouldBeFalse)
				So(manager.RefreshInterval(), ShouldEqual, 5*time.Second)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_pfx_items_created_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestItemMetrics(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Init()

		Convey("When recording item lifecycle events", func() {
			created := testutil.ToFloat64(current().itemsCreated)
			updated := testutil.ToFloat64(current().itemsUpdated)
			deleted := testutil.ToFloat64(current().itemsDeleted)
			missing := testutil.ToFloat64(current().itemsNotFound)
			invalid := testutil.ToFloat64(current().validationFailures)

			RecordItemCreated()
			RecordItemCreated()
			RecordItemUpdated()
			RecordItemDeleted()
			RecordItemNotFound()
			RecordValidationFailure()
			UpdateItemsTotal(7)

			Convey("Then the counters should advance", func() {
				So(testutil.ToFloat64(current().itemsCreated), ShouldEqual, created+2)
				So(testutil.ToFloat64(current().itemsUpdated), ShouldEqual, updated+1)
				So(testutil.ToFloat64(current().itemsDeleted), ShouldEqual, deleted+1)
				So(testutil.ToFloat64(current().itemsNotFound), ShouldEqual, missing+1)
				So(testutil.ToFloat64(current().validationFailures), ShouldEqual, invalid+1)
				So(testutil.ToFloat64(current().itemsTotal), ShouldEqual, 7)
			})
		})
	})
}

func TestRecordingHelpers(t *testing.T) {
	Convey("Given metrics recording helpers", t, func() {
		Convey("When recording HTTP metrics", func() {
			So(func() {
				RecordHTTPRequest("items", "GET", "200")
				RecordHTTPRequestDuration("items", "GET", "200", 5.0)
				RecordHTTPRequestDuration("items", "POST", "201", 10.0)
			}, ShouldNotPanic)

			Convey("Then the request counter should carry the labels", func() {
				c := current().httpRequests.WithLabelValues("items", "GET", "200")
				So(testutil.ToFloat64(c), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording repository metrics", func() {
			So(func() {
				RecordRepositoryLatency("memory", "create", 0.2)
				RecordRepositoryLatency("mongo", "find", 3.1)
				RecordRepositoryError("memory", "update", "not_found")
			}, ShouldNotPanic)

			Convey("Then the error counter should be labelled by reason", func() {
				c := current().repositoryErrors.WithLabelValues("memory", "update", "not_found")
				So(testutil.ToFloat64(c), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording error and system metrics", func() {
			So(func() {
				RecordErrorByType("not_found", "medium")
				RecordErrorByEndpoint("item", "DELETE", "not_found")
				RecordErrorLatency("http", "server_error", 12)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordItemCreated()
		families, err := GetRegistry().Gather()

		Convey("Then it should expose the shoplist metrics only", func() {
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			for _, f := range families {
				So(strings.HasPrefix(f.GetName(), "shoplist_api_"), ShouldBeTrue)
			}
		})
	})
}

func TestInit(t *testing.T) {
	Convey("Given a manager initialised from configuration", t, func() {
		before := GetRegistry()
		m := Init(
			WithNamespace("groceries"),
			WithSubsystem("web"),
			WithMetricPrefix("_v2_"),
			WithRefreshInterval(250*time.Millisecond),
			WithHistogramBuckets([]float64{50, 1, 10, 10}),
			WithCustomLabels(map[string]string{"env": "staging", " ": "dropped"}),
		)
		defer Init()

		Convey("Then it should become the global manager on a new registry", func() {
			So(current(), ShouldEqual, m)
			So(GetRegistry(), ShouldNotEqual, before)
			So(Enabled(), ShouldBeTrue)
			So(RefreshInterval(), ShouldEqual, 250*time.Millisecond)
			So(m.histogramBuckets, ShouldResemble, []float64{1, 10, 50})
			So(m.customLabels, ShouldResemble, map[string]string{"env": "staging"})
		})

		Convey("Then recorded series should carry the configured names", func() {
			RecordItemCreated()
			RecordRepositoryLatency("memory", "count", 3)

			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			names := map[string]bool{}
			for _, f := range families {
				names[f.GetName()] = true
				So(strings.HasPrefix(f.GetName(), "groceries_web_v2_"), ShouldBeTrue)
			}
			So(names["groceries_web_v2_items_created_total"], ShouldBeTrue)
			So(names["groceries_web_v2_repository_operation_latency_milliseconds"], ShouldBeTrue)
		})
	})
}

func TestDisabledMetrics(t *testing.T) {
	Convey("Given metrics initialised as disabled", t, func() {
		m := Init(WithMetricsEnabled(false))
		defer Init()

		Convey("When every recorder is called", func() {
			RecordItemCreated()
			RecordItemUpdated()
			RecordItemDeleted()
			RecordItemNotFound()
			RecordValidationFailure()
			UpdateItemsTotal(9)
			RecordHTTPRequest("items_list", "GET", "200")
			RecordHTTPRequestDuration("items_list", "GET", "200", 4)
			RecordRepositoryLatency("memory", "find", 1)
			RecordRepositoryError("memory", "find", "closed")
			RecordErrorByType("not_found", "low")
			RecordErrorByEndpoint("items_delete", "DELETE", "not_found")
			RecordErrorLatency("items_delete", "not_found", 2)
			UpdateSystemMemoryUsage(1 << 20)
			UpdateSystemGoroutineCount(12)
			RecordSystemGCPauseTime(0.4)

			Convey("Then nothing should be observed", func() {
				So(Enabled(), ShouldBeFalse)
				So(testutil.ToFloat64(m.itemsCreated), ShouldEqual, 0)
				So(testutil.ToFloat64(m.itemsUpdated), ShouldEqual, 0)
				So(testutil.ToFloat64(m.itemsDeleted), ShouldEqual, 0)
				So(testutil.ToFloat64(m.itemsNotFound), ShouldEqual, 0)
				So(testutil.ToFloat64(m.validationFailures), ShouldEqual, 0)
				So(testutil.ToFloat64(m.itemsTotal), ShouldEqual, 0)
				So(testutil.ToFloat64(m.systemMemoryUsage), ShouldEqual, 0)
				So(testutil.ToFloat64(m.systemGoroutineCount), ShouldEqual, 0)
				So(testutil.CollectAndCount(m.httpRequests), ShouldEqual, 0)
				So(testutil.CollectAndCount(m.httpRequestDuration), ShouldEqual, 0)
				So(testutil.CollectAndCount(m.repositoryOperationLatency), ShouldEqual, 0)
				So(testutil.CollectAndCount(m.repositoryErrors), ShouldEqual, 0)
				So(testutil.CollectAndCount(m.errorRateByType), ShouldEqual, 0)
				So(testutil.CollectAndCount(m.errorRateByEndpoint), ShouldEqual, 0)
				So(testutil.CollectAndCount(m.errorLatency), ShouldEqual, 0)
			})
		})
	})
}
