package metrics_test

import (
	"testing"

	"github.com/novara/casebook/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func gaugeValue(t *testing.T, name string) float64 {
	t.Helper()
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When portfolio gauges are updated", func() {
			metrics.UpdateClientCount(42)
			metrics.UpdatePartnerCount(7)

			So(gaugeValue(t, "casebook_portfolio_clients_tracked"), ShouldEqual, 42)
			So(gaugeValue(t, "casebook_portfolio_partners_tracked"), ShouldEqual, 7)
		})

		Convey("When queue gauges are updated", func() {
			metrics.UpdateQueueSize(5)
			metrics.UpdateQueueCapacity(100)
			metrics.UpdateWorkerCount(4)

			So(gaugeValue(t, "casebook_portfolio_queue_size"), ShouldEqual, 5)
			So(gaugeValue(t, "casebook_portfolio_queue_capacity"), ShouldEqual, 100)
			So(gaugeValue(t, "casebook_portfolio_worker_count"), ShouldEqual, 4)
		})

		Convey("When counters and histograms are recorded", func() {
			So(func() {
				metrics.RecordIntakeProcessed()
				metrics.RecordIntakeDuplicate()
				metrics.RecordIntakeError()
				metrics.RecordHighRiskIntake()
				metrics.RecordIntakeLatency(12.5)
				metrics.RecordImportRow("accepted")
				metrics.RecordQueueReject("full")
				metrics.RecordScenarioEvaluation("balanced")
				metrics.RecordScenarioLatency(3)
				metrics.RecordHTTPRequest("clients", "POST", "202")
				metrics.RecordHTTPRequestDuration("clients", "POST", "202", 1.5)
				metrics.UpdateSystemMemoryUsage(1 << 20)
				metrics.UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)

			families, err := metrics.GetRegistry().Gather()
			So(err, ShouldBeNil)

			names := make(map[string]struct{}, len(families))
			for _, f := range families {
				names[f.GetName()] = struct{}{}
			}
			So(names, ShouldContainKey, "casebook_portfolio_intake_processed_total")
			So(names, ShouldContainKey, "casebook_portfolio_import_rows_total")
			So(names, ShouldContainKey, "casebook_portfolio_scenario_evaluations_total")
			So(names, ShouldContainKey, "casebook_portfolio_http_requests_total")
			So(names, ShouldContainKey, "casebook_system_memory_bytes")
		})
	})
}

func TestManagerIsolation(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(
			metrics.WithRegistry(reg),
			metrics.WithNamespace("casebook_test"),
			metrics.WithSubsystem("isolated"),
		)
		So(m, ShouldNotBeNil)

		Convey("Then its instruments register without colliding", func() {
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)

			Convey("And every family carries the manager's namespace", func() {
				for _, f := range families {
					So(f.GetName(), ShouldStartWith, "casebook_test_")
				}
			})
		})
	})
}
