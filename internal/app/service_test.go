package service_test

import (
	"context"
	"os"
	"testing"
	"time"

	app "github.com/novara/casebook/internal/app"
	"github.com/novara/casebook/internal/domain/contract"
	"github.com/novara/casebook/internal/domain/model"
	"github.com/novara/casebook/internal/domain/redistribution"
	"github.com/novara/casebook/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func startedService(t *testing.T, opts ...app.Option) *app.Service {
	t.Helper()
	svc := app.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestFingerprint(t *testing.T) {
	Convey("Given the record fingerprint", t, func() {
		Convey("When the record carries an id", func() {
			So(app.Fingerprint(model.Client{ID: "c1", Name: "Acme"}), ShouldEqual, "c1")
		})

		Convey("When the record is anonymous", func() {
			a := app.Fingerprint(model.Client{Name: " Acme ", PrimaryLobbyist: "Reyes"})
			b := app.Fingerprint(model.Client{Name: "acme", PrimaryLobbyist: "REYES"})

			Convey("Then casing and padding do not split identities", func() {
				So(a, ShouldEqual, b)
			})

			Convey("Then different lobbyists keep identities apart", func() {
				c := app.Fingerprint(model.Client{Name: "acme", PrimaryLobbyist: "Okafor"})
				So(a, ShouldNotEqual, c)
			})
		})
	})
}

func TestIntakePipeline(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := startedService(t, app.WithWorkerCount(2), app.WithQueueSize(16))

		Convey("When a client is enqueued", func() {
			So(svc.SeenAndRecord(ctx, "c1"), ShouldBeFalse)
			So(svc.EnqueueClient(ctx, model.Client{ID: "c1", Name: "Acme"}), ShouldBeTrue)

			Convey("Then it becomes readable with derived fields", func() {
				So(waitFor(2*time.Second, func() bool {
					_, err := svc.Client(ctx, "c1")
					return err == nil
				}), ShouldBeTrue)

				view, err := svc.Client(ctx, "c1")
				So(err, ShouldBeNil)
				So(view.Name, ShouldEqual, "Acme")
				So(view.StrategicValue, ShouldBeGreaterThanOrEqualTo, 0)
				So(view.SuccessionRisk, ShouldBeGreaterThanOrEqualTo, 1)
				So(view.ContractStatus, ShouldEqual, contract.StatusHold)
			})

			Convey("Then the same fingerprint is a duplicate", func() {
				So(svc.SeenAndRecord(ctx, "c1"), ShouldBeTrue)
				So(svc.Size(), ShouldEqual, 1)
			})

			Convey("And unrecording allows a retry", func() {
				svc.Unrecord(ctx, "c1")
				So(svc.SeenAndRecord(ctx, "c1"), ShouldBeFalse)
			})
		})

		Convey("When clients are listed", func() {
			for _, id := range []string{"c1", "c2", "c3"} {
				So(svc.EnqueueClient(ctx, model.Client{ID: id, Name: id}), ShouldBeTrue)
			}
			So(waitFor(2*time.Second, func() bool {
				views, err := svc.Clients(ctx, 0)
				return err == nil && len(views) == 3
			}), ShouldBeTrue)

			Convey("Then a limit caps the page", func() {
				views, err := svc.Clients(ctx, 2)
				So(err, ShouldBeNil)
				So(views, ShouldHaveLength, 2)
			})
		})

		Convey("When a stored client is deleted", func() {
			So(svc.EnqueueClient(ctx, model.Client{ID: "c1", Name: "Acme"}), ShouldBeTrue)
			So(waitFor(2*time.Second, func() bool {
				_, err := svc.Client(ctx, "c1")
				return err == nil
			}), ShouldBeTrue)

			So(svc.DeleteClient(ctx, "c1"), ShouldBeNil)
			_, err := svc.Client(ctx, "c1")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestContractStatusUsesInjectedClock(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service pinned to a fixed date", t, func() {
		fixed := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
		svc := startedService(t, app.WithClock(func() time.Time { return fixed }))

		So(svc.EnqueueClient(ctx, model.Client{ID: "c1", Name: "Acme", ContractPeriod: "1/1/25-12/31/25"}), ShouldBeTrue)
		So(waitFor(2*time.Second, func() bool {
			_, err := svc.Client(ctx, "c1")
			return err == nil
		}), ShouldBeTrue)

		Convey("Then the derived contract status follows that clock", func() {
			view, err := svc.Client(ctx, "c1")
			So(err, ShouldBeNil)
			So(view.ContractStatus, ShouldEqual, contract.StatusInForce)
		})
	})
}

func TestPartnersDerivedView(t *testing.T) {
	ctx := context.Background()

	Convey("Given partners with linked books and team memberships", t, func() {
		svc := startedService(t)

		_, err := svc.UpsertPartner(ctx, model.Partner{ID: "p1", Name: "Reyes"})
		So(err, ShouldBeNil)
		_, err = svc.UpsertPartner(ctx, model.Partner{ID: "p2", Name: "Okafor"})
		So(err, ShouldBeNil)

		for _, id := range []string{"c1", "c2", "c3"} {
			So(svc.EnqueueClient(ctx, model.Client{ID: id, Name: id, PrimaryLobbyist: "Reyes"}), ShouldBeTrue)
		}
		So(svc.EnqueueClient(ctx, model.Client{
			ID:              "c4",
			Name:            "c4",
			PrimaryLobbyist: "Okafor",
			LobbyistTeam:    []string{"Okafor", "Reyes"},
		}), ShouldBeTrue)
		So(waitFor(2*time.Second, func() bool {
			views, err := svc.Clients(ctx, 0)
			return err == nil && len(views) == 4
		}), ShouldBeTrue)

		Convey("When partners are read", func() {
			partners, err := svc.Partners(ctx)
			So(err, ShouldBeNil)
			So(partners, ShouldHaveLength, 2)
			reyes, okafor := partners[0], partners[1]
			So(reyes.Name, ShouldEqual, "Reyes")

			Convey("Then capacity used is the book against the benchmark", func() {
				So(reyes.ClientIDs, ShouldResemble, []string{"c1", "c2", "c3"})
				So(reyes.CapacityUsed, ShouldEqual, 10.0)
				So(okafor.CapacityUsed, ShouldAlmostEqual, 100.0/30)
			})

			Convey("Then team clients exclude the partner's own book", func() {
				So(reyes.TeamClientIDs, ShouldResemble, []string{"c4"})
				So(okafor.TeamClientIDs, ShouldBeEmpty)
			})
		})
	})
}

func TestEvaluateScenarios(t *testing.T) {
	ctx := context.Background()

	Convey("Given a portfolio with a departing partner", t, func() {
		svc := startedService(t)

		_, err := svc.UpsertPartner(ctx, model.Partner{ID: "d1", Name: "Vance", IsDeparting: true})
		So(err, ShouldBeNil)
		_, err = svc.UpsertPartner(ctx, model.Partner{ID: "r1", Name: "Reyes"})
		So(err, ShouldBeNil)
		_, err = svc.UpsertPartner(ctx, model.Partner{ID: "r2", Name: "Okafor"})
		So(err, ShouldBeNil)

		for _, id := range []string{"c1", "c2", "c3", "c4"} {
			So(svc.EnqueueClient(ctx, model.Client{ID: id, Name: id, PrimaryLobbyist: "Vance"}), ShouldBeTrue)
		}
		So(waitFor(2*time.Second, func() bool {
			views, err := svc.Clients(ctx, 0)
			return err == nil && len(views) == 4
		}), ShouldBeTrue)

		Convey("When scenarios run with the stored departing flags", func() {
			results, err := svc.EvaluateScenarios(ctx, app.ScenarioRequest{})
			So(err, ShouldBeNil)

			Convey("Then all four policies come back ranked", func() {
				So(results, ShouldHaveLength, 4)
				So(results[0].Recommended, ShouldBeTrue)
				for i := 1; i < len(results); i++ {
					So(results[i].Composite, ShouldBeGreaterThanOrEqualTo, results[i-1].Composite)
					So(results[i].Recommended, ShouldBeFalse)
				}
			})

			Convey("Then no client lands on the departing partner", func() {
				for _, r := range results {
					for _, target := range r.Assignment.Assignments {
						So(target, ShouldNotEqual, "d1")
					}
				}
			})
		})

		Convey("When the request overlays a different departing partner", func() {
			results, err := svc.EvaluateScenarios(ctx, app.ScenarioRequest{
				DepartingPartnerIDs: []string{"r1"},
				Policies:            []redistribution.Policy{redistribution.PolicyBalanced},
			})
			So(err, ShouldBeNil)
			So(results, ShouldHaveLength, 1)

			Convey("Then the stored flags are ignored for this run", func() {
				for _, target := range results[0].Assignment.Assignments {
					So(target, ShouldNotEqual, "r1")
				}
			})
		})

		Convey("When the request names an unknown policy", func() {
			_, err := svc.EvaluateScenarios(ctx, app.ScenarioRequest{
				Policies: []redistribution.Policy{redistribution.Policy("alphabetical")},
			})
			So(err, ShouldNotBeNil)
		})

		Convey("When a custom map targets the departing partner", func() {
			results, err := svc.EvaluateScenarios(ctx, app.ScenarioRequest{
				Policies:          []redistribution.Policy{redistribution.PolicyCustom},
				CustomAssignments: map[string]string{"c1": "d1", "c2": "r1"},
			})
			So(err, ShouldBeNil)
			So(results, ShouldHaveLength, 1)

			Convey("Then the hostile entry is dropped and counted", func() {
				So(results[0].Assignment.Assignments, ShouldResemble, map[string]string{"c2": "r1"})
				So(results[0].Assignment.Dropped, ShouldEqual, 1)
			})
		})
	})
}

func TestGetStats(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService(t)

		stats := svc.GetStats()
		So(stats["started"], ShouldEqual, true)
		So(stats, ShouldContainKey, "queueLength")
		So(stats, ShouldContainKey, "totalClients")
	})

	Convey("Given a service that never started", t, func() {
		svc := app.New()

		stats := svc.GetStats()
		So(stats["started"], ShouldEqual, false)
		So(stats, ShouldNotContainKey, "queueLength")
		So(svc.Size(), ShouldEqual, 0)
	})
}
