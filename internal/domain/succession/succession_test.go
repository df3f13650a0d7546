package succession_test

import (
	"testing"

	"github.com/novara/casebook/internal/domain/model"
	"github.com/novara/casebook/internal/domain/succession"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRelationship(t *testing.T) {
	Convey("Given the relationship classifier", t, func() {
		Convey("When the client has no primary lobbyist", func() {
			So(succession.Relationship(model.Client{Name: "X"}), ShouldEqual, succession.Orphaned)
			So(succession.Relationship(model.Client{Name: "X", PrimaryLobbyist: "  "}), ShouldEqual, succession.Orphaned)
		})

		Convey("When a strong client is served by a real team", func() {
			c := model.Client{
				Name:                 "Team Account",
				PrimaryLobbyist:      "Reyes",
				RelationshipStrength: 8,
				LobbyistTeam:         []string{"Reyes", "Okafor"},
			}
			So(succession.Relationship(c), ShouldEqual, succession.Shared)
		})

		Convey("When the originator is the sole primary", func() {
			c := model.Client{
				Name:             "Solo Account",
				PrimaryLobbyist:  "Reyes",
				ClientOriginator: "Reyes",
			}
			So(succession.Relationship(c), ShouldEqual, succession.Primary)
		})

		Convey("When someone else originated the client", func() {
			c := model.Client{
				Name:             "Inherited Account",
				PrimaryLobbyist:  "Reyes",
				ClientOriginator: "Okafor",
			}
			So(succession.Relationship(c), ShouldEqual, succession.Secondary)
		})

		Convey("When a team serves a weak relationship", func() {
			c := model.Client{
				Name:                 "Weak Team Account",
				PrimaryLobbyist:      "Reyes",
				ClientOriginator:     "Okafor",
				RelationshipStrength: 4,
				LobbyistTeam:         []string{"Reyes", "Okafor", "Lindqvist"},
			}
			Convey("Then team size alone does not make it shared", func() {
				So(succession.Relationship(c), ShouldEqual, succession.Secondary)
			})
		})
	})
}

func TestTransitionComplexity(t *testing.T) {
	Convey("Given the transition complexity estimator", t, func() {
		Convey("When every driver is maxed out", func() {
			c := model.Client{
				Name:                  "Hard Handover",
				RelationshipIntensity: 10,
				ContactFrequency:      model.ContactDaily,
				PracticeAreas:         []string{"Healthcare"},
				StrategicFitScore:     9,
				ConflictScore:         8,
			}
			Convey("Then the score is capped at ten", func() {
				So(succession.TransitionComplexity(c), ShouldEqual, 10.0)
			})
		})

		Convey("When a client carries default attributes only", func() {
			c := model.Client{Name: "Plain"}
			Convey("Then the score is the rounded intensity contribution", func() {
				So(succession.TransitionComplexity(c), ShouldEqual, 2.0)
			})
		})

		Convey("When the practice area is regulated in mixed case", func() {
			base := model.Client{Name: "Utility", RelationshipIntensity: 4}
			regulated := base
			regulated.PracticeAreas = []string{" Financial Services "}

			So(succession.TransitionComplexity(regulated)-succession.TransitionComplexity(base), ShouldEqual, 2.0)
		})

		Convey("When contact frequency varies", func() {
			c := func(f model.ContactFrequency) model.Client {
				return model.Client{Name: "F", RelationshipIntensity: 2, ContactFrequency: f}
			}
			Convey("Then more frequent contact is never less complex", func() {
				daily := succession.TransitionComplexity(c(model.ContactDaily))
				weekly := succession.TransitionComplexity(c(model.ContactWeekly))
				quarterly := succession.TransitionComplexity(c(model.ContactQuarterly))
				asNeeded := succession.TransitionComplexity(c(model.ContactAsNeeded))
				So(daily, ShouldBeGreaterThanOrEqualTo, weekly)
				So(weekly, ShouldBeGreaterThanOrEqualTo, quarterly)
				So(quarterly, ShouldBeGreaterThanOrEqualTo, asNeeded)
			})
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given the full succession classifier", t, func() {
		Convey("When an orphaned default client is classified", func() {
			got := succession.Classify(model.Client{Name: "Orphan"})

			Convey("Then the orphaned base risk dominates", func() {
				So(got.RelationshipType, ShouldEqual, succession.Orphaned)
				So(got.TransitionComplexity, ShouldEqual, 2.0)
				// base 5 + weakness 1 + complexity 0.6, rounded.
				So(got.SuccessionRisk, ShouldEqual, 7.0)
			})
		})

		Convey("When classifying a spread of clients", func() {
			clients := []model.Client{
				{},
				{Name: "A", PrimaryLobbyist: "P", ClientOriginator: "P"},
				{Name: "B", PrimaryLobbyist: "P", RelationshipStrength: 10, LobbyistTeam: []string{"P", "Q"}},
				{Name: "C", PrimaryLobbyist: "P", ClientOriginator: "Q", RelationshipStrength: 1,
					RelationshipIntensity: 10, ContactFrequency: model.ContactDaily,
					PracticeAreas: []string{"energy"}, StrategicFitScore: 10, ConflictScore: 10},
			}

			Convey("Then risk always lands between one and ten", func() {
				for _, c := range clients {
					got := succession.Classify(c)
					So(got.SuccessionRisk, ShouldBeGreaterThanOrEqualTo, 1)
					So(got.SuccessionRisk, ShouldBeLessThanOrEqualTo, 10)
				}
			})

			Convey("Then classification is idempotent", func() {
				for _, c := range clients {
					So(succession.Classify(c), ShouldResemble, succession.Classify(c.Normalize()))
				}
			})
		})
	})
}
