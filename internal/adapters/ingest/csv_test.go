package ingest_test

import (
	"strings"
	"testing"

	"github.com/novara/casebook/internal/adapters/ingest"
	"github.com/novara/casebook/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDecodeClients(t *testing.T) {
	Convey("Given a headered CSV upload", t, func() {
		Convey("When a full row is decoded", func() {
			in := strings.Join([]string{
				"name,practice_areas,relationship_strength,conflict_risk,renewal_probability,primary_lobbyist,client_originator,lobbyist_team,contact_frequency,contract_period,revenues",
				`Meridian Health,healthcare;tax,8,Low,0.9,Reyes,Reyes,Reyes;Okafor,weekly,1/1/25-12/31/25,2023:250000;2024:300000`,
			}, "\n")

			clients, rejects, err := ingest.DecodeClients(strings.NewReader(in))
			So(err, ShouldBeNil)
			So(rejects, ShouldBeEmpty)
			So(clients, ShouldHaveLength, 1)

			Convey("Then every field lands on the record", func() {
				c := clients[0]
				So(c.Name, ShouldEqual, "Meridian Health")
				So(c.PracticeAreas, ShouldResemble, []string{"healthcare", "tax"})
				So(c.RelationshipStrength, ShouldEqual, 8)
				So(c.ConflictRisk, ShouldEqual, model.ConflictLow)
				So(*c.RenewalProbability, ShouldEqual, 0.9)
				So(c.LobbyistTeam, ShouldResemble, []string{"Reyes", "Okafor"})
				So(c.ContactFrequency, ShouldEqual, model.ContactWeekly)
				So(c.ContractPeriod, ShouldEqual, "1/1/25-12/31/25")
				So(c.Revenues, ShouldResemble, []model.Revenue{
					{Year: 2023, Amount: 250_000},
					{Year: 2024, Amount: 300_000},
				})
			})
		})

		Convey("When optional columns are missing entirely", func() {
			clients, rejects, err := ingest.DecodeClients(strings.NewReader("name\nBare Client\n"))
			So(err, ShouldBeNil)
			So(rejects, ShouldBeEmpty)
			So(clients, ShouldHaveLength, 1)

			Convey("Then numeric fields stay zero for the normalizer", func() {
				So(clients[0].Name, ShouldEqual, "Bare Client")
				So(clients[0].RelationshipStrength, ShouldEqual, 0)
				So(clients[0].RenewalProbability, ShouldBeNil)
				So(clients[0].Revenues, ShouldBeNil)
			})
		})

		Convey("When the renewal probability cell is empty or zero", func() {
			in := strings.Join([]string{
				"name,renewal_probability",
				"Undecided,",
				"Leaving,0",
			}, "\n")

			clients, rejects, err := ingest.DecodeClients(strings.NewReader(in))
			So(err, ShouldBeNil)
			So(rejects, ShouldBeEmpty)
			So(clients, ShouldHaveLength, 2)

			Convey("Then an empty cell decodes to absent and a zero is kept", func() {
				So(clients[0].RenewalProbability, ShouldBeNil)
				So(clients[1].RenewalProbability, ShouldNotBeNil)
				So(*clients[1].RenewalProbability, ShouldEqual, 0)
			})
		})

		Convey("When rows are bad", func() {
			in := strings.Join([]string{
				"name,relationship_strength,revenues",
				"Good One,7,2024:100000",
				",5,",
				"Bad Number,very strong,",
				"Bad Revenue,5,2024-100000",
				"Good Two,,",
			}, "\n")

			clients, rejects, err := ingest.DecodeClients(strings.NewReader(in))
			So(err, ShouldBeNil)

			Convey("Then good rows survive and bad rows are reported with line numbers", func() {
				So(clients, ShouldHaveLength, 2)
				So(clients[0].Name, ShouldEqual, "Good One")
				So(clients[1].Name, ShouldEqual, "Good Two")

				So(rejects, ShouldHaveLength, 3)
				So(rejects[0].Line, ShouldEqual, 3)
				So(rejects[1].Line, ShouldEqual, 4)
				So(rejects[2].Line, ShouldEqual, 5)
			})
		})

		Convey("When header casing and padding vary", func() {
			in := "Name , PRIMARY_LOBBYIST\nAcme,Reyes\n"
			clients, rejects, err := ingest.DecodeClients(strings.NewReader(in))
			So(err, ShouldBeNil)
			So(rejects, ShouldBeEmpty)
			So(clients[0].PrimaryLobbyist, ShouldEqual, "Reyes")
		})

		Convey("When the header lacks a name column", func() {
			_, _, err := ingest.DecodeClients(strings.NewReader("id,owner\n1,Reyes\n"))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "name")
		})

		Convey("When the input is empty", func() {
			_, _, err := ingest.DecodeClients(strings.NewReader(""))
			So(err, ShouldNotBeNil)
		})
	})
}
