package redistribution_test

import (
	"testing"

	"github.com/novara/casebook/internal/domain/redistribution"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParsePolicy(t *testing.T) {
	Convey("Given the policy parser", t, func() {
		Convey("When the name is a known policy", func() {
			for _, p := range redistribution.Policies() {
				got, err := redistribution.ParsePolicy(string(p))
				So(err, ShouldBeNil)
				So(got, ShouldEqual, p)
			}
		})

		Convey("When the name is unknown", func() {
			_, err := redistribution.ParsePolicy("alphabetical")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "alphabetical")
		})

		Convey("When the name is empty", func() {
			_, err := redistribution.ParsePolicy("")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestPolicies(t *testing.T) {
	Convey("Given the policy enumeration", t, func() {
		Convey("Then it lists all four policies in stable order", func() {
			So(redistribution.Policies(), ShouldResemble, []redistribution.Policy{
				redistribution.PolicyBalanced,
				redistribution.PolicyExpertise,
				redistribution.PolicyRelationship,
				redistribution.PolicyCustom,
			})
		})

		Convey("Then every listed policy is valid", func() {
			for _, p := range redistribution.Policies() {
				So(p.Valid(), ShouldBeTrue)
			}
			So(redistribution.Policy("alphabetical").Valid(), ShouldBeFalse)
		})
	})
}
