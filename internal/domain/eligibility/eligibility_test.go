package eligibility_test

import (
	"errors"
	"testing"

	"github.com/okian/volmatch/internal/domain/eligibility"
	"github.com/okian/volmatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func ids(vs []model.Volunteer) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.ID
	}
	return out
}

func TestMatcher_Filter(t *testing.T) {
	pool := []model.Volunteer{
		{ID: "user123", Skills: []string{"Teamwork"}},
		{ID: "user200", Skills: []string{"First Aid"}},
		{ID: "user300", Skills: []string{"teamwork", "Safety Awareness"}},
		{ID: "user400"},
	}

	Convey("Given a matcher with the default policy", t, func() {
		m := eligibility.NewMatcher()

		Convey("Then the policy should be any", func() {
			So(m.Policy(), ShouldEqual, eligibility.PolicyAny)
		})

		Convey("When the event requires Teamwork and Safety Awareness", func() {
			got := m.Filter([]string{"Teamwork", "Safety Awareness"}, pool)

			Convey("Then anyone sharing one skill should qualify, in pool order", func() {
				So(ids(got), ShouldResemble, []string{"user123", "user300"})
			})
		})

		Convey("When the pool holds a single Teamwork volunteer", func() {
			got := m.Filter([]string{"Teamwork", "Safety Awareness"}, pool[:1])

			Convey("Then that volunteer should be returned", func() {
				So(ids(got), ShouldResemble, []string{"user123"})
			})
		})

		Convey("When the event requires no skills", func() {
			got := m.Filter(nil, pool)

			Convey("Then the whole pool should qualify", func() {
				So(ids(got), ShouldResemble, []string{"user123", "user200", "user300", "user400"})
			})
		})

		Convey("When required skills are only blanks", func() {
			got := m.Filter([]string{" ", ""}, pool)

			Convey("Then they should count as no requirement", func() {
				So(len(got), ShouldEqual, len(pool))
			})
		})

		Convey("When nobody has a required skill", func() {
			got := m.Filter([]string{"Carpentry"}, pool)

			Convey("Then the result should be empty, not nil", func() {
				So(got, ShouldNotBeNil)
				So(got, ShouldBeEmpty)
			})
		})

		Convey("When filtering", func() {
			before := pool[2].Skills[0]
			_ = m.Filter([]string{"Teamwork"}, pool)

			Convey("Then the pool should not be modified", func() {
				So(pool[2].Skills[0], ShouldEqual, before)
			})
		})
	})

	Convey("Given a matcher with the all policy", t, func() {
		m := eligibility.NewMatcher(eligibility.WithPolicy(eligibility.PolicyAll))

		Convey("When the event requires two skills", func() {
			got := m.Filter([]string{"Teamwork", "Safety Awareness"}, pool)

			Convey("Then only volunteers holding both should qualify", func() {
				So(ids(got), ShouldResemble, []string{"user300"})
			})
		})
	})

	Convey("Given an invalid policy option", t, func() {
		m := eligibility.NewMatcher(eligibility.WithPolicy("some"))

		Convey("Then the default should be kept", func() {
			So(m.Policy(), ShouldEqual, eligibility.PolicyAny)
		})
	})
}

func TestParsePolicy(t *testing.T) {
	Convey("Given policy names", t, func() {
		p, err := eligibility.ParsePolicy("")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, eligibility.PolicyAny)

		p, err = eligibility.ParsePolicy("ALL")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, eligibility.PolicyAll)

		_, err = eligibility.ParsePolicy("most")
		So(errors.Is(err, eligibility.ErrUnknownPolicy), ShouldBeTrue)
	})
}
