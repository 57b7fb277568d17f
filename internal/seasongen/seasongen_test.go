package seasongen

import (
	"bytes"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/matchload/internal/adapters/csvsource"
	"github.com/okian/matchload/internal/domain/gps"
	"github.com/okian/matchload/internal/domain/loadcalendar"
)

func TestGenerate(t *testing.T) {
	convey.Convey("Given a seeded generator", t, func() {
		sessions, err := New(WithSeed(42)).Generate()
		convey.So(err, convey.ShouldBeNil)
		convey.So(len(sessions), convey.ShouldBeGreaterThan, 100)

		convey.Convey("Then the same seed gives the same season", func() {
			again, err := New(WithSeed(42)).Generate()
			convey.So(err, convey.ShouldBeNil)
			convey.So(again, convey.ShouldResemble, sessions)
		})

		convey.Convey("Then matches are three to seven days apart", func() {
			matches := gps.MatchDays(sessions)
			convey.So(len(matches), convey.ShouldBeGreaterThan, 30)
			for i := 1; i < len(matches); i++ {
				gap := int(matches[i].Date.Sub(matches[i-1].Date).Hours() / 24)
				convey.So(gap, convey.ShouldBeBetweenOrEqual, minGap, maxGap)
				convey.So(matches[i-1].MatchWeekDuration(), convey.ShouldEqual, gap)
			}
			convey.So(matches[len(matches)-1].MatchWeekDuration(), convey.ShouldEqual, 0)
		})

		convey.Convey("Then training days carry consistent offsets and no opponent", func() {
			for _, s := range gps.TrainingDays(sessions) {
				convey.So(s.MDPlusCode, convey.ShouldBeGreaterThan, 0)
				convey.So(s.MDMinusCode, convey.ShouldBeLessThan, 0)
				convey.So(s.MatchWeekDuration(), convey.ShouldBeBetweenOrEqual, minGap, maxGap)
			}
		})

		convey.Convey("Then the normalizer finds cycles of every generated length", func() {
			records := gps.ToDailyRecords(sessions)
			for _, l := range loadcalendar.CycleDurations(records) {
				convey.So(l, convey.ShouldBeBetweenOrEqual, minGap, maxGap)
				res := loadcalendar.BuildCycleAverages(records, l)
				convey.So(res.Empty(), convey.ShouldBeFalse)
				convey.So(res.Matches, convey.ShouldBeGreaterThan, 0)
			}
		})

		convey.Convey("Then the sessions survive a CSV round trip", func() {
			var buf bytes.Buffer
			convey.So(csvsource.WriteGPS(&buf, sessions), convey.ShouldBeNil)
			back, err := csvsource.ReadGPS(&buf)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(back), convey.ShouldEqual, len(sessions))
			for i := range back {
				convey.So(back[i].Date.Equal(sessions[i].Date), convey.ShouldBeTrue)
				convey.So(back[i].MatchWeekDuration(), convey.ShouldEqual, sessions[i].MatchWeekDuration())
				convey.So(back[i].Metrics[gps.HRZone5], convey.ShouldAlmostEqual, sessions[i].Metrics[gps.HRZone5], 0.05)
				convey.So(back[i].Metrics[gps.Distance], convey.ShouldEqual, sessions[i].Metrics[gps.Distance])
			}
		})
	})

	convey.Convey("Given several seasons", t, func() {
		names := SeasonNames(2024, 2)
		convey.So(names, convey.ShouldResemble, []string{"2023/2024", "2024/2025"})

		sessions, err := New(WithSeasons(names...)).Generate()
		convey.So(err, convey.ShouldBeNil)
		convey.So(gps.Seasons(sessions), convey.ShouldResemble, names)
	})

	convey.Convey("Given a malformed season name", t, func() {
		_, err := New(WithSeasons("last year")).Generate()
		convey.So(err, convey.ShouldNotBeNil)
	})
}
