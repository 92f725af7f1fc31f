package filter_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/mvpshare/internal/domain/filter"
	"github.com/okian/mvpshare/internal/domain/season"
)

func table() *season.Table {
	t, err := season.FromRecords([]season.SeasonRecord{
		{Player: "A", Year: 1991, Stats: map[string]float64{"G": 82, "FG%": 0.52}, Share: 0.8},
		{Player: "B", Year: 1992, Stats: map[string]float64{"G": 10, "FG%": 0.40}, Share: 0},
		{Player: "C", Year: 1993, Stats: map[string]float64{"G": 60}, Share: 0.1},
	}, []string{"G", "FG%"})
	So(err, ShouldBeNil)
	return t
}

func TestFilter(t *testing.T) {
	Convey("Given a season table", t, func() {
		tbl := table()

		Convey("When the expression is empty", func() {
			f, err := filter.Compile("  ")

			Convey("Then every row is kept", func() {
				So(err, ShouldBeNil)
				So(f.Empty(), ShouldBeTrue)
				out, err := f.Apply(tbl)
				So(err, ShouldBeNil)
				So(out.Len(), ShouldEqual, 3)
			})
		})

		Convey("When filtering on games played", func() {
			f, err := filter.Compile("row.G >= 50.0")
			So(err, ShouldBeNil)
			out, err := f.Apply(tbl)

			Convey("Then only qualifying rows survive in order", func() {
				So(err, ShouldBeNil)
				So(out.Players(), ShouldResemble, []string{"A", "C"})
				So(f.Expr(), ShouldEqual, "row.G >= 50.0")
			})
		})

		Convey("When mixing int years, names and bracketed columns", func() {
			f, err := filter.Compile(`row.Year > 1991 && row["FG%"] < 0.45 && row.Player != "A"`)
			So(err, ShouldBeNil)
			out, err := f.Apply(tbl)

			Convey("Then a missing cell compares as zero", func() {
				So(err, ShouldBeNil)
				So(out.Players(), ShouldResemble, []string{"B", "C"})
			})
		})

		Convey("When an int literal meets a double column", func() {
			f, err := filter.Compile("row.G > 20")
			So(err, ShouldBeNil)
			out, err := f.Apply(tbl)

			Convey("Then cross-type comparison works", func() {
				So(err, ShouldBeNil)
				So(out.Len(), ShouldEqual, 2)
			})
		})

		Convey("When the expression does not parse", func() {
			_, err := filter.Compile("row.G >")

			Convey("Then ErrCompile is returned", func() {
				So(err, ShouldWrap, filter.ErrCompile)
			})
		})

		Convey("When the expression is not boolean", func() {
			_, err := filter.Compile(`"text"`)

			Convey("Then ErrNotBoolean is returned", func() {
				So(err, ShouldWrap, filter.ErrNotBoolean)
			})
		})

		Convey("When a dynamic expression yields a non-boolean", func() {
			f, err := filter.Compile("row.G")
			So(err, ShouldBeNil)
			_, err = f.Apply(tbl)

			Convey("Then ErrNotBoolean is returned at evaluation", func() {
				So(err, ShouldWrap, filter.ErrNotBoolean)
			})
		})

		Convey("When a column is missing from the row", func() {
			f, err := filter.Compile("row.AST > 1.0")
			So(err, ShouldBeNil)
			_, err = f.Apply(tbl)

			Convey("Then ErrEval is returned", func() {
				So(err, ShouldWrap, filter.ErrEval)
			})
		})
	})
}
