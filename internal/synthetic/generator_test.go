package synthetic_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/mvpshare/internal/adapters/repository"
	"github.com/okian/mvpshare/internal/domain/features"
	"github.com/okian/mvpshare/internal/domain/season"
	"github.com/okian/mvpshare/internal/synthetic"
	"github.com/okian/mvpshare/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	Convey("Given the default generator", t, func() {
		records, err := synthetic.Generate(ctx)
		So(err, ShouldBeNil)

		Convey("Then every season has the configured roster", func() {
			So(len(records), ShouldEqual, synthetic.DefaultSeasons*synthetic.DefaultPlayers)
			perYear := map[int]int{}
			for _, r := range records {
				perYear[r.Year]++
			}
			So(len(perYear), ShouldEqual, synthetic.DefaultSeasons)
			So(perYear[synthetic.DefaultFirstYear], ShouldEqual, synthetic.DefaultPlayers)
		})

		Convey("Then exactly the voted players have a share in (0, 1]", func() {
			voted := map[int]int{}
			for _, r := range records {
				So(r.Share, ShouldBeBetweenOrEqual, 0, 1)
				if r.Share > 0 {
					voted[r.Year]++
				}
			}
			for _, n := range voted {
				So(n, ShouldEqual, synthetic.DefaultVoted)
			}
		})

		Convey("Then every stat column is filled", func() {
			for _, col := range synthetic.Columns() {
				_, ok := records[0].Stats[col]
				So(ok, ShouldBeTrue)
			}
		})
	})

	Convey("Given two generators with the same seed", t, func() {
		a, err := synthetic.Generate(ctx, synthetic.WithSeed(7), synthetic.WithSeasons(3))
		So(err, ShouldBeNil)
		b, err := synthetic.Generate(ctx, synthetic.WithSeed(7), synthetic.WithSeasons(3))
		So(err, ShouldBeNil)
		c, err := synthetic.Generate(ctx, synthetic.WithSeed(8), synthetic.WithSeasons(3))
		So(err, ShouldBeNil)

		Convey("Then the records are identical and another seed differs", func() {
			So(a, ShouldResemble, b)
			So(a, ShouldNotResemble, c)
		})
	})

	Convey("Given more voted players than the roster holds", t, func() {
		_, err := synthetic.Generate(ctx, synthetic.WithPlayers(5), synthetic.WithVoted(5))
		So(err, ShouldNotBeNil)
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := synthetic.Generate(cctx)
		So(err, ShouldWrap, context.Canceled)
	})
}

func TestTable(t *testing.T) {
	ctx := context.Background()

	Convey("Given a generated table", t, func() {
		table, err := synthetic.Table(ctx, synthetic.WithSeasons(4), synthetic.WithPlayers(12), synthetic.WithVoted(6))
		So(err, ShouldBeNil)

		Convey("Then it satisfies the default projection", func() {
			So(features.DefaultSpec().Check(table), ShouldBeNil)
			So(table.Years(), ShouldResemble, []int{2000, 2001, 2002, 2003})
			So(table.Len(), ShouldEqual, 48)
		})

		Convey("When written as CSV and read back", func() {
			var buf bytes.Buffer
			So(synthetic.WriteCSV(&buf, table), ShouldBeNil)
			back, err := repository.ReadCSV(&buf, season.ShareColumn)

			Convey("Then the rows survive the round trip", func() {
				So(err, ShouldBeNil)
				So(back.Len(), ShouldEqual, table.Len())
				So(back.Players(), ShouldResemble, table.Players())
				So(features.DefaultSpec().Check(back), ShouldBeNil)
			})
		})
	})

	Convey("Given a path on disk", t, func() {
		path := filepath.Join(t.TempDir(), "seasons.csv")

		Convey("Then SaveCSV writes a loadable file", func() {
			saved, err := synthetic.SaveCSV(ctx, path, synthetic.WithSeasons(2))
			So(err, ShouldBeNil)
			loaded, err := repository.LoadCSV(path, season.ShareColumn)
			So(err, ShouldBeNil)
			So(loaded.Len(), ShouldEqual, saved.Len())
		})
	})
}
