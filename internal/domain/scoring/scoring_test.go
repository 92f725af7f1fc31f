package scoring_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/mvpshare/internal/domain/model"
	"github.com/okian/mvpshare/internal/domain/ranking"
	"github.com/okian/mvpshare/internal/domain/scoring"
)

// season ranks players whose predicted order is given by order.
func season(shares map[string]float64, order ...string) []model.RankedRow {
	rows := make([]model.PredictionRow, 0, len(order))
	for i, p := range order {
		rows = append(rows, model.PredictionRow{
			Player:    p,
			Year:      2000,
			Share:     shares[p],
			Predicted: float64(len(order) - i),
		})
	}
	return ranking.Rank(rows)
}

var abc = map[string]float64{"A": 0.9, "B": 0.5, "C": 0.1}

func TestAveragePrecision(t *testing.T) {
	Convey("Given A, B, C with shares 0.9, 0.5, 0.1", t, func() {
		Convey("When the prediction order matches the truth with cutoff 2", func() {
			score, err := scoring.AveragePrecision(season(abc, "A", "B", "C"), 2)

			Convey("Then the samples are 1/1 and 2/2 and the score is 1", func() {
				So(err, ShouldBeNil)
				So(score, ShouldEqual, 1.0)
			})
		})

		Convey("When the predicted order is C, A, B with cutoff 2", func() {
			score, err := scoring.AveragePrecision(season(abc, "C", "A", "B"), 2)

			Convey("Then the samples are 1/2 and 2/3", func() {
				So(err, ShouldBeNil)
				So(score, ShouldAlmostEqual, (0.5+2.0/3.0)/2, 1e-12)
				So(score, ShouldAlmostEqual, 0.5833, 1e-4)
			})
		})

		Convey("When the cutoff exceeds the number of rows", func() {
			score, err := scoring.AveragePrecision(season(abc, "C", "B", "A"), 10)

			Convey("Then every row is in the true top set and the score is 1", func() {
				So(err, ShouldBeNil)
				So(score, ShouldEqual, 1.0)
			})
		})

		Convey("When the cutoff is zero", func() {
			_, err := scoring.AveragePrecision(season(abc, "A", "B", "C"), 0)

			Convey("Then ErrInvalidCutoff is reported", func() {
				So(err, ShouldWrap, scoring.ErrInvalidCutoff)
			})
		})
	})

	Convey("Given an empty ranking", t, func() {
		_, err := scoring.AveragePrecision(nil, 5)

		Convey("Then ErrInvalidCutoff is reported", func() {
			So(err, ShouldWrap, scoring.ErrInvalidCutoff)
		})
	})

	Convey("Given a larger season where the true top 5 is predicted late", t, func() {
		shares := map[string]float64{}
		order := []string{}
		for i, p := range []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8"} {
			shares[p] = float64(8-i) / 10
		}
		// Predicted order puts the three non-top players first.
		order = append(order, "p6", "p7", "p8", "p1", "p2", "p3", "p4", "p5")

		score, err := scoring.AveragePrecision(season(shares, order...), 5)

		Convey("Then the score stays in (0, 1) and walks the whole list", func() {
			So(err, ShouldBeNil)
			want := (1.0/4 + 2.0/5 + 3.0/6 + 4.0/7 + 5.0/8) / 5
			So(score, ShouldAlmostEqual, want, 1e-12)
			So(score, ShouldBeGreaterThan, 0)
			So(score, ShouldBeLessThan, 1)
		})
	})
}

func TestTopMeanSquaredError(t *testing.T) {
	Convey("Given ranked rows with known errors", t, func() {
		rows := ranking.Rank([]model.PredictionRow{
			{Player: "A", Share: 0.9, Predicted: 0.7},
			{Player: "B", Share: 0.5, Predicted: 0.5},
			{Player: "C", Share: 0.1, Predicted: 0.4},
		})

		Convey("Then the limit selects the top rows by actual share", func() {
			So(scoring.TopMeanSquaredError(rows, 1), ShouldAlmostEqual, 0.04, 1e-12)
			So(scoring.TopMeanSquaredError(rows, 2), ShouldAlmostEqual, 0.02, 1e-12)
			So(scoring.TopMeanSquaredError(rows, 0), ShouldAlmostEqual, (0.04+0+0.09)/3, 1e-12)
			So(scoring.TopMeanSquaredError(rows, 50), ShouldAlmostEqual, (0.04+0+0.09)/3, 1e-12)
		})

		Convey("Then no rows yields zero", func() {
			So(scoring.TopMeanSquaredError(nil, 5), ShouldEqual, 0)
		})
	})
}

func TestScorer(t *testing.T) {
	Convey("Given a scorer with default options", t, func() {
		s := scoring.New()

		Convey("Then the cutoff is 5", func() {
			So(s.Cutoff(), ShouldEqual, 5)
		})

		Convey("When scoring a perfectly predicted season", func() {
			res, err := s.Score(season(abc, "A", "B", "C"))

			Convey("Then precision is 1", func() {
				So(err, ShouldBeNil)
				So(res.Precision, ShouldEqual, 1.0)
				So(res.TopMSE, ShouldBeGreaterThan, 0)
			})
		})
	})

	Convey("Given a scorer with a zero cutoff", t, func() {
		s := scoring.New(scoring.WithCutoff(0), scoring.WithMSELimit(-1))

		Convey("Then every season is rejected", func() {
			_, err := s.Score(season(abc, "A"))
			So(err, ShouldWrap, scoring.ErrInvalidCutoff)
		})
	})
}
