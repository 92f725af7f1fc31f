package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then the backtest collectors are registered under the default namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.seasonsEvaluated.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "mvpshare_backtest_seasons_evaluated_total")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("bt"),
				WithHistogramBuckets([]float64{1, 2, 3}),
				WithRowBuckets([]float64{10, 20}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then names and labels follow the options", func() {
				manager.meanPrecision.Set(0.5)
				So(testutil.ToFloat64(manager.meanPrecision), ShouldEqual, 0.5)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_bt_mean_precision" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty option values are given", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "mvpshare")
				So(manager.subsystem, ShouldEqual, "backtest")
				So(manager.histogramBuckets, ShouldNotBeEmpty)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording a scored season", func() {
			before := testutil.ToFloat64(globalManager.seasonsEvaluated)
			RecordSeasonEvaluated(1996, 0.8)

			Convey("Then the counter and the per-year gauge move", func() {
				So(testutil.ToFloat64(globalManager.seasonsEvaluated), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.seasonPrecision.WithLabelValues("1996")), ShouldEqual, 0.8)
			})
		})

		Convey("When recording skips and sinks", func() {
			RecordSeasonSkipped("invalid_cutoff")
			RecordRowsPersisted("csv", 12)

			Convey("Then labelled counters are updated", func() {
				So(testutil.ToFloat64(globalManager.seasonsSkipped.WithLabelValues("invalid_cutoff")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.rowsPersisted.WithLabelValues("csv")), ShouldBeGreaterThanOrEqualTo, 12)
			})
		})

		Convey("When moving worker gauges", func() {
			UpdateWorkerCount(4)
			IncWorkerActive()
			IncWorkerActive()
			DecWorkerActive()

			Convey("Then gauges reflect the last values", func() {
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.workerActive), ShouldEqual, 1)
				DecWorkerActive()
			})
		})

		Convey("When recording the remaining collectors", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					UpdateMeanPrecision(0.7)
					RecordFitLatency(1.5)
					RecordPredictLatency(0.2)
					RecordTrainRows(4000)
					RecordBacktestRun("ok", 250)
					UpdateQueueDepth(3)
					RecordJobProcessed()
					RecordWorkerError()
					RecordHTTPRequest("/summary", "GET", "200")
					RecordHTTPRequestDuration("/summary", "GET", "200", 0.01)
					RecordErrorByComponent("api", "not_found")
				}, ShouldNotPanic)
			})
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given a populated registry", t, func() {
		UpdateMeanPrecision(0.66)

		Convey("When writing it to a textfile", func() {
			path := filepath.Join(t.TempDir(), "backtest.prom")
			err := WriteTextfile(path)

			Convey("Then the file holds the text exposition format", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(strings.Contains(string(data), "mvpshare_backtest_mean_precision 0.66"), ShouldBeTrue)
			})
		})

		Convey("When the path is empty", func() {
			err := WriteTextfile("")

			Convey("Then ErrWriteTextfile is returned", func() {
				So(err, ShouldWrap, ErrWriteTextfile)
			})
		})

		Convey("When the directory does not exist", func() {
			err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))

			Convey("Then ErrWriteTextfile is returned", func() {
				So(err, ShouldWrap, ErrWriteTextfile)
			})
		})
	})
}

func TestInit(t *testing.T) {
	Convey("Given the global manager rebuilt with options", t, func() {
		registry := Init(
			WithNamespace("nba"),
			WithSubsystem("walkforward"),
			WithConstLabels(map[string]string{"env": "ci"}),
			WithHistogramBuckets([]float64{1, 10, 100}),
			WithRowBuckets([]float64{50, 500}),
		)
		defer Init()

		RecordSeasonSkipped("invalid_cutoff")
		RecordTrainRows(120)

		Convey("Then recordings land on the new registry under the new names", func() {
			So(GetRegistry(), ShouldPointTo, registry)
			families, err := registry.Gather()
			So(err, ShouldBeNil)

			byName := map[string]int{}
			for i, f := range families {
				byName[f.GetName()] = i
			}
			i, ok := byName["nba_walkforward_seasons_skipped_total"]
			So(ok, ShouldBeTrue)
			So(families[i].GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")

			j, ok := byName["nba_walkforward_train_rows"]
			So(ok, ShouldBeTrue)
			So(len(families[j].GetMetric()[0].GetHistogram().GetBucket()), ShouldEqual, 2)
		})
	})
}
