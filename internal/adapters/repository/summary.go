package repository

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/mvpshare/internal/domain/model"
	"github.com/okian/mvpshare/internal/domain/types"
)

// Summary formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// NewSummary converts a result into its report shape. Slices are never nil so
// they encode as empty lists.
func NewSummary(res *model.BacktestResult) types.Summary {
	s := types.Summary{
		RunID:              res.RunID,
		DurationMs:         res.Duration.Milliseconds(),
		MeanPrecision:      res.MeanPrecision,
		Years:              append([]int{}, res.Years...),
		PerSeasonPrecision: append([]float64{}, res.PerSeasonPrecision...),
		Seasons:            make([]types.Season, 0, len(res.Seasons)),
		Skipped:            make([]types.Skip, 0, len(res.Skipped)),
		Correlations:       make([]types.Correlation, 0, len(res.Correlations)),
	}
	if !res.StartedAt.IsZero() {
		s.StartedAt = res.StartedAt.UTC().Format(time.RFC3339)
	}
	for _, ss := range res.Seasons {
		s.Seasons = append(s.Seasons, toSeason(ss))
	}
	for _, sk := range res.Skipped {
		s.Skipped = append(s.Skipped, types.Skip{Year: sk.Year, Reason: sk.Reason})
	}
	for _, c := range res.Correlations {
		s.Correlations = append(s.Correlations, types.Correlation{Column: c.Column, R: c.R})
	}
	return s
}

// FormatFor picks the summary format from a file extension; anything that is
// not .yaml or .yml is JSON.
func FormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// EncodeSummary writes the report of res to w in the given format.
func EncodeSummary(w io.Writer, format string, res *model.BacktestResult) error {
	s := NewSummary(res)
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode yaml summary: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode json summary: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteSummary writes the report of res to path, choosing YAML or JSON by
// extension.
func WriteSummary(path string, res *model.BacktestResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}
	if err := EncodeSummary(f, FormatFor(path), res); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func toSeason(s model.SeasonSummary) types.Season {
	return types.Season{
		Year:      s.Year,
		TrainRows: s.TrainRows,
		TestRows:  s.TestRows,
		Precision: s.Precision,
		TopMSE:    s.TopMSE,
	}
}

func toEntry(r model.RankedRow) types.Entry {
	return types.Entry{
		ActualRank:     r.ActualRank,
		PredictedRank:  r.PredictedRank,
		RankDifference: r.RankDifference,
		Player:         r.Player,
		Year:           r.Year,
		Share:          r.Share,
		Predicted:      r.Predicted,
	}
}
