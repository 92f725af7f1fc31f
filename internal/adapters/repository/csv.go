package repository

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/okian/mvpshare/internal/domain/model"
	"github.com/okian/mvpshare/internal/domain/season"
	"github.com/okian/mvpshare/pkg/metrics"
)

// PredictionColumns is the header of the flat predictions file.
var PredictionColumns = []string{
	"Player", "Year", "Share", "Predicted", "ActualRank", "PredictedRank", "RankDifference",
}

// LoadCSV reads a cleaned season file from disk.
func LoadCSV(path, target string) (*season.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open season file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, target)
}

// ReadCSV parses a season CSV with a header row. Player is always read as
// text; other column types are detected. Empty numeric cells become NaN. A
// header without rows yields an empty table carrying the header's columns.
func ReadCSV(r io.Reader, target string) (*season.Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	df := dataframe.ReadCSV(bytes.NewReader(raw),
		dataframe.HasHeader(true),
		dataframe.WithTypes(map[string]series.Type{season.PlayerColumn: series.String}),
	)
	if df.Err != nil {
		if header, ok := headerOnly(raw); ok {
			return season.NewTable(emptyFrame(header), target)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, df.Err)
	}
	return season.NewTable(df, target)
}

// headerOnly reports whether raw holds exactly one CSV record and returns it.
func headerOnly(raw []byte) ([]string, bool) {
	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	if err != nil || len(records) != 1 {
		return nil, false
	}
	return records[0], true
}

// emptyFrame builds a zero-row frame with Player as text, Year as int and every
// other column as float.
func emptyFrame(header []string) dataframe.DataFrame {
	cols := make([]series.Series, len(header))
	for i, name := range header {
		switch name {
		case season.PlayerColumn:
			cols[i] = series.New([]string{}, series.String, name)
		case season.YearColumn:
			cols[i] = series.New([]int{}, series.Int, name)
		default:
			cols[i] = series.New([]float64{}, series.Float, name)
		}
	}
	return dataframe.New(cols...)
}

// WritePredictionsCSV writes rows as a flat table in PredictionColumns order.
// Floats keep full precision.
func WritePredictionsCSV(w io.Writer, rows []model.RankedRow) error {
	cols := make([][]string, len(PredictionColumns))
	for i := range cols {
		cols[i] = make([]string, len(rows))
	}
	for i, r := range rows {
		cols[0][i] = r.Player
		cols[1][i] = strconv.Itoa(r.Year)
		cols[2][i] = formatFloat(r.Share)
		cols[3][i] = formatFloat(r.Predicted)
		cols[4][i] = strconv.Itoa(r.ActualRank)
		cols[5][i] = strconv.Itoa(r.PredictedRank)
		cols[6][i] = strconv.Itoa(r.RankDifference)
	}

	se := make([]series.Series, len(cols))
	for i, name := range PredictionColumns {
		se[i] = series.New(cols[i], series.String, name)
	}
	if err := dataframe.New(se...).WriteCSV(w); err != nil {
		return fmt.Errorf("write predictions: %w", err)
	}
	metrics.RecordRowsPersisted("csv", len(rows))
	return nil
}

// SavePredictionsCSV writes rows to path, replacing any existing file.
func SavePredictionsCSV(path string, rows []model.RankedRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create predictions file: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err := WritePredictionsCSV(bw, rows); err != nil {
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush predictions file: %w", err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
