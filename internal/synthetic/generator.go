// Package synthetic generates reproducible season tables for demos and tests.
// The vote share of every season is a deterministic function of a few box
// score and team columns, so a linear model can recover most of the ranking.
package synthetic

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"slices"
	"sort"

	"github.com/okian/mvpshare/internal/domain/features"
	"github.com/okian/mvpshare/internal/domain/season"
	"github.com/okian/mvpshare/pkg/logger"
)

// Generation defaults.
const (
	DefaultSeed      = 1
	DefaultFirstYear = 2000
	DefaultSeasons   = 12
	DefaultPlayers   = 40
	DefaultVoted     = 10

	gamesPerSeason = 82
	maxShare       = 0.95
)

// Columns lists the stat columns every generated record carries, in file order.
func Columns() []string {
	return slices.DeleteFunc(features.DefaultPredictors(), func(c string) bool {
		return c == season.YearColumn
	})
}

type settings struct {
	seed      uint64
	firstYear int
	seasons   int
	players   int
	voted     int
}

// Option configures Generate.
type Option func(*settings)

// WithSeed fixes the random source.
func WithSeed(seed uint64) Option {
	return func(s *settings) { s.seed = seed }
}

// WithFirstYear sets the year of the first season.
func WithFirstYear(year int) Option {
	return func(s *settings) { s.firstYear = year }
}

// WithSeasons sets how many consecutive seasons are generated.
func WithSeasons(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.seasons = n
		}
	}
}

// WithPlayers sets the number of players per season.
func WithPlayers(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.players = n
		}
	}
}

// WithVoted sets how many players per season receive a non-zero share.
func WithVoted(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.voted = n
		}
	}
}

// player is the latent profile a season line is drawn from.
type player struct {
	name   string
	age    int
	talent float64
	usage  float64
	big    float64
}

// Generate builds the season records. The same options always produce the
// same records.
func Generate(ctx context.Context, opts ...Option) ([]season.SeasonRecord, error) {
	s := settings{
		seed:      DefaultSeed,
		firstYear: DefaultFirstYear,
		seasons:   DefaultSeasons,
		players:   DefaultPlayers,
		voted:     DefaultVoted,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.voted >= s.players {
		return nil, fmt.Errorf("synthetic: voted players %d must be fewer than players %d", s.voted, s.players)
	}

	rng := rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15))
	roster := make([]player, s.players)
	for i := range roster {
		roster[i] = player{
			name:   fmt.Sprintf("Player %03d", i+1),
			age:    20 + rng.IntN(12),
			talent: rng.Float64(),
			usage:  0.5 + rng.Float64()/2,
			big:    rng.Float64(),
		}
	}

	records := make([]season.SeasonRecord, 0, s.seasons*s.players)
	for year := s.firstYear; year < s.firstYear+s.seasons; year++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("synthetic: %w", err)
		}
		lines := make([]season.SeasonRecord, len(roster))
		value := make([]float64, len(roster))
		for i := range roster {
			p := &roster[i]
			lines[i], value[i] = seasonLine(rng, p, year)
			p.age++
			p.talent = clamp(p.talent+rng.NormFloat64()*0.05, 0, 1)
		}
		assignShares(lines, value, s.voted)
		records = append(records, lines...)
	}

	logger.Get().Debug(ctx, "synthetic seasons generated",
		logger.Int("seasons", s.seasons),
		logger.Int("players", s.players),
		logger.Int("rows", len(records)),
	)
	return records, nil
}

// seasonLine draws one box score line and returns it with the hidden value the
// share is derived from.
func seasonLine(rng *rand.Rand, p *player, year int) (season.SeasonRecord, float64) {
	noise := func(scale float64) float64 { return rng.NormFloat64() * scale }

	g := float64(60 + rng.IntN(23))
	gs := math.Min(g, math.Round(g*(0.6+0.4*p.talent)))
	mp := clamp(24+12*p.talent+noise(1.5), 10, 40)

	fga := clamp(8+14*p.talent*p.usage+noise(1), 2, 30)
	tpa := fga * clamp(0.45-0.35*p.big+noise(0.03), 0.02, 0.6)
	tpPct := clamp(0.33+noise(0.03), 0.2, 0.45)
	tp := tpa * tpPct
	twoA := fga - tpa
	twoPct := clamp(0.48+0.08*p.big+0.04*p.talent+noise(0.02), 0.38, 0.68)
	two := twoA * twoPct
	fg := tp + two
	fta := clamp(2+6*p.talent*p.usage+noise(0.5), 0.5, 12)
	ftPct := clamp(0.78-0.1*p.big+noise(0.04), 0.5, 0.95)
	ft := fta * ftPct
	pts := 2*two + 3*tp + ft

	orb := clamp(0.5+3*p.big+noise(0.3), 0.1, 5)
	drb := clamp(2.5+6*p.big+2*p.talent+noise(0.5), 1, 12)
	ast := clamp(1+7*p.talent*(1-p.big)+noise(0.5), 0.3, 11)
	stl := clamp(0.5+1.2*p.talent+noise(0.2), 0.1, 2.5)
	blk := clamp(0.2+2.2*p.big+noise(0.2), 0, 3.5)
	tov := clamp(1+0.12*fga+noise(0.3), 0.3, 5)
	pf := clamp(1.6+1.2*p.big+noise(0.3), 0.5, 4.5)

	team := clamp(0.5+0.35*(p.talent-0.5)+noise(0.12), 0.15, 0.85)
	w := math.Round(gamesPerSeason * team)
	l := gamesPerSeason - w
	srs := (team - 0.5) * 25
	psg := 108 + srs/2 + noise(2)
	pag := psg - srs

	rec := season.SeasonRecord{
		Player: p.name,
		Year:   year,
		Stats: map[string]float64{
			"Age": float64(p.age), "G": g, "GS": gs, "MP": round(mp, 1),
			"FG": round(fg, 1), "FGA": round(fga, 1), "FG%": round(fg/fga, 3),
			"3P": round(tp, 1), "3PA": round(tpa, 1), "3P%": round(tpPct, 3),
			"2P": round(two, 1), "2PA": round(twoA, 1), "2P%": round(twoPct, 3),
			"eFG%": round((fg+0.5*tp)/fga, 3),
			"FT": round(ft, 1), "FTA": round(fta, 1), "FT%": round(ftPct, 3),
			"ORB": round(orb, 1), "DRB": round(drb, 1), "TRB": round(orb+drb, 1),
			"AST": round(ast, 1), "STL": round(stl, 1), "BLK": round(blk, 1),
			"TOV": round(tov, 1), "PF": round(pf, 1), "PTS": round(pts, 1),
			"W": w, "L": l, "W/L%": round(w/gamesPerSeason, 3), "GB": math.Max(0, 60-w),
			"PS/G": round(psg, 1), "PA/G": round(pag, 1), "SRS": round(srs, 2),
		},
	}
	value := 0.06*pts + 0.04*ast + 0.03*(orb+drb) + 0.05*(w-41) + 0.02*stl + 0.02*blk
	return rec, value
}

// assignShares gives the voted best players of a season a share that falls
// linearly from maxShare to just above zero; everyone else gets zero.
func assignShares(lines []season.SeasonRecord, value []float64, voted int) {
	order := make([]int, len(lines))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return value[order[a]] > value[order[b]] })

	top, floor := value[order[0]], value[order[voted]]
	span := top - floor
	for rank, i := range order {
		if rank >= voted || span <= 0 {
			lines[i].Share = 0
			continue
		}
		lines[i].Share = round(maxShare*(value[i]-floor)/span, 4)
		if lines[i].Share == 0 {
			lines[i].Share = 0.001
		}
	}
}

// Table generates records and wraps them in a season table.
func Table(ctx context.Context, opts ...Option) (*season.Table, error) {
	records, err := Generate(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return season.FromRecords(records, Columns())
}

// WriteCSV writes t in the cleaned season file layout.
func WriteCSV(w io.Writer, t *season.Table) error {
	if err := t.Frame().WriteCSV(w); err != nil {
		return fmt.Errorf("synthetic: write csv: %w", err)
	}
	return nil
}

// SaveCSV generates a table and writes it to path.
func SaveCSV(ctx context.Context, path string, opts ...Option) (*season.Table, error) {
	t, err := Table(ctx, opts...)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("synthetic: create %s: %w", path, err)
	}
	if err := WriteCSV(f, t); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("synthetic: close %s: %w", path, err)
	}
	return t, nil
}

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
