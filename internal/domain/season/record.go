package season

// SeasonRecord is one player's line for one season.
type SeasonRecord struct {
	Player string
	Year   int
	Stats  map[string]float64
	Share  float64
}
