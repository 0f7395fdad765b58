package tourney

import (
	"fmt"
	"time"
)

// SeasonalName builds a display name for a tournament from its start date
// and the per-cohort tournament number, e.g. "Winter 2026 #3".
func SeasonalName(start time.Time, number int) string {
	month := start.UTC().Month()
	year := start.UTC().Year()
	var season string
	switch {
	case month >= time.December || month <= time.February:
		season = "Winter"
	case month <= time.May:
		season = "Spring"
	case month <= time.August:
		season = "Summer"
	default:
		season = "Fall"
	}
	return fmt.Sprintf("%v %v #%v", season, year, number)
}
