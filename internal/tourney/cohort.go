package tourney

// Cohort is a rating-bracket identifier, e.g. "1200-1300". Cohorts partition
// all waitlists and tournaments: a player may only enter the waitlist of
// their own cohort or an adjacent one.
type Cohort string

var Cohorts = []Cohort{
	"0-300",
	"300-400",
	"400-500",
	"500-600",
	"600-700",
	"700-800",
	"800-900",
	"900-1000",
	"1000-1100",
	"1100-1200",
	"1200-1300",
	"1300-1400",
	"1400-1500",
	"1500-1600",
	"1600-1700",
	"1700-1800",
	"1800-1900",
	"1900-2000",
	"2000-2100",
	"2100-2200",
	"2200-2300",
	"2300-2400",
	"2400+",
}

var cohortIndex = func() map[Cohort]int {
	m := make(map[Cohort]int, len(Cohorts))
	for i, c := range Cohorts {
		m[c] = i
	}
	return m
}()

func (c Cohort) Valid() bool {
	_, ok := cohortIndex[c]
	return ok
}

// Index returns the position of the cohort in the bracket ladder, or -1 for
// an unknown cohort.
func (c Cohort) Index() int {
	i, ok := cohortIndex[c]
	if !ok {
		return -1
	}
	return i
}

// IsAdjacent reports whether o is within one bracket of c. A cohort counts
// as adjacent to itself.
func (c Cohort) IsAdjacent(o Cohort) bool {
	i, j := c.Index(), o.Index()
	if i < 0 || j < 0 {
		return false
	}
	d := i - j
	return -1 <= d && d <= 1
}

// Neighborhood returns the cohort itself plus its existing neighbors, in
// ladder order.
func (c Cohort) Neighborhood() []Cohort {
	i := c.Index()
	if i < 0 {
		return nil
	}
	res := make([]Cohort, 0, 3)
	if i > 0 {
		res = append(res, Cohorts[i-1])
	}
	res = append(res, Cohorts[i])
	if i+1 < len(Cohorts) {
		res = append(res, Cohorts[i+1])
	}
	return res
}
