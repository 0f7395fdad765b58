package tourney

import "testing"

func TestCohorts(t *testing.T) {
	if !Cohort("0-300").Valid() || !Cohort("2400+").Valid() {
		t.Errorf("boundary cohorts must be valid")
	}
	for _, bad := range []Cohort{"", "300-0", "1200", "1200-1300 ", "9000+"} {
		if bad.Valid() {
			t.Errorf("cohort %q should be invalid", bad)
		}
	}
	for i, c := range Cohorts {
		if got := c.Index(); got != i {
			t.Errorf("index of %v: got %v, want %v", c, got, i)
		}
	}
}

func TestCohortAdjacency(t *testing.T) {
	if !Cohort("1200-1300").IsAdjacent("1300-1400") {
		t.Errorf("neighbors must be adjacent")
	}
	if !Cohort("1200-1300").IsAdjacent("1200-1300") {
		t.Errorf("a cohort is adjacent to itself")
	}
	if Cohort("1200-1300").IsAdjacent("1400-1500") {
		t.Errorf("cohorts two apart are not adjacent")
	}

	hood := Cohort("0-300").Neighborhood()
	if len(hood) != 2 || hood[0] != "0-300" || hood[1] != "300-400" {
		t.Errorf("neighborhood of the bottom cohort: %v", hood)
	}
	hood = Cohort("2400+").Neighborhood()
	if len(hood) != 2 || hood[0] != "2300-2400" || hood[1] != "2400+" {
		t.Errorf("neighborhood of the top cohort: %v", hood)
	}
	hood = Cohort("1200-1300").Neighborhood()
	if len(hood) != 3 || hood[0] != "1100-1200" || hood[1] != "1200-1300" || hood[2] != "1300-1400" {
		t.Errorf("neighborhood of a middle cohort: %v", hood)
	}
}
