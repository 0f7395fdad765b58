package tourney

import "fmt"

// GeneratePairings builds the full single round-robin schedule for the given
// player order with the circle method: the last player keeps a fixed seat
// while the others rotate around the circle, one step per round. Colors
// follow the standard rule, with the fixed seat alternating by round parity,
// which makes the output identical to the Berger tables from the FIDE
// handbook (C05 Annex 1).
//
// The function is pure: the same order always yields the same schedule.
// Every unordered pair of players meets exactly once, and each player plays
// exactly one game per round.
//
// Odd group sizes would need a bye seat per round and are rejected until the
// engine supports scoring byes.
func GeneratePairings(order []string) ([][]Pairing, error) {
	n := len(order)
	if n < 2 {
		return nil, fmt.Errorf("not enough players for a round-robin: %v", n)
	}
	if n%2 != 0 {
		return nil, fmt.Errorf("odd number of players is unsupported: %v", n)
	}
	seen := make(map[string]struct{}, n)
	for _, u := range order {
		if u == "" {
			return nil, fmt.Errorf("empty username in player order")
		}
		if _, ok := seen[u]; ok {
			return nil, fmt.Errorf("duplicate username in player order: %q", u)
		}
		seen[u] = struct{}{}
	}

	var (
		rounds = n - 1
		circle = n - 1
		half   = n / 2
	)
	res := make([][]Pairing, 0, rounds)
	for r := range rounds {
		leader := r * half % circle
		round := make([]Pairing, 0, half)
		if r%2 == 0 {
			round = append(round, Pairing{White: order[leader], Black: order[circle]})
		} else {
			round = append(round, Pairing{White: order[circle], Black: order[leader]})
		}
		for k := 1; k < half; k++ {
			white := order[(leader+k)%circle]
			black := order[(leader-k+circle)%circle]
			round = append(round, Pairing{White: white, Black: black})
		}
		res = append(res, round)
	}
	return res, nil
}
