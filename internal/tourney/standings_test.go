package tourney

import (
	"fmt"
	"testing"
	"time"
)

func fourPlayers() []Player {
	res := make([]Player, 4)
	for i, name := range []string{"a", "b", "c", "d"} {
		res[i] = Player{
			Username:        name,
			DisplayName:     name,
			LichessUsername: "li_" + name,
			JoinedAt:        time.Date(2026, 2, 1, 0, i, 0, 0, time.UTC),
		}
	}
	return res
}

func mustTournament(t *testing.T, players []Player) *Tournament {
	t.Helper()
	tn, err := NewTournament("1200-1300", "Winter 2026 #1", players, time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC), 35*24*time.Hour)
	if err != nil {
		t.Fatalf("new tournament: %v", err)
	}
	return tn
}

// setResult resolves the pairing between the two players directly, bypassing
// game matching.
func setResult(t *testing.T, tn *Tournament, white, black string, result Result) {
	t.Helper()
	for r := range tn.Pairings {
		for i := range tn.Pairings[r] {
			p := &tn.Pairings[r][i]
			if !p.Has(white) || !p.Has(black) {
				continue
			}
			if p.White != white {
				p.White, p.Black = p.Black, p.White
			}
			p.Result = result
			return
		}
	}
	t.Fatalf("pairing %v-%v not found", white, black)
}

func TestScoringRoundTrip(t *testing.T) {
	tn := mustTournament(t, fourPlayers())
	setResult(t, tn, "a", "b", ResultWhiteWon)
	setResult(t, tn, "a", "c", ResultWhiteWon)
	setResult(t, tn, "a", "d", ResultDraw)
	setResult(t, tn, "b", "c", ResultWhiteWon)
	setResult(t, tn, "b", "d", ResultDraw)
	setResult(t, tn, "c", "d", ResultWhiteWon)

	stats := ComputeStandings(tn)
	for username, want := range map[string]float64{"a": 2.5, "b": 1.5, "c": 1.0, "d": 1.0} {
		if got := stats[username].Score; got != want {
			t.Errorf("score of %v: got %v, want %v", username, got, want)
		}
		if got := stats[username].Played; got != 3 {
			t.Errorf("played of %v: got %v, want 3", username, got)
		}
	}

	if !tn.CheckComplete(time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("all games resolved, tournament should complete")
	}
	if len(tn.Winners) != 1 || tn.Winners[0] != "a" {
		t.Errorf("winners: got %v, want [a]", tn.Winners)
	}
}

func TestTiebreakOrdersEqualScores(t *testing.T) {
	tn := mustTournament(t, fourPlayers())
	// a and d both finish on 2.0, but a beat the stronger opposition.
	setResult(t, tn, "a", "b", ResultWhiteWon)
	setResult(t, tn, "a", "d", ResultWhiteWon)
	setResult(t, tn, "c", "a", ResultWhiteWon)
	setResult(t, tn, "d", "b", ResultWhiteWon)
	setResult(t, tn, "d", "c", ResultWhiteWon)
	setResult(t, tn, "b", "c", ResultWhiteWon)

	stats := ComputeStandings(tn)
	if stats["a"].Score != 2 || stats["d"].Score != 2 {
		t.Fatalf("expected a and d on 2.0, got %v and %v", stats["a"].Score, stats["d"].Score)
	}
	// a beat b (1.0) and d (2.0); d beat b (1.0) and c (1.0).
	if got := stats["a"].TiebreakScore; got != 3.0 {
		t.Errorf("tiebreak of a: got %v, want 3", got)
	}
	if got := stats["d"].TiebreakScore; got != 2.0 {
		t.Errorf("tiebreak of d: got %v, want 2", got)
	}

	standings := Standings(tn)
	if standings[0].Username != "a" || standings[0].Rank != 1 {
		t.Errorf("expected a first, got %+v", standings[0])
	}
	if standings[1].Username != "d" || standings[1].Rank != 2 {
		t.Errorf("expected d second, got %+v", standings[1])
	}

	if winners := Winners(tn); len(winners) != 1 || winners[0] != "a" {
		t.Errorf("winners: got %v, want [a]", winners)
	}
}

func TestSharedWin(t *testing.T) {
	tn := mustTournament(t, fourPlayers())
	// Everything drawn: everybody ties on score and tiebreak.
	for _, pair := range [][2]string{{"a", "b"}, {"a", "c"}, {"a", "d"}, {"b", "c"}, {"b", "d"}, {"c", "d"}} {
		setResult(t, tn, pair[0], pair[1], ResultDraw)
	}
	winners := Winners(tn)
	if len(winners) != 4 {
		t.Fatalf("expected 4 shared winners, got %v", winners)
	}
	// Stable order: ties keep the player order.
	for i, name := range []string{"a", "b", "c", "d"} {
		if winners[i] != name {
			t.Errorf("winners[%v]: got %v, want %v", i, winners[i], name)
		}
	}
}

func TestNoWinnersWithoutPoints(t *testing.T) {
	tn := mustTournament(t, fourPlayers())
	if winners := Winners(tn); winners != nil {
		t.Errorf("no games played, expected no winners, got %v", winners)
	}
}

func TestWithdrawnPlayerScoring(t *testing.T) {
	tn := mustTournament(t, fourPlayers())
	// d plays one real game, then withdraws.
	setResult(t, tn, "d", "a", ResultWhiteWon)
	if _, err := tn.Withdraw("d"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	stats := ComputeStandings(tn)
	// The played loss against d stays on a's record.
	if stats["a"].Losses != 1 {
		t.Errorf("losses of a: got %v, want 1", stats["a"].Losses)
	}
	// b and c get forfeit wins which count as wins.
	for _, username := range []string{"b", "c"} {
		s := stats[username]
		if s.ForfeitWins != 1 || s.Wins != 1 || s.Score != 1 {
			t.Errorf("stats of %v: %+v", username, s)
		}
	}
	// d keeps the point from the played game but is out of the ranking.
	if stats["d"].Score != 1 {
		t.Errorf("score of d: got %v, want 1", stats["d"].Score)
	}
	for _, s := range Standings(tn) {
		if s.Username == "d" {
			t.Errorf("withdrawn player in standings: %+v", s)
		}
	}
}

func TestForfeitsExcludedFromTiebreak(t *testing.T) {
	tn := mustTournament(t, fourPlayers())
	setResult(t, tn, "a", "b", ResultWhiteWon)
	setResult(t, tn, "d", "c", ResultWhiteWon)
	if _, err := tn.Withdraw("d"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	stats := ComputeStandings(tn)
	if stats["d"].Score != 1 {
		t.Fatalf("score of d: got %v, want 1", stats["d"].Score)
	}
	// a's tiebreak counts the win over b, but not the forfeit win over d,
	// even though d holds a point from the played game.
	if got, want := stats["a"].TiebreakScore, stats["b"].Score; got != want {
		t.Errorf("tiebreak of a: got %v, want %v", got, want)
	}
}

func TestCrosstable(t *testing.T) {
	tn := mustTournament(t, fourPlayers())
	setResult(t, tn, "a", "b", ResultWhiteWon)
	setResult(t, tn, "c", "a", ResultDraw)
	if _, err := tn.Withdraw("d"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	rows := Crosstable(tn)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %v", len(rows))
	}
	idx := make(map[string]int)
	for i, row := range rows {
		idx[row.Username] = i
		if len(row.Cells) != 4 {
			t.Fatalf("row %v: expected 4 cells, got %v", row.Username, len(row.Cells))
		}
		if row.Cells[i] != CellSelf {
			t.Errorf("row %v: diagonal cell is %q", row.Username, row.Cells[i])
		}
	}
	expect := func(owner, opponent, cell string) {
		t.Helper()
		if got := rows[idx[owner]].Cells[idx[opponent]]; got != cell {
			t.Errorf("cell %v vs %v: got %q, want %q", owner, opponent, got, cell)
		}
	}
	expect("a", "b", CellWin)
	expect("b", "a", CellLoss)
	expect("a", "c", CellDraw)
	expect("c", "a", CellDraw)
	expect("b", "c", CellPending)
	expect("a", "d", CellForfeitWin)
	expect("d", "a", CellForfeited)

	if rows[idx["d"]].Status != PlayerWithdrawn {
		t.Errorf("row d: status %v", rows[idx["d"]].Status)
	}
	if rows[idx["a"]].Score != 2.5 {
		t.Errorf("score of a: got %v, want 2.5", rows[idx["a"]].Score)
	}
}

func TestForfeitPropagationMidTournament(t *testing.T) {
	players := make([]Player, 10)
	for i := range players {
		players[i] = Player{
			Username:        fmt.Sprintf("p%v", i),
			DisplayName:     fmt.Sprintf("P%v", i),
			LichessUsername: fmt.Sprintf("li%v", i),
			JoinedAt:        time.Date(2026, 3, 1, 0, i, 0, 0, time.UTC),
		}
	}
	tn := mustTournament(t, players)

	// p0 plays the first three rounds, then withdraws.
	for r := 0; r < 3; r++ {
		for _, p := range tn.Pairings[r] {
			if p.Has("p0") {
				setResult(t, tn, p.White, p.Black, ResultWhiteWon)
			}
		}
	}
	if _, err := tn.Withdraw("p0"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	for r := range tn.Pairings {
		for _, p := range tn.Pairings[r] {
			if !p.Has("p0") {
				continue
			}
			if r < 3 {
				if p.Forfeit {
					t.Errorf("round %v: played pairing was forfeited", r)
				}
				continue
			}
			opponent, _ := p.Opponent("p0")
			if !p.Forfeit {
				t.Errorf("round %v: pairing vs %v not forfeited", r, opponent)
				continue
			}
			winner := p.White
			if p.Result == ResultBlackWon {
				winner = p.Black
			}
			if winner != opponent {
				t.Errorf("round %v: forfeit awarded to %v, not %v", r, winner, opponent)
			}
		}
	}
}
