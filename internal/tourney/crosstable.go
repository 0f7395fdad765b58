package tourney

// Crosstable cell markers.
const (
	CellSelf       = "x"
	CellWin        = "1"
	CellDraw       = "½"
	CellLoss       = "0"
	CellForfeitWin = "+"
	CellForfeited  = "-"
	CellPending    = "."
)

type CrosstableRow struct {
	Username    string       `json:"username"`
	DisplayName string       `json:"displayName"`
	Status      PlayerStatus `json:"status"`
	Cells       []string     `json:"cells"`
	Score       float64      `json:"score"`
}

// Crosstable is a read-side projection of the tournament for display: one
// row per player in player order, one cell per opponent. It never feeds back
// into scoring.
func Crosstable(t *Tournament) []CrosstableRow {
	idx := make(map[string]int, len(t.PlayerOrder))
	for i, username := range t.PlayerOrder {
		idx[username] = i
	}

	rows := make([]CrosstableRow, len(t.PlayerOrder))
	stats := ComputeStandings(t)
	for i, username := range t.PlayerOrder {
		player := t.Players[username]
		cells := make([]string, len(t.PlayerOrder))
		for j := range cells {
			cells[j] = CellPending
		}
		cells[i] = CellSelf
		rows[i] = CrosstableRow{
			Username:    username,
			DisplayName: player.DisplayName,
			Status:      player.Status,
			Cells:       cells,
			Score:       stats[username].Score,
		}
	}

	setCell := func(owner, opponent, value string) {
		i, ok := idx[owner]
		if !ok {
			return
		}
		j, ok := idx[opponent]
		if !ok {
			return
		}
		rows[i].Cells[j] = value
	}

	for _, round := range t.Pairings {
		for _, pairing := range round {
			switch {
			case pairing.Forfeit && pairing.Result == ResultWhiteWon:
				setCell(pairing.White, pairing.Black, CellForfeitWin)
				setCell(pairing.Black, pairing.White, CellForfeited)
			case pairing.Forfeit && pairing.Result == ResultBlackWon:
				setCell(pairing.Black, pairing.White, CellForfeitWin)
				setCell(pairing.White, pairing.Black, CellForfeited)
			case pairing.Forfeit:
				setCell(pairing.White, pairing.Black, CellForfeited)
				setCell(pairing.Black, pairing.White, CellForfeited)
			case pairing.Result == ResultWhiteWon:
				setCell(pairing.White, pairing.Black, CellWin)
				setCell(pairing.Black, pairing.White, CellLoss)
			case pairing.Result == ResultBlackWon:
				setCell(pairing.Black, pairing.White, CellWin)
				setCell(pairing.White, pairing.Black, CellLoss)
			case pairing.Result == ResultDraw:
				setCell(pairing.White, pairing.Black, CellDraw)
				setCell(pairing.Black, pairing.White, CellDraw)
			}
		}
	}
	return rows
}
