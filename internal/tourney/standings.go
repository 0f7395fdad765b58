package tourney

import "sort"

// PlayerStats is the scoring summary for one player. Forfeit wins count as
// wins for score and display purposes but stay distinguishable via
// ForfeitWins.
type PlayerStats struct {
	Score         float64 `json:"score"`
	Wins          int     `json:"wins"`
	Draws         int     `json:"draws"`
	Losses        int     `json:"losses"`
	ForfeitWins   int     `json:"forfeitWins"`
	Played        int     `json:"played"`
	TiebreakScore float64 `json:"tiebreakScore"`
}

// ComputeStandings derives per-player stats from the pairings. It is a pure
// function over the tournament state.
//
// Games that were actually played always count, for both sides, even if a
// player withdrew later: withdrawal removes a player from the ranking, not
// from the opponents' records. A forfeited pairing scores a full point for
// the surviving player only; a double forfeit scores for nobody.
//
// TiebreakScore is Sonneborn-Berger, computed over played games: the sum of
// the defeated opponents' scores plus half the drawn opponents' scores.
func ComputeStandings(t *Tournament) map[string]PlayerStats {
	stats := make(map[string]PlayerStats, len(t.Players))
	for username := range t.Players {
		stats[username] = PlayerStats{}
	}

	for _, round := range t.Pairings {
		for _, pairing := range round {
			if pairing.Result == ResultUnset {
				continue
			}
			white, black := stats[pairing.White], stats[pairing.Black]
			if pairing.Forfeit {
				switch pairing.Result {
				case ResultWhiteWon:
					white.Wins++
					white.ForfeitWins++
					white.Played++
					white.Score++
				case ResultBlackWon:
					black.Wins++
					black.ForfeitWins++
					black.Played++
					black.Score++
				}
			} else {
				white.Played++
				black.Played++
				switch pairing.Result {
				case ResultWhiteWon:
					white.Wins++
					white.Score++
					black.Losses++
				case ResultBlackWon:
					black.Wins++
					black.Score++
					white.Losses++
				case ResultDraw:
					white.Draws++
					black.Draws++
					white.Score += 0.5
					black.Score += 0.5
				}
			}
			stats[pairing.White] = white
			stats[pairing.Black] = black
		}
	}

	for _, round := range t.Pairings {
		for _, pairing := range round {
			if pairing.Forfeit || pairing.Result == ResultUnset {
				continue
			}
			white, black := stats[pairing.White], stats[pairing.Black]
			switch pairing.Result {
			case ResultWhiteWon:
				white.TiebreakScore += black.Score
			case ResultBlackWon:
				black.TiebreakScore += white.Score
			case ResultDraw:
				white.TiebreakScore += 0.5 * black.Score
				black.TiebreakScore += 0.5 * white.Score
			}
			stats[pairing.White] = white
			stats[pairing.Black] = black
		}
	}

	return stats
}

type Standing struct {
	Rank        int         `json:"rank"`
	Username    string      `json:"username"`
	DisplayName string      `json:"displayName"`
	Stats       PlayerStats `json:"stats"`
}

// Standings ranks the active players by score, then tiebreak, then player
// order. Withdrawn players are excluded from the ranking, although their
// played games still contribute to it via ComputeStandings.
func Standings(t *Tournament) []Standing {
	stats := ComputeStandings(t)
	res := make([]Standing, 0, len(t.PlayerOrder))
	for _, username := range t.PlayerOrder {
		player, ok := t.Players[username]
		if !ok || player.Status != PlayerActive {
			continue
		}
		res = append(res, Standing{
			Username:    username,
			DisplayName: player.DisplayName,
			Stats:       stats[username],
		})
	}
	// Stable sort keeps the player-order tie resolution deterministic.
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].Stats.Score != res[j].Stats.Score {
			return res[i].Stats.Score > res[j].Stats.Score
		}
		return res[i].Stats.TiebreakScore > res[j].Stats.TiebreakScore
	})
	for i := range res {
		res[i].Rank = i + 1
	}
	return res
}

// Winners returns all players tied for the top score and tiebreak, or
// nothing when no one scored.
func Winners(t *Tournament) []string {
	standings := Standings(t)
	if len(standings) == 0 || standings[0].Stats.Score == 0 {
		return nil
	}
	top := standings[0].Stats
	res := make([]string, 0, 1)
	for _, s := range standings {
		if s.Stats.Score != top.Score || s.Stats.TiebreakScore != top.TiebreakScore {
			break
		}
		res = append(res, s.Username)
	}
	return res
}
