package tourney

import (
	"fmt"
	"strings"
	"time"
)

// SubmittedGame is the data extracted from a fetched game that the state
// machine needs to resolve a pairing. White and Black are usernames on the
// hosting site, not tournament usernames.
type SubmittedGame struct {
	Site   GameSite
	URL    string
	White  string
	Black  string
	Result Result
}

// siteNamesEqual never matches empty usernames, so a player without an
// account on the game's site cannot pair with a blank name in the response.
func siteNamesEqual(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

// SubmitResult records a finished game. The authoritative pairing is located
// here, never chosen by the client: the earliest round holding a pairing of
// the submitter whose scheduled players match the game's site usernames. If
// the players played with swapped colors, the pairing is corrected to the
// colors actually played.
func (t *Tournament) SubmitResult(submitter string, game SubmittedGame) error {
	if t.Status == StatusComplete {
		return ErrTournamentComplete
	}
	if !game.Result.Valid() {
		return fmt.Errorf("invalid game result %q", game.Result)
	}
	if _, ok := t.Players[submitter]; !ok {
		return ErrPlayerNotFound
	}

	for r := range t.Pairings {
		for i := range t.Pairings[r] {
			pairing := &t.Pairings[r][i]
			if !pairing.Has(submitter) {
				continue
			}
			white, ok := t.Players[pairing.White]
			if !ok {
				continue
			}
			black, ok := t.Players[pairing.Black]
			if !ok {
				continue
			}
			var (
				wName    = white.SiteUsername(game.Site)
				bName    = black.SiteUsername(game.Site)
				straight = siteNamesEqual(wName, game.White) && siteNamesEqual(bName, game.Black)
				swapped  = siteNamesEqual(wName, game.Black) && siteNamesEqual(bName, game.White)
			)
			if !straight && !swapped {
				continue
			}
			if pairing.Resolved() {
				return ErrResultAlreadySet
			}
			if swapped {
				pairing.White, pairing.Black = pairing.Black, pairing.White
			}
			pairing.Result = game.Result
			pairing.URL = game.URL
			return nil
		}
	}
	return ErrNoPendingPairing
}

// Withdraw marks the player as withdrawn and awards each of their unplayed
// pairings to the opponent as a forfeit. Pairings already played stay
// untouched. Withdrawing a withdrawn player is a no-op; the first return
// value reports whether anything changed.
func (t *Tournament) Withdraw(username string) (bool, error) {
	p, ok := t.Players[username]
	if !ok {
		return false, ErrPlayerNotFound
	}
	if p.Status == PlayerWithdrawn {
		return false, nil
	}
	if t.Status == StatusComplete {
		return false, ErrTournamentComplete
	}

	p.Status = PlayerWithdrawn
	t.Players[username] = p

	for r := range t.Pairings {
		for i := range t.Pairings[r] {
			pairing := &t.Pairings[r][i]
			if !pairing.Has(username) || pairing.Resolved() {
				continue
			}
			opponent, _ := pairing.Opponent(username)
			pairing.Forfeit = true
			if op, ok := t.Players[opponent]; ok && op.Status == PlayerActive {
				if pairing.White == opponent {
					pairing.Result = ResultWhiteWon
				} else {
					pairing.Result = ResultBlackWon
				}
			}
			// Both players withdrawn: a double forfeit, no score for
			// either side.
		}
	}
	return true, nil
}

// AllResolved reports whether every pairing has either a result or a
// forfeit.
func (t *Tournament) AllResolved() bool {
	for _, round := range t.Pairings {
		for _, pairing := range round {
			if !pairing.Resolved() {
				return false
			}
		}
	}
	return true
}

// CheckComplete transitions the tournament to COMPLETE once every pairing is
// resolved or the end date has elapsed, computing the winners. It reports
// whether the transition fired. The transition is one-way: a complete
// tournament never becomes active again.
func (t *Tournament) CheckComplete(now time.Time) bool {
	if t.Status != StatusActive {
		return false
	}
	if !t.AllResolved() && now.Before(t.EndDate.UTC()) {
		return false
	}
	t.Status = StatusComplete
	t.Winners = Winners(t)
	return true
}
