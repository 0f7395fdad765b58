// Package gamesrc resolves game-hosting URLs into the data the tournament
// engine needs: who played which color and how the game ended. Only
// lichess.org and chess.com games are recognized, and only via their public
// APIs; full PGN import is deliberately out of scope.
package gamesrc

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/alex65536/go-chess/chess"

	"github.com/cohortclub/berger/internal/tourney"
)

var ErrNotFinished = errors.New("game is not finished yet")

// resultFromStatus converts a game status into a recordable result. Anything
// but a decisive or drawn finish means the game cannot be submitted yet.
func resultFromStatus(s chess.Status) (tourney.Result, error) {
	switch s {
	case chess.StatusWhiteWins:
		return tourney.ResultWhiteWon, nil
	case chess.StatusBlackWins:
		return tourney.ResultBlackWon, nil
	case chess.StatusDraw:
		return tourney.ResultDraw, nil
	default:
		return tourney.ResultUnset, ErrNotFinished
	}
}

// Game is a normalized view of a hosted game. Site plus ID identify the game
// uniquely across submissions.
type Game struct {
	Site   tourney.GameSite
	ID     string
	URL    string
	White  string
	Black  string
	Result tourney.Result
}

// Key returns the duplicate-submission identifier for the game.
func (g Game) Key() string {
	return string(g.Site) + ":" + g.ID
}

func isAlnum(s string) bool {
	for _, c := range s {
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9') {
			return false
		}
	}
	return len(s) != 0
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) != 0
}

// ParseURL recognizes a game URL and extracts the site and the game ID.
// Unrecognized URLs fail with tourney.ErrInvalidSource.
//
// Lichess game pages look like https://lichess.org/{id} with an optional
// color suffix; a 12-character ID is a per-player view whose first 8
// characters are the game ID. Chess.com live games appear both as
// /game/live/{id} and /live/game/{id}, daily games as /game/daily/{id}.
func ParseURL(rawURL string) (tourney.GameSite, string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", tourney.ErrInvalidSource, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return "", "", fmt.Errorf("%w: scheme %q", tourney.ErrInvalidSource, u.Scheme)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segs := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })

	switch host {
	case "lichess.org":
		if len(segs) == 0 {
			return "", "", fmt.Errorf("%w: no game id in lichess url", tourney.ErrInvalidSource)
		}
		id := segs[0]
		if len(id) == 12 && isAlnum(id) {
			id = id[:8]
		}
		if len(id) != 8 || !isAlnum(id) {
			return "", "", fmt.Errorf("%w: bad lichess game id %q", tourney.ErrInvalidSource, segs[0])
		}
		return tourney.SiteLichess, id, nil
	case "chess.com":
		var id string
		switch {
		case len(segs) >= 3 && segs[0] == "game" && (segs[1] == "live" || segs[1] == "daily"):
			id = segs[2]
		case len(segs) >= 3 && segs[0] == "live" && segs[1] == "game":
			id = segs[2]
		default:
			return "", "", fmt.Errorf("%w: unrecognized chess.com url", tourney.ErrInvalidSource)
		}
		if !isDigits(id) {
			return "", "", fmt.Errorf("%w: bad chess.com game id %q", tourney.ErrInvalidSource, id)
		}
		return tourney.SiteChesscom, id, nil
	default:
		return "", "", fmt.Errorf("%w: host %q", tourney.ErrInvalidSource, host)
	}
}
