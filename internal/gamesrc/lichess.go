package gamesrc

import (
	"context"
	"fmt"

	"github.com/alex65536/go-chess/chess"

	"github.com/cohortclub/berger/internal/tourney"
)

type lichessPlayer struct {
	UserID string `json:"userId"`
	User   struct {
		Name string `json:"name"`
	} `json:"user"`
}

func (p lichessPlayer) name() string {
	if p.User.Name != "" {
		return p.User.Name
	}
	return p.UserID
}

type lichessGame struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Winner  string `json:"winner"`
	Players struct {
		White lichessPlayer `json:"white"`
		Black lichessPlayer `json:"black"`
	} `json:"players"`
}

func (c *Client) fetchLichess(ctx context.Context, id string, rawURL string) (Game, error) {
	var g lichessGame
	if err := c.getJSON(ctx, c.o.LichessEndpoint+"/api/game/"+id, &g); err != nil {
		return Game{}, fmt.Errorf("fetch lichess game: %w", err)
	}
	var status chess.Status
	switch {
	case g.Status == "created" || g.Status == "started" ||
		g.Status == "aborted" || g.Status == "noStart":
		status = chess.StatusRunning
	case g.Winner == "white":
		status = chess.StatusWhiteWins
	case g.Winner == "black":
		status = chess.StatusBlackWins
	default:
		status = chess.StatusDraw
	}
	result, err := resultFromStatus(status)
	if err != nil {
		return Game{}, fmt.Errorf("%w: lichess status %q", err, g.Status)
	}
	return Game{
		Site:   tourney.SiteLichess,
		ID:     id,
		URL:    rawURL,
		White:  g.Players.White.name(),
		Black:  g.Players.Black.name(),
		Result: result,
	}, nil
}
