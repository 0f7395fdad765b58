package gamesrc

import (
	"context"
	"fmt"

	"github.com/alex65536/go-chess/chess"

	"github.com/cohortclub/berger/internal/tourney"
)

type chesscomGame struct {
	Game struct {
		PgnHeaders struct {
			White  string `json:"White"`
			Black  string `json:"Black"`
			Result string `json:"Result"`
		} `json:"pgnHeaders"`
	} `json:"game"`
}

func (c *Client) fetchChesscom(ctx context.Context, id string, rawURL string) (Game, error) {
	var g chesscomGame
	if err := c.getJSON(ctx, c.o.ChesscomEndpoint+"/callback/live/game/"+id, &g); err != nil {
		return Game{}, fmt.Errorf("fetch chess.com game: %w", err)
	}
	h := g.Game.PgnHeaders
	var status chess.Status
	switch h.Result {
	case "1-0":
		status = chess.StatusWhiteWins
	case "0-1":
		status = chess.StatusBlackWins
	case "1/2-1/2":
		status = chess.StatusDraw
	default:
		status = chess.StatusRunning
	}
	result, err := resultFromStatus(status)
	if err != nil {
		return Game{}, fmt.Errorf("%w: chess.com result %q", err, h.Result)
	}
	return Game{
		Site:   tourney.SiteChesscom,
		ID:     id,
		URL:    rawURL,
		White:  h.White,
		Black:  h.Black,
		Result: result,
	}, nil
}
