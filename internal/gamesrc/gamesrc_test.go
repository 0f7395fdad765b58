package gamesrc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cohortclub/berger/internal/tourney"
)

func TestParseURL(t *testing.T) {
	for _, test := range []struct {
		url  string
		site tourney.GameSite
		id   string
		ok   bool
	}{
		{"https://lichess.org/AbCd1234", tourney.SiteLichess, "AbCd1234", true},
		{"https://lichess.org/AbCd1234/black", tourney.SiteLichess, "AbCd1234", true},
		{"https://lichess.org/AbCd1234WxYz", tourney.SiteLichess, "AbCd1234", true},
		{"  https://lichess.org/AbCd1234#42 ", tourney.SiteLichess, "AbCd1234", true},
		{"http://LICHESS.org/AbCd1234", tourney.SiteLichess, "AbCd1234", true},
		{"https://www.chess.com/game/live/123456789", tourney.SiteChesscom, "123456789", true},
		{"https://chess.com/live/game/123456789", tourney.SiteChesscom, "123456789", true},
		{"https://www.chess.com/game/daily/987", tourney.SiteChesscom, "987", true},
		{"https://lichess.org/", "", "", false},
		{"https://lichess.org/tooshort", "", "", false},
		{"https://www.chess.com/game/live/notdigits", "", "", false},
		{"https://www.chess.com/play/online", "", "", false},
		{"https://chess24.com/game/123", "", "", false},
		{"ftp://lichess.org/AbCd1234", "", "", false},
		{"not a url at all ://", "", "", false},
	} {
		site, id, err := ParseURL(test.url)
		if test.ok {
			if err != nil {
				t.Errorf("url %q: unexpected error: %v", test.url, err)
				continue
			}
			if site != test.site || id != test.id {
				t.Errorf("url %q: got (%v, %q), want (%v, %q)", test.url, site, id, test.site, test.id)
			}
		} else {
			if err == nil {
				t.Errorf("url %q: expected error, got (%v, %q)", test.url, site, id)
				continue
			}
			if !errors.Is(err, tourney.ErrInvalidSource) {
				t.Errorf("url %q: error %v is not ErrInvalidSource", test.url, err)
			}
		}
	}
}

func TestFetchLichess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/api/game/AbCd1234" {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "AbCd1234",
			"status": "resign",
			"winner": "black",
			"players": {
				"white": {"userId": "alice", "user": {"name": "Alice"}},
				"black": {"userId": "bob", "user": {"name": "Bob"}}
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(Options{LichessEndpoint: srv.URL})
	game, err := c.Fetch(context.Background(), "https://lichess.org/AbCd1234")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	want := Game{
		Site:   tourney.SiteLichess,
		ID:     "AbCd1234",
		URL:    "https://lichess.org/AbCd1234",
		White:  "Alice",
		Black:  "Bob",
		Result: tourney.ResultBlackWon,
	}
	if game != want {
		t.Errorf("got %+v, want %+v", game, want)
	}
}

func TestFetchLichessUnfinished(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "AbCd1234", "status": "started"}`))
	}))
	defer srv.Close()

	c := NewClient(Options{LichessEndpoint: srv.URL})
	_, err := c.Fetch(context.Background(), "https://lichess.org/AbCd1234")
	if !errors.Is(err, ErrNotFinished) {
		t.Errorf("expected ErrNotFinished, got %v", err)
	}
}

func TestFetchChesscom(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/callback/live/game/123456789" {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"game": {
				"pgnHeaders": {"White": "Carol", "Black": "Dave", "Result": "1/2-1/2"}
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(Options{ChesscomEndpoint: srv.URL})
	game, err := c.Fetch(context.Background(), "https://www.chess.com/game/live/123456789")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if game.White != "Carol" || game.Black != "Dave" || game.Result != tourney.ResultDraw {
		t.Errorf("unexpected game: %+v", game)
	}
}

func TestFetchChesscomUnfinished(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"game": {"pgnHeaders": {"White": "Carol", "Black": "Dave", "Result": "*"}}}`))
	}))
	defer srv.Close()

	c := NewClient(Options{ChesscomEndpoint: srv.URL})
	_, err := c.Fetch(context.Background(), "https://www.chess.com/game/live/123456789")
	if !errors.Is(err, ErrNotFinished) {
		t.Errorf("expected ErrNotFinished, got %v", err)
	}
}
