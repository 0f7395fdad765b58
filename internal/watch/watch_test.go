package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cohortclub/berger/internal/tourney"
	"github.com/cohortclub/berger/internal/util/slogx"
)

type stubSnapshots map[string]*tourney.Tournament

func (s stubSnapshots) Tournament(_ context.Context, id string) (*tourney.Tournament, error) {
	t, ok := s[id]
	if !ok {
		return nil, tourney.ErrTournamentNotFound
	}
	return t.Clone(), nil
}

func watchTournament(t *testing.T) *tourney.Tournament {
	t.Helper()
	players := make([]tourney.Player, 4)
	for i := range players {
		players[i] = tourney.Player{
			Username:        fmt.Sprintf("user%v", i),
			DisplayName:     fmt.Sprintf("User %v", i),
			LichessUsername: fmt.Sprintf("lichess%v", i),
		}
	}
	tn, err := tourney.NewTournament("1200-1300", "Fall 2026 #1", players, time.Now(), 24*time.Hour)
	if err != nil {
		t.Fatalf("new tournament: %v", err)
	}
	return tn
}

func readEvent(t *testing.T, conn *websocket.Conn) *Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	var ev *Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if ev.Type != EventSnapshot || ev.Tournament == nil {
		t.Fatalf("unexpected event: %+v", ev)
	}
	return ev
}

func TestWatch(t *testing.T) {
	tn := watchTournament(t)
	hub := NewHub(slogx.DiscardLogger(), Options{})
	defer hub.Close()
	srv := httptest.NewServer(hub.Handler(stubSnapshots{tn.ID(): tn}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "?id=" + url.QueryEscape(tn.ID())
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ev := readEvent(t, conn)
	if ev.Tournament.ID != tn.ID() {
		t.Errorf("initial snapshot for %v, want %v", ev.Tournament.ID, tn.ID())
	}
	if len(ev.Tournament.Standings) != 4 {
		t.Errorf("expected 4 standings, got %v", len(ev.Tournament.Standings))
	}

	updated := tn.Clone()
	if _, err := updated.Withdraw("user1"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	hub.OnTournamentUpdated(updated)

	ev = readEvent(t, conn)
	if p := ev.Tournament.Tournament.Players["user1"]; p.Status != tourney.PlayerWithdrawn {
		t.Errorf("update not delivered: %+v", p)
	}
	if len(ev.Tournament.Standings) != 3 {
		t.Errorf("expected 3 standings after withdrawal, got %v", len(ev.Tournament.Standings))
	}
}

func TestWatchCoalesces(t *testing.T) {
	tn := watchTournament(t)
	hub := NewHub(slogx.DiscardLogger(), Options{SendLimit: 2})
	defer hub.Close()
	srv := httptest.NewServer(hub.Handler(stubSnapshots{tn.ID(): tn}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "?id=" + url.QueryEscape(tn.ID())
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close() }()
	readEvent(t, conn)

	// A burst of updates may skip intermediate states but must end on the
	// latest one.
	final := tn.Clone()
	for _, username := range []string{"user1", "user2", "user3"} {
		if _, err := final.Withdraw(username); err != nil {
			t.Fatalf("withdraw %v: %v", username, err)
		}
		hub.OnTournamentUpdated(final.Clone())
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatalf("never received the final state")
		}
		ev := readEvent(t, conn)
		if p := ev.Tournament.Tournament.Players["user3"]; p.Status == tourney.PlayerWithdrawn {
			break
		}
	}
}

func TestWatchUnknownTournament(t *testing.T) {
	hub := NewHub(slogx.DiscardLogger(), Options{})
	defer hub.Close()
	srv := httptest.NewServer(hub.Handler(stubSnapshots{}))
	defer srv.Close()

	rsp, err := http.Get(srv.URL + "?id=no%2Fsuch")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = rsp.Body.Close() }()
	if rsp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %v", rsp.StatusCode)
	}
}
