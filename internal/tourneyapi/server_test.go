package tourneyapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cohortclub/berger/internal/gamesrc"
	"github.com/cohortclub/berger/internal/manager"
	"github.com/cohortclub/berger/internal/tourney"
	"github.com/cohortclub/berger/internal/util/slogx"
)

type memDB struct {
	mu        sync.Mutex
	waitlists map[tourney.Cohort]*tourney.Waitlist
	wlVers    map[tourney.Cohort]int64
	tourns    map[string]*tourney.Tournament
	tVers     map[string]int64
}

var _ manager.DB = (*memDB)(nil)

func newMemDB() *memDB {
	return &memDB{
		waitlists: make(map[tourney.Cohort]*tourney.Waitlist),
		wlVers:    make(map[tourney.Cohort]int64),
		tourns:    make(map[string]*tourney.Tournament),
		tVers:     make(map[string]int64),
	}
}

func (d *memDB) GetWaitlist(_ context.Context, cohort tourney.Cohort) (*tourney.Waitlist, int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, ok := d.waitlists[cohort]
	if !ok {
		return &tourney.Waitlist{Cohort: cohort, Players: make(map[string]tourney.Player)}, 0, nil
	}
	return w.Clone(), d.wlVers[cohort], nil
}

func (d *memDB) putWaitlistLocked(w *tourney.Waitlist, version int64) error {
	if d.wlVers[w.Cohort] != version {
		return manager.ErrConflict
	}
	d.waitlists[w.Cohort] = w.Clone()
	d.wlVers[w.Cohort] = version + 1
	return nil
}

func (d *memDB) UpdateWaitlist(_ context.Context, w *tourney.Waitlist, version int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.putWaitlistLocked(w, version)
}

func (d *memDB) PromoteWaitlist(_ context.Context, w *tourney.Waitlist, version int64, t *tourney.Tournament) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.putWaitlistLocked(w, version); err != nil {
		return err
	}
	d.tourns[t.ID()] = t.Clone()
	d.tVers[t.ID()] = 1
	return nil
}

func (d *memDB) GetTournament(_ context.Context, id string) (*tourney.Tournament, int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.tourns[id]
	if !ok {
		return nil, 0, tourney.ErrTournamentNotFound
	}
	return t.Clone(), d.tVers[id], nil
}

func (d *memDB) UpdateTournament(_ context.Context, t *tourney.Tournament, version int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tVers[t.ID()] != version {
		return manager.ErrConflict
	}
	d.tourns[t.ID()] = t.Clone()
	d.tVers[t.ID()] = version + 1
	return nil
}

func (d *memDB) ListTournaments(_ context.Context, filter manager.TournamentFilter) ([]*tourney.Tournament, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var res []*tourney.Tournament
	for _, t := range d.tourns {
		if filter.Cohort != "" && t.Cohort != filter.Cohort {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		res = append(res, t.Clone())
	}
	sort.Slice(res, func(i, j int) bool { return res[i].StartsAt > res[j].StartsAt })
	return res, nil
}

type stubGames map[string]gamesrc.Game

func (s stubGames) Fetch(_ context.Context, rawURL string) (gamesrc.Game, error) {
	g, ok := s[rawURL]
	if !ok {
		return gamesrc.Game{}, fmt.Errorf("%w: unknown url %q", tourney.ErrInvalidSource, rawURL)
	}
	return g, nil
}

func newTestClient(t *testing.T, games stubGames) API {
	t.Helper()
	m := manager.New(slogx.DiscardLogger(), newMemDB(), games, manager.Options{
		Capacity:      4,
		SweepInterval: time.Hour,
	})
	t.Cleanup(m.Close)

	mux := http.NewServeMux()
	err := RegisterServer(NewService(m), mux, ServerOptions{
		TokenChecker: func(token string) error {
			if token != "secret" {
				return fmt.Errorf("wrong token")
			}
			return nil
		},
	}, "/api/v1", slogx.DiscardLogger())
	if err != nil {
		t.Fatalf("register server: %v", err)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewClient(ClientOptions{Endpoint: srv.URL + "/api/v1", Token: "secret"}, srv.Client())
}

func apiPlayer(i int) tourney.Player {
	return tourney.Player{
		Username:        fmt.Sprintf("user%v", i),
		DisplayName:     fmt.Sprintf("User %v", i),
		LichessUsername: fmt.Sprintf("lichess%v", i),
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	games := stubGames{
		"https://lichess.org/AbCd1234": {
			Site:   tourney.SiteLichess,
			ID:     "AbCd1234",
			URL:    "https://lichess.org/AbCd1234",
			White:  "lichess0",
			Black:  "lichess1",
			Result: tourney.ResultWhiteWon,
		},
	}
	c := newTestClient(t, games)

	var tournamentID string
	for i := range 4 {
		rsp, err := c.Register(ctx, &RegisterRequest{Cohort: "1200-1300", PlayerCohort: "1200-1300", Player: apiPlayer(i)})
		if err != nil {
			t.Fatalf("register %v: %v", i, err)
		}
		if i < 3 {
			if rsp.Promoted || rsp.Position != i+1 {
				t.Errorf("register %v: unexpected response %+v", i, rsp)
			}
			continue
		}
		if !rsp.Promoted || rsp.Tournament == nil {
			t.Fatalf("register %v: expected promotion, got %+v", i, rsp)
		}
		tournamentID = rsp.Tournament.ID
		if len(rsp.Tournament.Standings) != 4 || len(rsp.Tournament.Crosstable) != 4 {
			t.Errorf("derived views missing: %+v", rsp.Tournament)
		}
	}

	wl, err := c.GetWaitlist(ctx, &GetWaitlistRequest{Cohort: "1200-1300"})
	if err != nil {
		t.Fatalf("get waitlist: %v", err)
	}
	if len(wl.Players) != 0 || wl.Number != 1 {
		t.Errorf("waitlist not reset: %+v", wl)
	}

	sub, err := c.Submit(ctx, &SubmitRequest{
		TournamentID: tournamentID,
		Username:     "user0",
		GameURL:      "https://lichess.org/AbCd1234",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Tournament.Standings[0].Username != "user0" {
		t.Errorf("expected user0 on top, got %v", sub.Tournament.Standings[0].Username)
	}
	if sub.Tournament.Standings[0].Stats.Score != 1 {
		t.Errorf("expected score 1, got %v", sub.Tournament.Standings[0].Stats.Score)
	}

	wd, err := c.Withdraw(ctx, &WithdrawRequest{TournamentID: tournamentID, Username: "user3"})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if p := wd.Tournament.Tournament.Players["user3"]; p.Status != tourney.PlayerWithdrawn {
		t.Errorf("player not withdrawn: %+v", p)
	}

	list, err := c.ListTournaments(ctx, &ListTournamentsRequest{Cohort: "1200-1300", Status: tourney.StatusActive})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Tournaments) != 1 || list.Tournaments[0].ID != tournamentID {
		t.Errorf("unexpected listing: %+v", list.Tournaments)
	}

	got, err := c.GetTournament(ctx, &GetTournamentRequest{TournamentID: tournamentID})
	if err != nil {
		t.Fatalf("get tournament: %v", err)
	}
	if got.Tournament.Tournament.Name != list.Tournaments[0].Name {
		t.Errorf("name mismatch: %v vs %v", got.Tournament.Tournament.Name, list.Tournaments[0].Name)
	}
}

func TestErrorMapping(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, stubGames{})

	if _, err := c.Register(ctx, &RegisterRequest{Cohort: "1200-1337", PlayerCohort: "1200-1337", Player: apiPlayer(0)}); !MatchesError(err, ErrBadCohort) {
		t.Errorf("expected ErrBadCohort, got %v", err)
	}
	if _, err := c.Register(ctx, &RegisterRequest{Cohort: "1200-1300", PlayerCohort: "1200-1300", Player: tourney.Player{Username: "x"}}); !MatchesError(err, ErrBadRequest) {
		t.Errorf("expected ErrBadRequest, got %v", err)
	}
	if _, err := c.Register(ctx, &RegisterRequest{Cohort: "1200-1300", PlayerCohort: "1500-1600", Player: apiPlayer(0)}); !MatchesError(err, ErrCohortMismatch) {
		t.Errorf("expected ErrCohortMismatch, got %v", err)
	}
	if _, err := c.Register(ctx, &RegisterRequest{Cohort: "1200-1300", PlayerCohort: "1200-1300", Player: apiPlayer(0)}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := c.Register(ctx, &RegisterRequest{Cohort: "1300-1400", PlayerCohort: "1300-1400", Player: apiPlayer(0)}); !MatchesError(err, ErrAlreadyRegistered) {
		t.Errorf("expected ErrAlreadyRegistered, got %v", err)
	}
	if _, err := c.GetTournament(ctx, &GetTournamentRequest{TournamentID: "no/such"}); !MatchesError(err, ErrTournamentNotFound) {
		t.Errorf("expected ErrTournamentNotFound, got %v", err)
	}
	if _, err := c.Withdraw(ctx, &WithdrawRequest{TournamentID: "no/such", Username: "user0"}); !MatchesError(err, ErrTournamentNotFound) {
		t.Errorf("expected ErrTournamentNotFound, got %v", err)
	}
	if _, err := c.WithdrawWaitlist(ctx, &WithdrawWaitlistRequest{Cohort: "1200-1300", Username: "ghost"}); !MatchesError(err, ErrPlayerNotFound) {
		t.Errorf("expected ErrPlayerNotFound, got %v", err)
	}
	if _, err := c.Submit(ctx, &SubmitRequest{TournamentID: "no/such", Username: "user0", GameURL: "https://example.com/x"}); !MatchesError(err, ErrInvalidSource) {
		t.Errorf("expected ErrInvalidSource, got %v", err)
	}
}

func TestBadToken(t *testing.T) {
	ctx := context.Background()
	m := manager.New(slogx.DiscardLogger(), newMemDB(), stubGames{}, manager.Options{SweepInterval: time.Hour})
	t.Cleanup(m.Close)
	mux := http.NewServeMux()
	err := RegisterServer(NewService(m), mux, ServerOptions{
		TokenChecker: func(token string) error { return fmt.Errorf("nope") },
	}, "", slogx.DiscardLogger())
	if err != nil {
		t.Fatalf("register server: %v", err)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewClient(ClientOptions{Endpoint: srv.URL, Token: "whatever"}, srv.Client())
	if _, err := c.ListTournaments(ctx, &ListTournamentsRequest{}); !MatchesError(err, ErrBadToken) {
		t.Errorf("expected ErrBadToken, got %v", err)
	}
}
