// Package manager coordinates waitlists and tournaments on top of the
// storage layer: it owns registration, promotion to a tournament at
// capacity, result submission, withdrawal and completion sweeping. All
// mutations go through per-key locks plus versioned writes, so concurrent
// requests for the same cohort or tournament serialize instead of clobbering
// each other.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cohortclub/berger/internal/gamesrc"
	"github.com/cohortclub/berger/internal/tourney"
	"github.com/cohortclub/berger/internal/util/slogx"
)

type Options struct {
	// Capacity is the waitlist size that triggers promotion.
	Capacity      int           `toml:"capacity"`
	RoundInterval time.Duration `toml:"round-interval"`
	SweepInterval time.Duration `toml:"sweep-interval"`
	// MaxAttempts bounds retries of writes that lost a version race.
	MaxAttempts int `toml:"max-attempts"`
}

func (o Options) Clone() Options {
	return o
}

func (o *Options) FillDefaults() {
	if o.Capacity == 0 {
		o.Capacity = 10
	}
	if o.RoundInterval == 0 {
		o.RoundInterval = 7 * 24 * time.Hour
	}
	if o.SweepInterval == 0 {
		o.SweepInterval = 10 * time.Minute
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 3
	}
}

// Listener observes tournament changes. Callbacks receive a private clone
// and must not block for long, as they run under the tournament's lock.
type Listener interface {
	OnTournamentUpdated(t *tourney.Tournament)
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex serializes operations per key without keeping a mutex alive for
// every key ever seen.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*lockEntry)}
}

func (k *keyedMutex) Lock(key string) {
	k.mu.Lock()
	e := k.locks[key]
	if e == nil {
		e = &lockEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()
	e.mu.Lock()
}

func (k *keyedMutex) Unlock(key string) {
	k.mu.Lock()
	e := k.locks[key]
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
	e.mu.Unlock()
}

type Manager struct {
	o         *Options
	db        DB
	games     gamesrc.Provider
	log       *slog.Logger
	listeners []Listener

	cohorts     *keyedMutex
	tournaments *keyedMutex

	ctx    context.Context
	cancel func()
	done   chan struct{}
}

func New(log *slog.Logger, db DB, games gamesrc.Provider, o Options, listeners ...Listener) *Manager {
	o = o.Clone()
	o.FillDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		o:           &o,
		db:          db,
		games:       games,
		log:         log,
		listeners:   listeners,
		cohorts:     newKeyedMutex(),
		tournaments: newKeyedMutex(),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	go m.loop()
	return m
}

func (m *Manager) Close() {
	m.cancel()
	<-m.done
}

func (m *Manager) notify(t *tourney.Tournament) {
	for _, l := range m.listeners {
		l.OnTournamentUpdated(t.Clone())
	}
}

// retry re-runs fn while it loses version races, up to the attempt limit.
// fn must re-read its documents on every attempt.
func (m *Manager) retry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < m.o.MaxAttempts; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		err = fn()
		if err == nil || !errors.Is(err, ErrConflict) {
			return err
		}
	}
	return err
}

// RegisterStatus describes the outcome of a registration: either the
// player's waitlist position, or the tournament that just started when the
// registration filled the waitlist.
type RegisterStatus struct {
	Cohort     tourney.Cohort
	Position   int
	Promoted   bool
	Tournament *tourney.Tournament
}

// Register puts the player on the cohort's waitlist. playerCohort is the
// player's own rating cohort as resolved by the identity layer; registration
// is limited to that cohort and its direct neighbors and fails with
// ErrCohortMismatch otherwise. A player may compete in at most one cohort of
// their neighborhood at a time: registering while waitlisted in the same or
// an adjacent cohort, or while still active in a running tournament there,
// fails with ErrAlreadyRegistered. The registration that brings the waitlist
// to capacity promotes it into a tournament in the same operation.
func (m *Manager) Register(ctx context.Context, cohort, playerCohort tourney.Cohort, player tourney.Player) (*RegisterStatus, error) {
	if !cohort.Valid() {
		return nil, fmt.Errorf("%w: %q", tourney.ErrBadCohort, cohort)
	}
	if !playerCohort.Valid() {
		return nil, fmt.Errorf("%w: player cohort %q", tourney.ErrBadCohort, playerCohort)
	}
	if !playerCohort.IsAdjacent(cohort) {
		return nil, fmt.Errorf("%w: %v is not adjacent to %v", tourney.ErrCohortMismatch, cohort, playerCohort)
	}
	if err := player.Validate(); err != nil {
		return nil, err
	}

	// Neighborhood() is ordered by cohort index, which gives all registrants
	// a single global lock order.
	hood := cohort.Neighborhood()
	for _, c := range hood {
		m.cohorts.Lock(string(c))
	}
	defer func() {
		for i := len(hood) - 1; i >= 0; i-- {
			m.cohorts.Unlock(string(hood[i]))
		}
	}()

	var status *RegisterStatus
	err := m.retry(ctx, func() error {
		status = nil
		var (
			target  *tourney.Waitlist
			version int64
		)
		for _, c := range hood {
			wl, ver, err := m.db.GetWaitlist(ctx, c)
			if err != nil {
				return fmt.Errorf("get waitlist %v: %w", c, err)
			}
			if _, ok := wl.Players[player.Username]; ok {
				return fmt.Errorf("%w: waitlisted in cohort %v", tourney.ErrAlreadyRegistered, c)
			}
			if c == cohort {
				target, version = wl, ver
			}
			active, err := m.db.ListTournaments(ctx, TournamentFilter{Cohort: c, Status: tourney.StatusActive})
			if err != nil {
				return fmt.Errorf("list tournaments %v: %w", c, err)
			}
			for _, t := range active {
				if p, ok := t.Player(player.Username); ok && p.Status == tourney.PlayerActive {
					return fmt.Errorf("%w: playing in tournament %v", tourney.ErrAlreadyRegistered, t.ID())
				}
			}
		}

		p := player.Clone()
		p.Status = tourney.PlayerActive
		p.JoinedAt = time.Now().UTC()
		if target.Players == nil {
			target.Players = make(map[string]tourney.Player)
		}
		target.Players[p.Username] = p

		if len(target.Players) < m.o.Capacity {
			if err := m.db.UpdateWaitlist(ctx, target, version); err != nil {
				return err
			}
			status = &RegisterStatus{Cohort: cohort, Position: len(target.Players)}
			return nil
		}

		now := time.Now().UTC()
		players := target.Ordered()
		t, err := tourney.NewTournament(
			cohort,
			tourney.SeasonalName(now, target.Number+1),
			players,
			now,
			m.o.RoundInterval*time.Duration(len(players)+1),
		)
		if err != nil {
			return fmt.Errorf("create tournament: %w", err)
		}
		reset := &tourney.Waitlist{
			Cohort:  cohort,
			Number:  target.Number + 1,
			Players: make(map[string]tourney.Player),
		}
		if err := m.db.PromoteWaitlist(ctx, reset, version, t); err != nil {
			return err
		}
		m.log.Info("promoted waitlist into tournament",
			slog.String("cohort", string(cohort)),
			slog.String("id", t.ID()),
			slog.Int("players", len(players)))
		status = &RegisterStatus{Cohort: cohort, Promoted: true, Tournament: t}
		m.notify(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// WithdrawFromWaitlist removes a waiting player before their tournament
// starts.
func (m *Manager) WithdrawFromWaitlist(ctx context.Context, cohort tourney.Cohort, username string) error {
	if !cohort.Valid() {
		return fmt.Errorf("%w: %q", tourney.ErrBadCohort, cohort)
	}
	m.cohorts.Lock(string(cohort))
	defer m.cohorts.Unlock(string(cohort))
	return m.retry(ctx, func() error {
		wl, version, err := m.db.GetWaitlist(ctx, cohort)
		if err != nil {
			return fmt.Errorf("get waitlist: %w", err)
		}
		if _, ok := wl.Players[username]; !ok {
			return tourney.ErrPlayerNotFound
		}
		delete(wl.Players, username)
		return m.db.UpdateWaitlist(ctx, wl, version)
	})
}

// WithdrawFromTournament withdraws a player from a running tournament,
// forfeiting their unplayed games. Repeating the withdrawal is a no-op.
func (m *Manager) WithdrawFromTournament(ctx context.Context, id string, username string) (*tourney.Tournament, error) {
	m.tournaments.Lock(id)
	defer m.tournaments.Unlock(id)
	var result *tourney.Tournament
	err := m.retry(ctx, func() error {
		t, version, err := m.db.GetTournament(ctx, id)
		if err != nil {
			return err
		}
		changed, err := t.Withdraw(username)
		if err != nil {
			return err
		}
		if !changed {
			result = t
			return nil
		}
		t.CheckComplete(time.Now())
		if err := m.db.UpdateTournament(ctx, t, version); err != nil {
			return err
		}
		result = t
		m.notify(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SubmitGame fetches the game behind the URL and records its result against
// the submitter's matching pairing. The fetch happens before taking the
// tournament lock, so slow game sites cannot stall other writers.
func (m *Manager) SubmitGame(ctx context.Context, id string, submitter string, gameURL string) (*tourney.Tournament, error) {
	game, err := m.games.Fetch(ctx, gameURL)
	if err != nil {
		return nil, fmt.Errorf("fetch game: %w", err)
	}
	m.tournaments.Lock(id)
	defer m.tournaments.Unlock(id)
	var result *tourney.Tournament
	err = m.retry(ctx, func() error {
		t, version, err := m.db.GetTournament(ctx, id)
		if err != nil {
			return err
		}
		err = t.SubmitResult(submitter, tourney.SubmittedGame{
			Site:   game.Site,
			URL:    game.URL,
			White:  game.White,
			Black:  game.Black,
			Result: game.Result,
		})
		if err != nil {
			return err
		}
		t.CheckComplete(time.Now())
		if err := m.db.UpdateTournament(ctx, t, version); err != nil {
			return err
		}
		result = t
		m.notify(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (m *Manager) Tournament(ctx context.Context, id string) (*tourney.Tournament, error) {
	t, _, err := m.db.GetTournament(ctx, id)
	return t, err
}

func (m *Manager) Waitlist(ctx context.Context, cohort tourney.Cohort) (*tourney.Waitlist, error) {
	if !cohort.Valid() {
		return nil, fmt.Errorf("%w: %q", tourney.ErrBadCohort, cohort)
	}
	wl, _, err := m.db.GetWaitlist(ctx, cohort)
	return wl, err
}

func (m *Manager) ListTournaments(ctx context.Context, filter TournamentFilter) ([]*tourney.Tournament, error) {
	return m.db.ListTournaments(ctx, filter)
}

// sweep completes active tournaments whose end date has passed. Completion
// normally happens lazily when the last result arrives; the sweep covers
// tournaments that go quiet instead.
func (m *Manager) sweep(ctx context.Context) error {
	active, err := m.db.ListTournaments(ctx, TournamentFilter{Status: tourney.StatusActive})
	if err != nil {
		return fmt.Errorf("list active tournaments: %w", err)
	}
	now := time.Now()
	for _, stale := range active {
		if !stale.AllResolved() && now.Before(stale.EndDate.UTC()) {
			continue
		}
		id := stale.ID()
		err := func() error {
			m.tournaments.Lock(id)
			defer m.tournaments.Unlock(id)
			return m.retry(ctx, func() error {
				t, version, err := m.db.GetTournament(ctx, id)
				if err != nil {
					return err
				}
				if !t.CheckComplete(now) {
					return nil
				}
				if err := m.db.UpdateTournament(ctx, t, version); err != nil {
					return err
				}
				m.log.Info("completed tournament",
					slog.String("id", id),
					slog.Any("winners", t.Winners))
				m.notify(t)
				return nil
			})
		}()
		if err != nil {
			m.log.Warn("could not complete tournament", slog.String("id", id), slogx.Err(err))
		}
	}
	return nil
}

func (m *Manager) loop() {
	defer close(m.done)
	ticker := time.NewTicker(m.o.SweepInterval)
	defer ticker.Stop()
	for {
		err := m.sweep(m.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			m.log.Warn("tournament sweep failed", slogx.Err(err))
		}
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
