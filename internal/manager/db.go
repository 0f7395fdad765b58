package manager

import (
	"context"
	"errors"

	"github.com/cohortclub/berger/internal/tourney"
)

// ErrConflict is returned by the DB when a versioned write lost a race with a
// concurrent writer. The manager retries such writes a bounded number of
// times.
var ErrConflict = errors.New("document changed concurrently")

// TournamentFilter narrows ListTournaments. Zero-valued fields match
// everything.
type TournamentFilter struct {
	Cohort tourney.Cohort
	Status tourney.Status
}

// DB is the storage the manager runs on. Every write carries the version the
// writer read, and the implementation must reject the write with ErrConflict
// if the stored version differs.
type DB interface {
	// GetWaitlist returns the cohort's waitlist and its storage version. A
	// cohort that was never written yields a fresh empty waitlist with
	// version 0.
	GetWaitlist(ctx context.Context, cohort tourney.Cohort) (*tourney.Waitlist, int64, error)
	// UpdateWaitlist stores the waitlist, expecting the stored version to
	// still equal version. Version 0 creates the row.
	UpdateWaitlist(ctx context.Context, w *tourney.Waitlist, version int64) error
	// PromoteWaitlist stores the reset waitlist and creates the tournament in
	// one transaction, so a promotion can never half-apply.
	PromoteWaitlist(ctx context.Context, w *tourney.Waitlist, version int64, t *tourney.Tournament) error
	// GetTournament fails with tourney.ErrTournamentNotFound for unknown IDs.
	GetTournament(ctx context.Context, id string) (*tourney.Tournament, int64, error)
	UpdateTournament(ctx context.Context, t *tourney.Tournament, version int64) error
	// ListTournaments returns matching tournaments ordered by start date
	// descending.
	ListTournaments(ctx context.Context, filter TournamentFilter) ([]*tourney.Tournament, error)
}
