package tourney

import "errors"

// Errors shared between the engine and its consumers. The API layer maps
// these onto typed error codes, so they must stay distinguishable instead of
// collapsing into generic failures.
var (
	ErrBadPlayer          = errors.New("invalid player registration")
	ErrBadCohort          = errors.New("unknown cohort")
	ErrCohortMismatch     = errors.New("cohort is too far from the player's own cohort")
	ErrAlreadyRegistered  = errors.New("player is already registered")
	ErrPlayerNotFound     = errors.New("player is not part of this tournament")
	ErrNoPendingPairing   = errors.New("no pending pairing matches this game")
	ErrResultAlreadySet   = errors.New("pairing result is already set")
	ErrTournamentComplete = errors.New("tournament is already complete")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrWaitlistNotFound   = errors.New("waitlist not found")
	ErrInvalidSource      = errors.New("url does not point to a recognized game-hosting site")
)
