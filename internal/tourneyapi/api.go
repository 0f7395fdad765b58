// Package tourneyapi defines the JSON-over-HTTP surface of the tournament
// service: typed requests and responses, a shared error model, and matching
// server and client implementations.
package tourneyapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/cohortclub/berger/internal/tourney"
	"github.com/cohortclub/berger/internal/util/timeutil"
)

type ErrorCode int

const (
	ErrInvalidCode ErrorCode = iota
	ErrBadRequest
	ErrBadCohort
	ErrCohortMismatch
	ErrAlreadyRegistered
	ErrPlayerNotFound
	ErrTournamentNotFound
	ErrNoPendingPairing
	ErrResultAlreadySet
	ErrTournamentComplete
	ErrInvalidSource
	ErrGameNotFinished
	ErrConflict
	ErrBadToken
)

func MatchesError(err error, code ErrorCode) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("tourney error %v: %v", e.Code, e.Message)
}

var _ error = (*Error)(nil)

// TournamentInfo is the listing view of a tournament, without the pairing
// matrix.
type TournamentInfo struct {
	ID        string           `json:"id"`
	Cohort    tourney.Cohort   `json:"cohort"`
	Name      string           `json:"name"`
	Status    tourney.Status   `json:"status"`
	StartDate timeutil.UTCTime `json:"startDate"`
	EndDate   timeutil.UTCTime `json:"endDate"`
	Players   int              `json:"players"`
	Winners   []string         `json:"winners,omitempty"`
}

// TournamentData is the full view: the document plus the derived standings
// and crosstable, so clients never recompute scoring themselves.
type TournamentData struct {
	ID         string                  `json:"id"`
	Tournament *tourney.Tournament     `json:"tournament"`
	Standings  []tourney.Standing      `json:"standings"`
	Crosstable []tourney.CrosstableRow `json:"crosstable"`
}

// RegisterRequest asks for a waitlist seat in Cohort. PlayerCohort is the
// player's own rating cohort as resolved by the identity layer; it must be
// Cohort itself or a direct neighbor.
type RegisterRequest struct {
	Cohort       tourney.Cohort `json:"cohort"`
	PlayerCohort tourney.Cohort `json:"playerCohort"`
	Player       tourney.Player `json:"player"`
}

type RegisterResponse struct {
	// Position is the 1-based waitlist position, zero when the registration
	// started a tournament instead.
	Position   int             `json:"position,omitempty"`
	Promoted   bool            `json:"promoted,omitempty"`
	Tournament *TournamentData `json:"tournament,omitempty"`
}

type WithdrawWaitlistRequest struct {
	Cohort   tourney.Cohort `json:"cohort"`
	Username string         `json:"username"`
}

type WithdrawWaitlistResponse struct{}

type WithdrawRequest struct {
	TournamentID string `json:"tournamentId"`
	Username     string `json:"username"`
}

type WithdrawResponse struct {
	Tournament *TournamentData `json:"tournament"`
}

type SubmitRequest struct {
	TournamentID string `json:"tournamentId"`
	Username     string `json:"username"`
	GameURL      string `json:"gameUrl"`
}

type SubmitResponse struct {
	Tournament *TournamentData `json:"tournament"`
}

type GetTournamentRequest struct {
	TournamentID string `json:"tournamentId"`
}

type GetTournamentResponse struct {
	Tournament *TournamentData `json:"tournament"`
}

type GetWaitlistRequest struct {
	Cohort tourney.Cohort `json:"cohort"`
}

type GetWaitlistResponse struct {
	Cohort tourney.Cohort `json:"cohort"`
	// Number counts the tournaments already started in this cohort.
	Number  int              `json:"number"`
	Players []tourney.Player `json:"players"`
}

// ListTournamentsRequest filters are optional; empty fields match everything.
type ListTournamentsRequest struct {
	Cohort tourney.Cohort `json:"cohort,omitempty"`
	Status tourney.Status `json:"status,omitempty"`
}

type ListTournamentsResponse struct {
	Tournaments []TournamentInfo `json:"tournaments"`
}

type API interface {
	Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error)
	WithdrawWaitlist(ctx context.Context, req *WithdrawWaitlistRequest) (*WithdrawWaitlistResponse, error)
	Withdraw(ctx context.Context, req *WithdrawRequest) (*WithdrawResponse, error)
	Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error)
	GetTournament(ctx context.Context, req *GetTournamentRequest) (*GetTournamentResponse, error)
	GetWaitlist(ctx context.Context, req *GetWaitlistRequest) (*GetWaitlistResponse, error)
	ListTournaments(ctx context.Context, req *ListTournamentsRequest) (*ListTournamentsResponse, error)
}
