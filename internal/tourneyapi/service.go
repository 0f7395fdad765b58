package tourneyapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cohortclub/berger/internal/gamesrc"
	"github.com/cohortclub/berger/internal/manager"
	"github.com/cohortclub/berger/internal/tourney"
)

// Server is the handler-side counterpart of API. Implementations get a
// request-scoped logger from the HTTP layer.
type Server interface {
	Register(ctx context.Context, log *slog.Logger, req *RegisterRequest) (*RegisterResponse, error)
	WithdrawWaitlist(ctx context.Context, log *slog.Logger, req *WithdrawWaitlistRequest) (*WithdrawWaitlistResponse, error)
	Withdraw(ctx context.Context, log *slog.Logger, req *WithdrawRequest) (*WithdrawResponse, error)
	Submit(ctx context.Context, log *slog.Logger, req *SubmitRequest) (*SubmitResponse, error)
	GetTournament(ctx context.Context, log *slog.Logger, req *GetTournamentRequest) (*GetTournamentResponse, error)
	GetWaitlist(ctx context.Context, log *slog.Logger, req *GetWaitlistRequest) (*GetWaitlistResponse, error)
	ListTournaments(ctx context.Context, log *slog.Logger, req *ListTournamentsRequest) (*ListTournamentsResponse, error)
}

type service struct {
	m *manager.Manager
}

var _ Server = (*service)(nil)

// NewService adapts the manager into the API surface, translating domain
// errors into wire errors.
func NewService(m *manager.Manager) Server {
	return &service{m: m}
}

func convertError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return err
	}
	code := ErrInvalidCode
	switch {
	case errors.Is(err, tourney.ErrBadCohort):
		code = ErrBadCohort
	case errors.Is(err, tourney.ErrBadPlayer):
		code = ErrBadRequest
	case errors.Is(err, tourney.ErrCohortMismatch):
		code = ErrCohortMismatch
	case errors.Is(err, tourney.ErrAlreadyRegistered):
		code = ErrAlreadyRegistered
	case errors.Is(err, tourney.ErrPlayerNotFound):
		code = ErrPlayerNotFound
	case errors.Is(err, tourney.ErrTournamentNotFound):
		code = ErrTournamentNotFound
	case errors.Is(err, tourney.ErrWaitlistNotFound):
		code = ErrTournamentNotFound
	case errors.Is(err, tourney.ErrNoPendingPairing):
		code = ErrNoPendingPairing
	case errors.Is(err, tourney.ErrResultAlreadySet):
		code = ErrResultAlreadySet
	case errors.Is(err, tourney.ErrTournamentComplete):
		code = ErrTournamentComplete
	case errors.Is(err, tourney.ErrInvalidSource):
		code = ErrInvalidSource
	case errors.Is(err, gamesrc.ErrNotFinished):
		code = ErrGameNotFinished
	case errors.Is(err, manager.ErrConflict):
		code = ErrConflict
	default:
		return err
	}
	return &Error{Code: code, Message: err.Error()}
}

func tournamentData(t *tourney.Tournament) *TournamentData {
	return &TournamentData{
		ID:         t.ID(),
		Tournament: t,
		Standings:  tourney.Standings(t),
		Crosstable: tourney.Crosstable(t),
	}
}

func (s *service) Register(ctx context.Context, log *slog.Logger, req *RegisterRequest) (*RegisterResponse, error) {
	status, err := s.m.Register(ctx, req.Cohort, req.PlayerCohort, req.Player)
	if err != nil {
		return nil, convertError(err)
	}
	rsp := &RegisterResponse{Position: status.Position, Promoted: status.Promoted}
	if status.Tournament != nil {
		rsp.Tournament = tournamentData(status.Tournament)
		log.Info("registration started tournament",
			slog.String("cohort", string(req.Cohort)),
			slog.String("id", rsp.Tournament.ID))
	}
	return rsp, nil
}

func (s *service) WithdrawWaitlist(ctx context.Context, log *slog.Logger, req *WithdrawWaitlistRequest) (*WithdrawWaitlistResponse, error) {
	if err := s.m.WithdrawFromWaitlist(ctx, req.Cohort, req.Username); err != nil {
		return nil, convertError(err)
	}
	return &WithdrawWaitlistResponse{}, nil
}

func (s *service) Withdraw(ctx context.Context, log *slog.Logger, req *WithdrawRequest) (*WithdrawResponse, error) {
	t, err := s.m.WithdrawFromTournament(ctx, req.TournamentID, req.Username)
	if err != nil {
		return nil, convertError(err)
	}
	return &WithdrawResponse{Tournament: tournamentData(t)}, nil
}

func (s *service) Submit(ctx context.Context, log *slog.Logger, req *SubmitRequest) (*SubmitResponse, error) {
	t, err := s.m.SubmitGame(ctx, req.TournamentID, req.Username, req.GameURL)
	if err != nil {
		return nil, convertError(err)
	}
	return &SubmitResponse{Tournament: tournamentData(t)}, nil
}

func (s *service) GetTournament(ctx context.Context, log *slog.Logger, req *GetTournamentRequest) (*GetTournamentResponse, error) {
	t, err := s.m.Tournament(ctx, req.TournamentID)
	if err != nil {
		return nil, convertError(err)
	}
	return &GetTournamentResponse{Tournament: tournamentData(t)}, nil
}

func (s *service) GetWaitlist(ctx context.Context, log *slog.Logger, req *GetWaitlistRequest) (*GetWaitlistResponse, error) {
	wl, err := s.m.Waitlist(ctx, req.Cohort)
	if err != nil {
		return nil, convertError(err)
	}
	return &GetWaitlistResponse{
		Cohort:  wl.Cohort,
		Number:  wl.Number,
		Players: wl.Ordered(),
	}, nil
}

func (s *service) ListTournaments(ctx context.Context, log *slog.Logger, req *ListTournamentsRequest) (*ListTournamentsResponse, error) {
	if req.Cohort != "" && !req.Cohort.Valid() {
		return nil, &Error{Code: ErrBadCohort, Message: fmt.Sprintf("bad cohort %q", req.Cohort)}
	}
	tourns, err := s.m.ListTournaments(ctx, manager.TournamentFilter{
		Cohort: req.Cohort,
		Status: req.Status,
	})
	if err != nil {
		return nil, convertError(err)
	}
	infos := make([]TournamentInfo, len(tourns))
	for i, t := range tourns {
		infos[i] = TournamentInfo{
			ID:        t.ID(),
			Cohort:    t.Cohort,
			Name:      t.Name,
			Status:    t.Status,
			StartDate: t.StartDate,
			EndDate:   t.EndDate,
			Players:   len(t.PlayerOrder),
			Winners:   t.Winners,
		}
	}
	return &ListTournamentsResponse{Tournaments: infos}, nil
}
