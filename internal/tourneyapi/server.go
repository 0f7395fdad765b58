package tourneyapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/NYTimes/gziphandler"

	"github.com/cohortclub/berger/internal/util/httputil"
	"github.com/cohortclub/berger/internal/util/rand"
	"github.com/cohortclub/berger/internal/util/slogx"
)

type TokenChecker func(token string) error

type ServerOptions struct {
	TokenChecker TokenChecker
}

func httpCode(code ErrorCode) int {
	switch code {
	case ErrPlayerNotFound, ErrTournamentNotFound, ErrNoPendingPairing:
		return http.StatusNotFound
	case ErrAlreadyRegistered, ErrResultAlreadySet, ErrConflict:
		return http.StatusConflict
	case ErrTournamentComplete:
		return http.StatusGone
	case ErrBadToken:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

func makeHandler[Req any, Rsp any](
	log *slog.Logger,
	o *ServerOptions,
	fn func(context.Context, *slog.Logger, *Req) (*Rsp, error),
) http.Handler {
	return gziphandler.GzipHandler(http.HandlerFunc(func(w http.ResponseWriter, hReq *http.Request) {
		log := log.With(
			slog.String("addr", hReq.RemoteAddr),
			slog.String("rid", rand.InsecureID()),
		)

		if err := func() error {
			log.Info("handle tourneyapi request")

			if hReq.Method != http.MethodPost {
				log.Warn("unsupported method")
				return httputil.MakeError(http.StatusMethodNotAllowed, "method not allowed")
			}

			if err := o.TokenChecker(hReq.Header.Get("X-Token")); err != nil {
				log.Warn("token auth failed", slogx.Err(err))
				return &Error{Code: ErrBadToken, Message: "bad token auth"}
			}

			reqBytes, err := io.ReadAll(hReq.Body)
			if err != nil {
				log.Info("error reading request", slogx.Err(err))
				return nil
			}
			var req *Req
			if err := json.Unmarshal(reqBytes, &req); err != nil {
				log.Warn("error unmarshalling json", slogx.Err(err))
				return httputil.MakeError(http.StatusBadRequest, "unmarshal json request")
			}
			if req == nil {
				req = new(Req)
			}

			rsp, err := fn(hReq.Context(), log, req)
			if err != nil {
				if apiErr := (*Error)(nil); errors.As(err, &apiErr) {
					return err
				}
				log.Warn("handler failed", slogx.Err(err))
				return httputil.MakeError(http.StatusInternalServerError, "internal server error")
			}

			rspBytes, err := json.Marshal(rsp)
			if err != nil {
				log.Warn("error marshalling json", slogx.Err(err))
				return httputil.MakeError(http.StatusInternalServerError, "marshal json response")
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write(rspBytes); err != nil {
				log.Info("error writing response", slogx.Err(err))
			}
			return nil
		}(); err != nil {
			var apiError *Error
			if errors.As(err, &apiError) {
				data, err := json.Marshal(apiError)
				if err != nil {
					log.Warn("error marshalling error json", slogx.Err(err))
					if err := httputil.WriteErrorResponse(fmt.Errorf("marshal error json"), w); err != nil {
						log.Info("error writing error response", slogx.Err(err))
					}
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(httpCode(apiError.Code))
				if _, err := w.Write(data); err != nil {
					log.Info("error writing error response", slogx.Err(err))
				}
				return
			}
			if err := httputil.WriteErrorResponse(err, w); err != nil {
				log.Info("error writing error response", slogx.Err(err))
			}
		}
	}))
}

func RegisterServer(s Server, mux *http.ServeMux, o ServerOptions, prefix string, log *slog.Logger) error {
	if o.TokenChecker == nil {
		return fmt.Errorf("no token checker")
	}
	mux.Handle(prefix+"/register",
		makeHandler(log.With(slog.String("method", "register")), &o, s.Register))
	mux.Handle(prefix+"/waitlist/withdraw",
		makeHandler(log.With(slog.String("method", "waitlistWithdraw")), &o, s.WithdrawWaitlist))
	mux.Handle(prefix+"/withdraw",
		makeHandler(log.With(slog.String("method", "withdraw")), &o, s.Withdraw))
	mux.Handle(prefix+"/submit",
		makeHandler(log.With(slog.String("method", "submit")), &o, s.Submit))
	mux.Handle(prefix+"/tournament",
		makeHandler(log.With(slog.String("method", "tournament")), &o, s.GetTournament))
	mux.Handle(prefix+"/waitlist",
		makeHandler(log.With(slog.String("method", "waitlist")), &o, s.GetWaitlist))
	mux.Handle(prefix+"/tournaments",
		makeHandler(log.With(slog.String("method", "tournaments")), &o, s.ListTournaments))
	return nil
}
