// Package watch streams live tournament snapshots over websockets. Each
// subscriber follows one tournament and receives the full derived view
// (document, standings, crosstable) on every change, starting with the
// current state at subscription time.
package watch

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/cohortclub/berger/internal/manager"
	"github.com/cohortclub/berger/internal/tourney"
	"github.com/cohortclub/berger/internal/tourneyapi"
	"github.com/cohortclub/berger/internal/util/httputil"
	"github.com/cohortclub/berger/internal/util/slogx"
	"github.com/gorilla/websocket"
)

// Event is the wire message pushed to subscribers.
type Event struct {
	Type       string                     `json:"type"`
	Tournament *tourneyapi.TournamentData `json:"tournament"`
}

const EventSnapshot = "snapshot"

// Snapshots provides the initial state for new subscribers. The manager
// satisfies it.
type Snapshots interface {
	Tournament(ctx context.Context, id string) (*tourney.Tournament, error)
}

type Hub struct {
	o   Options
	log *slog.Logger

	mu     sync.Mutex
	subs   map[string]map[*session]struct{}
	closed bool

	upgrader websocket.Upgrader
	wg       sync.WaitGroup
}

var _ manager.Listener = (*Hub)(nil)

func NewHub(log *slog.Logger, o Options) *Hub {
	o = o.Clone()
	o.FillDefaults()
	return &Hub{
		o:        o,
		log:      log,
		subs:     make(map[string]map[*session]struct{}),
		upgrader: o.upgrader(),
	}
}

func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var sessions []*session
	for _, subs := range h.subs {
		for s := range subs {
			sessions = append(sessions, s)
		}
	}
	h.subs = make(map[string]map[*session]struct{})
	h.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
	h.wg.Wait()
}

func marshalEvent(t *tourney.Tournament) ([]byte, error) {
	return json.Marshal(&Event{
		Type: EventSnapshot,
		Tournament: &tourneyapi.TournamentData{
			ID:         t.ID(),
			Tournament: t,
			Standings:  tourney.Standings(t),
			Crosstable: tourney.Crosstable(t),
		},
	})
}

// OnTournamentUpdated fans the new state out to the tournament's
// subscribers.
func (h *Hub) OnTournamentUpdated(t *tourney.Tournament) {
	data, err := marshalEvent(t)
	if err != nil {
		h.log.Error("could not marshal snapshot event", slogx.Err(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs[t.ID()] {
		s.push(data)
	}
}

func (h *Hub) subscribe(id string, s *session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	subs := h.subs[id]
	if subs == nil {
		subs = make(map[*session]struct{})
		h.subs[id] = subs
	}
	subs[s] = struct{}{}
	return true
}

func (h *Hub) unsubscribe(id string, s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.subs[id]
	delete(subs, s)
	if len(subs) == 0 {
		delete(h.subs, id)
	}
}

// Handler returns the subscription endpoint. The tournament is addressed via
// the "id" query parameter.
func (h *Hub) Handler(src Snapshots) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		req = httputil.WrapRequest(req)
		log := h.log.With(
			slog.String("addr", req.RemoteAddr),
			slog.String("rid", httputil.ExtractReqID(req.Context())),
		)
		id := req.URL.Query().Get("id")
		t, err := src.Tournament(req.Context(), id)
		if err != nil {
			if errors.Is(err, tourney.ErrTournamentNotFound) {
				err = httputil.MakeError(http.StatusNotFound, "tournament not found")
			}
			if wErr := httputil.WriteErrorResponse(err, w); wErr != nil {
				log.Info("error writing error response", slogx.Err(wErr))
			}
			return
		}
		data, err := marshalEvent(t)
		if err != nil {
			log.Error("could not marshal snapshot event", slogx.Err(err))
			_ = httputil.WriteErrorResponse(err, w)
			return
		}

		conn, err := h.upgrader.Upgrade(w, req, nil)
		if err != nil {
			log.Warn("could not upgrade websocket", slogx.Err(err))
			return
		}
		s := newSession(conn, log, &h.o)
		if !h.subscribe(id, s) {
			s.Close()
			return
		}
		s.push(data)

		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			<-s.Done()
			h.unsubscribe(id, s)
		}()
	})
}
