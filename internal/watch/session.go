package watch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/cohortclub/berger/internal/util/slogx"
)

// session is a push-only websocket connection. Messages from the client are
// read solely to keep pong handling alive and are otherwise discarded.
// Snapshots are coalesced: when the client is slow or throttled, only the
// latest snapshot survives, so every delivered message is current.
type session struct {
	conn    *websocket.Conn
	log     *slog.Logger
	o       *Options
	limiter *rate.Limiter

	mu      sync.Mutex
	pending []byte
	kick    chan struct{}

	ctx    context.Context
	cancel func()
	wg     sync.WaitGroup
	closed atomic.Bool
}

func newSession(conn *websocket.Conn, log *slog.Logger, o *Options) *session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		conn:    conn,
		log:     log,
		o:       o,
		limiter: rate.NewLimiter(rate.Limit(o.SendLimit), 1),
		kick:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.wg.Add(2)
	go s.readLoop()
	go s.writeLoop()
	return s
}

func (s *session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// shutdown tears the connection down without waiting for the loops, so the
// loops themselves may call it on error.
func (s *session) shutdown() {
	if s.closed.Swap(true) {
		return
	}
	s.cancel()
	if err := s.conn.Close(); err != nil {
		s.log.Info("could not close websocket", slogx.Err(err))
	}
}

func (s *session) Close() {
	s.shutdown()
	s.wg.Wait()
}

// push replaces any undelivered snapshot with this one.
func (s *session) push(data []byte) {
	s.mu.Lock()
	s.pending = data
	s.mu.Unlock()
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *session) take() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := s.pending
	s.pending = nil
	return data
}

func (s *session) readLoop() {
	defer s.wg.Done()
	defer s.shutdown()
	for {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.o.PingTimeout))
		s.conn.SetPongHandler(func(string) error {
			_ = s.conn.SetReadDeadline(time.Now().Add(s.o.PingTimeout))
			return nil
		})
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.log.Info("could not read from websocket", slogx.Err(err))
			}
			return
		}
	}
}

func (s *session) write(kind int, data []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.o.WriteDeadline))
	return s.conn.WriteMessage(kind, data)
}

func (s *session) writeLoop() {
	defer s.wg.Done()
	defer s.shutdown()
	ticker := time.NewTicker(s.o.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if err := s.write(websocket.PingMessage, []byte{}); err != nil {
				s.log.Info("could not ping websocket", slogx.Err(err))
				return
			}
		case <-s.kick:
			if err := s.limiter.Wait(s.ctx); err != nil {
				return
			}
			data := s.take()
			if data == nil {
				continue
			}
			if err := s.write(websocket.TextMessage, data); err != nil {
				s.log.Info("could not write to websocket", slogx.Err(err))
				return
			}
		}
	}
}
