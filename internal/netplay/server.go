package netplay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/via/internal/multiplayer"
	"github.com/vovakirdan/via/internal/storage"
)

const (
	pingPeriod   = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
	sendBuffer   = 256
	maxNameLen   = 24
	maxReadBytes = 1 << 16
)

// MatchStore is the read side of the match history served at /matches.
type MatchStore interface {
	RecentMatches(limit int) ([]storage.MatchRecord, error)
	MatchByID(matchID string) (*storage.MatchRecord, error)
}

// Server exposes a coordinator to websocket clients.
type Server struct {
	coord    *multiplayer.Coordinator
	matches  MatchStore // optional
	logger   *log.Logger
	upgrader websocket.Upgrader
	r        *chi.Mux
}

// NewServer builds the router. matches may be nil.
func NewServer(coord *multiplayer.Coordinator, matches MatchStore, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		coord:   coord,
		matches: matches,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		r: chi.NewRouter(),
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)

	s.r.Get("/play", s.handlePlay)
	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Get("/healthz", s.handleHealth)
		r.Get("/matches", s.handleMatches)
		r.Get("/matches/{id}", s.handleMatch)
	})
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("websocket relay listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"lobbies":  s.coord.LobbyCount(),
		"matches":  s.coord.MatchCount(),
		"sessions": s.coord.Sessions().Count(),
	})
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	if s.matches == nil {
		writeJSON(w, http.StatusOK, []storage.MatchRecord{})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := s.matches.RecentMatches(limit)
	if err != nil {
		s.logger.Error("listing matches", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage unavailable"})
		return
	}
	if list == nil {
		list = []storage.MatchRecord{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	if s.matches == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	m, err := s.matches.MatchByID(chi.URLParam(r, "id"))
	switch {
	case err != nil:
		s.logger.Error("fetching match", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage unavailable"})
	case m == nil:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		writeJSON(w, http.StatusOK, m)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// playerName sanitizes the requested display name. maxNameLen counts runes.
func playerName(raw string, id multiplayer.SessionID) string {
	name := strings.TrimSpace(raw)
	if utf8.RuneCountInString(name) > maxNameLen {
		name = string([]rune(name)[:maxNameLen])
	}
	if name == "" {
		name = "guest-" + string(id)[:4]
	}
	return name
}

// handlePlay upgrades to a websocket and bridges it to the coordinator
// until either side goes away.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	id := multiplayer.NewSessionID()
	sess := multiplayer.Claim(s.coord.Sessions(), playerName(r.URL.Query().Get("name"), id),
		func(name string) *wsSession { return newWSSession(id, name, conn, s.logger) })
	s.logger.Info("client connected", "session", id, "name", sess.Name(), "remote", r.RemoteAddr)

	go sess.writeLoop()
	sess.readLoop(s.coord)

	s.coord.Send(multiplayer.SessionDisconnectedMsg{SessionID: id})
	sess.Close()
	s.logger.Info("client disconnected", "session", id)
}

// wsSession is a multiplayer.SessionHandle backed by a websocket. All
// writes happen on the writer goroutine.
type wsSession struct {
	id     multiplayer.SessionID
	name   string
	conn   *websocket.Conn
	logger *log.Logger

	out  chan multiplayer.SessionEvent
	done chan struct{}
	once sync.Once
}

func newWSSession(id multiplayer.SessionID, name string, conn *websocket.Conn, logger *log.Logger) *wsSession {
	return &wsSession{
		id:     id,
		name:   name,
		conn:   conn,
		logger: logger,
		out:    make(chan multiplayer.SessionEvent, sendBuffer),
		done:   make(chan struct{}),
	}
}

func (s *wsSession) ID() multiplayer.SessionID { return s.id }
func (s *wsSession) Name() string              { return s.name }
func (s *wsSession) Done() <-chan struct{}     { return s.done }

// Send queues an event; a client that cannot keep up is dropped.
func (s *wsSession) Send(evt multiplayer.SessionEvent) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.out <- evt:
	default:
		s.logger.Warn("client too slow, dropping", "session", s.id)
		s.Close()
	}
}

func (s *wsSession) Close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

func (s *wsSession) readLoop(coord *multiplayer.Coordinator) {
	s.conn.SetReadLimit(maxReadBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var m Message
		if err := s.conn.ReadJSON(&m); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("read failed", "session", s.id, "err", err)
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

		msg, err := DecodeRequest(s.id, m)
		if err != nil {
			s.logger.Warn("bad client message", "session", s.id, "type", m.Type, "err", err)
			s.Send(multiplayer.LobbyErrorEvent{Message: err.Error()})
			continue
		}
		coord.Send(msg)
	}
}

func (s *wsSession) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case evt := <-s.out:
			m, err := EncodeEvent(evt)
			if err != nil {
				s.logger.Error("encoding event", "session", s.id, "err", err)
				continue
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(m); err != nil {
				s.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}
