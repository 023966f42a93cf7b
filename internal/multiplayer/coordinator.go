package multiplayer

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"io"
	mrand "math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/via/internal/config"
	"github.com/vovakirdan/via/internal/games/via/engine"
)

// Lobby represents a waiting room for a match.
type Lobby struct {
	Code      string
	Mode      engine.Mode
	Host      SessionHandle
	Joiner    SessionHandle
	CreatedAt time.Time
}

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	LobbyTimeout  time.Duration // How long before an empty lobby expires
	CleanupPeriod time.Duration // How often to clean up expired lobbies
	Rows          int
	Cols          int
	RandomBatch   int // values per random batch
	Rules         engine.ScoreRules
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfigFrom(config.DefaultViaConfig())
}

// CoordinatorConfigFrom derives coordinator settings from the game config.
func CoordinatorConfigFrom(cfg config.ViaConfig) CoordinatorConfig {
	return CoordinatorConfig{
		LobbyTimeout:  time.Duration(cfg.Network.LobbyTimeoutSecs) * time.Second,
		CleanupPeriod: 30 * time.Second,
		Rows:          cfg.Board.Rows,
		Cols:          cfg.Board.Cols,
		RandomBatch:   cfg.Network.RandomBatch,
		Rules: engine.ScoreRules{
			Goal:              cfg.Scoring.Goal,
			WinBars:           cfg.Scoring.WinBars,
			SpillPercent:      cfg.Scoring.LockedSpillPercent,
			PointsPerTile:     cfg.Scoring.PointsPerTile,
			BonusPerExtraTile: cfg.Scoring.BonusPerExtraTile,
		},
	}
}

// MatchResultSaver is an interface for saving match results.
// This allows the coordinator to save results without depending on the storage package.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}

// MatchResultData contains match result data for persistence.
type MatchResultData struct {
	MatchID      string
	Mode         string
	Player1      string // seat 0
	Player2      string // seat 1
	Winner       string // empty when nobody won
	EndReason    string
	Bars         []int
	DurationSecs int
}

// Coordinator manages lobbies and active matches.
type Coordinator struct {
	config      CoordinatorConfig
	sessions    *SessionRegistry
	resultSaver MatchResultSaver // Optional, can be nil
	logger      *log.Logger

	mu      sync.RWMutex
	lobbies map[string]*Lobby        // code -> lobby
	matches map[MatchID]*OnlineMatch // matchID -> match

	// Track which session is in which lobby/match
	sessionLobby map[SessionID]string  // sessionID -> lobby code
	sessionMatch map[SessionID]MatchID // sessionID -> matchID

	msgChan  chan CoordinatorMessage
	done     chan struct{}
	stopOnce sync.Once
}

// NewCoordinator creates a new coordinator.
func NewCoordinator(cfg CoordinatorConfig, sessions *SessionRegistry) *Coordinator {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 30 * time.Second
	}
	if cfg.LobbyTimeout <= 0 {
		cfg.LobbyTimeout = 2 * time.Minute
	}
	return &Coordinator{
		config:       cfg,
		sessions:     sessions,
		logger:       log.New(io.Discard),
		lobbies:      make(map[string]*Lobby),
		matches:      make(map[MatchID]*OnlineMatch),
		sessionLobby: make(map[SessionID]string),
		sessionMatch: make(map[SessionID]MatchID),
		msgChan:      make(chan CoordinatorMessage, 256),
		done:         make(chan struct{}),
	}
}

// SetResultSaver sets the optional match result saver.
func (c *Coordinator) SetResultSaver(saver MatchResultSaver) {
	c.resultSaver = saver
}

// SetLogger sets the lifecycle logger.
func (c *Coordinator) SetLogger(l *log.Logger) {
	if l != nil {
		c.logger = l
	}
}

// Sessions returns the registry sessions must be added to before they
// send messages.
func (c *Coordinator) Sessions() *SessionRegistry {
	return c.sessions
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
	go c.cleanupLoop()
}

// Stop shuts down the coordinator and every running match.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.mu.RLock()
		defer c.mu.RUnlock()
		for _, m := range c.matches {
			m.Stop()
		}
	})
}

// Send sends a message to the coordinator for async processing.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

// processMessages handles incoming messages.
func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case CreateLobbyMsg:
		c.handleCreateLobby(m)
	case JoinLobbyMsg:
		c.handleJoinLobby(m)
	case LeaveMsg:
		c.handleLeave(m)
	case CommandMsg:
		c.handleCommand(m)
	case RandomRequestMsg:
		c.handleRandomRequest(m)
	case SessionDisconnectedMsg:
		c.handleSessionDisconnected(m)
	}
}

func (c *Coordinator) handleCreateLobby(msg CreateLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	if c.busy(msg.SessionID) {
		c.mu.Unlock()
		session.Send(LobbyErrorEvent{Message: "Already in a lobby"})
		return
	}

	code := c.generateUniqueCode()
	c.lobbies[code] = &Lobby{
		Code:      code,
		Mode:      msg.Mode,
		Host:      session,
		CreatedAt: time.Now(),
	}
	c.sessionLobby[msg.SessionID] = code
	c.mu.Unlock()

	c.logger.Info("lobby created", "code", code, "mode", msg.Mode, "host", session.Name())
	session.Send(LobbyCreatedEvent{Code: code, Mode: msg.Mode})
}

func (c *Coordinator) handleJoinLobby(msg JoinLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy(msg.SessionID) {
		session.Send(LobbyErrorEvent{Message: "Already in a lobby"})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(msg.Code))
	lobby, exists := c.lobbies[code]
	if !exists {
		session.Send(LobbyErrorEvent{Message: "Lobby not found"})
		return
	}
	if lobby.Joiner != nil {
		session.Send(LobbyErrorEvent{Message: "Lobby is full"})
		return
	}
	if lobby.Host.ID() == msg.SessionID {
		session.Send(LobbyErrorEvent{Message: "Cannot join your own lobby"})
		return
	}

	lobby.Joiner = session
	c.sessionLobby[msg.SessionID] = code

	lobby.Host.Send(LobbyJoinedEvent{Code: code, Seat: 0, Opponent: session.Name()})
	session.Send(LobbyJoinedEvent{Code: code, Seat: 1, Opponent: lobby.Host.Name()})

	c.startMatch(lobby)
}

// busy reports whether a session is already in a lobby or match.
// Caller holds the lock.
func (c *Coordinator) busy(id SessionID) bool {
	_, inLobby := c.sessionLobby[id]
	_, inMatch := c.sessionMatch[id]
	return inLobby || inMatch
}

// startMatch turns a full lobby into a running match. Caller holds the lock.
func (c *Coordinator) startMatch(lobby *Lobby) {
	matchID := NewMatchID()
	settings := MatchSettings{
		Mode:        lobby.Mode,
		Rows:        c.config.Rows,
		Cols:        c.config.Cols,
		Seed:        mrand.Int64(),
		First:       mrand.IntN(2),
		RandomBatch: c.config.RandomBatch,
		Rules:       c.config.Rules,
	}
	match := NewOnlineMatch(matchID, lobby.Code, settings, lobby.Host, lobby.Joiner)

	c.matches[matchID] = match
	for _, s := range []SessionHandle{lobby.Host, lobby.Joiner} {
		delete(c.sessionLobby, s.ID())
		c.sessionMatch[s.ID()] = matchID
	}
	delete(c.lobbies, lobby.Code)

	c.logger.Info("match started", "match", matchID, "code", lobby.Code,
		"mode", settings.Mode, "first", settings.First)
	lobby.Host.Send(match.StartedEvent(0))
	lobby.Joiner.Send(match.StartedEvent(1))

	go match.Run(func(result MatchResult) {
		c.handleMatchEnded(match, result)
	})
}

func (c *Coordinator) handleMatchEnded(match *OnlineMatch, result MatchResult) {
	c.mu.Lock()
	if _, exists := c.matches[match.ID()]; !exists {
		c.mu.Unlock()
		return
	}
	delete(c.matches, match.ID())
	for seat := range 2 {
		delete(c.sessionMatch, match.Session(seat).ID())
	}
	c.mu.Unlock()

	c.logger.Info("match ended", "match", match.ID(), "reason", result.Reason.Key(),
		"winner", result.Winner, "duration", result.Duration.Round(time.Second))

	end := MatchEndedEvent{MatchID: match.ID(), Reason: result.Reason, Winner: result.Winner}
	match.Session(0).Send(end)
	match.Session(1).Send(end)

	if c.resultSaver == nil {
		return
	}
	data := MatchResultData{
		MatchID:      string(match.ID()),
		Mode:         match.Settings().Mode.String(),
		Player1:      match.Session(0).Name(),
		Player2:      match.Session(1).Name(),
		EndReason:    result.Reason.Key(),
		Bars:         result.Bars,
		DurationSecs: int(result.Duration / time.Second),
	}
	if validSeat(result.Winner) {
		data.Winner = match.Session(result.Winner).Name()
	}
	if err := c.resultSaver.SaveMatchResult(data); err != nil {
		c.logger.Error("saving match result", "match", match.ID(), "err", err)
	}
}

func (c *Coordinator) handleLeave(msg LeaveMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if code, ok := c.sessionLobby[msg.SessionID]; ok {
		c.leaveLobby(msg.SessionID, code)
		return
	}
	if id, ok := c.sessionMatch[msg.SessionID]; ok {
		if match, exists := c.matches[id]; exists {
			match.PlayerLeft(msg.SessionID)
		}
	}
}

// leaveLobby removes a session from a lobby. A leaving host closes the
// lobby, a leaving joiner frees the seat. Caller holds the lock.
func (c *Coordinator) leaveLobby(id SessionID, code string) {
	delete(c.sessionLobby, id)
	lobby, exists := c.lobbies[code]
	if !exists {
		return
	}

	if lobby.Joiner != nil && lobby.Joiner.ID() == id {
		lobby.Joiner = nil
		lobby.Host.Send(LobbyPlayerLeftEvent{Code: code})
		return
	}
	if lobby.Host.ID() == id {
		if lobby.Joiner != nil {
			lobby.Joiner.Send(MatchEndedEvent{Reason: MatchEndReasonHostLeft, Winner: NoSeat})
			delete(c.sessionLobby, lobby.Joiner.ID())
		}
		delete(c.lobbies, code)
		c.logger.Debug("lobby closed", "code", code)
	}
}

// matchOf finds the match and seat of a session.
func (c *Coordinator) matchOf(id SessionID) (*OnlineMatch, int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matchID, ok := c.sessionMatch[id]
	if !ok {
		return nil, NoSeat, false
	}
	match, ok := c.matches[matchID]
	if !ok {
		return nil, NoSeat, false
	}
	return match, match.SeatOf(id), true
}

func (c *Coordinator) handleCommand(msg CommandMsg) {
	match, seat, ok := c.matchOf(msg.SessionID)
	if !ok || msg.Command == nil {
		return
	}
	match.Submit(seat, msg.Command)
}

func (c *Coordinator) handleRandomRequest(msg RandomRequestMsg) {
	match, seat, ok := c.matchOf(msg.SessionID)
	if !ok {
		return
	}
	match.RequestRandom(seat, msg.Seat, msg.Batch)
}

func (c *Coordinator) handleSessionDisconnected(msg SessionDisconnectedMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if code, inLobby := c.sessionLobby[msg.SessionID]; inLobby {
		c.leaveLobby(msg.SessionID, code)
	}
	if matchID, inMatch := c.sessionMatch[msg.SessionID]; inMatch {
		if match, exists := c.matches[matchID]; exists {
			match.PlayerDisconnected(msg.SessionID)
		}
	}
	c.sessions.Unregister(msg.SessionID)
}

func (c *Coordinator) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpiredLobbies(time.Now())
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) cleanupExpiredLobbies(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for code, lobby := range c.lobbies {
		// Only expire lobbies without joiners
		if lobby.Joiner == nil && now.Sub(lobby.CreatedAt) > c.config.LobbyTimeout {
			lobby.Host.Send(LobbyErrorEvent{Message: "Lobby expired"})
			delete(c.sessionLobby, lobby.Host.ID())
			delete(c.lobbies, code)
			c.logger.Debug("lobby expired", "code", code)
		}
	}
}

func (c *Coordinator) generateUniqueCode() string {
	for {
		code := generateJoinCode()
		if _, exists := c.lobbies[code]; !exists {
			return code
		}
	}
}

// generateJoinCode creates a 6-character uppercase alphanumeric code.
func generateJoinCode() string {
	b := make([]byte, 4) // 4 bytes = 32 bits, base32 encodes to 8 chars, we take 6
	_, err := rand.Read(b)
	if err != nil {
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	return base32.StdEncoding.EncodeToString(b)[:6]
}

// GetLobby returns a lobby by code (for testing/debug).
func (c *Coordinator) GetLobby(code string) (*Lobby, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.lobbies[strings.ToUpper(code)]
	return l, ok
}

// GetMatch returns a match by ID (for testing/debug).
func (c *Coordinator) GetMatch(id MatchID) (*OnlineMatch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.matches[id]
	return m, ok
}

// LobbyCount returns the number of active lobbies.
func (c *Coordinator) LobbyCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lobbies)
}

// MatchCount returns the number of active matches.
func (c *Coordinator) MatchCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matches)
}
