package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/lox/pokeragent/internal/auth"
	"github.com/lox/pokeragent/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// ServerOptions configures a Server
type ServerOptions struct {
	Table    TableConfig
	Verifier *auth.Verifier // nil trusts the account id each client claims
	Clock    quartz.Clock
	Logger   *log.Logger
}

// Server hosts one table per game id, created on first use
type Server struct {
	opts     ServerOptions
	logger   *log.Logger
	upgrader websocket.Upgrader
	router   chi.Router

	mu     sync.Mutex
	tables map[string]*Table
}

// NewServer creates a server
func NewServer(opts ServerOptions) (*Server, error) {
	if err := opts.Table.Validate(); err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	s := &Server{
		opts:   opts,
		logger: opts.Logger.WithPrefix("sandbox"),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		tables: make(map[string]*Table),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)
	r.Get("/games/{game}/state", s.handleState)
	s.router = r

	return s, nil
}

// Handler returns the HTTP handler serving the websocket and status routes
func (s *Server) Handler() http.Handler {
	return s.router
}

// Table returns the table for gameID, creating it if needed
func (s *Server) Table(gameID string) (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tables[gameID]; ok {
		return t, nil
	}
	t, err := NewTable(gameID, s.opts.Table, s.opts.Clock, s.opts.Logger)
	if err != nil {
		return nil, err
	}
	s.tables[gameID] = t
	return t, nil
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting sandbox server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutting down sandbox server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// handleState serves the public view of a table
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game")

	s.mu.Lock()
	t, ok := s.tables[gameID]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "unknown game", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(t.Snapshot(""))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	sess := &session{server: s, conn: conn, logger: s.logger}
	sess.serve()
}

// session is one authenticated websocket. Requests are answered in order.
type session struct {
	server *Server
	conn   *websocket.Conn
	logger *log.Logger

	table    *Table
	playerID string
}

func (c *session) serve() {
	defer func() {
		if c.table != nil {
			c.table.Leave(c.playerID)
		}
	}()

	for {
		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket error", "error", err)
			}
			return
		}

		msgType, data := c.handle(&msg)
		resp, err := protocol.NewMessage(msgType, msg.RequestID, data)
		if err != nil {
			c.logger.Error("Failed to encode response", "type", msgType, "error", err)
			return
		}
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

func (c *session) handle(msg *protocol.Message) (protocol.MessageType, any) {
	if msg.Type == protocol.TypeAuth {
		return protocol.TypeAuthResponse, c.authenticate(msg)
	}
	if c.table == nil {
		return protocol.TypeError, protocol.ErrorData{Message: "not authenticated"}
	}

	switch msg.Type {
	case protocol.TypeGetState:
		return protocol.TypeState, protocol.StateData{State: c.table.Snapshot(c.playerID)}

	case protocol.TypeAction:
		var data protocol.ActionData
		if err := msg.Decode(&data); err != nil {
			return protocol.TypeError, protocol.ErrorData{Message: err.Error()}
		}
		if err := c.table.Act(c.playerID, data.Action, data.Amount); err != nil {
			return protocol.TypeError, protocol.ErrorData{Message: err.Error()}
		}
		return protocol.TypeAck, struct{}{}

	case protocol.TypeToggleReady:
		if err := c.table.ToggleReady(c.playerID); err != nil {
			return protocol.TypeError, protocol.ErrorData{Message: err.Error()}
		}
		return protocol.TypeAck, struct{}{}

	default:
		return protocol.TypeError, protocol.ErrorData{Message: fmt.Sprintf("unsupported message type %q", msg.Type)}
	}
}

func (c *session) authenticate(msg *protocol.Message) protocol.AuthResponseData {
	if c.table != nil {
		return protocol.AuthResponseData{Error: "already authenticated"}
	}

	var data protocol.AuthData
	if err := msg.Decode(&data); err != nil {
		return protocol.AuthResponseData{Error: err.Error()}
	}
	if data.GameID == "" {
		return protocol.AuthResponseData{Error: "game id is required"}
	}

	accountID := data.AccountID
	if v := c.server.opts.Verifier; v != nil {
		id, err := v.Verify(data.Token, data.GameID)
		if err != nil {
			c.logger.Warn("Rejected credentials", "account", data.AccountID, "game", data.GameID, "error", err)
			return protocol.AuthResponseData{Error: auth.ErrInvalidToken.Error()}
		}
		if accountID != "" && accountID != id.AccountID {
			return protocol.AuthResponseData{Error: "token was issued to another account"}
		}
		accountID = id.AccountID
	}
	if accountID == "" {
		return protocol.AuthResponseData{Error: "account id is required"}
	}

	table, err := c.server.Table(data.GameID)
	if err != nil {
		return protocol.AuthResponseData{Error: err.Error()}
	}
	if err := table.Join(accountID); err != nil {
		if errors.Is(err, ErrTableFull) {
			c.logger.Info("Table full", "game", data.GameID, "account", accountID)
		}
		return protocol.AuthResponseData{Error: err.Error()}
	}

	c.table = table
	c.playerID = accountID
	c.logger = c.logger.With("player", accountID, "game", data.GameID)
	c.logger.Info("Player authenticated")
	return protocol.AuthResponseData{Success: true, PlayerID: accountID}
}
