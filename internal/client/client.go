// Package client talks to a table authority over a websocket. It implements
// the state source, action sink and ready sink an agent controller polls.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lox/pokeragent/internal/auth"
	"github.com/lox/pokeragent/internal/game"
	"github.com/lox/pokeragent/internal/protocol"
	"github.com/lox/pokeragent/internal/strategy"
)

// ErrNotConnected is returned when no connection could be established
var ErrNotConnected = errors.New("client: not connected")

// RejectedError is a request the server answered with an error message
type RejectedError struct {
	Type    protocol.MessageType
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("server rejected %s: %s", e.Type, e.Message)
}

// Options configures a Client
type Options struct {
	ServerURL string
	GameID    string
	Identity  auth.Identity

	// Token is presented when authenticating. When Signer is set a fresh
	// token is signed for every connection instead.
	Token  string
	Signer *auth.Signer

	RequestTimeout    time.Duration
	ReconnectAttempts int
	ReconnectDelay    time.Duration

	Dialer *websocket.Dialer
	Logger *log.Logger
}

// Client holds at most one websocket connection, opened lazily. Requests are
// serialised; each one waits for the response carrying its request id.
type Client struct {
	opts   Options
	logger *log.Logger

	mu       sync.Mutex
	conn     *websocket.Conn
	playerID string
}

// New creates a client. No connection is made until the first request.
func New(opts Options) *Client {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.ReconnectAttempts <= 0 {
		opts.ReconnectAttempts = 1
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Client{
		opts:   opts,
		logger: opts.Logger.WithPrefix("client").With("game", opts.GameID),
	}
}

// PlayerID returns the id the server assigned on the last successful
// authentication
func (c *Client) PlayerID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID
}

// FetchState returns the current table snapshot as seen by this player
func (c *Client) FetchState(ctx context.Context) (*game.SharedState, error) {
	resp, err := c.roundTrip(ctx, protocol.TypeGetState, nil)
	if err != nil {
		return nil, err
	}
	var data protocol.StateData
	if err := resp.Decode(&data); err != nil {
		return nil, err
	}
	if data.State == nil {
		return nil, errors.New("state response carried no state")
	}
	return data.State, nil
}

// SubmitAction submits one action. amount is the total target bet for RAISE.
func (c *Client) SubmitAction(ctx context.Context, kind strategy.Kind, amount int) error {
	_, err := c.roundTrip(ctx, protocol.TypeAction, protocol.ActionData{Action: kind, Amount: amount})
	return err
}

// ToggleReady flips this player's ready flag
func (c *Client) ToggleReady(ctx context.Context) error {
	_, err := c.roundTrip(ctx, protocol.TypeToggleReady, nil)
	return err
}

// Close drops the connection, if any
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) roundTrip(ctx context.Context, msgType protocol.MessageType, data any) (*protocol.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}

	resp, err := c.exchange(ctx, c.conn, msgType, data)
	if err != nil {
		var rejected *RejectedError
		if !errors.As(err, &rejected) {
			c.drop(err)
		}
		return nil, err
	}
	return resp, nil
}

// exchange writes one request and reads until the matching response
func (c *Client) exchange(ctx context.Context, conn *websocket.Conn, msgType protocol.MessageType, data any) (*protocol.Message, error) {
	req, err := protocol.NewMessage(msgType, uuid.NewString(), data)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.opts.RequestTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)
	_ = conn.SetReadDeadline(deadline)

	// unblock a pending read when ctx is cancelled
	stop := context.AfterFunc(ctx, func() { _ = conn.SetReadDeadline(time.Now()) })
	defer stop()

	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("writing %s: %w", msgType, err)
	}

	for {
		var resp protocol.Message
		if err := conn.ReadJSON(&resp); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("reading %s response: %w", msgType, err)
		}
		if resp.RequestID != req.RequestID {
			c.logger.Debug("Skipping unrelated message", "type", resp.Type, "requestId", resp.RequestID)
			continue
		}
		if resp.Type == protocol.TypeError {
			var e protocol.ErrorData
			_ = resp.Decode(&e)
			return nil, &RejectedError{Type: msgType, Message: e.Message}
		}
		return &resp, nil
	}
}

func (c *Client) ensureConnected(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= c.opts.ReconnectAttempts; attempt++ {
		if attempt > 1 && c.opts.ReconnectDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.opts.ReconnectDelay):
			}
		}

		lastErr = c.connect(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var rejected *RejectedError
		if errors.As(lastErr, &rejected) {
			// credentials will not get better by retrying
			break
		}
		c.logger.Debug("Connect attempt failed", "attempt", attempt, "error", lastErr)
	}
	return fmt.Errorf("%w: %w", ErrNotConnected, lastErr)
}

func (c *Client) connect(ctx context.Context) error {
	wsURL, err := websocketURL(c.opts.ServerURL)
	if err != nil {
		return err
	}

	c.logger.Info("Connecting to server", "url", wsURL)
	conn, _, err := c.opts.Dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	token := c.opts.Token
	if c.opts.Signer != nil {
		if token, err = c.opts.Signer.Sign(c.opts.Identity, c.opts.GameID); err != nil {
			_ = conn.Close()
			return err
		}
	}

	resp, err := c.exchange(ctx, conn, protocol.TypeAuth, protocol.AuthData{
		AccountID: c.opts.Identity.AccountID,
		GameID:    c.opts.GameID,
		Token:     token,
	})
	if err != nil {
		_ = conn.Close()
		return err
	}

	var authResp protocol.AuthResponseData
	if err := resp.Decode(&authResp); err != nil {
		_ = conn.Close()
		return err
	}
	if !authResp.Success {
		_ = conn.Close()
		return &RejectedError{Type: protocol.TypeAuth, Message: authResp.Error}
	}

	c.conn = conn
	c.playerID = authResp.PlayerID
	c.logger.Info("Connected to server", "player", authResp.PlayerID)
	return nil
}

func (c *Client) drop(cause error) {
	if c.conn == nil {
		return
	}
	c.logger.Warn("Dropping connection", "error", cause)
	_ = c.conn.Close()
	c.conn = nil
}

// websocketURL converts an http(s) or ws(s) base URL into the /ws endpoint
func websocketURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL scheme %q", u.Scheme)
	}

	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}
