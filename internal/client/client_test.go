package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/pokeragent/internal/auth"
	"github.com/lox/pokeragent/internal/game"
	"github.com/lox/pokeragent/internal/protocol"
	"github.com/lox/pokeragent/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer answers every request from a handler; returning nil closes
// the connection
type fakeServer struct {
	*httptest.Server
	connections atomic.Int32
	handle      func(msg *protocol.Message) *protocol.Message
}

func newFakeServer(t *testing.T, handle func(msg *protocol.Message) *protocol.Message) *fakeServer {
	t.Helper()
	fs := &fakeServer{handle: handle}
	upgrader := websocket.Upgrader{}

	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		fs.connections.Add(1)

		for {
			var msg protocol.Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			var resp *protocol.Message
			if msg.Type == protocol.TypeAuth {
				var data protocol.AuthData
				_ = msg.Decode(&data)
				authResp := protocol.AuthResponseData{Success: true, PlayerID: data.AccountID}
				if data.Token != "good" {
					authResp = protocol.AuthResponseData{Error: "bad token"}
				}
				resp = reply(t, protocol.TypeAuthResponse, msg.RequestID, authResp)
			} else {
				resp = fs.handle(&msg)
			}
			if resp == nil {
				return
			}
			if err := conn.WriteJSON(resp); err != nil {
				return
			}
		}
	}))
	t.Cleanup(fs.Close)
	return fs
}

func reply(t *testing.T, typ protocol.MessageType, requestID string, data any) *protocol.Message {
	msg, err := protocol.NewMessage(typ, requestID, data)
	assert.NoError(t, err)
	return msg
}

func newTestClient(url, token string) *Client {
	return New(Options{
		ServerURL:      url,
		GameID:         "g1",
		Identity:       auth.Identity{AccountID: "me"},
		Token:          token,
		RequestTimeout: 2 * time.Second,
		Logger:         log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}),
	})
}

func TestFetchState(t *testing.T) {
	srv := newFakeServer(t, func(msg *protocol.Message) *protocol.Message {
		assert.Equal(t, protocol.TypeGetState, msg.Type)
		return reply(t, protocol.TypeState, msg.RequestID, protocol.StateData{State: &game.SharedState{
			HandID:    "h1",
			Phase:     game.Preflop,
			SeatOrder: []string{"me"},
			Players:   map[string]*game.Participant{"me": {ID: "me", Chips: 100}},
		}})
	})

	c := newTestClient(srv.URL, "good")
	defer c.Close()

	state, err := c.FetchState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "h1", state.HandID)
	assert.Equal(t, game.Preflop, state.Phase)
	assert.Equal(t, "me", c.PlayerID())

	_, err = c.FetchState(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, srv.connections.Load(), "connection is reused")
}

func TestSubmitActionSendsKindAndAmount(t *testing.T) {
	var got protocol.ActionData
	srv := newFakeServer(t, func(msg *protocol.Message) *protocol.Message {
		assert.NoError(t, msg.Decode(&got))
		return reply(t, protocol.TypeAck, msg.RequestID, struct{}{})
	})

	c := newTestClient(srv.URL, "good")
	defer c.Close()

	require.NoError(t, c.SubmitAction(context.Background(), strategy.Raise, 120))
	assert.Equal(t, protocol.ActionData{Action: strategy.Raise, Amount: 120}, got)
}

func TestRejectedActionKeepsConnection(t *testing.T) {
	srv := newFakeServer(t, func(msg *protocol.Message) *protocol.Message {
		if msg.Type == protocol.TypeAction {
			return reply(t, protocol.TypeError, msg.RequestID, protocol.ErrorData{Message: "not your turn"})
		}
		return reply(t, protocol.TypeAck, msg.RequestID, struct{}{})
	})

	c := newTestClient(srv.URL, "good")
	defer c.Close()

	err := c.SubmitAction(context.Background(), strategy.Check, 0)
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "not your turn", rejected.Message)

	require.NoError(t, c.ToggleReady(context.Background()))
	assert.EqualValues(t, 1, srv.connections.Load())
}

func TestReconnectsAfterConnectionLoss(t *testing.T) {
	var calls atomic.Int32
	srv := newFakeServer(t, func(msg *protocol.Message) *protocol.Message {
		if calls.Add(1) == 1 {
			return nil // hang up
		}
		return reply(t, protocol.TypeAck, msg.RequestID, struct{}{})
	})

	c := newTestClient(srv.URL, "good")
	defer c.Close()

	require.Error(t, c.ToggleReady(context.Background()))
	require.NoError(t, c.ToggleReady(context.Background()))
	assert.EqualValues(t, 2, srv.connections.Load())
}

func TestAuthenticationFailure(t *testing.T) {
	srv := newFakeServer(t, func(msg *protocol.Message) *protocol.Message {
		t.Errorf("unexpected request %s", msg.Type)
		return nil
	})

	c := newTestClient(srv.URL, "bad")
	_, err := c.FetchState(context.Background())

	require.ErrorIs(t, err, ErrNotConnected)
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "bad token", rejected.Message)
}

func TestUnreachableServer(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1", "good")
	c.opts.ReconnectAttempts = 2
	_, err := c.FetchState(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestCancelledRequest(t *testing.T) {
	srv := newFakeServer(t, func(msg *protocol.Message) *protocol.Message {
		time.Sleep(500 * time.Millisecond)
		return reply(t, protocol.TypeAck, msg.RequestID, struct{}{})
	})

	c := newTestClient(srv.URL, "good")
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := c.ToggleReady(ctx)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 400*time.Millisecond)

	var rejected *RejectedError
	assert.False(t, errors.As(err, &rejected))
}

func TestWebsocketURL(t *testing.T) {
	tests := map[string]string{
		"http://localhost:8080":     "ws://localhost:8080/ws",
		"https://example.com":       "wss://example.com/ws",
		"ws://localhost:8080/agent": "ws://localhost:8080/agent",
	}
	for in, want := range tests {
		got, err := websocketURL(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := websocketURL("ftp://example.com")
	assert.Error(t, err)
}
