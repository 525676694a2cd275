// Package protocol defines the JSON messages exchanged between an agent and a
// table authority over a websocket.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/pokeragent/internal/game"
	"github.com/lox/pokeragent/internal/strategy"
)

// MessageType identifies the payload carried by a Message
type MessageType string

const (
	// Client to server
	TypeAuth        MessageType = "auth"
	TypeGetState    MessageType = "get_state"
	TypeAction      MessageType = "action"
	TypeToggleReady MessageType = "toggle_ready"

	// Server to client
	TypeAuthResponse MessageType = "auth_response"
	TypeState        MessageType = "state"
	TypeAck          MessageType = "ack"
	TypeError        MessageType = "error"
)

func (mt MessageType) String() string {
	return string(mt)
}

// Message is the envelope for every frame. Responses echo the RequestID of
// the request they answer.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps data in an envelope stamped with the current time
func NewMessage(messageType MessageType, requestID string, data any) (*Message, error) {
	msg := &Message{
		Type:      messageType,
		RequestID: requestID,
		Timestamp: time.Now(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", messageType, err)
		}
		msg.Data = raw
	}
	return msg, nil
}

// Decode unmarshals the payload into v
func (m *Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return fmt.Errorf("%s message has no data", m.Type)
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", m.Type, err)
	}
	return nil
}

// Client to server payloads

type AuthData struct {
	AccountID string `json:"accountId"`
	GameID    string `json:"gameId"`
	Token     string `json:"token"`
}

type ActionData struct {
	Action strategy.Kind `json:"action"`
	Amount int           `json:"amount,omitempty"` // total target bet for RAISE
}

// Server to client payloads

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type StateData struct {
	State *game.SharedState `json:"state"`
}

type ErrorData struct {
	Message string `json:"message"`
}
