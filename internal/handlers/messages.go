// internal/handlers/messages.go
package handlers

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yanivhq/yaniv-service/internal/models"
	"github.com/yanivhq/yaniv-service/internal/room"
)

// Inbound message types. Anything else is a protocol violation and is
// dropped without a reply.
const (
	msgAuthenticate = "authenticate"
	msgCreateRoom   = "create_room"
	msgJoinRoom     = "join_room"
	msgLeaveRoom    = "leave_room"
	msgAddAI        = "add_ai_player"
	msgRemovePlayer = "remove_player"
	msgStartGame    = "start_game"
	msgThrowCards   = "throw_cards"
	msgCallYaniv    = "call_yaniv"
	msgStick        = "stick"
	msgSkipStick    = "skip_stick"
	msgChat         = "chat_message"
	msgPing         = "ping"
)

// drawRequest mirrors room.DrawSource on the wire.
type drawRequest struct {
	FromPile  bool `json:"fromPile"`
	PileIndex int  `json:"pileIndex"`
}

// ClientMessage is the envelope for every inbound WebSocket message. The
// Type field selects which of the optional fields are meaningful; the
// dispatcher validates the selected fields before touching any room.
type ClientMessage struct {
	Type string `json:"type"`

	// authenticate
	Token string `json:"token,omitempty"`

	// create_room / join_room / add_ai_player
	Name     string               `json:"name,omitempty"`
	Avatar   string               `json:"avatar,omitempty"`
	Settings *models.RoomSettings `json:"settings,omitempty"`
	RoomCode string               `json:"roomCode,omitempty"`

	// remove_player
	PlayerID string `json:"playerId,omitempty"`

	// throw_cards
	CardIDs []string     `json:"cardIds,omitempty"`
	Draw    *drawRequest `json:"draw,omitempty"`

	// chat_message
	Text string `json:"text,omitempty"`
}

// cardIDs parses the throw's card IDs, rejecting malformed or duplicate
// entries before they reach game logic.
func (m *ClientMessage) cardIDs() ([]uuid.UUID, error) {
	if len(m.CardIDs) == 0 {
		return nil, fmt.Errorf("throw_cards requires at least one card id")
	}
	ids := make([]uuid.UUID, 0, len(m.CardIDs))
	for _, raw := range m.CardIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("malformed card id %q", raw)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// drawSource converts the wire draw request; a missing draw block means a
// blind deck draw.
func (m *ClientMessage) drawSource() room.DrawSource {
	if m.Draw == nil {
		return room.DrawSource{}
	}
	return room.DrawSource{FromPile: m.Draw.FromPile, PileIndex: m.Draw.PileIndex}
}
