// internal/room/events.go
package room

import (
	"github.com/google/uuid"

	"github.com/yanivhq/yaniv-service/internal/models"
)

// EventType enumerates every event a room can emit. The transport layer
// serializes events verbatim; the room never sees connections.
type EventType string

const (
	EventRoomUpdated       EventType = "room_updated"
	EventPlayerJoined      EventType = "player_joined"
	EventPlayerLeft        EventType = "player_left"
	EventPlayerKicked      EventType = "player_kicked"
	EventGameStateUpdated  EventType = "game_state_updated"
	EventTurnChanged       EventType = "turn_changed"
	EventStickingAvailable EventType = "sticking_available"
	EventStickingExpired   EventType = "sticking_expired"
	EventStickPerformed    EventType = "stick_performed"
	EventPlayerMove        EventType = "player_move"
	EventAIMove            EventType = "ai_move"
	EventRoundEnded        EventType = "round_ended"
	EventGameEnded         EventType = "game_ended"
	EventRoomClosed        EventType = "room_closed"
	EventChatMessage       EventType = "chat_message"
	EventRoomError         EventType = "room_error"
)

// PlayerInfo is the public slice of a player attached to join/leave events.
type PlayerInfo struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar,omitempty"`
	IsAI   bool      `json:"isAi"`
	IsHost bool      `json:"isHost"`
}

// TurnInfo announces whose turn started and when it times out.
type TurnInfo struct {
	PlayerID uuid.UUID `json:"playerId"`
	Round    int       `json:"round"`
	EndsAt   int64     `json:"endsAt"`
}

// MoveInfo describes a completed throw-and-draw. The drawn card is only
// included when it came off the pile, where it was public anyway; blind
// deck draws stay hidden from everyone but the mover.
type MoveInfo struct {
	PlayerID   uuid.UUID      `json:"playerId"`
	Thrown     []*models.Card `json:"thrown"`
	DrawSource string         `json:"drawSource"`
	PileCard   *models.Card   `json:"pileCard,omitempty"`
	Auto       bool           `json:"auto,omitempty"`
}

// StickInfo describes a sticking window or a performed stick. Card is set
// only on the copy sent to the window's owner and on stick_performed, where
// the card becomes public.
type StickInfo struct {
	PlayerID  uuid.UUID    `json:"playerId"`
	Card      *models.Card `json:"card,omitempty"`
	ExpiresAt int64        `json:"expiresAt,omitempty"`
}

// ScoreLine is one row of a final game result.
type ScoreLine struct {
	PlayerID   uuid.UUID `json:"playerId"`
	Name       string    `json:"name"`
	Score      int       `json:"score"`
	Eliminated bool      `json:"eliminated"`
}

// GameResult is attached to game_ended.
type GameResult struct {
	WinnerID uuid.UUID   `json:"winnerId"`
	Scores   []ScoreLine `json:"scores"`
}

// ChatInfo carries a relayed chat line.
type ChatInfo struct {
	PlayerID uuid.UUID `json:"playerId"`
	Name     string    `json:"name"`
	Text     string    `json:"text"`
	SentAt   int64     `json:"sentAt"`
}

// Event is the single envelope for everything a room says. Exactly the
// fields relevant to the Type are populated; the rest marshal away.
type Event struct {
	Type     EventType           `json:"type"`
	RoomCode string              `json:"roomCode,omitempty"`
	Player   *PlayerInfo         `json:"player,omitempty"`
	Turn     *TurnInfo           `json:"turn,omitempty"`
	Move     *MoveInfo           `json:"move,omitempty"`
	Stick    *StickInfo          `json:"stick,omitempty"`
	Round    *models.RoundResult `json:"round,omitempty"`
	Result   *GameResult         `json:"result,omitempty"`
	Chat     *ChatInfo           `json:"chat,omitempty"`
	State    *GameState          `json:"state,omitempty"`
	Message  string              `json:"message,omitempty"`
}

// Sink receives room events. Implementations must not block: they are
// called with the room lock held, so slow consumers must hand off to their
// own goroutines. SendTo silently drops events for unknown players.
type Sink interface {
	Broadcast(ev Event)
	SendTo(playerID uuid.UUID, ev Event)
}

// Subscribe attaches a sink to the room. Typically called once per room by
// the transport layer right after creation.
func (r *Room) Subscribe(s Sink) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.sinks = append(r.sinks, s)
}

// emit fans an event out to every sink. Assumes the room lock is held.
func (r *Room) emit(ev Event) {
	ev.RoomCode = r.Code
	for _, s := range r.sinks {
		s.Broadcast(ev)
	}
}

// emitTo sends an event to a single player. Assumes the room lock is held.
func (r *Room) emitTo(playerID uuid.UUID, ev Event) {
	ev.RoomCode = r.Code
	for _, s := range r.sinks {
		s.SendTo(playerID, ev)
	}
}
