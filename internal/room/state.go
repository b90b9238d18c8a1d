// internal/room/state.go
package room

import (
	"github.com/google/uuid"

	"github.com/yanivhq/yaniv-service/internal/models"
)

// PlayerState is the per-viewer projection of a seat. Hand is populated
// only on the copy built for the seat's own viewer; everyone else sees
// just the count.
type PlayerState struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Avatar        string         `json:"avatar,omitempty"`
	Score         int            `json:"score"`
	HandSize      int            `json:"handSize"`
	Hand          []*models.Card `json:"hand,omitempty"`
	IsHost        bool           `json:"isHost"`
	IsAI          bool           `json:"isAi"`
	Connected     bool           `json:"connected"`
	IsCurrentTurn bool           `json:"isCurrentTurn"`
	Eliminated    bool           `json:"eliminated"`
}

// GameState is the room snapshot pushed to clients. Deck and discard
// contents stay hidden; only the exposed last discard group is public.
type GameState struct {
	RoomCode        string              `json:"roomCode"`
	Status          Status              `json:"status"`
	Settings        models.RoomSettings `json:"settings"`
	HostID          uuid.UUID           `json:"hostId"`
	Round           int                 `json:"round"`
	DeckSize        int                 `json:"deckSize"`
	DiscardSize     int                 `json:"discardSize"`
	LastDiscard     []*models.Card      `json:"lastDiscard,omitempty"`
	CurrentPlayerID uuid.UUID           `json:"currentPlayerId"`
	TurnEndsAt      int64               `json:"turnEndsAt,omitempty"`
	Players         []PlayerState       `json:"players"`
}

// stateFor builds the snapshot as seen by viewer. A zero viewer ID yields
// the fully redacted spectator view. Assumes the room lock is held.
func (r *Room) stateFor(viewer uuid.UUID) *GameState {
	st := &GameState{
		RoomCode:    r.Code,
		Status:      r.Status,
		Settings:    r.Settings,
		HostID:      r.HostID,
		Round:       r.RoundNumber,
		DeckSize:    len(r.Deck),
		DiscardSize: len(r.DiscardPile),
		Players:     make([]PlayerState, 0, len(r.Players)),
	}
	if len(r.LastDiscardGroup) > 0 {
		st.LastDiscard = append([]*models.Card(nil), r.LastDiscardGroup...)
	}
	if r.Status == StatusPlaying && r.CurrentTurnIndex < len(r.Players) {
		st.CurrentPlayerID = r.Players[r.CurrentTurnIndex].ID
		st.TurnEndsAt = r.TurnStartTime.Add(r.TurnDuration).UnixMilli()
	}
	for i, p := range r.Players {
		ps := PlayerState{
			ID:            p.ID,
			Name:          p.Name,
			Avatar:        p.Avatar,
			Score:         p.Score,
			HandSize:      p.HandSize(),
			IsHost:        p.IsHost,
			IsAI:          p.IsAI,
			Connected:     p.Connected,
			IsCurrentTurn: r.Status == StatusPlaying && i == r.CurrentTurnIndex,
			Eliminated:    p.Eliminated,
		}
		if p.ID == viewer {
			ps.Hand = append([]*models.Card(nil), p.Hand...)
		}
		st.Players = append(st.Players, ps)
	}
	return st
}

// broadcastState pushes a tailored game_state_updated to every seat.
// Assumes the room lock is held.
func (r *Room) broadcastState() {
	for _, p := range r.Players {
		r.emitTo(p.ID, Event{Type: EventGameStateUpdated, State: r.stateFor(p.ID)})
	}
}

// broadcastLobby pushes the redacted room snapshot to everyone. Used
// outside of active play, where no seat holds private cards.
// Assumes the room lock is held.
func (r *Room) broadcastLobby() {
	r.emit(Event{Type: EventRoomUpdated, State: r.stateFor(uuid.Nil)})
}
