package models

import "fmt"

// ScoreLimitPresets are the selectable score limits exposed at room creation.
var ScoreLimitPresets = []int{100, 200, 300}

// RoomSettings captures the per-room configuration chosen by the host when
// the room is created.
type RoomSettings struct {
	// ScoreLimit is the cumulative score at which a player is eliminated.
	ScoreLimit int `json:"scoreLimit"`
	// AllowSticking enables the quick-response stick window after a deck
	// draw that matches the rank just thrown.
	AllowSticking bool `json:"allowSticking"`
}

// DefaultRoomSettings returns the settings applied when the client omits them.
func DefaultRoomSettings() RoomSettings {
	return RoomSettings{ScoreLimit: 200, AllowSticking: true}
}

// Validate checks the score limit against the allowed presets.
func (s RoomSettings) Validate() error {
	for _, preset := range ScoreLimitPresets {
		if s.ScoreLimit == preset {
			return nil
		}
	}
	return fmt.Errorf("score limit %d is not one of the allowed presets %v", s.ScoreLimit, ScoreLimitPresets)
}
