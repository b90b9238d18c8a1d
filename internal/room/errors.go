// internal/room/errors.go
package room

import "errors"

// Sentinel errors returned by room operations. The transport layer relays
// these to the offending client only; they never leak to other players.
var (
	ErrRoomClosed       = errors.New("room is closed")
	ErrRoomFull         = errors.New("room is full")
	ErrGameInProgress   = errors.New("game already in progress")
	ErrNotEnoughPlayers = errors.New("need at least two players to start")
	ErrAlreadySeated    = errors.New("player is already seated in this room")
	ErrSeatNotFound     = errors.New("no matching seat")
	ErrNotHost          = errors.New("only the host may do that")
	ErrNotPlaying       = errors.New("no round in progress")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrIllegalThrow     = errors.New("cards are not in hand or do not form a legal throw")
	ErrInvalidDraw      = errors.New("invalid draw source")
	ErrDeckExhausted    = errors.New("no cards left to draw")
	ErrYanivNotAllowed  = errors.New("hand value is above the yaniv threshold")
	ErrStickPending     = errors.New("a sticking window is still open")
	ErrNoStickWindow    = errors.New("no sticking window is open for you")
)
