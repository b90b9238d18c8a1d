// internal/room/room.go
package room

import (
	"math/rand"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yanivhq/yaniv-service/internal/engine"
	"github.com/yanivhq/yaniv-service/internal/models"
)

// Status is the room lifecycle state.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusRoundEnd Status = "roundEnd"
)

const (
	MaxPlayers       = 4
	MinPlayers       = 2
	StartingHandSize = 5
	// SubDecks is how many 54-card sub-decks are shuffled together.
	SubDecks = 2
	// MaxConsecutiveTimeouts is the number of expired turn timers in a row
	// after which a human seat is kicked instead of auto-played.
	MaxConsecutiveTimeouts = 2
)

const (
	DefaultTurnDuration = 30 * time.Second
	DefaultStickWindow  = 4 * time.Second
	DefaultRoundDelay   = 8 * time.Second
	DefaultHostGrace    = 20 * time.Second

	// aiMoveDelay paces AI turns so moves stay legible to humans.
	aiMoveDelay = 1500 * time.Millisecond
)

// stickState tracks the one sticking window that can be open at a time:
// the mover who blind-drew a card matching the rank they just threw may
// discard exactly that card before the turn advances.
type stickState struct {
	PlayerID uuid.UUID
	CardID   uuid.UUID
}

// Room is one game table. Exported fields are protected by Mu; exported
// methods acquire it, unexported methods assume it is held.
type Room struct {
	Code     string
	HostID   uuid.UUID
	Settings models.RoomSettings
	Status   Status

	Players          []*models.Player
	Deck             []*models.Card
	DiscardPile      []*models.Card
	LastDiscardGroup []*models.Card

	CurrentTurnIndex int
	TurnStartTime    time.Time
	RoundNumber      int
	LastActivity     time.Time

	// Tunables, set to defaults at construction. Tests override the
	// durations to keep timer-driven paths deterministic.
	YanivThreshold int
	AssafPenalty   int
	TurnDuration   time.Duration
	StickWindow    time.Duration
	RoundDelay     time.Duration
	HostGrace      time.Duration

	Mu sync.Mutex

	sinks   []Sink
	timers  *scheduler
	onClose func(code string)
	log     *logrus.Entry

	// turnID and stickID are sequence counters that late-firing timer
	// callbacks compare against before acting.
	turnID  int
	stickID int
	stick   *stickState

	lastRoundWinner uuid.UUID
	closed          bool
}

// NewRoom builds a waiting room. onClose is invoked exactly once, with the
// room lock held, when the room closes for any reason.
func NewRoom(code string, settings models.RoomSettings, logger *logrus.Logger, onClose func(code string)) *Room {
	return &Room{
		Code:         code,
		Settings:     settings,
		Status:       StatusWaiting,
		LastActivity: time.Now(),

		YanivThreshold: envInt("YANIV_CALL_THRESHOLD", engine.DefaultYanivThreshold),
		AssafPenalty:   envInt("YANIV_ASSAF_PENALTY", engine.DefaultAssafPenalty),
		TurnDuration:   DefaultTurnDuration,
		StickWindow:    DefaultStickWindow,
		RoundDelay:     DefaultRoundDelay,
		HostGrace:      DefaultHostGrace,

		timers:  newScheduler(),
		onClose: onClose,
		log:     logger.WithField("room", code),
	}
}

// envInt reads an integer override from the environment, falling back to
// def when unset or malformed.
func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// touch marks the room active for the registry's idle sweep.
// Assumes the room lock is held.
func (r *Room) touch() {
	r.LastActivity = time.Now()
}

// AddPlayer seats a participant. The first seat becomes host.
func (r *Room) AddPlayer(id uuid.UUID, name, avatar string, isAI bool) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.addPlayer(id, name, avatar, isAI)
}

func (r *Room) addPlayer(id uuid.UUID, name, avatar string, isAI bool) error {
	if r.closed {
		return ErrRoomClosed
	}
	if r.Status != StatusWaiting {
		return ErrGameInProgress
	}
	if len(r.Players) >= MaxPlayers {
		return ErrRoomFull
	}
	if r.playerByID(id) != nil {
		return ErrAlreadySeated
	}

	p := &models.Player{
		ID:        id,
		Name:      name,
		Avatar:    avatar,
		IsAI:      isAI,
		Connected: true,
	}
	if len(r.Players) == 0 {
		p.IsHost = true
		r.HostID = id
	}
	r.Players = append(r.Players, p)
	r.touch()

	r.log.WithFields(logrus.Fields{"player": id, "name": name, "ai": isAI}).Info("player joined")
	r.emit(Event{Type: EventPlayerJoined, Player: publicInfo(p)})
	r.broadcastLobby()
	return nil
}

// AddAIPlayer seats an AI opponent. Host only.
func (r *Room) AddAIPlayer(requesterID uuid.UUID, name, avatar string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.HostID != requesterID {
		return ErrNotHost
	}
	return r.addPlayer(uuid.New(), name, avatar, true)
}

// KickPlayer removes a seat on the host's request. The host cannot kick
// themselves; leaving covers that.
func (r *Room) KickPlayer(requesterID, targetID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.HostID != requesterID {
		return ErrNotHost
	}
	if requesterID == targetID {
		return ErrSeatNotFound
	}
	if r.playerByID(targetID) == nil {
		return ErrSeatNotFound
	}
	r.removePlayer(targetID, true, true)
	return nil
}

// RemovePlayer handles a participant leaving. force distinguishes an
// explicit leave (seat is vacated) from a connection drop (seat is kept
// for rejoin while a game is running).
func (r *Room) RemovePlayer(id uuid.UUID, force bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.removePlayer(id, force, false)
}

func (r *Room) removePlayer(id uuid.UUID, force, kicked bool) {
	idx := r.indexOf(id)
	if idx < 0 || r.closed {
		return
	}
	p := r.Players[idx]
	r.touch()

	// A dropped connection mid-game keeps the seat so the player can
	// rejoin; the turn timeout ladder deals with their turns meanwhile.
	if !force && r.Status != StatusWaiting && !p.IsAI {
		if !p.Connected {
			return
		}
		p.Connected = false
		r.log.WithField("player", id).Info("player disconnected, seat held")
		r.broadcastState()
		if r.closeIfUnplayable() {
			return
		}
		if p.IsHost {
			r.scheduleHostGrace()
		}
		return
	}

	wasHost := p.IsHost
	wasTurn := r.Status == StatusPlaying && idx == r.CurrentTurnIndex

	// Held cards go back into the deck so they stay in circulation.
	if len(p.Hand) > 0 {
		r.Deck = append(r.Deck, p.Hand...)
		engine.Shuffle(r.Deck)
		p.Hand = nil
	}
	if r.stick != nil && r.stick.PlayerID == id {
		r.stick = nil
		r.timers.cancel(timerStick)
	}

	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)
	if idx < r.CurrentTurnIndex {
		r.CurrentTurnIndex--
	}
	if r.CurrentTurnIndex >= len(r.Players) {
		r.CurrentTurnIndex = 0
	}
	if wasHost {
		r.reassignHost()
	}

	evType := EventPlayerLeft
	if kicked {
		evType = EventPlayerKicked
	}
	r.log.WithFields(logrus.Fields{"player": id, "kicked": kicked}).Info("player removed")
	r.emit(Event{Type: evType, Player: publicInfo(p)})

	if r.closeIfUnplayable() {
		return
	}
	if r.Status == StatusPlaying {
		r.broadcastState()
		if wasTurn {
			r.startTurn()
		}
	} else {
		r.broadcastLobby()
	}
}

// TryRejoinPlayer rebinds a held seat to a fresh participant identity. The
// seat is matched by display name among disconnected human seats.
func (r *Room) TryRejoinPlayer(name, avatar string, newID uuid.UUID) (*models.Player, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return nil, ErrRoomClosed
	}
	for _, p := range r.Players {
		if p.IsAI || p.Connected || p.Name != name {
			continue
		}
		oldID := p.ID
		p.ID = newID
		p.Connected = true
		p.ConsecutiveTimeouts = 0
		if avatar != "" {
			p.Avatar = avatar
		}
		if r.HostID == oldID {
			r.HostID = newID
			r.timers.cancel(timerHostGrace)
		}
		r.touch()
		r.log.WithFields(logrus.Fields{"player": newID, "name": name}).Info("player rejoined")
		r.emit(Event{Type: EventPlayerJoined, Player: publicInfo(p)})
		r.broadcastState()
		return p, nil
	}
	return nil, ErrSeatNotFound
}

// HandleDisconnect is the transport's notification that a participant's
// connection went away. In a waiting room the seat is vacated outright.
func (r *Room) HandleDisconnect(id uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.Status == StatusWaiting {
		r.removePlayer(id, true, false)
		return
	}
	r.removePlayer(id, false, false)
}

// StartGame deals the first round. Host only.
func (r *Room) StartGame(requesterID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	if r.HostID != requesterID {
		return ErrNotHost
	}
	if r.Status != StatusWaiting {
		return ErrGameInProgress
	}
	if len(r.Players) < MinPlayers {
		return ErrNotEnoughPlayers
	}

	for _, p := range r.Players {
		p.Score = 0
		p.Eliminated = false
		p.ConsecutiveTimeouts = 0
	}
	r.RoundNumber = 1
	r.lastRoundWinner = uuid.Nil
	r.touch()
	r.log.WithField("players", len(r.Players)).Info("game started")
	r.dealRound(randSeat(len(r.Players)))
	return nil
}

// dealRound shuffles a fresh deck, deals hands, flips the first discard and
// opens play at startIdx. Assumes the room lock is held.
func (r *Room) dealRound(startIdx int) {
	r.Deck = engine.NewShuffledDeck(SubDecks)
	for _, p := range r.Players {
		hand := make([]*models.Card, StartingHandSize)
		copy(hand, r.Deck[:StartingHandSize])
		p.Hand = hand
		r.Deck = r.Deck[StartingHandSize:]
	}
	first := r.Deck[0]
	r.Deck = r.Deck[1:]
	r.DiscardPile = []*models.Card{first}
	r.LastDiscardGroup = []*models.Card{first}

	r.Status = StatusPlaying
	r.CurrentTurnIndex = startIdx
	r.stick = nil
	r.broadcastState()
	r.startTurn()
}

// reassignHost promotes a replacement host, preferring connected humans.
// Assumes the room lock is held.
func (r *Room) reassignHost() {
	for _, p := range r.Players {
		p.IsHost = false
	}
	r.HostID = uuid.Nil

	var pick *models.Player
	for _, p := range r.Players {
		if !p.IsAI && p.Connected {
			pick = p
			break
		}
	}
	if pick == nil {
		for _, p := range r.Players {
			if !p.IsAI {
				pick = p
				break
			}
		}
	}
	if pick == nil && len(r.Players) > 0 {
		pick = r.Players[0]
	}
	if pick != nil {
		pick.IsHost = true
		r.HostID = pick.ID
		r.log.WithField("player", pick.ID).Info("host reassigned")
	}
}

// scheduleHostGrace arms the host-failover timer. If the host has not
// reconnected when it fires, a connected human is promoted.
// Assumes the room lock is held.
func (r *Room) scheduleHostGrace() {
	r.timers.schedule(timerHostGrace, r.HostGrace, r.onHostGrace)
}

func (r *Room) onHostGrace() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return
	}
	host := r.playerByID(r.HostID)
	if host != nil && host.Connected {
		return
	}
	r.reassignHost()
	if r.Status == StatusWaiting {
		r.broadcastLobby()
	} else {
		r.broadcastState()
	}
}

// closeIfUnplayable closes the room when nobody is left to play: the table
// is empty, every human is gone mid-game, or one human would be alone with
// no AI. Returns true when the room closed. Assumes the room lock is held.
func (r *Room) closeIfUnplayable() bool {
	if len(r.Players) == 0 {
		r.closeRoom("room empty")
		return true
	}
	humans, connectedHumans, ais := 0, 0, 0
	for _, p := range r.Players {
		if p.IsAI {
			ais++
			continue
		}
		humans++
		if p.Connected {
			connectedHumans++
		}
	}
	if humans == 0 {
		r.closeRoom("no human players left")
		return true
	}
	if r.Status != StatusWaiting && (connectedHumans == 0 || (connectedHumans == 1 && ais == 0)) {
		r.closeRoom("not enough players to continue")
		return true
	}
	return false
}

// closeRoom shuts the room down exactly once: timers stop, a closure event
// goes out and the registry callback runs. Assumes the room lock is held.
func (r *Room) closeRoom(reason string) {
	if r.closed {
		return
	}
	r.closed = true
	r.timers.cancelAll()
	r.log.WithField("reason", reason).Info("room closed")
	r.emit(Event{Type: EventRoomClosed, Message: reason})
	if r.onClose != nil {
		r.onClose(r.Code)
	}
}

// Shutdown closes the room from outside the package (registry sweep,
// server drain).
func (r *Room) Shutdown(reason string) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.closeRoom(reason)
}

// IdleSince reports the last activity timestamp for the registry sweep.
func (r *Room) IdleSince() (time.Time, bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.LastActivity, len(r.Players) == 0
}

// Chat relays a chat line from a seated participant. Lines from strangers
// are dropped.
func (r *Room) Chat(playerID uuid.UUID, text string) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	p := r.playerByID(playerID)
	if p == nil || r.closed || text == "" {
		return
	}
	r.touch()
	r.emit(Event{Type: EventChatMessage, Chat: &ChatInfo{
		PlayerID: p.ID,
		Name:     p.Name,
		Text:     text,
		SentAt:   time.Now().UnixMilli(),
	}})
}

func (r *Room) playerByID(id uuid.UUID) *models.Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) indexOf(id uuid.UUID) int {
	for i, p := range r.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func publicInfo(p *models.Player) *PlayerInfo {
	return &PlayerInfo{ID: p.ID, Name: p.Name, Avatar: p.Avatar, IsAI: p.IsAI, IsHost: p.IsHost}
}

// randSeat picks the opening seat for a fresh game.
func randSeat(n int) int {
	return rand.New(rand.NewSource(time.Now().UnixNano())).Intn(n)
}
