// internal/room/moves.go
package room

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yanivhq/yaniv-service/internal/engine"
	"github.com/yanivhq/yaniv-service/internal/models"
)

// DrawSource says where a mover draws their replacement card from: blind
// off the deck, or one of the cards exposed by the previous throw.
type DrawSource struct {
	FromPile  bool `json:"fromPile"`
	PileIndex int  `json:"pileIndex"`
}

// ExecuteMove plays a throw-and-draw for the current player.
func (r *Room) ExecuteMove(playerID uuid.UUID, cardIDs []uuid.UUID, src DrawSource) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	if r.Status != StatusPlaying {
		return ErrNotPlaying
	}
	if r.stick != nil {
		return ErrStickPending
	}
	p := r.currentPlayer()
	if p == nil || p.ID != playerID {
		return ErrNotYourTurn
	}
	thrown, ok := engine.ValidateThrow(p.Hand, cardIDs)
	if !ok {
		return ErrIllegalThrow
	}
	r.touch()
	p.ConsecutiveTimeouts = 0
	return r.doMove(p, thrown, src, false)
}

// doMove applies a validated throw and draw. The draw resolves against the
// discard group exposed before this throw. Assumes the room lock is held.
func (r *Room) doMove(p *models.Player, thrown []*models.Card, src DrawSource, auto bool) error {
	prevGroup := r.LastDiscardGroup

	var drawn *models.Card
	var pileCard *models.Card
	if src.FromPile {
		if src.PileIndex < 0 || src.PileIndex >= len(prevGroup) {
			return ErrInvalidDraw
		}
		pileCard = prevGroup[src.PileIndex]
		r.removeFromDiscard(pileCard)
		drawn = pileCard
	} else {
		drawn = r.drawFromDeck(prevGroup)
		if drawn == nil {
			return ErrDeckExhausted
		}
	}

	p.Hand = engine.RemoveCards(p.Hand, thrown)
	r.DiscardPile = append(r.DiscardPile, thrown...)
	r.LastDiscardGroup = thrown
	p.Hand = append(p.Hand, drawn)

	evType := EventPlayerMove
	if p.IsAI {
		evType = EventAIMove
	}
	r.emit(Event{Type: evType, Move: &MoveInfo{
		PlayerID:   p.ID,
		Thrown:     thrown,
		DrawSource: src.label(),
		PileCard:   pileCard,
		Auto:       auto,
	}})
	r.broadcastState()

	// A blind draw matching the rank just thrown opens the sticking window.
	// Auto-played turns never stick.
	if !src.FromPile && !auto && r.Settings.AllowSticking {
		if rank, ok := engine.GroupRank(thrown); ok && drawn.Rank == rank {
			r.openStick(p, drawn)
			return nil
		}
	}
	r.advanceTurn()
	return nil
}

func (s DrawSource) label() string {
	if s.FromPile {
		return "pile"
	}
	return "deck"
}

// removeFromDiscard drops one card from the discard pile by identity.
// Assumes the room lock is held.
func (r *Room) removeFromDiscard(c *models.Card) {
	for i, dc := range r.DiscardPile {
		if dc.ID == c.ID {
			r.DiscardPile = append(r.DiscardPile[:i], r.DiscardPile[i+1:]...)
			return
		}
	}
}

// drawFromDeck pops the top deck card, first refilling the deck from the
// discard pile when empty. Cards in keep (the group the mover may still
// draw from) stay exposed. Assumes the room lock is held.
func (r *Room) drawFromDeck(keep []*models.Card) *models.Card {
	if len(r.Deck) == 0 {
		r.reshuffleDiscard(keep)
	}
	if len(r.Deck) == 0 {
		return nil
	}
	c := r.Deck[0]
	r.Deck = r.Deck[1:]
	return c
}

func (r *Room) reshuffleDiscard(keep []*models.Card) {
	keepIDs := make(map[uuid.UUID]bool, len(keep))
	for _, c := range keep {
		keepIDs[c.ID] = true
	}
	kept := r.DiscardPile[:0]
	for _, c := range r.DiscardPile {
		if keepIDs[c.ID] {
			kept = append(kept, c)
			continue
		}
		r.Deck = append(r.Deck, c)
	}
	r.DiscardPile = kept
	engine.Shuffle(r.Deck)
	r.log.WithField("cards", len(r.Deck)).Info("discard pile reshuffled into deck")
}

// CallYaniv resolves the round on the current player's declaration.
func (r *Room) CallYaniv(playerID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	if r.Status != StatusPlaying {
		return ErrNotPlaying
	}
	if r.stick != nil {
		return ErrStickPending
	}
	p := r.currentPlayer()
	if p == nil || p.ID != playerID {
		return ErrNotYourTurn
	}
	if !engine.CanCallYaniv(p.Hand, r.YanivThreshold) {
		return ErrYanivNotAllowed
	}
	r.touch()
	p.ConsecutiveTimeouts = 0
	r.endRound(r.CurrentTurnIndex)
	return nil
}

// openStick pauses the turn for the mover who blind-drew the rank they just
// threw. AI seats stick immediately; humans get a short window.
// Assumes the room lock is held.
func (r *Room) openStick(p *models.Player, drawn *models.Card) {
	r.stickID++
	r.stick = &stickState{PlayerID: p.ID, CardID: drawn.ID}
	r.timers.cancel(timerTurn)

	expires := time.Now().Add(r.StickWindow).UnixMilli()
	// The drawn card stays private: only the window's owner learns which
	// card they may stick.
	for _, viewer := range r.Players {
		info := &StickInfo{PlayerID: p.ID, ExpiresAt: expires}
		if viewer.ID == p.ID {
			info.Card = drawn
		}
		r.emitTo(viewer.ID, Event{Type: EventStickingAvailable, Stick: info})
	}

	if p.IsAI {
		r.performStick(p)
		return
	}
	id := r.stickID
	r.timers.schedule(timerStick, r.StickWindow, func() { r.onStickExpiry(id) })
}

func (r *Room) onStickExpiry(id int) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed || r.stick == nil || r.stickID != id {
		return
	}
	r.emit(Event{Type: EventStickingExpired, Stick: &StickInfo{PlayerID: r.stick.PlayerID}})
	r.stick = nil
	r.advanceTurn()
}

// ExecuteStick discards the stickable card without drawing a replacement.
func (r *Room) ExecuteStick(playerID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	if r.stick == nil || r.stick.PlayerID != playerID {
		return ErrNoStickWindow
	}
	p := r.playerByID(playerID)
	if p == nil {
		return ErrNoStickWindow
	}
	r.touch()
	r.performStick(p)
	return nil
}

// performStick applies the stick for the open window. Assumes the room
// lock is held and the window belongs to p.
func (r *Room) performStick(p *models.Player) {
	card, ok := engine.FindCards(p.Hand, []uuid.UUID{r.stick.CardID})
	if !ok {
		// The card must still be in hand; the window opened this turn.
		r.stick = nil
		r.timers.cancel(timerStick)
		r.advanceTurn()
		return
	}
	c := card[0]
	p.Hand = engine.RemoveCards(p.Hand, card)
	r.DiscardPile = append(r.DiscardPile, c)
	r.LastDiscardGroup = []*models.Card{c}
	r.stick = nil
	r.timers.cancel(timerStick)

	r.emit(Event{Type: EventStickPerformed, Stick: &StickInfo{PlayerID: p.ID, Card: c}})
	r.broadcastState()
	r.advanceTurn()
}

// SkipStick declines the open window and advances the turn immediately.
func (r *Room) SkipStick(playerID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	if r.stick == nil || r.stick.PlayerID != playerID {
		return ErrNoStickWindow
	}
	r.touch()
	r.timers.cancel(timerStick)
	r.emit(Event{Type: EventStickingExpired, Stick: &StickInfo{PlayerID: r.stick.PlayerID}})
	r.stick = nil
	r.advanceTurn()
	return nil
}

// currentPlayer returns the seat whose turn it is. Assumes the room lock
// is held.
func (r *Room) currentPlayer() *models.Player {
	if r.CurrentTurnIndex < 0 || r.CurrentTurnIndex >= len(r.Players) {
		return nil
	}
	return r.Players[r.CurrentTurnIndex]
}

// startTurn arms the turn timer for the seat at CurrentTurnIndex and, for
// AI seats, schedules the automatic move. Assumes the room lock is held.
func (r *Room) startTurn() {
	if r.Status != StatusPlaying || len(r.Players) == 0 {
		return
	}
	r.turnID++
	r.TurnStartTime = time.Now()
	p := r.currentPlayer()

	r.emit(Event{Type: EventTurnChanged, Turn: &TurnInfo{
		PlayerID: p.ID,
		Round:    r.RoundNumber,
		EndsAt:   r.TurnStartTime.Add(r.TurnDuration).UnixMilli(),
	}})

	id := r.turnID
	r.timers.schedule(timerTurn, r.TurnDuration, func() { r.onTurnTimeout(id) })
	if p.IsAI {
		r.timers.schedule(timerAI, aiMoveDelay, func() { r.onAITurn(id) })
	}
}

// advanceTurn moves play to the next seat. Assumes the room lock is held.
func (r *Room) advanceTurn() {
	if r.Status != StatusPlaying || len(r.Players) == 0 {
		return
	}
	r.CurrentTurnIndex = (r.CurrentTurnIndex + 1) % len(r.Players)
	r.startTurn()
}

// onTurnTimeout fires when a turn timer expires. Stale callbacks (the turn
// already moved on) bail on the sequence check.
func (r *Room) onTurnTimeout(id int) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed || r.Status != StatusPlaying || r.turnID != id {
		return
	}
	p := r.currentPlayer()
	if p == nil {
		return
	}
	if p.IsAI {
		// The paced AI move should have landed long ago; move now.
		r.aiTakeTurn(p)
		return
	}

	p.ConsecutiveTimeouts++
	r.log.WithFields(logrus.Fields{"player": p.ID, "strikes": p.ConsecutiveTimeouts}).Info("turn timed out")
	if p.ConsecutiveTimeouts >= MaxConsecutiveTimeouts {
		r.emitTo(p.ID, Event{Type: EventRoomError, Message: "removed from the room for inactivity"})
		r.removePlayer(p.ID, true, true)
		return
	}
	r.autoPlay(p)
}

// autoPlay makes the conservative forced move for a timed-out human: throw
// the single highest-value card and draw blind. The timeout counter is not
// reset; only real moves do that. Assumes the room lock is held.
func (r *Room) autoPlay(p *models.Player) {
	c := engine.HighestCard(p.Hand)
	if c == nil {
		r.advanceTurn()
		return
	}
	if err := r.doMove(p, []*models.Card{c}, DrawSource{}, true); err != nil {
		r.log.WithError(err).Warn("forced move failed")
		r.advanceTurn()
	}
}

// onAITurn drives one AI turn: declare Yaniv when eligible, otherwise throw
// and draw by heuristic.
func (r *Room) onAITurn(id int) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed || r.Status != StatusPlaying || r.turnID != id {
		return
	}
	p := r.currentPlayer()
	if p == nil || !p.IsAI {
		return
	}
	r.aiTakeTurn(p)
}

func (r *Room) aiTakeTurn(p *models.Player) {
	if engine.ShouldCallYaniv(p.Hand, r.YanivThreshold) {
		r.endRound(r.CurrentTurnIndex)
		return
	}
	throw := engine.ChooseThrow(p.Hand)
	if len(throw) == 0 {
		r.advanceTurn()
		return
	}
	idx, fromPile := engine.ChooseDraw(r.LastDiscardGroup)
	if err := r.doMove(p, throw, DrawSource{FromPile: fromPile, PileIndex: idx}, false); err != nil {
		r.log.WithError(err).Warn("ai move failed")
		r.advanceTurn()
	}
}

// endRound resolves a Yaniv declaration by the seat at callerIdx, applies
// scores and eliminations, and schedules the next round or ends the game.
// Assumes the room lock is held.
func (r *Room) endRound(callerIdx int) {
	r.timers.cancel(timerTurn)
	r.timers.cancel(timerAI)
	r.timers.cancel(timerStick)
	r.stick = nil

	hands := make([][]*models.Card, len(r.Players))
	for i, p := range r.Players {
		hands[i] = p.Hand
	}
	out := engine.ResolveRound(hands, callerIdx, r.AssafPenalty)

	call := models.CallYaniv
	if out.Assaf {
		call = models.CallAssaf
	}
	result := &models.RoundResult{
		Round:    r.RoundNumber,
		CallerID: r.Players[callerIdx].ID,
		WinnerID: r.Players[out.WinnerIdx].ID,
		Call:     call,
		Players:  make([]models.PlayerRoundResult, 0, len(r.Players)),
	}
	for i, p := range r.Players {
		p.Score += out.Points[i]
		if p.Score >= r.Settings.ScoreLimit {
			p.Eliminated = true
		}
		result.Players = append(result.Players, models.PlayerRoundResult{
			PlayerID:   p.ID,
			Name:       p.Name,
			Hand:       append([]*models.Card(nil), p.Hand...),
			HandValue:  engine.HandValue(p.Hand),
			Points:     out.Points[i],
			Score:      p.Score,
			Eliminated: p.Eliminated,
		})
	}

	r.Status = StatusRoundEnd
	r.lastRoundWinner = result.WinnerID
	r.log.WithFields(logrus.Fields{
		"round":  r.RoundNumber,
		"caller": result.CallerID,
		"winner": result.WinnerID,
		"call":   call,
	}).Info("round resolved")
	r.emit(Event{Type: EventRoundEnded, Round: result})
	r.broadcastState()

	remaining := 0
	for _, p := range r.Players {
		if !p.Eliminated {
			remaining++
		}
	}
	if remaining <= 1 {
		r.finishGame()
		return
	}
	round := r.RoundNumber
	r.timers.schedule(timerRound, r.RoundDelay, func() { r.onRoundDelay(round) })
}

func (r *Room) onRoundDelay(round int) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed || r.Status != StatusRoundEnd || r.RoundNumber != round {
		return
	}
	r.startNextRound()
}

// startNextRound drops eliminated seats and deals the next round, opening
// play at the previous winner's seat. Assumes the room lock is held.
func (r *Room) startNextRound() {
	kept := r.Players[:0]
	for _, p := range r.Players {
		p.Hand = nil
		if p.Eliminated {
			r.emit(Event{Type: EventPlayerLeft, Player: publicInfo(p)})
			continue
		}
		kept = append(kept, p)
	}
	dropHost := r.playerByID(r.HostID) == nil
	r.Players = kept
	if dropHost {
		r.reassignHost()
	}
	if r.closeIfUnplayable() {
		return
	}

	start := r.indexOf(r.lastRoundWinner)
	if start < 0 {
		start = 0
	}
	r.RoundNumber++
	r.dealRound(start)
}

// finishGame ends the game and returns the room to waiting for a rematch
// with the same roster. Assumes the room lock is held.
func (r *Room) finishGame() {
	winner := r.gameWinner()
	result := &GameResult{Scores: make([]ScoreLine, 0, len(r.Players))}
	if winner != nil {
		result.WinnerID = winner.ID
	}
	for _, p := range r.Players {
		result.Scores = append(result.Scores, ScoreLine{
			PlayerID:   p.ID,
			Name:       p.Name,
			Score:      p.Score,
			Eliminated: p.Eliminated,
		})
	}

	r.timers.cancelAll()
	r.Status = StatusWaiting
	r.RoundNumber = 0
	r.Deck = nil
	r.DiscardPile = nil
	r.LastDiscardGroup = nil
	r.stick = nil
	for _, p := range r.Players {
		p.Hand = nil
		p.Eliminated = false
		p.ConsecutiveTimeouts = 0
	}

	r.log.WithField("winner", result.WinnerID).Info("game over")
	r.emit(Event{Type: EventGameEnded, Result: result})

	// Drop seats whose connection is already gone; in waiting there is
	// nothing to rejoin into.
	for _, p := range append([]*models.Player(nil), r.Players...) {
		if !p.IsAI && !p.Connected {
			r.removePlayer(p.ID, true, false)
		}
	}
	if r.closed {
		return
	}
	host := r.playerByID(r.HostID)
	if host == nil || (!host.IsAI && !host.Connected) {
		r.scheduleHostGrace()
	}
	r.broadcastLobby()
}

// gameWinner is the last surviving seat, or the lowest cumulative score
// when everyone crossed the limit in the same round. Assumes the room lock
// is held.
func (r *Room) gameWinner() *models.Player {
	var survivor *models.Player
	survivors := 0
	for _, p := range r.Players {
		if !p.Eliminated {
			survivor = p
			survivors++
		}
	}
	if survivors == 1 {
		return survivor
	}
	var best *models.Player
	for _, p := range r.Players {
		if best == nil || p.Score < best.Score {
			best = p
		}
	}
	return best
}
