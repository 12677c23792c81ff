package game

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"echofall/internal/models"
)

// Validation failures surfaced to clients as action_denied payloads.
var (
	ErrRoomFull              = errors.New("room is full")
	ErrNameTaken             = errors.New("display name already in use")
	ErrWrongPassword         = errors.New("incorrect room password")
	ErrGameStarted           = errors.New("game already in progress")
	ErrGameNotStarted        = errors.New("game has not started")
	ErrNotYourTurn           = errors.New("not your turn")
	ErrNotInRoom             = errors.New("you are not in this room")
	ErrNotAlive              = errors.New("you have fallen")
	ErrSilenced              = errors.New("the room is silenced")
	ErrLocked                = errors.New("you are locked out this turn")
	ErrCardNotHeld           = errors.New("card is not in your hand")
	ErrTargetRequired        = errors.New("this card needs a target")
	ErrInvalidTarget         = errors.New("invalid target")
	ErrInsufficientResonance = errors.New("not enough resonance")
	ErrHandFull              = errors.New("your hand is full")
	ErrNoCardsLeft           = errors.New("no cards left to draw")
	ErrPotionUsed            = errors.New("potion already used this turn")
	ErrNoPotionCharges       = errors.New("no potion charges left")
)

// Room is one match instance. All state is guarded by Mu; the transport
// layer injects the broadcast callbacks so the engine never touches a
// socket directly.
type Room struct {
	Code         string
	passwordHash string
	Config       RoomConfig

	Players   map[string]*models.Player
	Order     []string
	TurnIndex int

	Deck    []*models.Card
	Discard []*models.Card

	// Table is the append-only play history shown to all players,
	// distinct from the discard pile.
	Table []models.PlayedCard

	Phase Phase

	Ready           map[string]bool
	countdownGen    int
	countdownEndsAt time.Time

	// SilencedBy holds the silencer's player ID while a silence is
	// active; it clears when rotation returns to them.
	SilencedBy string

	actionIndex int

	Mu sync.Mutex

	BroadcastFn         func(ev Event)
	BroadcastToPlayerFn func(playerID string, ev Event)

	// OnEmpty is invoked (outside gameplay) when the last seat empties so
	// the directory can drop the room.
	OnEmpty func(code string)

	// ActionLogFn receives one telemetry record per gameplay action.
	ActionLogFn func(code string, seq int, playerID, action string, details map[string]interface{})

	// RecordResultFn persists a finished match, if a database is wired.
	RecordResultFn func(code, winnerID string, turns int)

	rng *rand.Rand
	log *logrus.Logger
}

// NewRoom creates an open room with a freshly shuffled deck.
func NewRoom(code, passwordHash string, cfg RoomConfig, logger *logrus.Logger) *Room {
	if logger == nil {
		logger = logrus.New()
	}
	r := &Room{
		Code:         code,
		passwordHash: passwordHash,
		Config:       cfg,
		Players:      make(map[string]*models.Player),
		Ready:        make(map[string]bool),
		Phase:        PhasePreGame,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		log:          logger,
	}
	r.Deck = BuildDeck()
	r.shuffleDeck(r.Deck)
	return r
}

// Seat adds a new player to a pre-game room and deals the opening hand.
// Assumes the room lock is held.
func (r *Room) Seat(id, name string) (*models.Player, error) {
	if r.Phase != PhasePreGame && r.Phase != PhaseCountdown {
		return nil, ErrGameStarted
	}
	if len(r.Players) >= r.Config.MaxPlayers {
		return nil, ErrRoomFull
	}
	for _, p := range r.Players {
		if p.Name == name {
			return nil, ErrNameTaken
		}
	}
	p := &models.Player{
		ID:            id,
		Name:          name,
		Resonance:     r.Config.StartingResonance,
		Stability:     r.Config.StartingStability,
		Alive:         true,
		PotionCharges: 1,
		Effects:       models.NewStatusSet(),
	}
	r.Players[id] = p
	r.Order = append(r.Order, id)
	r.Draw(p, r.Config.OpeningHand)
	// A latecomer has not readied, so an armed start must disarm.
	r.cancelCountdown(name + " joined during the countdown")
	r.logAction(id, "join", map[string]interface{}{"name": name})
	return p, nil
}

// currentPlayer returns the player whose turn it is, or nil outside a
// running game.
func (r *Room) currentPlayer() *models.Player {
	if r.Phase != PhaseInProgress || len(r.Order) == 0 {
		return nil
	}
	return r.Players[r.Order[r.TurnIndex]]
}

// turnGate rejects actions that require it to be the caller's live turn
// in a running game.
func (r *Room) turnGate(playerID string) (*models.Player, error) {
	if r.Phase != PhaseInProgress {
		return nil, ErrGameNotStarted
	}
	p, ok := r.Players[playerID]
	if !ok {
		return nil, ErrNotInRoom
	}
	if !p.Alive {
		return nil, ErrNotAlive
	}
	if cur := r.currentPlayer(); cur == nil || cur.ID != playerID {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

// PlayCard validates and resolves one card play. Validation is strictly
// before any mutation: a rejected play changes nothing. Once the cost is
// spent and the card leaves the hand, the play stands even if the effect
// itself faults.
func (r *Room) PlayCard(playerID, cardID, targetID string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, err := r.turnGate(playerID)
	if err != nil {
		return err
	}
	if p.Effects.Has(models.StatusLocked) {
		return ErrLocked
	}
	if r.SilencedBy != "" && r.SilencedBy != playerID {
		return ErrSilenced
	}

	var card *models.Card
	for _, c := range p.Hand {
		if c.ID == cardID {
			card = c
			break
		}
	}
	if card == nil {
		return ErrCardNotHeld
	}
	def := DefByID(card.DefID)
	if def == nil {
		return ErrCardNotHeld
	}

	cost := card.Cost
	if p.Effects.Has(models.StatusEchoCatalyst) {
		cost = 0
	}
	if p.Resonance < cost {
		return ErrInsufficientResonance
	}

	var target *models.Player
	if def.NeedsTarget {
		if targetID == "" {
			return ErrTargetRequired
		}
		if targetID == playerID {
			return ErrInvalidTarget
		}
		t, ok := r.Players[targetID]
		if !ok || !t.Alive || t.Disconnected {
			return ErrInvalidTarget
		}
		target = t
	}

	// Commit point.
	if cost != card.Cost {
		p.Effects.Consume(models.StatusEchoCatalyst)
	}
	p.Resonance -= cost
	p.RemoveCard(card.ID)

	if target != nil {
		r.fireEvent(Event{Type: EventPlayerTargeted, Payload: map[string]interface{}{
			"by":         p.ID,
			"byName":     p.Name,
			"targetId":   target.ID,
			"targetName": target.Name,
			"cardId":     card.ID,
			"cardName":   card.Name,
		}})
	}

	r.dispatchEffect(card, def, p, target)

	r.Table = append(r.Table, models.PlayedCard{Card: card, OwnerID: p.ID, OwnerName: p.Name})
	r.Discard = append(r.Discard, card)

	r.logAction(playerID, "play_card", map[string]interface{}{
		"card":   card.Name,
		"defId":  card.DefID,
		"target": targetID,
	})

	r.checkForWinner()
	r.rotatePastFallenActor()
	r.broadcastUpdate()
	return nil
}

// DrawCardAction is the explicit paid draw. Both the hand cap and an
// exhausted deck reject the action before the cost is spent.
func (r *Room) DrawCardAction(playerID string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, err := r.turnGate(playerID)
	if err != nil {
		return err
	}
	if len(p.Hand) >= r.Config.MaxHandSize {
		return ErrHandFull
	}
	if len(r.Deck) == 0 && len(r.Discard) == 0 {
		return ErrNoCardsLeft
	}
	if p.Resonance < r.Config.DrawCost {
		return ErrInsufficientResonance
	}

	p.Resonance -= r.Config.DrawCost
	r.Draw(p, 1)
	r.logAction(playerID, "draw_card", nil)
	r.broadcastUpdate()
	return nil
}

// DrinkPotion spends one potion charge for a small resonance gain, once
// per turn.
func (r *Room) DrinkPotion(playerID string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, err := r.turnGate(playerID)
	if err != nil {
		return err
	}
	if p.PotionUsed {
		return ErrPotionUsed
	}
	if p.PotionCharges <= 0 {
		return ErrNoPotionCharges
	}

	p.PotionUsed = true
	p.PotionCharges--
	p.DrinkCount++
	ApplyResonance(p, 1)
	r.fireEvent(infoEvent(p.Name + " drinks a potion."))
	r.logAction(playerID, "drink_potion", map[string]interface{}{"drinkCount": p.DrinkCount})
	r.rotatePastFallenActor()
	r.broadcastUpdate()
	return nil
}

// EndTurn passes the turn voluntarily.
func (r *Room) EndTurn(playerID string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if _, err := r.turnGate(playerID); err != nil {
		return err
	}
	r.logAction(playerID, "end_turn", nil)
	r.advanceTurn()
	r.broadcastUpdate()
	return nil
}

// HandleDisconnect reacts to a dropped connection. Before the game a
// leaver simply vacates the seat; during the game the seat is held for
// the reconnect grace window.
func (r *Room) HandleDisconnect(playerID string) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, ok := r.Players[playerID]
	if !ok {
		return
	}

	if r.Phase == PhasePreGame || r.Phase == PhaseCountdown {
		r.removeSeat(playerID)
		r.cancelCountdown("a player left")
		if len(r.Players) == 0 {
			r.notifyEmpty()
			return
		}
		r.fireEvent(infoEvent(p.Name + " left the room."))
		r.broadcastReadyState()
		r.broadcastUpdate()
		return
	}

	if r.Phase == PhaseConcluded {
		r.removeSeat(playerID)
		if len(r.Players) == 0 {
			r.notifyEmpty()
		}
		return
	}

	if r.Phase != PhaseInProgress || p.Disconnected {
		return
	}

	at := time.Now()
	p.Disconnected = true
	p.DisconnectedAt = at
	r.fireEvent(infoEvent(p.Name + " disconnected."))
	r.logAction(playerID, "disconnect", nil)

	if cur := r.currentPlayer(); cur != nil && cur.ID == playerID {
		r.advanceTurn()
	}

	// The timestamp guard makes a stale timer a no-op after reconnect
	// and re-disconnect.
	time.AfterFunc(r.Config.ReconnectGrace, func() {
		r.graceExpired(playerID, at)
	})

	r.broadcastUpdate()
}

// graceExpired fires when the reconnect window closes without a return.
// The hand is flushed to the discard pile so its cards stay in
// circulation; the seat itself survives for a late reconnect.
func (r *Room) graceExpired(playerID string, at time.Time) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, ok := r.Players[playerID]
	if !ok || !p.Disconnected || !p.DisconnectedAt.Equal(at) {
		return
	}

	if len(p.Hand) > 0 {
		r.Discard = append(r.Discard, p.Hand...)
		p.Hand = nil
	}
	r.fireEvent(infoEvent(p.Name + "'s cards return to the discard pile."))
	r.logAction(playerID, "grace_expired", nil)

	allGone := true
	for _, q := range r.Players {
		if !q.Disconnected {
			allGone = false
			break
		}
	}
	if allGone {
		r.notifyEmpty()
		return
	}
	r.broadcastUpdate()
}

// Reconnect reattaches a dropped player by display name under a new
// connection ID. Within the grace window the hand is intact; after it
// the player returns with a fresh opening hand.
func (r *Room) Reconnect(name, newID string) (*models.Player, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	var p *models.Player
	for _, q := range r.Players {
		if q.Name == name && q.Disconnected {
			p = q
			break
		}
	}
	if p == nil {
		return nil, ErrNotInRoom
	}

	oldID := p.ID
	delete(r.Players, oldID)
	p.ID = newID
	p.Disconnected = false
	p.DisconnectedAt = time.Time{}
	r.Players[newID] = p
	for i, id := range r.Order {
		if id == oldID {
			r.Order[i] = newID
			break
		}
	}

	if r.Phase == PhaseInProgress && len(p.Hand) == 0 && p.Alive {
		r.Draw(p, r.Config.OpeningHand)
	}

	r.fireEvent(infoEvent(p.Name + " reconnected."))
	r.logAction(newID, "reconnect", map[string]interface{}{"previousId": oldID})
	r.broadcastUpdate()
	return p, nil
}

// removeSeat drops a player entirely. Pre-game only; in-game seats are
// held through the grace window instead. Assumes the room lock is held.
func (r *Room) removeSeat(playerID string) {
	delete(r.Players, playerID)
	delete(r.Ready, playerID)
	for i, id := range r.Order {
		if id == playerID {
			r.Order = append(r.Order[:i], r.Order[i+1:]...)
			break
		}
	}
}

// CheckPassword verifies a join attempt against the room's stored hash
// using the provided comparer, so the engine stays free of crypto
// imports.
func (r *Room) CheckPassword(password string, compare func(password, hash string) (bool, error)) error {
	if r.passwordHash == "" {
		return nil
	}
	ok, err := compare(password, r.passwordHash)
	if err != nil || !ok {
		return ErrWrongPassword
	}
	return nil
}

func (r *Room) notifyEmpty() {
	if r.OnEmpty != nil {
		code := r.Code
		fn := r.OnEmpty
		go fn(code)
	}
}

// fireEvent broadcasts to every connection in the room. Nil-safe so the
// engine is testable without a transport.
func (r *Room) fireEvent(ev Event) {
	if r.BroadcastFn != nil {
		r.BroadcastFn(ev)
	}
}

func (r *Room) fireEventToPlayer(playerID string, ev Event) {
	if r.BroadcastToPlayerFn != nil {
		r.BroadcastToPlayerFn(playerID, ev)
	}
}

// logAction records one gameplay action for telemetry. The sink is
// expected to be non-blocking.
func (r *Room) logAction(playerID, action string, details map[string]interface{}) {
	r.actionIndex++
	if r.ActionLogFn != nil {
		r.ActionLogFn(r.Code, r.actionIndex, playerID, action, details)
	}
}

// SyncAll pushes a fresh snapshot to every connected player. Used by the
// transport after a join or reconnect attaches its callbacks.
func (r *Room) SyncAll() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.broadcastUpdate()
}

// broadcastUpdate pushes a per-player snapshot: each player sees their
// own full hand and effects but only redacted counts for everyone else.
// Assumes the room lock is held.
func (r *Room) broadcastUpdate() {
	for _, id := range r.Order {
		viewer := r.Players[id]
		if viewer == nil || viewer.Disconnected {
			continue
		}
		r.fireEventToPlayer(id, Event{Type: EventUpdate, Payload: r.snapshotFor(viewer)})
	}
}

func (r *Room) snapshotFor(viewer *models.Player) map[string]interface{} {
	players := make([]map[string]interface{}, 0, len(r.Order))
	for _, id := range r.Order {
		p := r.Players[id]
		if p == nil {
			continue
		}
		entry := map[string]interface{}{
			"id":           p.ID,
			"name":         p.Name,
			"handCount":    p.HandSize(),
			"resonance":    p.Resonance,
			"stability":    p.Stability,
			"alive":        p.Alive,
			"disconnected": p.Disconnected,
			"drinkCount":   p.DrinkCount,
		}
		if p.ID == viewer.ID {
			entry["hand"] = p.Hand
			entry["effects"] = p.Effects.IDs()
			entry["potionUsed"] = p.PotionUsed
			entry["potionCharges"] = p.PotionCharges
			entry["nextDiscard"] = p.NextDiscard
		}
		players = append(players, entry)
	}

	payload := map[string]interface{}{
		"roomCode":    r.Code,
		"phase":       r.Phase,
		"players":     players,
		"deckSize":    len(r.Deck),
		"discardSize": len(r.Discard),
		"table":       r.Table,
	}
	if cur := r.currentPlayer(); cur != nil {
		payload["turnId"] = cur.ID
	}
	if r.SilencedBy != "" {
		payload["silencedBy"] = r.SilencedBy
	}
	if r.Phase == PhasePreGame || r.Phase == PhaseCountdown {
		payload["ready"] = r.Ready
	}
	if r.Phase == PhaseCountdown {
		payload["countdownEndsAt"] = r.countdownEndsAt.UnixMilli()
	}
	return payload
}
