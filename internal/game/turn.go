package game

import (
	"fmt"

	"echofall/internal/models"
)

// Phase tracks where a room is in its lifecycle.
type Phase string

const (
	PhasePreGame    Phase = "pregame"
	PhaseCountdown  Phase = "countdown"
	PhaseInProgress Phase = "in_progress"
	PhaseConcluded  Phase = "concluded"
)

// advanceTurn ends the current player's turn and hands play to the next
// eligible seat. The sequence is fixed:
//
//   - end-of-turn upkeep for the departing player (shard totem tick,
//     turn-scoped flag expiry);
//   - extra_turn keeps the turn without rotating;
//   - otherwise rotation skips fallen and disconnected seats, consuming
//     skip_turn flags along the way;
//   - start-of-turn upkeep for the arriving player (potion gate reset,
//     deferred discards, silence release, free draw).
//
// Assumes the room lock is held.
func (r *Room) advanceTurn() {
	if r.Phase != PhaseInProgress || len(r.Order) == 0 {
		return
	}

	cur := r.currentPlayer()
	if cur != nil {
		r.endOfTurnUpkeep(cur)
		if cur.Alive && cur.Effects.Consume(models.StatusExtraTurn) {
			r.fireEvent(infoEvent(cur.Name + " takes an extra turn!"))
			r.startOfTurn(cur)
			return
		}
	}

	// Bounded by the seat count; if nobody is eligible the game has
	// already concluded or stalled and we leave the index alone.
	for attempts := 0; attempts < len(r.Order); attempts++ {
		r.TurnIndex = (r.TurnIndex + 1) % len(r.Order)
		next := r.Players[r.Order[r.TurnIndex]]
		if next == nil || !next.Alive || next.Disconnected {
			continue
		}
		if next.Effects.Consume(models.StatusSkipTurn) {
			r.fireEvent(infoEvent(next.Name + " is locked out of time and skips a turn."))
			continue
		}
		r.startOfTurn(next)
		return
	}
}

// endOfTurnUpkeep runs when a player's turn concludes: shard totem heals
// and decays, and the flags scoped to their own turn expire.
func (r *Room) endOfTurnUpkeep(p *models.Player) {
	if totem, ok := p.Effects[models.StatusShardTotem]; ok {
		ApplyStability(p, 1, r.Config.StabilityFloor)
		totem.Remaining--
		if totem.Remaining <= 0 {
			p.Effects.Clear(models.StatusShardTotem)
			r.fireEvent(infoEvent(p.Name + "'s shard totem crumbles."))
		}
	}
	// Locked covers exactly the turn that just ran.
	p.Effects.Clear(models.StatusLocked)
}

// startOfTurn runs the arriving player's upkeep and announces the turn.
func (r *Room) startOfTurn(p *models.Player) {
	p.PotionUsed = false
	if p.PotionCharges < 1 {
		p.PotionCharges = 1
	}

	// Defenses played on the previous own turn lapse once the rotation
	// comes back around unspent.
	p.Effects.Clear(models.StatusPhaseCloak)
	p.Effects.Clear(models.StatusReversalNext)
	p.Effects.Clear(models.StatusReflectResonanceNext)

	for p.NextDiscard > 0 && len(p.Hand) > 0 {
		last := p.Hand[len(p.Hand)-1]
		p.Hand = p.Hand[:len(p.Hand)-1]
		r.Discard = append(r.Discard, last)
		r.fireEvent(infoEvent(p.Name + " discards " + last.Name + " to a sprung trap."))
		p.NextDiscard--
	}
	p.NextDiscard = 0

	// Silence lasts until rotation returns to the silencer.
	if r.SilencedBy == p.ID {
		r.SilencedBy = ""
		r.fireEvent(infoEvent("The silence lifts."))
	}

	r.Draw(p, 1)

	r.fireEvent(Event{Type: EventTurnChanged, Payload: map[string]interface{}{
		"currentPlayerId": p.ID,
		"playerName":      p.Name,
	}})
}

// rotatePastFallenActor hands the turn off when the acting player fell
// to their own play, so the turn pointer never rests on a dead seat.
// Assumes the room lock is held.
func (r *Room) rotatePastFallenActor() {
	if r.Phase != PhaseInProgress {
		return
	}
	if cur := r.currentPlayer(); cur != nil && !cur.Alive {
		r.advanceTurn()
	}
}

// checkForWinner concludes the game once at most one living player
// remains. Assumes the room lock is held.
func (r *Room) checkForWinner() {
	if r.Phase != PhaseInProgress {
		return
	}

	var alive []*models.Player
	for _, id := range r.Order {
		if p := r.Players[id]; p != nil && p.Alive {
			alive = append(alive, p)
		}
	}
	if len(alive) > 1 {
		return
	}

	r.Phase = PhaseConcluded

	var winner *models.Player
	if len(alive) == 1 {
		winner = alive[0]
	}

	for _, id := range r.Order {
		p := r.Players[id]
		if p == nil || p.Disconnected {
			continue
		}
		if winner != nil && p.ID == winner.ID {
			r.fireEventToPlayer(id, Event{Type: EventYouWin})
		} else {
			r.fireEventToPlayer(id, Event{Type: EventYouLose})
		}
	}

	winnerID := ""
	winnerName := "nobody"
	if winner != nil {
		winnerID = winner.ID
		winnerName = winner.Name
	}
	r.fireEvent(infoEvent(fmt.Sprintf("Game over. %s wins!", winnerName)))
	r.logAction(winnerID, "game_over", map[string]interface{}{"actions": r.actionIndex})

	if r.RecordResultFn != nil {
		r.RecordResultFn(r.Code, winnerID, r.actionIndex)
	}
}
