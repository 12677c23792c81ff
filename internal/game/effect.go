package game

import (
	"github.com/google/uuid"

	"echofall/internal/models"
)

// Sel selects which players a delta applies to, resolved against the
// actor/target pair of the invocation.
type Sel int

const (
	SelActor Sel = iota
	SelTarget
	SelOthers   // every seated living player except the actor
	SelEveryone // every seated living player
)

// Delta is one intended state change produced by a card effect. Effects
// build a delta list from a read-only view of the room; a single
// interpreter applies the list, so resource changes always route through
// the resource helpers and their flag-consumption rules.
type Delta interface{ delta() }

// ResonanceDelta adjusts resonance through ApplyResonance.
type ResonanceDelta struct {
	Who    Sel
	Amount int
}

func (ResonanceDelta) delta() {}

// StabilityDelta adjusts stability through ApplyStability.
type StabilityDelta struct {
	Who    Sel
	Amount int
}

func (StabilityDelta) delta() {}

// DrawDelta requests cards from the deck, truncating at the hand cap.
type DrawDelta struct {
	Who   Sel
	Count int
}

func (DrawDelta) delta() {}

// GrantDelta activates a status effect. Turns > 0 grants a decaying
// effect (shard totem).
type GrantDelta struct {
	Who    Sel
	Status models.StatusID
	Turns  int
}

func (GrantDelta) delta() {}

// ForceDiscardDelta discards up to Count cards from the end of the hand.
type ForceDiscardDelta struct {
	Who   Sel
	Count int
}

func (ForceDiscardDelta) delta() {}

// DeferDiscardDelta flags a deferred forced discard, resolved at the
// start of the flagged player's next turn.
type DeferDiscardDelta struct {
	Who Sel
}

func (DeferDiscardDelta) delta() {}

// StealRandomDelta moves one random card from the target's hand to the
// actor's, respecting the actor's hand cap.
type StealRandomDelta struct{}

func (StealRandomDelta) delta() {}

// RecoverDiscardDelta returns the top discard to the actor's hand.
type RecoverDiscardDelta struct{}

func (RecoverDiscardDelta) delta() {}

// CopyLastPlayedDelta clones the most recent non-Event, non-copy table
// entry into the actor's hand as a fresh instance.
type CopyLastPlayedDelta struct{}

func (CopyLastPlayedDelta) delta() {}

// SilenceDelta blocks everyone but the actor from playing cards until
// turn rotation returns to the actor.
type SilenceDelta struct{}

func (SilenceDelta) delta() {}

// EffectBuilder computes a card's intended deltas. Builders may read
// actor/target/room state but must not mutate it; all mutation happens
// in the interpreter.
type EffectBuilder func(actor, target *models.Player, r *Room) []Delta

// selectPlayers resolves a selector to concrete players. Dead seats are
// skipped for the area selectors; a dead explicit target was already
// rejected at validation. Assumes the room lock is held.
func (r *Room) selectPlayers(who Sel, actor, target *models.Player) []*models.Player {
	switch who {
	case SelActor:
		return []*models.Player{actor}
	case SelTarget:
		if target == nil {
			return nil
		}
		return []*models.Player{target}
	case SelOthers, SelEveryone:
		out := make([]*models.Player, 0, len(r.Order))
		for _, id := range r.Order {
			p := r.Players[id]
			if p == nil || !p.Alive {
				continue
			}
			if who == SelOthers && p.ID == actor.ID {
				continue
			}
			out = append(out, p)
		}
		return out
	}
	return nil
}

// applyDeltas is the single interpreter for card effects. Assumes the
// room lock is held.
func (r *Room) applyDeltas(actor, target *models.Player, deltas []Delta) {
	for _, d := range deltas {
		switch d := d.(type) {
		case ResonanceDelta:
			for _, p := range r.selectPlayers(d.Who, actor, target) {
				ApplyResonance(p, d.Amount)
			}
		case StabilityDelta:
			for _, p := range r.selectPlayers(d.Who, actor, target) {
				ApplyStability(p, d.Amount, r.Config.StabilityFloor)
			}
		case DrawDelta:
			for _, p := range r.selectPlayers(d.Who, actor, target) {
				r.Draw(p, d.Count)
			}
		case GrantDelta:
			for _, p := range r.selectPlayers(d.Who, actor, target) {
				if d.Turns > 0 {
					p.Effects.GrantFor(d.Status, d.Turns)
				} else {
					p.Effects.Grant(d.Status)
				}
			}
		case ForceDiscardDelta:
			for _, p := range r.selectPlayers(d.Who, actor, target) {
				for i := 0; i < d.Count && len(p.Hand) > 0; i++ {
					last := p.Hand[len(p.Hand)-1]
					p.Hand = p.Hand[:len(p.Hand)-1]
					r.Discard = append(r.Discard, last)
				}
			}
		case DeferDiscardDelta:
			for _, p := range r.selectPlayers(d.Who, actor, target) {
				p.NextDiscard++
			}
		case StealRandomDelta:
			if target == nil || len(target.Hand) == 0 {
				continue
			}
			if len(actor.Hand) >= r.Config.MaxHandSize {
				continue
			}
			idx := r.rng.Intn(len(target.Hand))
			stolen := target.Hand[idx]
			target.Hand = append(target.Hand[:idx], target.Hand[idx+1:]...)
			actor.Hand = append(actor.Hand, stolen)
		case RecoverDiscardDelta:
			if len(r.Discard) == 0 || len(actor.Hand) >= r.Config.MaxHandSize {
				continue
			}
			top := r.Discard[len(r.Discard)-1]
			r.Discard = r.Discard[:len(r.Discard)-1]
			actor.Hand = append(actor.Hand, top)
		case CopyLastPlayedDelta:
			if len(actor.Hand) >= r.Config.MaxHandSize {
				continue
			}
			for i := len(r.Table) - 1; i >= 0; i-- {
				c := r.Table[i].Card
				if c == nil || c.Category == models.CategoryEvent || c.Name == "Overlapping Self" {
					continue
				}
				clone := *c
				clone.ID = uuid.NewString()
				actor.Hand = append(actor.Hand, &clone)
				break
			}
		case SilenceDelta:
			r.SilencedBy = actor.ID
			r.fireEvent(infoEvent(actor.Name + " silences the room until their next turn."))
		}
	}
}

// dispatchEffect resolves reflection, builds the card's deltas, and
// applies them. A panicking effect is caught here and treated as a no-op
// for the play; the cost and hand removal already committed stand.
// Assumes the room lock is held.
func (r *Room) dispatchEffect(card *models.Card, def *CardDef, actor, target *models.Player) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithField("room", r.Code).WithField("card", card.Name).
				Errorf("card effect fault: %v", rec)
		}
	}()

	if def.Build == nil {
		return
	}

	// Full reflection: actor and target swap roles for this invocation.
	if target != nil && target.Effects.Consume(models.StatusReflectNext) {
		r.fireEvent(infoEvent(target.Name + " reflected " + card.Name + " back to " + actor.Name + "!"))
		actor, target = target, actor
	} else if target != nil && target.Effects.Has(models.StatusReflectResonanceNext) {
		// Resonance-only reflection: consumed only if the card would
		// actually drain the target's resonance.
		probe := def.Build(actor, target, r)
		if hasResonanceHitOnTarget(probe) {
			target.Effects.Consume(models.StatusReflectResonanceNext)
			r.fireEvent(infoEvent(target.Name + " mirrored " + card.Name + " back to " + actor.Name + "!"))
			actor, target = target, actor
		}
	}

	r.applyDeltas(actor, target, def.Build(actor, target, r))
}

func hasResonanceHitOnTarget(deltas []Delta) bool {
	for _, d := range deltas {
		if rd, ok := d.(ResonanceDelta); ok && rd.Amount < 0 && (rd.Who == SelTarget || rd.Who == SelOthers || rd.Who == SelEveryone) {
			return true
		}
	}
	return false
}
