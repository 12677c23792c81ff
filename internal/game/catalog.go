package game

import (
	"github.com/google/uuid"

	"echofall/internal/models"
)

// CardDef is one catalog entry: immutable card content plus its effect
// builder. The catalog is configuration; the engine only sees the
// generic builder contract.
type CardDef struct {
	ID          int
	Name        string
	Category    models.Category
	Cost        int
	Text        string
	NeedsTarget bool

	// Common definitions contribute two instances to the deck.
	Common bool

	Build EffectBuilder
}

// Catalog is the canonical card set. Targeted effects never re-validate
// the target (play validation already did); area effects skip dead
// seats via the selector.
var Catalog = []*CardDef{
	{ID: 1, Name: "Echo Drain", Category: models.CategorySpell, Cost: 2, NeedsTarget: true, Common: true,
		Text: "Target loses 2 stability; you gain 2 resonance.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{StabilityDelta{SelTarget, -2}, ResonanceDelta{SelActor, 2}}
		}},
	{ID: 2, Name: "Layer Shift", Category: models.CategorySpell, Cost: 1, NeedsTarget: true, Common: true,
		Text: "Swap resonance with another player.",
		Build: func(actor, target *models.Player, _ *Room) []Delta {
			return []Delta{
				ResonanceDelta{SelActor, target.Resonance - actor.Resonance},
				ResonanceDelta{SelTarget, actor.Resonance - target.Resonance},
			}
		}},
	{ID: 3, Name: "Fragment Recall", Category: models.CategorySpell, Cost: 1, Common: true,
		Text:  "Draw 2 cards.",
		Build: func(_, _ *models.Player, _ *Room) []Delta { return []Delta{DrawDelta{SelActor, 2}} }},
	{ID: 4, Name: "Overload Surge", Category: models.CategorySpell, Cost: 1, Common: true,
		Text: "Gain 3 resonance; lose 1 stability.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{ResonanceDelta{SelActor, 3}, StabilityDelta{SelActor, -1}}
		}},
	{ID: 5, Name: "Timeline Lock", Category: models.CategorySpell, Cost: 3, NeedsTarget: true, Common: true,
		Text: "Target skips their next turn.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{GrantDelta{Who: SelTarget, Status: models.StatusSkipTurn}}
		}},
	{ID: 6, Name: "Resonant Pulse", Category: models.CategorySpell, Cost: 2, Common: true,
		Text:  "Deal 1 resonance damage to all other players.",
		Build: func(_, _ *models.Player, _ *Room) []Delta { return []Delta{ResonanceDelta{SelOthers, -1}} }},
	{ID: 7, Name: "Echo Shield", Category: models.CategoryArtifact, Cost: 2, Common: true,
		Text: "Gain 1 stability; avoid next resonance damage.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{StabilityDelta{SelActor, 1}, GrantDelta{Who: SelActor, Status: models.StatusAvoidNextResonance}}
		}},
	{ID: 8, Name: "Dimensional Rift", Category: models.CategoryEvent, Cost: 2, Common: true,
		Text: "All other players lose 1 stability; you draw 1 card.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{StabilityDelta{SelOthers, -1}, DrawDelta{SelActor, 1}}
		}},
	{ID: 9, Name: "Essence Vial", Category: models.CategoryPotion, Cost: 0, Common: true,
		Text:  "Gain 3 resonance.",
		Build: func(_, _ *models.Player, _ *Room) []Delta { return []Delta{ResonanceDelta{SelActor, 3}} }},
	{ID: 10, Name: "Overlapping Self", Category: models.CategorySpell, Cost: 3,
		Text:  "Copy the last non-event, non-copy card into your hand.",
		Build: func(_, _ *models.Player, _ *Room) []Delta { return []Delta{CopyLastPlayedDelta{}} }},
	{ID: 11, Name: "Disharmonia Attack", Category: models.CategorySpell, Cost: 2, NeedsTarget: true,
		Text: "Halve target's stability (rounded down).",
		Build: func(_, target *models.Player, _ *Room) []Delta {
			return []Delta{StabilityDelta{SelTarget, target.Stability/2 - target.Stability}}
		}},
	{ID: 12, Name: "Fragment Merge", Category: models.CategorySpell, Cost: 1, Common: true,
		Text: "If you have more than 3 resonance, gain stability equal to resonance-3.",
		Build: func(actor, _ *models.Player, _ *Room) []Delta {
			if actor.Resonance <= 3 {
				return nil
			}
			return []Delta{StabilityDelta{SelActor, actor.Resonance - 3}}
		}},
	{ID: 13, Name: "Unseen Echo", Category: models.CategorySpell, Cost: 2, NeedsTarget: true, Common: true,
		Text:  "Steal a random card from target.",
		Build: func(_, _ *models.Player, _ *Room) []Delta { return []Delta{StealRandomDelta{}} }},
	{ID: 14, Name: "Reality Tear", Category: models.CategoryEvent, Cost: 3,
		Text: "All others lose 1 stability; you gain 1 resonance.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{StabilityDelta{SelOthers, -1}, ResonanceDelta{SelActor, 1}}
		}},
	{ID: 15, Name: "Anchor Stone", Category: models.CategoryArtifact, Cost: 2, NeedsTarget: true,
		Text: "Drain all of target's resonance.",
		Build: func(_, target *models.Player, _ *Room) []Delta {
			return []Delta{ResonanceDelta{SelTarget, -target.Resonance}}
		}},
	{ID: 16, Name: "Frequency Swap", Category: models.CategorySpell, Cost: 2, NeedsTarget: true,
		Text: "Swap resonance with another player.",
		Build: func(actor, target *models.Player, _ *Room) []Delta {
			return []Delta{
				ResonanceDelta{SelActor, target.Resonance - actor.Resonance},
				ResonanceDelta{SelTarget, actor.Resonance - target.Resonance},
			}
		}},
	{ID: 17, Name: "Collapse", Category: models.CategorySpell, Cost: 3, NeedsTarget: true,
		Text: "Target loses all resonance; you lose 1 stability.",
		Build: func(_, target *models.Player, _ *Room) []Delta {
			return []Delta{ResonanceDelta{SelTarget, -target.Resonance}, StabilityDelta{SelActor, -1}}
		}},
	{ID: 18, Name: "Echo Call", Category: models.CategorySpell, Cost: 1, Common: true,
		Text: "Draw 1 card; all players gain 1 resonance.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{DrawDelta{SelActor, 1}, ResonanceDelta{SelEveryone, 1}}
		}},
	{ID: 19, Name: "Reflective Pulse", Category: models.CategorySpell, Cost: 2,
		Text: "Reflect the next card played against you back to its caster.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{GrantDelta{Who: SelActor, Status: models.StatusReflectNext}}
		}},
	{ID: 20, Name: "Timeless Veil", Category: models.CategoryArtifact, Cost: 2, Common: true,
		Text: "Ignore your next stability loss.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{GrantDelta{Who: SelActor, Status: models.StatusSkipNextDamage}}
		}},
	{ID: 21, Name: "Shattered Self", Category: models.CategorySpell, Cost: 2, Common: true,
		Text: "Lose 2 stability; draw 3 cards.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{StabilityDelta{SelActor, -2}, DrawDelta{SelActor, 3}}
		}},
	{ID: 22, Name: "Phase Shift", Category: models.CategorySpell, Cost: 1, Common: true,
		Text: "Avoid the next resonance damage that would hit you.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{GrantDelta{Who: SelActor, Status: models.StatusAvoidNextResonance}}
		}},
	{ID: 23, Name: "Residual Echo", Category: models.CategorySpell, Cost: 1, Common: true,
		Text: "Gain 2 resonance; lose 1 stability.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{ResonanceDelta{SelActor, 2}, StabilityDelta{SelActor, -1}}
		}},
	{ID: 24, Name: "Echoes of Healing", Category: models.CategorySpell, Cost: 3, Common: true,
		Text:  "Gain 3 stability.",
		Build: func(_, _ *models.Player, _ *Room) []Delta { return []Delta{StabilityDelta{SelActor, 3}} }},
	{ID: 25, Name: "Temporal Collapse", Category: models.CategoryEvent, Cost: 3,
		Text: "All players lose 1 stability and gain 2 resonance.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{StabilityDelta{SelEveryone, -1}, ResonanceDelta{SelEveryone, 2}}
		}},
	{ID: 26, Name: "Rebound", Category: models.CategorySpell, Cost: 1, Common: true,
		Text:  "Return the last discarded card to your hand.",
		Build: func(_, _ *models.Player, _ *Room) []Delta { return []Delta{RecoverDiscardDelta{}} }},
	{ID: 27, Name: "Echo Trap", Category: models.CategoryArtifact, Cost: 2, NeedsTarget: true,
		Text: "Target loses 1 resonance and discards a card at the start of their next turn.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{ResonanceDelta{SelTarget, -1}, DeferDiscardDelta{SelTarget}}
		}},
	{ID: 28, Name: "Layer Fusion", Category: models.CategorySpell, Cost: 3, NeedsTarget: true,
		Text: "Average your and target's resonance; gain stability equal to that average.",
		Build: func(actor, target *models.Player, _ *Room) []Delta {
			avg := (actor.Resonance + target.Resonance) / 2
			return []Delta{
				ResonanceDelta{SelActor, avg - actor.Resonance},
				ResonanceDelta{SelTarget, avg - target.Resonance},
				StabilityDelta{SelActor, avg},
			}
		}},
	{ID: 29, Name: "Dissolve", Category: models.CategorySpell, Cost: 1, NeedsTarget: true, Common: true,
		Text:  "Deal 2 stability damage to target.",
		Build: func(_, _ *models.Player, _ *Room) []Delta { return []Delta{StabilityDelta{SelTarget, -2}} }},
	{ID: 30, Name: "Jack's Ascension", Category: models.CategoryEvent, Cost: 5,
		Text: "Gain 2 stability; set resonance to 3; discard up to 2 cards.",
		Build: func(actor, _ *models.Player, _ *Room) []Delta {
			return []Delta{
				StabilityDelta{SelActor, 2},
				ResonanceDelta{SelActor, 3 - actor.Resonance},
				ForceDiscardDelta{SelActor, 2},
			}
		}},

	// Legacy-variant status effects.
	{ID: 31, Name: "Phase Cloak", Category: models.CategoryArtifact, Cost: 3,
		Text: "Negate your next stability loss entirely.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{GrantDelta{Who: SelActor, Status: models.StatusPhaseCloak}}
		}},
	{ID: 32, Name: "Reversal Ward", Category: models.CategoryArtifact, Cost: 3,
		Text: "Your next stability loss becomes resonance gain instead.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{GrantDelta{Who: SelActor, Status: models.StatusReversalNext}}
		}},
	{ID: 33, Name: "Mirror Resonance", Category: models.CategorySpell, Cost: 2,
		Text: "Mirror the next resonance-damaging card aimed at you.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{GrantDelta{Who: SelActor, Status: models.StatusReflectResonanceNext}}
		}},
	{ID: 34, Name: "Anchor Sigil", Category: models.CategoryArtifact, Cost: 2,
		Text: "Your resonance cannot drop below 1.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{GrantDelta{Who: SelActor, Status: models.StatusAnchored}}
		}},
	{ID: 35, Name: "Pulse Conduit", Category: models.CategoryArtifact, Cost: 3,
		Text: "Your positive resonance changes gain +1.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{GrantDelta{Who: SelActor, Status: models.StatusPulseConduit}}
		}},
	{ID: 36, Name: "Shard Totem", Category: models.CategoryArtifact, Cost: 3,
		Text: "Heal 1 stability at the end of each of your turns, for 3 turns.",
		Build: func(_, _ *models.Player, r *Room) []Delta {
			return []Delta{GrantDelta{Who: SelActor, Status: models.StatusShardTotem, Turns: r.Config.ShardTotemTurns}}
		}},
	{ID: 37, Name: "Echo Catalyst", Category: models.CategorySpell, Cost: 1, Common: true,
		Text: "Your next card costs no resonance.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{GrantDelta{Who: SelActor, Status: models.StatusEchoCatalyst}}
		}},
	{ID: 38, Name: "Silencing Veil", Category: models.CategoryEvent, Cost: 4,
		Text:  "Only you may play cards until your next turn.",
		Build: func(_, _ *models.Player, _ *Room) []Delta { return []Delta{SilenceDelta{}} }},
	{ID: 39, Name: "Temporal Split", Category: models.CategorySpell, Cost: 4,
		Text: "Take an extra turn after this one.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{GrantDelta{Who: SelActor, Status: models.StatusExtraTurn}}
		}},
	{ID: 40, Name: "Binding Lock", Category: models.CategorySpell, Cost: 2, NeedsTarget: true,
		Text: "Target cannot play cards on their next turn.",
		Build: func(_, _ *models.Player, _ *Room) []Delta {
			return []Delta{GrantDelta{Who: SelTarget, Status: models.StatusLocked}}
		}},
}

var catalogByID = func() map[int]*CardDef {
	m := make(map[int]*CardDef, len(Catalog))
	for _, def := range Catalog {
		m[def.ID] = def
	}
	return m
}()

// DefByID looks up a catalog definition.
func DefByID(id int) *CardDef {
	return catalogByID[id]
}

// instantiate mints a fresh circulating card for a definition.
func (def *CardDef) instantiate() *models.Card {
	return &models.Card{
		ID:          uuid.NewString(),
		DefID:       def.ID,
		Name:        def.Name,
		Category:    def.Category,
		Cost:        def.Cost,
		Text:        def.Text,
		NeedsTarget: def.NeedsTarget,
	}
}

// BuildDeck creates the full instance set for a match: one copy of every
// definition plus a second copy of each common one.
func BuildDeck() []*models.Card {
	deck := make([]*models.Card, 0, 2*len(Catalog))
	for _, def := range Catalog {
		deck = append(deck, def.instantiate())
		if def.Common {
			deck = append(deck, def.instantiate())
		}
	}
	return deck
}
