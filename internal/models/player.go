package models

import "time"

// Player is one seat in a room. The ID is connection-scoped: it is
// replaced in place when the player reconnects under the same name.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Hand []*Card `json:"hand"`

	Resonance int  `json:"resonance"`
	Stability int  `json:"stability"`
	Alive     bool `json:"alive"`

	Disconnected   bool      `json:"disconnected"`
	DisconnectedAt time.Time `json:"-"`

	// Potion gate, reset at the start of each own turn.
	PotionUsed    bool `json:"potionUsed"`
	PotionCharges int  `json:"potionCharges"`
	DrinkCount    int  `json:"drinkCount"`

	// NextDiscard counts deferred forced discards resolved at the start
	// of this player's next turn.
	NextDiscard int `json:"nextDiscard"`

	Effects StatusSet `json:"effects"`
}

// Active reports whether the player currently occupies a live seat:
// alive and not disconnected. Display-name uniqueness and turn
// eligibility are both defined over active players.
func (p *Player) Active() bool {
	return p.Alive && !p.Disconnected
}

// HandSize is a nil-safe hand length.
func (p *Player) HandSize() int {
	return len(p.Hand)
}

// RemoveCard takes the card with the given instance ID out of the hand,
// preserving order. Returns nil if the card is not held.
func (p *Player) RemoveCard(cardID string) *Card {
	for i, c := range p.Hand {
		if c.ID == cardID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c
		}
	}
	return nil
}
