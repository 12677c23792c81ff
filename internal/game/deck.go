package game

import (
	"echofall/internal/models"
)

// shuffleDeck applies a uniform Fisher–Yates permutation in place using
// the room's RNG.
func (r *Room) shuffleDeck(cards []*models.Card) {
	r.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// Draw moves up to count cards from the top of the deck into the
// player's hand, refusing to exceed maxHandSize (a soft cap: the draw
// stops early without error). When the deck runs out the discard pile is
// reshuffled into it; when both are empty the draw stops. Returns the
// number of cards actually moved so callers can react to truncation.
// Assumes the room lock is held.
func (r *Room) Draw(p *models.Player, count int) int {
	if p == nil {
		return 0
	}
	drawn := 0
	for i := 0; i < count; i++ {
		if len(p.Hand) >= r.Config.MaxHandSize {
			break
		}
		if len(r.Deck) == 0 {
			if len(r.Discard) == 0 {
				break
			}
			r.reshuffleDiscard()
		}
		top := r.Deck[len(r.Deck)-1]
		r.Deck = r.Deck[:len(r.Deck)-1]
		p.Hand = append(p.Hand, top)
		drawn++
	}
	return drawn
}

// reshuffleDiscard folds the entire discard pile back into the deck and
// shuffles. Assumes the room lock is held and the deck is empty.
func (r *Room) reshuffleDiscard() {
	r.Deck = append(r.Deck, r.Discard...)
	r.Discard = r.Discard[:0]
	r.shuffleDeck(r.Deck)
	r.fireEvent(infoEvent("Deck reshuffled!"))
	r.logAction("", "deck_reshuffle", map[string]interface{}{"deckSize": len(r.Deck)})
}
