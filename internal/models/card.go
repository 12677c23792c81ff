package models

// Category classifies a card definition.
type Category string

const (
	CategorySpell    Category = "Spell"
	CategoryArtifact Category = "Artifact"
	CategoryEvent    Category = "Event"
	CategoryPotion   Category = "Potion"
)

// Card is one circulating card instance. DefID identifies the definition
// in the catalog; ID is unique per instance so a deck may hold multiple
// copies of the same definition. Cards are values moved between deck,
// hand, discard, and table history; they have no lifecycle of their own.
type Card struct {
	ID       string   `json:"id"`
	DefID    int      `json:"defId"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Cost     int      `json:"cost"`
	Text     string   `json:"text"`

	// NeedsTarget marks definitions whose effect requires an opposing
	// player; play is rejected without a valid one.
	NeedsTarget bool `json:"needsTarget"`
}

// PlayedCard is one entry of a room's table history: an append-only log
// of plays for spectators, distinct from the discard pile.
type PlayedCard struct {
	Card      *Card  `json:"card"`
	OwnerID   string `json:"ownerId"`
	OwnerName string `json:"ownerName"`
}
