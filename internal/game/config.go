package game

import "time"

// RoomConfig holds the gameplay tunables for one room. Values are fixed
// at room creation; DefaultConfig matches the canonical rule set.
type RoomConfig struct {
	MaxPlayers  int `json:"maxPlayers"`
	MinPlayers  int `json:"minPlayers"`
	MaxHandSize int `json:"maxHandSize"`
	OpeningHand int `json:"openingHand"`

	StartingResonance int `json:"startingResonance"`
	StartingStability int `json:"startingStability"`

	// DrawCost is the resonance price of an explicit extra draw.
	DrawCost int `json:"drawCost"`

	// StabilityFloor is the clamp floor for stability. Zero for the
	// canonical rules; negative values reproduce the legacy variant that
	// let stability go below zero.
	StabilityFloor int `json:"stabilityFloor"`

	Countdown       time.Duration `json:"-"`
	ReconnectGrace  time.Duration `json:"-"`
	ShardTotemTurns int           `json:"shardTotemTurns"`
}

// DefaultConfig returns the canonical room configuration.
func DefaultConfig() RoomConfig {
	return RoomConfig{
		MaxPlayers:        4,
		MinPlayers:        2,
		MaxHandSize:       6,
		OpeningHand:       4,
		StartingResonance: 10,
		StartingStability: 8,
		DrawCost:          1,
		StabilityFloor:    0,
		Countdown:         10 * time.Second,
		ReconnectGrace:    2 * time.Minute,
		ShardTotemTurns:   3,
	}
}
