package models

// StatusID names one tagged status effect. All effects live in a single
// per-player set; the resource helpers resolve overlapping defenses in
// one fixed priority order.
type StatusID string

const (
	// One-shot defenses, consumed at the moment they intercept.
	StatusAvoidNextResonance   StatusID = "avoid_next_resonance"
	StatusSkipNextDamage       StatusID = "skip_next_damage"
	StatusPhaseCloak           StatusID = "phase_cloak"
	StatusReversalNext         StatusID = "reversal_next"
	StatusReflectNext          StatusID = "reflect_next"
	StatusReflectResonanceNext StatusID = "reflect_resonance_next"

	// Passive while held.
	StatusAnchored     StatusID = "anchored"
	StatusPulseConduit StatusID = "pulse_conduit"

	// Decaying: Remaining counts turns left.
	StatusShardTotem StatusID = "shard_totem"

	// Turn-scoped.
	StatusEchoCatalyst StatusID = "echo_catalyst"
	StatusSkipTurn     StatusID = "skip_turn"
	StatusExtraTurn    StatusID = "extra_turn"
	StatusLocked       StatusID = "locked"
)

// Status is one active effect instance. Remaining is 0 for effects that
// do not decay per turn.
type Status struct {
	ID        StatusID `json:"id"`
	Remaining int      `json:"remaining,omitempty"`
}

// StatusSet holds a player's active effects keyed by ID. Granting an
// already held effect refreshes it rather than stacking.
type StatusSet map[StatusID]*Status

func NewStatusSet() StatusSet {
	return make(StatusSet)
}

func (s StatusSet) Has(id StatusID) bool {
	_, ok := s[id]
	return ok
}

// Grant activates a non-decaying effect.
func (s StatusSet) Grant(id StatusID) {
	s[id] = &Status{ID: id}
}

// GrantFor activates a decaying effect with the given turn count.
func (s StatusSet) GrantFor(id StatusID, turns int) {
	s[id] = &Status{ID: id, Remaining: turns}
}

// Consume removes the effect if held and reports whether it was held.
// One-shot defenses use this so each fires exactly once.
func (s StatusSet) Consume(id StatusID) bool {
	if _, ok := s[id]; !ok {
		return false
	}
	delete(s, id)
	return true
}

func (s StatusSet) Clear(id StatusID) {
	delete(s, id)
}

// IDs returns the held effect IDs in unspecified order.
func (s StatusSet) IDs() []StatusID {
	out := make([]StatusID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}
