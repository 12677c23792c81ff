package game

import "echofall/internal/models"

// Resource bounds. Resonance is clamped to [0, 999]; stability to
// [floor, 999] with the floor coming from room config.
const (
	resourceMax  = 999
	resonanceMin = 0
)

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// ApplyResonance applies a bounded resonance delta to the player,
// resolving defensive flags in fixed priority order:
//
//  1. a negative delta is fully negated by avoid_next_resonance,
//     consuming the flag;
//  2. anchored keeps resonance from dropping below 1 (not consumed);
//  3. pulse_conduit adds +1 to positive deltas only (not consumed).
//
// Flags are cleared at the moment of consumption, never by an
// end-of-turn sweep.
func ApplyResonance(p *models.Player, delta int) {
	if p == nil || delta == 0 {
		return
	}
	if delta < 0 && p.Effects.Consume(models.StatusAvoidNextResonance) {
		return
	}
	if delta > 0 && p.Effects.Has(models.StatusPulseConduit) {
		delta++
	}
	lo := resonanceMin
	if delta < 0 && p.Effects.Has(models.StatusAnchored) && p.Resonance >= 1 {
		lo = 1
	}
	p.Resonance = clamp(p.Resonance+delta, lo, resourceMax)
}

// ApplyStability applies a bounded stability delta, resolving defenses in
// fixed priority order so that flags are not double-applied:
//
//  1. phase_cloak negates the loss entirely and short-circuits;
//  2. reversal_next converts the loss into resonance gain of the same
//     magnitude (routed back through ApplyResonance);
//  3. skip_next_damage negates the loss.
//
// Each intercepting flag is consumed exactly once. If the post-clamp
// stability is at or below zero the player falls; alive=false is a
// one-way transition.
func ApplyStability(p *models.Player, delta, floor int) {
	if p == nil || delta == 0 {
		return
	}
	if delta < 0 {
		if p.Effects.Consume(models.StatusPhaseCloak) {
			return
		}
		if p.Effects.Consume(models.StatusReversalNext) {
			ApplyResonance(p, -delta)
			return
		}
		if p.Effects.Consume(models.StatusSkipNextDamage) {
			return
		}
	}
	p.Stability = clamp(p.Stability+delta, floor, resourceMax)
	if p.Stability <= 0 {
		p.Alive = false
	}
}
