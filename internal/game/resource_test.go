package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"echofall/internal/models"
)

func TestApplyResonanceClamping(t *testing.T) {
	p := newTestPlayer(5, 8)

	ApplyResonance(p, -100)
	assert.Equal(t, 0, p.Resonance, "resonance must not go negative")

	ApplyResonance(p, 5000)
	assert.Equal(t, 999, p.Resonance, "resonance must cap at 999")
}

func TestAvoidNextResonanceConsumedOnce(t *testing.T) {
	p := newTestPlayer(5, 8)
	p.Effects.Grant(models.StatusAvoidNextResonance)

	ApplyResonance(p, -3)
	assert.Equal(t, 5, p.Resonance, "first hit is fully negated")
	assert.False(t, p.Effects.Has(models.StatusAvoidNextResonance))

	ApplyResonance(p, -3)
	assert.Equal(t, 2, p.Resonance, "second hit lands")
}

func TestAvoidNextResonanceIgnoresGains(t *testing.T) {
	p := newTestPlayer(5, 8)
	p.Effects.Grant(models.StatusAvoidNextResonance)

	ApplyResonance(p, 2)
	assert.Equal(t, 7, p.Resonance)
	assert.True(t, p.Effects.Has(models.StatusAvoidNextResonance), "gains must not consume the flag")
}

func TestPulseConduitBoostsGainsOnly(t *testing.T) {
	p := newTestPlayer(5, 8)
	p.Effects.Grant(models.StatusPulseConduit)

	ApplyResonance(p, 2)
	assert.Equal(t, 8, p.Resonance, "gain of 2 becomes 3")

	ApplyResonance(p, -2)
	assert.Equal(t, 6, p.Resonance, "losses are unaffected")
	assert.True(t, p.Effects.Has(models.StatusPulseConduit), "conduit persists")
}

func TestAnchoredFloor(t *testing.T) {
	p := newTestPlayer(5, 8)
	p.Effects.Grant(models.StatusAnchored)

	ApplyResonance(p, -100)
	assert.Equal(t, 1, p.Resonance, "anchored holds resonance at 1")

	// Once at zero by other means the anchor has nothing to hold.
	q := newTestPlayer(0, 8)
	q.Effects.Grant(models.StatusAnchored)
	ApplyResonance(q, -3)
	assert.Equal(t, 0, q.Resonance)
}

func TestApplyStabilityDeathThreshold(t *testing.T) {
	p := newTestPlayer(5, 5)
	ApplyStability(p, -4, 0)
	assert.Equal(t, 1, p.Stability)
	assert.True(t, p.Alive)

	ApplyStability(p, -1, 0)
	assert.Equal(t, 0, p.Stability)
	assert.False(t, p.Alive, "stability zero means the player falls")

	// Falling is one-way; healing does not revive.
	ApplyStability(p, 5, 0)
	assert.False(t, p.Alive)
}

func TestStabilityDefensePriority(t *testing.T) {
	// With both cloak and reversal held, cloak intercepts first and
	// reversal survives for the next hit.
	p := newTestPlayer(5, 8)
	p.Effects.Grant(models.StatusPhaseCloak)
	p.Effects.Grant(models.StatusReversalNext)

	ApplyStability(p, -3, 0)
	assert.Equal(t, 8, p.Stability)
	assert.Equal(t, 5, p.Resonance)
	assert.False(t, p.Effects.Has(models.StatusPhaseCloak))
	assert.True(t, p.Effects.Has(models.StatusReversalNext))

	ApplyStability(p, -3, 0)
	assert.Equal(t, 8, p.Stability, "reversal negates the loss")
	assert.Equal(t, 8, p.Resonance, "and converts it to resonance gain")
	assert.False(t, p.Effects.Has(models.StatusReversalNext))
}

func TestReversalRoutesThroughResonanceRules(t *testing.T) {
	// The converted gain goes through ApplyResonance, so pulse conduit
	// amplifies it.
	p := newTestPlayer(5, 8)
	p.Effects.Grant(models.StatusReversalNext)
	p.Effects.Grant(models.StatusPulseConduit)

	ApplyStability(p, -2, 0)
	assert.Equal(t, 8, p.Stability)
	assert.Equal(t, 8, p.Resonance, "2 converted plus 1 conduit bonus")
}

func TestSkipNextDamageConsumedOnce(t *testing.T) {
	p := newTestPlayer(5, 8)
	p.Effects.Grant(models.StatusSkipNextDamage)

	ApplyStability(p, -3, 0)
	assert.Equal(t, 8, p.Stability)
	assert.False(t, p.Effects.Has(models.StatusSkipNextDamage))

	ApplyStability(p, -3, 0)
	assert.Equal(t, 5, p.Stability)
}

func TestStabilityGainsBypassDefenses(t *testing.T) {
	p := newTestPlayer(5, 8)
	p.Effects.Grant(models.StatusPhaseCloak)
	p.Effects.Grant(models.StatusSkipNextDamage)

	ApplyStability(p, 2, 0)
	assert.Equal(t, 10, p.Stability)
	assert.True(t, p.Effects.Has(models.StatusPhaseCloak))
	assert.True(t, p.Effects.Has(models.StatusSkipNextDamage))
}
