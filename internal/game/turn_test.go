package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echofall/internal/models"
)

func TestAdvanceTurnSkipsIneligibleSeats(t *testing.T) {
	r, players, mb := setupTestRoom(t, 3, DefaultConfig())
	a, b, c := players[0], players[1], players[2]
	startTestGame(r)

	r.Mu.Lock()
	defer r.Mu.Unlock()

	b.Disconnected = true
	c.Effects.Grant(models.StatusSkipTurn)

	r.advanceTurn()

	// B is disconnected and C's skip is consumed, so the turn comes
	// straight back to A.
	require.NotNil(t, r.currentPlayer())
	assert.Equal(t, a.ID, r.currentPlayer().ID)
	assert.False(t, c.Effects.Has(models.StatusSkipTurn), "skip flag consumed in passing")
	assert.True(t, mb.hasEvent(EventTurnChanged))
}

func TestAdvanceTurnSkipsFallenSeats(t *testing.T) {
	r, players, _ := setupTestRoom(t, 3, DefaultConfig())
	b, c := players[1], players[2]
	startTestGame(r)

	r.Mu.Lock()
	defer r.Mu.Unlock()

	b.Alive = false
	r.advanceTurn()
	assert.Equal(t, c.ID, r.currentPlayer().ID)
}

func TestExtraTurnKeepsTheTurn(t *testing.T) {
	r, players, _ := setupTestRoom(t, 2, DefaultConfig())
	a := players[0]
	startTestGame(r)

	r.Mu.Lock()
	defer r.Mu.Unlock()

	a.Effects.Grant(models.StatusExtraTurn)
	r.advanceTurn()

	assert.Equal(t, a.ID, r.currentPlayer().ID, "extra turn holds the rotation")
	assert.False(t, a.Effects.Has(models.StatusExtraTurn))

	r.advanceTurn()
	assert.Equal(t, players[1].ID, r.currentPlayer().ID)
}

func TestSilenceClearsOnSilencerTurn(t *testing.T) {
	r, players, _ := setupTestRoom(t, 3, DefaultConfig())
	a := players[0]
	startTestGame(r)

	r.Mu.Lock()
	defer r.Mu.Unlock()

	r.SilencedBy = a.ID

	r.advanceTurn() // to B
	assert.Equal(t, a.ID, r.SilencedBy)
	r.advanceTurn() // to C
	assert.Equal(t, a.ID, r.SilencedBy)
	r.advanceTurn() // back to A
	assert.Empty(t, r.SilencedBy, "silence lifts when rotation reaches the silencer")
}

func TestShardTotemHealsAndDecays(t *testing.T) {
	r, players, _ := setupTestRoom(t, 2, DefaultConfig())
	a := players[0]
	startTestGame(r)

	r.Mu.Lock()
	defer r.Mu.Unlock()

	a.Stability = 5
	a.Effects.GrantFor(models.StatusShardTotem, 2)

	r.advanceTurn() // A's turn ends: heal 1, one charge left
	assert.Equal(t, 6, a.Stability)
	assert.True(t, a.Effects.Has(models.StatusShardTotem))

	r.advanceTurn() // B's turn ends, back to A
	r.advanceTurn() // A's turn ends: heal 1, totem crumbles
	assert.Equal(t, 7, a.Stability)
	assert.False(t, a.Effects.Has(models.StatusShardTotem))
}

func TestDeferredDiscardResolvesAtTurnStart(t *testing.T) {
	r, players, _ := setupTestRoom(t, 2, DefaultConfig())
	a := players[0]
	startTestGame(r)

	r.Mu.Lock()
	defer r.Mu.Unlock()

	a.NextDiscard = 1
	handBefore := a.HandSize()
	discardBefore := len(r.Discard)

	r.advanceTurn() // to B
	assert.Equal(t, 1, a.NextDiscard, "trap waits for the owner's turn")

	r.advanceTurn() // back to A: discard one, then the free draw
	assert.Equal(t, 0, a.NextDiscard)
	assert.GreaterOrEqual(t, len(r.Discard), discardBefore+1)
	assert.LessOrEqual(t, a.HandSize(), handBefore+1)
}

func TestTurnStartResetsPotionGate(t *testing.T) {
	r, players, _ := setupTestRoom(t, 2, DefaultConfig())
	a := players[0]
	startTestGame(r)

	r.Mu.Lock()
	defer r.Mu.Unlock()

	a.PotionUsed = true
	a.PotionCharges = 0

	r.advanceTurn()
	r.advanceTurn() // back to A

	assert.False(t, a.PotionUsed)
	assert.Equal(t, 1, a.PotionCharges)
}

func TestWinDetection(t *testing.T) {
	r, players, mb := setupTestRoom(t, 3, DefaultConfig())
	a, b, c := players[0], players[1], players[2]
	startTestGame(r)

	r.Mu.Lock()
	b.Alive = false
	r.checkForWinner()
	r.Mu.Unlock()
	assert.Equal(t, PhaseInProgress, r.Phase, "two players still standing")

	r.Mu.Lock()
	c.Alive = false
	r.checkForWinner()
	r.Mu.Unlock()

	assert.Equal(t, PhaseConcluded, r.Phase)
	assert.True(t, mb.hasPlayerEvent(a.ID, EventYouWin))
	assert.True(t, mb.hasPlayerEvent(b.ID, EventYouLose))
	assert.True(t, mb.hasPlayerEvent(c.ID, EventYouLose))
}

func TestNoActionsAfterConclusion(t *testing.T) {
	r, players, _ := setupTestRoom(t, 2, DefaultConfig())
	a, b := players[0], players[1]
	startTestGame(r)

	r.Mu.Lock()
	b.Alive = false
	r.checkForWinner()
	r.Mu.Unlock()
	require.Equal(t, PhaseConcluded, r.Phase)

	assert.ErrorIs(t, r.EndTurn(a.ID), ErrGameNotStarted)
	assert.ErrorIs(t, r.DrawCardAction(a.ID), ErrGameNotStarted)
}
