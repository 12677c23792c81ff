package game

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() RoomConfig {
	cfg := DefaultConfig()
	cfg.Countdown = 50 * time.Millisecond
	cfg.ReconnectGrace = 50 * time.Millisecond
	return cfg
}

func TestCountdownArmsWhenAllReady(t *testing.T) {
	r, players, mb := setupTestRoom(t, 2, fastConfig())

	require.NoError(t, r.ToggleReady(players[0].ID))
	assert.Equal(t, PhasePreGame, r.Phase, "one ready player is not enough")
	assert.False(t, mb.hasEvent(EventCountdownStart))

	require.NoError(t, r.ToggleReady(players[1].ID))
	assert.Equal(t, PhaseCountdown, r.Phase)
	assert.True(t, mb.hasEvent(EventCountdownStart))
}

func TestCountdownBelowMinimumPlayers(t *testing.T) {
	r, players, mb := setupTestRoom(t, 1, fastConfig())

	require.NoError(t, r.ToggleReady(players[0].ID))
	assert.Equal(t, PhasePreGame, r.Phase)
	assert.False(t, mb.hasEvent(EventCountdownStart))
}

func TestUnreadyCancelsCountdown(t *testing.T) {
	r, players, mb := setupTestRoom(t, 2, fastConfig())

	require.NoError(t, r.ToggleReady(players[0].ID))
	require.NoError(t, r.ToggleReady(players[1].ID))
	require.Equal(t, PhaseCountdown, r.Phase)

	require.NoError(t, r.ToggleReady(players[0].ID))
	assert.Equal(t, PhasePreGame, r.Phase)
	assert.True(t, mb.hasEvent(EventCountdownStop))

	// The disarmed timer must never fire.
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, PhasePreGame, r.Phase)
	assert.False(t, mb.hasEvent(EventGameStarted))
}

func TestCountdownExpiryStartsGame(t *testing.T) {
	r, players, mb := setupTestRoom(t, 2, fastConfig())

	require.NoError(t, r.ToggleReady(players[0].ID))
	require.NoError(t, r.ToggleReady(players[1].ID))

	require.Eventually(t, func() bool {
		r.Mu.Lock()
		defer r.Mu.Unlock()
		return r.Phase == PhaseInProgress
	}, time.Second, 10*time.Millisecond)

	assert.True(t, mb.hasEvent(EventDiceRolling))
	assert.True(t, mb.hasEvent(EventDiceResults))
	assert.True(t, mb.hasEvent(EventGameStarted))

	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Empty(t, r.Ready, "ready flags reset once the game opens")
	require.NotNil(t, r.currentPlayer())
	assert.Equal(t, r.Order[0], r.currentPlayer().ID, "dice winner leads")
}

func TestPreGameLeaveCancelsCountdown(t *testing.T) {
	r, players, mb := setupTestRoom(t, 2, fastConfig())

	require.NoError(t, r.ToggleReady(players[0].ID))
	require.NoError(t, r.ToggleReady(players[1].ID))
	require.Equal(t, PhaseCountdown, r.Phase)

	r.HandleDisconnect(players[1].ID)
	assert.Equal(t, PhasePreGame, r.Phase)
	assert.True(t, mb.hasEvent(EventCountdownStop))

	time.Sleep(120 * time.Millisecond)
	assert.False(t, mb.hasEvent(EventGameStarted))

	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Len(t, r.Players, 1, "pre-game leavers vacate the seat")
}

func TestJoinDuringCountdownDisarms(t *testing.T) {
	r, players, mb := setupTestRoom(t, 2, fastConfig())

	require.NoError(t, r.ToggleReady(players[0].ID))
	require.NoError(t, r.ToggleReady(players[1].ID))
	require.Equal(t, PhaseCountdown, r.Phase)

	r.Mu.Lock()
	_, err := r.Seat(uuid.NewString(), "latecomer")
	r.Mu.Unlock()
	require.NoError(t, err)

	assert.Equal(t, PhasePreGame, r.Phase)
	assert.True(t, mb.hasEvent(EventCountdownStop))

	// The disarmed timer must not sweep the unready latecomer into a
	// started game.
	time.Sleep(120 * time.Millisecond)
	assert.False(t, mb.hasEvent(EventGameStarted))
}

func TestDiceWinnerDistribution(t *testing.T) {
	// Ties for the highest roll break uniformly, so over many starts
	// every seat must lead sometimes.
	const trials = 400
	wins := make(map[string]int)

	for i := 0; i < trials; i++ {
		r, _, _ := setupTestRoom(t, 4, fastConfig())
		r.Mu.Lock()
		r.startGame()
		first := r.Players[r.Order[0]].Name
		r.Mu.Unlock()
		wins[first]++
	}

	require.Len(t, wins, 4, "every seat should lead at least once")
	for name, n := range wins {
		assert.Greater(t, n, 40, "seat %s wins far less than a fair share", name)
	}
}

func TestDiceRotationPreservesRelativeOrder(t *testing.T) {
	r, players, _ := setupTestRoom(t, 4, fastConfig())

	r.Mu.Lock()
	defer r.Mu.Unlock()
	before := append([]string(nil), r.Order...)
	r.startGame()

	// The rotated order is a cyclic shift of the original seating.
	winner := r.Order[0]
	offset := -1
	for i, id := range before {
		if id == winner {
			offset = i
			break
		}
	}
	require.GreaterOrEqual(t, offset, 0)
	for i := range before {
		assert.Equal(t, before[(offset+i)%len(before)], r.Order[i])
	}
	_ = players
}
