package game

import (
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"echofall/internal/models"
)

// mockBroadcaster collects events instead of sending them over WS.
type mockBroadcaster struct {
	mu           sync.Mutex
	allEvents    []Event
	playerEvents map[string][]Event
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{
		playerEvents: make(map[string][]Event),
	}
}

func (mb *mockBroadcaster) broadcastFn(ev Event) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = append(mb.allEvents, ev)
}

func (mb *mockBroadcaster) broadcastToPlayerFn(playerID string, ev Event) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.playerEvents[playerID] = append(mb.playerEvents[playerID], ev)
}

func (mb *mockBroadcaster) clear() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = nil
	mb.playerEvents = make(map[string][]Event)
}

// hasEvent reports whether a broadcast of the given type was seen.
func (mb *mockBroadcaster) hasEvent(t EventType) bool {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for _, ev := range mb.allEvents {
		if ev.Type == t {
			return true
		}
	}
	return false
}

// hasPlayerEvent reports whether a private event of the given type was
// sent to the player.
func (mb *mockBroadcaster) hasPlayerEvent(playerID string, t EventType) bool {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for _, ev := range mb.playerEvents[playerID] {
		if ev.Type == t {
			return true
		}
	}
	return false
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// setupTestRoom creates a room with seated players and mock broadcast
// callbacks. Players are named player1, player2, ...
func setupTestRoom(t *testing.T, numPlayers int, cfg RoomConfig) (*Room, []*models.Player, *mockBroadcaster) {
	t.Helper()

	r := NewRoom("TEST01", "", cfg, testLogger())
	mb := newMockBroadcaster()
	r.BroadcastFn = mb.broadcastFn
	r.BroadcastToPlayerFn = mb.broadcastToPlayerFn

	players := make([]*models.Player, numPlayers)
	r.Mu.Lock()
	for i := 0; i < numPlayers; i++ {
		p, err := r.Seat(uuid.NewString(), fmt.Sprintf("player%d", i+1))
		require.NoError(t, err)
		players[i] = p
	}
	r.Mu.Unlock()

	return r, players, mb
}

// startTestGame opens the match deterministically with the seating
// order as the turn order, bypassing the dice roll.
func startTestGame(r *Room) {
	r.Mu.Lock()
	r.Phase = PhaseInProgress
	r.TurnIndex = 0
	r.Ready = make(map[string]bool)
	r.Mu.Unlock()
}

// giveCard puts a fresh instance of a definition into the player's hand
// and returns it.
func giveCard(p *models.Player, defID int) *models.Card {
	c := DefByID(defID).instantiate()
	p.Hand = append(p.Hand, c)
	return c
}

func newTestPlayer(resonance, stability int) *models.Player {
	return &models.Player{
		ID:        uuid.NewString(),
		Name:      "tester",
		Resonance: resonance,
		Stability: stability,
		Alive:     true,
		Effects:   models.NewStatusSet(),
	}
}
