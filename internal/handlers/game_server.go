package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"echofall/internal/auth"
	"echofall/internal/cache"
	"echofall/internal/database"
	"echofall/internal/game"
)

// clientConn is one live WebSocket client. The connection ID doubles as
// the player ID once the client enters a room.
type clientConn struct {
	id   string
	conn *websocket.Conn
	room string
	name string
}

// GameServer owns the room directory and the connection registry, and
// bridges the two: room broadcast callbacks resolve to connections here.
type GameServer struct {
	Rooms  *game.RoomStore
	logger *logrus.Logger

	mu    sync.Mutex
	conns map[string]*clientConn
}

// NewGameServer wires a directory with the password hashing and
// persistence hooks and returns the server around it.
func NewGameServer(cfg game.RoomConfig, logger *logrus.Logger) *GameServer {
	if logger == nil {
		logger = logrus.New()
	}
	s := &GameServer{
		Rooms:  game.NewRoomStore(cfg, logger),
		logger: logger,
		conns:  make(map[string]*clientConn),
	}

	s.Rooms.HashPassword = func(password string) (string, error) {
		return auth.CreateHash(password, auth.Params)
	}
	s.Rooms.ComparePassword = auth.ComparePasswordAndHash
	s.Rooms.OnChange = s.broadcastRoomList

	s.Rooms.ActionLogFn = func(code string, seq int, playerID, action string, details map[string]interface{}) {
		record := cache.RoomActionRecord{
			RoomCode:      code,
			ActionIndex:   seq,
			PlayerID:      playerID,
			ActionType:    action,
			ActionPayload: details,
			Timestamp:     time.Now().UnixMilli(),
		}
		// Called with the room lock held; the push must not block gameplay.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := cache.PublishRoomAction(ctx, record); err != nil {
				logger.Warnf("Failed to publish action record for room %s: %v", code, err)
			}
		}()
	}

	s.Rooms.RecordResultFn = func(code, winnerID string, turns int) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.RecordMatchResult(ctx, code, winnerID, turns); err != nil {
				logger.Warnf("Failed to record match result for room %s: %v", code, err)
			}
		}()
	}

	return s
}

// attachRoom installs the transport callbacks on a room. Idempotent;
// callbacks survive individual connection churn because they resolve
// against the registry at send time.
func (s *GameServer) attachRoom(r *game.Room) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	code := r.Code
	if r.BroadcastFn == nil {
		r.BroadcastFn = func(ev game.Event) {
			s.broadcastRoom(code, ev)
		}
	}
	if r.BroadcastToPlayerFn == nil {
		r.BroadcastToPlayerFn = func(playerID string, ev game.Event) {
			s.sendToPlayer(playerID, ev)
		}
	}
}

func (s *GameServer) register(c *clientConn) {
	s.mu.Lock()
	s.conns[c.id] = c
	s.mu.Unlock()
}

func (s *GameServer) unregister(id string) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
}

// broadcastRoom sends an event to every connection in the room. Called
// while the room lock is held, so the writes happen on a goroutine.
func (s *GameServer) broadcastRoom(code string, ev game.Event) {
	s.mu.Lock()
	targets := make([]*websocket.Conn, 0, len(s.conns))
	for _, c := range s.conns {
		if c.room == code {
			targets = append(targets, c.conn)
		}
	}
	s.mu.Unlock()

	s.writeAsync(targets, ev)
}

// sendToPlayer sends an event to one connection by player ID.
func (s *GameServer) sendToPlayer(playerID string, ev game.Event) {
	s.mu.Lock()
	c, ok := s.conns[playerID]
	s.mu.Unlock()
	if !ok {
		return
	}
	s.writeAsync([]*websocket.Conn{c.conn}, ev)
}

// broadcastRoomList pushes the live room list to every connection.
func (s *GameServer) broadcastRoomList() {
	ev := game.Event{Type: game.EventRoomList, Payload: map[string]interface{}{
		"rooms": s.Rooms.List(),
	}}

	s.mu.Lock()
	targets := make([]*websocket.Conn, 0, len(s.conns))
	for _, c := range s.conns {
		targets = append(targets, c.conn)
	}
	s.mu.Unlock()

	s.writeAsync(targets, ev)
}

func (s *GameServer) writeAsync(targets []*websocket.Conn, ev game.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.Errorf("Failed to marshal event (%s): %v", ev.Type, err)
		return
	}
	go func() {
		for _, conn := range targets {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				s.logger.Warnf("Failed to write event (%s): %v", ev.Type, err)
			}
			cancel()
		}
	}()
}

// HealthHandler reports liveness.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
