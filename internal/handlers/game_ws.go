package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"echofall/internal/game"
	"echofall/internal/middleware"
)

// ClientMessage is one inbound WebSocket message. A single flat shape
// covers all action types; unused fields are simply omitted.
type ClientMessage struct {
	Type     string `json:"type"`
	Code     string `json:"code,omitempty"`
	Password string `json:"password,omitempty"`
	Name     string `json:"name,omitempty"`
	CardID   string `json:"cardId,omitempty"`
	TargetID string `json:"targetId,omitempty"`
}

// WSHandler upgrades the connection and runs the client's session: the
// connection ID becomes the player ID once the client enters a room, and
// a dropped connection hands the seat to the reconnect grace logic.
func WSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "game" {
			logger.Warnf("Client connected with invalid subprotocol: %s", c.Subprotocol())
			c.Close(websocket.StatusPolicyViolation, "Client must use the 'game' subprotocol.")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		client := &clientConn{
			id:   uuid.NewString(),
			conn: c,
		}
		gs.register(client)

		// Fresh clients get the room list immediately.
		gs.sendToPlayer(client.id, game.Event{Type: game.EventRoomList, Payload: map[string]interface{}{
			"rooms": gs.Rooms.List(),
		}})

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		readErr := readClientMessages(ctx, client, gs, logger)

		if client.room != "" {
			if room, ok := gs.Rooms.Get(client.room); ok {
				room.HandleDisconnect(client.id)
			}
		}
		gs.unregister(client.id)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)
	}
}

// readClientMessages is the per-connection read loop. Returns the read
// error that ended the session, or nil on a normal closure.
func readClientMessages(ctx context.Context, client *clientConn, gs *GameServer, logger *logrus.Logger) error {
	for {
		msgType, data, err := client.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway ||
				strings.Contains(err.Error(), "context canceled") {
				return nil
			}
			return err
		}

		if msgType != websocket.MessageText {
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid JSON from client %s: %v", client.id, err)
			gs.sendToPlayer(client.id, game.Event{Type: game.EventErrorMessage, Payload: map[string]interface{}{
				"message": "Invalid JSON format.",
			}})
			continue
		}

		logger.Debugf("Received '%s' from client %s", msg.Type, client.id)
		handleClientMessage(client, gs, msg, logger)

		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}

// handleClientMessage routes one inbound message. Validation errors are
// reported back as action_denied; they never end the session.
func handleClientMessage(client *clientConn, gs *GameServer, msg ClientMessage, logger *logrus.Logger) {
	switch msg.Type {
	case "create_room":
		if client.room != "" {
			denyAction(gs, client.id, "You are already in a room.")
			return
		}
		if msg.Name == "" {
			denyAction(gs, client.id, "A display name is required.")
			return
		}
		room, p, err := gs.Rooms.CreateRoom(msg.Code, client.id, msg.Name, msg.Password)
		if err != nil {
			denyAction(gs, client.id, err.Error())
			return
		}
		gs.attachRoom(room)
		client.room = room.Code
		client.name = p.Name
		gs.sendToPlayer(client.id, game.Event{Type: game.EventRoomJoined, Payload: map[string]interface{}{
			"roomCode": room.Code,
			"playerId": p.ID,
		}})
		room.SyncAll()

	case "join_room":
		if client.room != "" {
			denyAction(gs, client.id, "You are already in a room.")
			return
		}
		if msg.Name == "" || msg.Code == "" {
			denyAction(gs, client.id, "A room code and display name are required.")
			return
		}
		room, p, err := gs.Rooms.JoinRoom(strings.ToUpper(msg.Code), msg.Password, client.id, msg.Name)
		if err != nil {
			denyAction(gs, client.id, err.Error())
			return
		}
		gs.attachRoom(room)
		client.room = room.Code
		client.name = p.Name
		gs.sendToPlayer(client.id, game.Event{Type: game.EventRoomJoined, Payload: map[string]interface{}{
			"roomCode": room.Code,
			"playerId": p.ID,
		}})
		room.SyncAll()

	case "toggle_ready":
		withRoom(client, gs, func(room *game.Room) error { return room.ToggleReady(client.id) })

	case "play_card":
		withRoom(client, gs, func(room *game.Room) error {
			return room.PlayCard(client.id, msg.CardID, msg.TargetID)
		})

	case "draw_card":
		withRoom(client, gs, func(room *game.Room) error { return room.DrawCardAction(client.id) })

	case "drink_potion":
		withRoom(client, gs, func(room *game.Room) error { return room.DrinkPotion(client.id) })

	case "end_turn":
		withRoom(client, gs, func(room *game.Room) error { return room.EndTurn(client.id) })

	case "ping":
		gs.sendToPlayer(client.id, game.Event{Type: "pong"})

	default:
		logger.Warnf("Unknown message type '%s' from client %s", msg.Type, client.id)
		gs.sendToPlayer(client.id, game.Event{Type: game.EventErrorMessage, Payload: map[string]interface{}{
			"message": fmt.Sprintf("Unknown message type: %s", msg.Type),
		}})
	}
}

// withRoom runs a room action for a seated client, reporting failures as
// action_denied.
func withRoom(client *clientConn, gs *GameServer, fn func(*game.Room) error) {
	if client.room == "" {
		denyAction(gs, client.id, "You are not in a room.")
		return
	}
	room, ok := gs.Rooms.Get(client.room)
	if !ok {
		denyAction(gs, client.id, "Room no longer exists.")
		client.room = ""
		return
	}
	if err := fn(room); err != nil {
		denyAction(gs, client.id, err.Error())
	}
}

func denyAction(gs *GameServer, playerID, message string) {
	gs.sendToPlayer(playerID, game.Event{Type: game.EventActionDenied, Payload: map[string]interface{}{
		"message": message,
	}})
}
