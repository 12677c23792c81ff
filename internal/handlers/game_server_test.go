package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echofall/internal/game"
)

func newTestServer() *GameServer {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewGameServer(game.DefaultConfig(), logger)
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	HealthHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServerWiresPasswordHashing(t *testing.T) {
	s := newTestServer()

	r, _, err := s.Rooms.CreateRoom("", uuid.NewString(), "host", "secret")
	require.NoError(t, err)

	_, _, err = s.Rooms.JoinRoom(r.Code, "nope", uuid.NewString(), "guest")
	assert.ErrorIs(t, err, game.ErrWrongPassword)

	_, _, err = s.Rooms.JoinRoom(r.Code, "secret", uuid.NewString(), "guest")
	assert.NoError(t, err)
}

func TestClientMessageShape(t *testing.T) {
	raw := `{"type":"play_card","code":"AB12CD","cardId":"c-1","targetId":"p-2"}`
	var msg ClientMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	assert.Equal(t, "play_card", msg.Type)
	assert.Equal(t, "AB12CD", msg.Code)
	assert.Equal(t, "c-1", msg.CardID)
	assert.Equal(t, "p-2", msg.TargetID)
}
