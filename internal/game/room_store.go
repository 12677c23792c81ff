package game

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"echofall/internal/models"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomCodeTaken = errors.New("room code already in use")
	ErrBadRoomCode   = errors.New("invalid room code")
)

const (
	codeAlphabet  = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	codeLength    = 6
	maxCodeLength = 12
)

// RoomStore is the directory of live rooms. It owns room lifecycle
// (creation, lookup, removal) and the password hashing hooks; everything
// game-mechanical belongs to the Room itself.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	rng   *rand.Rand

	cfg RoomConfig
	log *logrus.Logger

	// HashPassword and ComparePassword are injected so the directory
	// stays decoupled from the hash implementation.
	HashPassword    func(password string) (string, error)
	ComparePassword func(password, hash string) (bool, error)

	// OnChange fires after the room population changes, for room list
	// broadcasts. May be called from room goroutines.
	OnChange func()

	// Per-room callbacks copied onto each new room.
	ActionLogFn    func(code string, seq int, playerID, action string, details map[string]interface{})
	RecordResultFn func(code, winnerID string, turns int)
}

// NewRoomStore creates an empty directory using the given config for
// every room it mints.
func NewRoomStore(cfg RoomConfig, logger *logrus.Logger) *RoomStore {
	if logger == nil {
		logger = logrus.New()
	}
	return &RoomStore{
		rooms: make(map[string]*Room),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cfg:   cfg,
		log:   logger,
	}
}

// CreateRoom mints a room under the requested code (or a generated one
// when the code is empty) and seats the host. The caller attaches
// transport callbacks to the returned room before any broadcast can
// fire.
func (s *RoomStore) CreateRoom(code, hostID, hostName, password string) (*Room, *models.Player, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code != "" && len(code) > maxCodeLength {
		return nil, nil, ErrBadRoomCode
	}

	hash := ""
	if password != "" && s.HashPassword != nil {
		var err error
		hash, err = s.HashPassword(password)
		if err != nil {
			return nil, nil, err
		}
	}

	s.mu.Lock()
	if code == "" {
		code = s.newCodeLocked()
	} else if _, taken := s.rooms[code]; taken {
		s.mu.Unlock()
		return nil, nil, ErrRoomCodeTaken
	}
	r := NewRoom(code, hash, s.cfg, s.log)
	r.ActionLogFn = s.ActionLogFn
	r.RecordResultFn = s.RecordResultFn
	r.OnEmpty = s.dropRoom
	s.rooms[code] = r
	s.mu.Unlock()

	r.Mu.Lock()
	p, err := r.Seat(hostID, hostName)
	r.Mu.Unlock()
	if err != nil {
		s.mu.Lock()
		delete(s.rooms, code)
		s.mu.Unlock()
		return nil, nil, err
	}

	s.log.WithField("room", code).WithField("host", hostName).Info("room created")
	s.notifyChange()
	return r, p, nil
}

// JoinRoom seats a new player, or reattaches a disconnected one when
// the display name matches a held seat.
func (s *RoomStore) JoinRoom(code, password, id, name string) (*Room, *models.Player, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	r, ok := s.Get(code)
	if !ok {
		return nil, nil, ErrRoomNotFound
	}
	if err := r.CheckPassword(password, s.ComparePassword); err != nil {
		return nil, nil, err
	}

	if p, err := r.Reconnect(name, id); err == nil {
		return r, p, nil
	}

	r.Mu.Lock()
	p, err := r.Seat(id, name)
	r.Mu.Unlock()
	if err != nil {
		return nil, nil, err
	}

	s.notifyChange()
	return r, p, nil
}

func (s *RoomStore) Get(code string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[code]
	return r, ok
}

// RoomSummary is one room list entry.
type RoomSummary struct {
	Code    string `json:"code"`
	Players int    `json:"players"`
	Phase   Phase  `json:"phase"`
	Locked  bool   `json:"locked"`
}

// List returns a summary of every live room.
func (s *RoomStore) List() []RoomSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RoomSummary, 0, len(s.rooms))
	for _, r := range s.rooms {
		r.Mu.Lock()
		out = append(out, RoomSummary{
			Code:    r.Code,
			Players: len(r.Players),
			Phase:   r.Phase,
			Locked:  r.passwordHash != "",
		})
		r.Mu.Unlock()
	}
	return out
}

// dropRoom removes an emptied room. Wired as each room's OnEmpty.
func (s *RoomStore) dropRoom(code string) {
	s.mu.Lock()
	_, ok := s.rooms[code]
	delete(s.rooms, code)
	s.mu.Unlock()
	if ok {
		s.log.WithField("room", code).Info("room removed")
		s.notifyChange()
	}
}

func (s *RoomStore) notifyChange() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

// newCodeLocked generates a room code unique among live rooms. Assumes
// the store lock is held.
func (s *RoomStore) newCodeLocked() string {
	for {
		b := make([]byte, codeLength)
		for i := range b {
			b[i] = codeAlphabet[s.rng.Intn(len(codeAlphabet))]
		}
		code := string(b)
		if _, taken := s.rooms[code]; !taken {
			return code
		}
	}
}
