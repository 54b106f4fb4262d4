// Package roommgr implements the process-wide room directory
// (SPEC_FULL.md §4.4): creation, join/rejoin/disconnect, the
// grace-period reaper, and empty-room cleanup.
package roommgr

import (
	"math/rand"
	"sync"
	"time"

	"github.com/decred/slog"

	"github.com/vctt94/pokerroomd/internal/protocol"
	"github.com/vctt94/pokerroomd/internal/room"
	"github.com/vctt94/pokerroomd/internal/roomhub"
)

// DefaultGracePeriod is the fixed disconnect grace period from
// SPEC_FULL.md §5/§10.3, overridable via PKR_GRACE_PERIOD_SECS.
const DefaultGracePeriod = 5 * time.Minute

// JoinResult is what JoinRoom returns to the connection handler.
type JoinResult struct {
	PlayerID    uint32
	Token       string
	Receiver    <-chan any
	PlayerCount int
	Hub         *roomhub.Hub
	IsHost      bool
}

// Manager is the process-wide room registry: an outer RW lock over the
// map of room ID to Hub, so independent rooms never contend once
// looked up (each Hub then serializes its own room with its own mutex).
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*roomhub.Hub

	log          slog.Logger
	gracePeriod  time.Duration
	rngSource    func() *rand.Rand
}

// New creates an empty room manager.
func New(log slog.Logger, gracePeriod time.Duration) *Manager {
	if gracePeriod <= 0 {
		gracePeriod = DefaultGracePeriod
	}
	return &Manager{
		rooms:       make(map[string]*roomhub.Hub),
		log:         log,
		gracePeriod: gracePeriod,
		rngSource: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// CreateRoom implements SPEC_FULL.md §4.4 create_room.
func (m *Manager) CreateRoom(id string, blindConfig protocol.BlindConfig, startingBBs, smallBlind, bigBlind uint32) (*roomhub.Hub, error) {
	if err := protocol.ValidateRoomID(id); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rooms[id]; exists {
		return nil, protocol.ErrDuplicateRoom
	}

	r := room.New(id, blindConfig, startingBBs, smallBlind, bigBlind, m.rngSource())
	hub := roomhub.New(r)
	m.rooms[id] = hub
	m.log.Infof("room %s created", id)
	return hub, nil
}

// Lookup returns the hub for a room ID, if it exists.
func (m *Manager) Lookup(id string) (*roomhub.Hub, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.rooms[id]
	return h, ok
}

// JoinRoom implements SPEC_FULL.md §4.4 join_room.
func (m *Manager) JoinRoom(roomID, name string) (*JoinResult, error) {
	hub, ok := m.Lookup(roomID)
	if !ok {
		return nil, protocol.ErrUnknownRoom
	}

	hub.Lock()
	defer hub.Unlock()

	p, msgs, err := hub.Room.AddPlayer(name)
	if err != nil {
		return nil, err
	}
	hub.Dispatch(msgs)

	token, receiver := hub.NewSession(p.ID)

	return &JoinResult{
		PlayerID:    p.ID,
		Token:       token,
		Receiver:    receiver,
		PlayerCount: hub.Room.PlayerCount(),
		Hub:         hub,
		IsHost:      p.ID == hub.Room.HostID,
	}, nil
}

// RejoinRoom implements SPEC_FULL.md §4.4 rejoin_room.
func (m *Manager) RejoinRoom(roomID, token string) (*JoinResult, error) {
	hub, ok := m.Lookup(roomID)
	if !ok {
		return nil, protocol.ErrUnknownRoom
	}

	hub.Lock()
	defer hub.Unlock()

	playerID, ok := hub.LookupSession(token)
	if !ok {
		return nil, protocol.ErrUnknownSession
	}

	newToken, receiver := hub.NewSession(playerID)
	return &JoinResult{
		PlayerID:    playerID,
		Token:       newToken,
		Receiver:    receiver,
		PlayerCount: hub.Room.PlayerCount(),
		Hub:         hub,
		IsHost:      playerID == hub.Room.HostID,
	}, nil
}

// DisconnectPlayer implements SPEC_FULL.md §4.4 disconnect_player. If a
// game is in progress the player is benched and a grace-period reaper
// is spawned; otherwise they are removed immediately.
func (m *Manager) DisconnectPlayer(roomID string, playerID uint32) {
	hub, ok := m.Lookup(roomID)
	if !ok {
		return
	}

	hub.Lock()
	gameInProgress := hub.Room.GameStarted
	if gameInProgress {
		if p, ok := hub.Room.Player(playerID); ok {
			p.SittingOut = true
		}
		now := time.Now()
		hub.MarkDisconnected(playerID, now)
		hub.Broadcast(protocol.PlayerSatOutMsg{Type: protocol.TypePlayerSatOut, PlayerID: playerID})
		hub.Unlock()

		go m.reapAfterGrace(roomID, playerID, now)
		return
	}

	msgs := hub.Room.RemovePlayer(playerID)
	hub.ClearSession(playerID)
	hub.Dispatch(msgs)
	empty := hub.ConnectedCount() == 0
	hub.Unlock()

	if empty {
		m.removeIfEmpty(roomID)
	}
}

// reapAfterGrace implements SPEC_FULL.md §4.4's grace-period reaper: it
// sleeps for the grace period, then re-checks the disconnect timestamp
// atomically (under the room lock) before permanently removing the
// player, so a concurrent rejoin always wins the race.
func (m *Manager) reapAfterGrace(roomID string, playerID uint32, disconnectedAt time.Time) {
	time.Sleep(m.gracePeriod)

	hub, ok := m.Lookup(roomID)
	if !ok {
		return
	}

	hub.Lock()
	ts, stillDisconnected := hub.DisconnectedSince(playerID)
	if !stillDisconnected || !ts.Equal(disconnectedAt) {
		hub.Unlock()
		return
	}

	msgs := hub.Room.RemovePlayer(playerID)
	hub.ClearSession(playerID)
	hub.Dispatch(msgs)
	empty := hub.ConnectedCount() == 0
	hub.Unlock()

	m.log.Infof("room %s: player %d removed after grace period", roomID, playerID)

	if empty {
		m.removeIfEmpty(roomID)
	}
}

// removeIfEmpty deletes a room from the registry if it has no connected
// players left, re-verifying emptiness under the write lock to avoid
// racing a concurrent join (SPEC_FULL.md §4.4).
func (m *Manager) removeIfEmpty(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub, ok := m.rooms[roomID]
	if !ok {
		return
	}

	hub.Lock()
	empty := hub.ConnectedCount() == 0
	hub.Unlock()

	if empty {
		delete(m.rooms, roomID)
		m.log.Infof("room %s removed (empty)", roomID)
	}
}
