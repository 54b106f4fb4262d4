// Package roomhub implements the room container (SPEC_FULL.md §4.3):
// couples a room.Room with asynchronous per-player delivery, a session
// token registry, and the turn counter used to invalidate stale timers.
package roomhub

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vctt94/pokerroomd/internal/room"
)

// outboundBuffer is generous enough that normal play never blocks a
// send; SPEC_FULL.md §5 documents unbounded queues as a known risk,
// this module bounds them instead and drops to the slowest consumer
// rather than growing memory without limit.
const outboundBuffer = 256

// Hub wraps one Room with its per-player outbound channels and session
// bookkeeping. All mutation of Room and of Hub's own maps happens while
// holding mu, matching SPEC_FULL.md §5's single room-mutex model.
type Hub struct {
	mu   sync.Mutex
	Room *room.Room

	outbound map[uint32]chan any

	tokenToPlayer map[string]uint32
	playerToToken map[uint32]string
	disconnectedAt map[uint32]time.Time

	turnCounter uint64
}

// New wraps r in a fresh Hub.
func New(r *room.Room) *Hub {
	return &Hub{
		Room:           r,
		outbound:       make(map[uint32]chan any),
		tokenToPlayer:  make(map[string]uint32),
		playerToToken:  make(map[uint32]string),
		disconnectedAt: make(map[uint32]time.Time),
	}
}

// Lock/Unlock expose the room mutex to the connection handler, which
// must hold it for the duration of one message's processing including
// the resulting broadcasts (SPEC_FULL.md §5).
func (h *Hub) Lock()   { h.mu.Lock() }
func (h *Hub) Unlock() { h.mu.Unlock() }

// NewSession allocates a fresh outbound queue and session token for
// playerID, replacing any previous queue (used on both first join and
// rejoin).
func (h *Hub) NewSession(playerID uint32) (token string, receiver <-chan any) {
	token = uuid.NewString()
	ch := make(chan any, outboundBuffer)
	h.outbound[playerID] = ch
	h.tokenToPlayer[token] = playerID
	h.playerToToken[playerID] = token
	delete(h.disconnectedAt, playerID)
	return token, ch
}

// LookupSession resolves a session token to a player ID.
func (h *Hub) LookupSession(token string) (uint32, bool) {
	id, ok := h.tokenToPlayer[token]
	return id, ok
}

// MarkDisconnected records the instant a player's transport dropped,
// for the grace-period reaper (SPEC_FULL.md §4.4).
func (h *Hub) MarkDisconnected(playerID uint32, at time.Time) {
	h.disconnectedAt[playerID] = at
	close(h.outbound[playerID])
	delete(h.outbound, playerID)
}

// DisconnectedSince returns the recorded disconnect instant, if any.
func (h *Hub) DisconnectedSince(playerID uint32) (time.Time, bool) {
	t, ok := h.disconnectedAt[playerID]
	return t, ok
}

// ClearSession removes all session/queue state for a player being
// permanently removed.
func (h *Hub) ClearSession(playerID uint32) {
	if token, ok := h.playerToToken[playerID]; ok {
		delete(h.tokenToPlayer, token)
	}
	delete(h.playerToToken, playerID)
	delete(h.disconnectedAt, playerID)
	if ch, ok := h.outbound[playerID]; ok {
		close(ch)
		delete(h.outbound, playerID)
	}
}

// ConnectedCount returns the number of players with a live outbound
// queue, used by the room manager's empty-room cleanup.
func (h *Hub) ConnectedCount() int {
	return len(h.outbound)
}

// NextTurn increments and returns the turn counter; a turn-timer task
// captures the returned value and aborts if it no longer matches by the
// time it fires (SPEC_FULL.md §4.3).
func (h *Hub) NextTurn() uint64 {
	h.turnCounter++
	return h.turnCounter
}

// TurnCounter returns the current turn counter without incrementing it.
func (h *Hub) TurnCounter() uint64 {
	return h.turnCounter
}

// SendTo posts msg to one player's queue. A full queue (a stalled
// consumer) drops the message rather than blocking the room lock.
func (h *Hub) SendTo(playerID uint32, msg any) {
	ch, ok := h.outbound[playerID]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
	}
}

// Broadcast posts msg to every connected player's queue.
func (h *Hub) Broadcast(msg any) {
	for id := range h.outbound {
		h.SendTo(id, msg)
	}
}

// BroadcastExcept posts msg to every connected player's queue except
// except.
func (h *Hub) BroadcastExcept(except uint32, msg any) {
	for id := range h.outbound {
		if id == except {
			continue
		}
		h.SendTo(id, msg)
	}
}

// Dispatch fans out a slice of room.OutMsg to the appropriate queues.
func (h *Hub) Dispatch(msgs []room.OutMsg) {
	for _, m := range msgs {
		switch m.Target {
		case room.ToOne:
			h.SendTo(m.PlayerID, m.Payload)
		case room.ToAllExcept:
			h.BroadcastExcept(m.Except, m.Payload)
		default:
			h.Broadcast(m.Payload)
		}
	}
}
