package roomhub

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vctt94/pokerroomd/internal/protocol"
	"github.com/vctt94/pokerroomd/internal/room"
)

func newTestHub(t *testing.T) (*Hub, *room.Player) {
	t.Helper()
	r := room.New("t1", protocol.BlindConfig{}, 50, 10, 20, rand.New(rand.NewSource(1)))
	p, _, err := r.AddPlayer("Alice")
	require.NoError(t, err)
	return New(r), p
}

func TestHub_NewSessionAndLookup(t *testing.T) {
	hub, p := newTestHub(t)
	token, receiver := hub.NewSession(p.ID)
	assert.NotEmpty(t, token)

	id, ok := hub.LookupSession(token)
	require.True(t, ok)
	assert.Equal(t, p.ID, id)

	hub.SendTo(p.ID, "hello")
	select {
	case msg := <-receiver:
		assert.Equal(t, "hello", msg)
	default:
		t.Fatal("expected a message on the receiver channel")
	}
}

func TestHub_SendToFullQueueDropsRatherThanBlocks(t *testing.T) {
	hub, p := newTestHub(t)
	_, receiver := hub.NewSession(p.ID)

	for i := 0; i < outboundBuffer+10; i++ {
		hub.SendTo(p.ID, i)
	}
	assert.Len(t, receiver, outboundBuffer)
}

func TestHub_MarkDisconnectedClosesQueue(t *testing.T) {
	hub, p := newTestHub(t)
	_, receiver := hub.NewSession(p.ID)

	hub.MarkDisconnected(p.ID, time.Now())
	_, ok := <-receiver
	assert.False(t, ok, "queue should be closed on disconnect")
	assert.Equal(t, 0, hub.ConnectedCount())
}

func TestHub_ClearSessionRemovesToken(t *testing.T) {
	hub, p := newTestHub(t)
	token, _ := hub.NewSession(p.ID)

	hub.ClearSession(p.ID)
	_, ok := hub.LookupSession(token)
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ConnectedCount())
}

func TestHub_BroadcastExcept(t *testing.T) {
	r := room.New("t1", protocol.BlindConfig{}, 50, 10, 20, rand.New(rand.NewSource(1)))
	alice, _, _ := r.AddPlayer("Alice")
	bob, _, _ := r.AddPlayer("Bob")
	hub := New(r)
	_, aliceRecv := hub.NewSession(alice.ID)
	_, bobRecv := hub.NewSession(bob.ID)

	hub.BroadcastExcept(alice.ID, "update")

	select {
	case <-aliceRecv:
		t.Fatal("alice should not receive a message excluding her")
	default:
	}
	select {
	case msg := <-bobRecv:
		assert.Equal(t, "update", msg)
	default:
		t.Fatal("bob should have received the broadcast")
	}
}

func TestHub_NextTurnIncrements(t *testing.T) {
	hub, _ := newTestHub(t)
	assert.Equal(t, uint64(0), hub.TurnCounter())
	assert.Equal(t, uint64(1), hub.NextTurn())
	assert.Equal(t, uint64(2), hub.NextTurn())
	assert.Equal(t, uint64(2), hub.TurnCounter())
}
