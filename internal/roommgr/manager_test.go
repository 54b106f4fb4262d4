package roommgr

import (
	"testing"
	"time"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vctt94/pokerroomd/internal/protocol"
)

func newTestManager(gracePeriod time.Duration) *Manager {
	return New(slog.Disabled, gracePeriod)
}

func TestCreateRoom_RejectsDuplicateAndInvalidID(t *testing.T) {
	m := newTestManager(time.Minute)
	_, err := m.CreateRoom("t1", protocol.BlindConfig{}, 50, 10, 20)
	require.NoError(t, err)

	_, err = m.CreateRoom("t1", protocol.BlindConfig{}, 50, 10, 20)
	assert.ErrorIs(t, err, protocol.ErrDuplicateRoom)

	_, err = m.CreateRoom("bad room", protocol.BlindConfig{}, 50, 10, 20)
	assert.ErrorIs(t, err, protocol.ErrInvalidRoomID)
}

func TestJoinRoom_UnknownRoom(t *testing.T) {
	m := newTestManager(time.Minute)
	_, err := m.JoinRoom("nope", "Alice")
	assert.ErrorIs(t, err, protocol.ErrUnknownRoom)
}

func TestJoinRoom_FirstPlayerIsHost(t *testing.T) {
	m := newTestManager(time.Minute)
	_, err := m.CreateRoom("t1", protocol.BlindConfig{}, 50, 10, 20)
	require.NoError(t, err)

	res, err := m.JoinRoom("t1", "Alice")
	require.NoError(t, err)
	assert.True(t, res.IsHost)
	assert.Equal(t, 1, res.PlayerCount)

	res2, err := m.JoinRoom("t1", "Bob")
	require.NoError(t, err)
	assert.False(t, res2.IsHost)
	assert.Equal(t, 2, res2.PlayerCount)
}

func TestRejoinRoom_UnknownSession(t *testing.T) {
	m := newTestManager(time.Minute)
	_, err := m.CreateRoom("t1", protocol.BlindConfig{}, 50, 10, 20)
	require.NoError(t, err)

	_, err = m.RejoinRoom("t1", "not-a-real-token")
	assert.ErrorIs(t, err, protocol.ErrUnknownSession)
}

func TestRejoinRoom_IssuesFreshToken(t *testing.T) {
	m := newTestManager(time.Minute)
	_, err := m.CreateRoom("t1", protocol.BlindConfig{}, 50, 10, 20)
	require.NoError(t, err)
	joined, err := m.JoinRoom("t1", "Alice")
	require.NoError(t, err)

	rejoined, err := m.RejoinRoom("t1", joined.Token)
	require.NoError(t, err)
	assert.Equal(t, joined.PlayerID, rejoined.PlayerID)
	assert.NotEqual(t, joined.Token, rejoined.Token)
}

func TestDisconnectPlayer_RemovesImmediatelyBeforeGameStart(t *testing.T) {
	m := newTestManager(time.Minute)
	_, err := m.CreateRoom("t1", protocol.BlindConfig{}, 50, 10, 20)
	require.NoError(t, err)
	joined, err := m.JoinRoom("t1", "Alice")
	require.NoError(t, err)

	m.DisconnectPlayer("t1", joined.PlayerID)

	_, ok := m.Lookup("t1")
	assert.False(t, ok, "room should be cleaned up once its last player leaves pre-game")
}

func TestDisconnectPlayer_BenchesRatherThanRemovesMidGame(t *testing.T) {
	m := newTestManager(time.Hour)
	_, err := m.CreateRoom("t1", protocol.BlindConfig{}, 50, 10, 20)
	require.NoError(t, err)
	alice, err := m.JoinRoom("t1", "Alice")
	require.NoError(t, err)
	_, err = m.JoinRoom("t1", "Bob")
	require.NoError(t, err)

	hub, ok := m.Lookup("t1")
	require.True(t, ok)
	hub.Lock()
	_, err = hub.Room.StartNewHand()
	hub.Unlock()
	require.NoError(t, err)

	m.DisconnectPlayer("t1", alice.PlayerID)

	hub, ok = m.Lookup("t1")
	require.True(t, ok, "room survives a mid-game disconnect: the benched player may still rejoin")
	p, ok := hub.Room.Player(alice.PlayerID)
	require.True(t, ok, "player stays seated, just sitting out")
	assert.True(t, p.SittingOut)
}
