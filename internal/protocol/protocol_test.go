package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRoomID(t *testing.T) {
	assert.NoError(t, ValidateRoomID("table1"))
	assert.NoError(t, ValidateRoomID("Abc123"))
	assert.ErrorIs(t, ValidateRoomID(""), ErrInvalidRoomID)
	assert.ErrorIs(t, ValidateRoomID("has space"), ErrInvalidRoomID)
	assert.ErrorIs(t, ValidateRoomID("toolongtoolongtoolong1"), ErrInvalidRoomID)
}

func TestDecodeClient_CreateRoom(t *testing.T) {
	raw := []byte(`{"type":"CreateRoom","room_id":"t1","blind_config":{"interval_secs":0,"increase_percent":0},"starting_bbs":50}`)
	msgType, payload, err := DecodeClient(raw)
	require.NoError(t, err)
	assert.Equal(t, TypeCreateRoom, msgType)

	m, ok := payload.(CreateRoomMsg)
	require.True(t, ok)
	assert.Equal(t, "t1", m.RoomID)
	assert.Equal(t, uint32(50), m.StartingBBs)
}

func TestDecodeClient_Raise(t *testing.T) {
	raw := []byte(`{"type":"Raise","amount":100}`)
	msgType, payload, err := DecodeClient(raw)
	require.NoError(t, err)
	assert.Equal(t, TypeRaise, msgType)
	assert.Equal(t, uint32(100), payload.(RaiseMsg).Amount)
}

func TestDecodeClient_PayloadlessMessages(t *testing.T) {
	for _, typ := range []string{TypeStartGame, TypeFold, TypeCheck, TypeCall, TypeAllIn, TypeSitOut, TypeSitIn, TypeToggleLateEntry, TypeGetPlayers, TypePing} {
		raw, err := json.Marshal(Envelope{Type: typ})
		require.NoError(t, err)
		msgType, _, err := DecodeClient(raw)
		require.NoError(t, err)
		assert.Equal(t, typ, msgType)
	}
}

func TestDecodeClient_UnknownType(t *testing.T) {
	raw := []byte(`{"type":"NotAThing"}`)
	_, _, err := DecodeClient(raw)
	assert.ErrorIs(t, err, ErrUnknownMessageType)
}

func TestDecodeClient_Malformed(t *testing.T) {
	_, _, err := DecodeClient([]byte(`{not json`))
	assert.ErrorIs(t, err, ErrMalformedMessage)
}
