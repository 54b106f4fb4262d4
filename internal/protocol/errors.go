package protocol

import "errors"

// Sentinel errors realizing the error taxonomy in SPEC_FULL.md §7/§10.2.
// The connection handler maps each to the wire-level Error or RoomError
// envelope; callers should compare with errors.Is, never string matching.
var (
	// Room errors.
	ErrUnknownRoom    = errors.New("protocol: unknown room")
	ErrDuplicateRoom  = errors.New("protocol: room already exists")
	ErrInvalidRoomID  = errors.New("protocol: invalid room id")
	ErrGameInProgress = errors.New("protocol: game already in progress")

	// Action errors.
	ErrNotYourTurn       = errors.New("protocol: not your turn")
	ErrInvalidAction     = errors.New("protocol: invalid action for current state")
	ErrInsufficientChips = errors.New("protocol: insufficient chips")
	ErrBelowMinRaise     = errors.New("protocol: raise below minimum")
	ErrNotEnoughPlayers  = errors.New("protocol: at least two players required")

	// Session errors. Rejoin with a token that never existed and rejoin
	// after the grace-period reaper has cleared it both surface the same
	// sentinel: the reaper deletes the session entirely rather than
	// tombstoning it, so RejoinRoom cannot tell "unknown" from "expired"
	// apart, and spec.md §7 maps both to the same wire-level RoomError
	// anyway.
	ErrUnknownSession = errors.New("protocol: unknown session token")

	// Protocol errors.
	ErrUnknownMessageType = errors.New("protocol: unknown message type")
	ErrMalformedMessage   = errors.New("protocol: malformed message")
	ErrNotHost            = errors.New("protocol: host-only operation")
)
