// Package room implements the single-table hand/betting state machine
// (SPEC_FULL.md §4.2): seated players, betting rounds, pot accounting,
// and showdown resolution. Every exported operation is a pure state
// transition that returns the outbound messages it produces; I/O,
// channels, and concurrency live one layer up in roomhub/roommgr.
package room

import (
	"math/rand"
	"time"

	"github.com/vctt94/pokerroomd/internal/cards"
	"github.com/vctt94/pokerroomd/internal/protocol"
)

// Phase is one state in the per-hand betting state machine.
type Phase int

const (
	Lobby Phase = iota
	PreFlop
	Flop
	Turn
	River
	Showdown
)

func (p Phase) String() string {
	switch p {
	case Lobby:
		return "lobby"
	case PreFlop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case Showdown:
		return "showdown"
	default:
		return "unknown"
	}
}

// Status is a player's participation state within the current hand.
type Status int

const (
	Waiting Status = iota
	Active
	Folded
	AllIn
	Out
)

// ActionType is a betting action, using the lowercase wire vocabulary
// from SPEC_FULL.md §6.
type ActionType string

const (
	ActionFold  ActionType = "fold"
	ActionCheck ActionType = "check"
	ActionCall  ActionType = "call"
	ActionRaise ActionType = "raise"
	ActionAllIn ActionType = "allin"
)

// Player is one seated participant. Chip and bet invariants are
// enforced by the operations in this package, never set directly by
// callers outside it.
type Player struct {
	ID         uint32
	Name       string
	Chips      uint32
	Status     Status
	HoleCards  []cards.Card
	CurrentBet uint32
	SittingOut bool
}

// noRaiser marks the absence of a last-raiser seat.
const noRaiser = -1

// Room holds one table's complete in-memory state.
type Room struct {
	ID     string
	HostID uint32

	players   map[uint32]*Player
	seatOrder []uint32
	nextID    uint32

	Phase      Phase
	HandNumber uint64
	GameStarted bool

	dealerIdx        int
	sbIdx            int
	bbIdx            int
	currentPlayerIdx int
	firstActorIdx    int
	lastRaiserIdx    int
	bigBlindOption   bool

	Pot        uint32
	CurrentBet uint32
	MinRaise   uint32

	SmallBlind uint32
	BigBlind   uint32

	BlindConfig       protocol.BlindConfig
	lastBlindIncrease time.Time

	StartingChips  uint32
	StartingBBs    uint32
	AllowLateEntry bool

	deck      *cards.Deck
	Community []cards.Card

	rng *rand.Rand
}

// New creates an empty room in Lobby phase.
func New(id string, blindConfig protocol.BlindConfig, startingBBs uint32, smallBlind, bigBlind uint32, rng *rand.Rand) *Room {
	if startingBBs == 0 {
		startingBBs = 100
	}
	return &Room{
		ID:             id,
		players:        make(map[uint32]*Player),
		nextID:         1,
		Phase:          Lobby,
		dealerIdx:      -1,
		sbIdx:          -1,
		bbIdx:          -1,
		currentPlayerIdx: -1,
		lastRaiserIdx:  noRaiser,
		SmallBlind:     smallBlind,
		BigBlind:       bigBlind,
		BlindConfig:    blindConfig,
		StartingBBs:    startingBBs,
		StartingChips:  startingBBs * bigBlind,
		AllowLateEntry: false,
		rng:            rng,
	}
}

// RNG returns the room's random source, shared by callers that need
// randomness outside this package's own dealing logic (e.g. all-in
// equity simulation).
func (r *Room) RNG() *rand.Rand {
	return r.rng
}

// Player looks up a seated player by ID.
func (r *Room) Player(id uint32) (*Player, bool) {
	p, ok := r.players[id]
	return p, ok
}

// Players returns the seat-ordered list of all players.
func (r *Room) Players() []*Player {
	out := make([]*Player, 0, len(r.seatOrder))
	for _, id := range r.seatOrder {
		out = append(out, r.players[id])
	}
	return out
}

// PlayerCount returns the number of seated players.
func (r *Room) PlayerCount() int {
	return len(r.seatOrder)
}

// AddPlayer seats a new player (SPEC_FULL.md §4.2 add_player). When the
// game is already in progress and late entry is allowed, the player is
// seated sitting out with the frozen StartingChips; the first player
// ever added becomes host.
func (r *Room) AddPlayer(name string) (*Player, []OutMsg, error) {
	if r.GameStarted && !r.AllowLateEntry {
		return nil, nil, protocol.ErrGameInProgress
	}

	id := r.nextID
	r.nextID++

	p := &Player{
		ID:     id,
		Name:   name,
		Chips:  r.StartingChips,
		Status: Waiting,
	}
	if r.GameStarted {
		p.SittingOut = true
	}

	r.players[id] = p
	r.seatOrder = append(r.seatOrder, id) // original_source/: late entrants append, never reuse a seat (SPEC_FULL §12)

	if len(r.players) == 1 {
		r.HostID = id
	}

	msgs := []OutMsg{
		broadcastExcept(id, protocol.PlayerJoinedMsg{
			Type:     protocol.TypePlayerJoined,
			PlayerID: id,
			Name:     name,
		}),
	}
	return p, msgs, nil
}

// RemovePlayer drops a player from the table and seat order.
func (r *Room) RemovePlayer(id uint32) []OutMsg {
	if _, ok := r.players[id]; !ok {
		return nil
	}
	delete(r.players, id)
	for i, seatID := range r.seatOrder {
		if seatID == id {
			r.seatOrder = append(r.seatOrder[:i], r.seatOrder[i+1:]...)
			break
		}
	}
	return []OutMsg{
		broadcast(protocol.PlayerLeftMsg{Type: protocol.TypePlayerLeft, PlayerID: id}),
	}
}

func (r *Room) seatIndex(id uint32) int {
	for i, seatID := range r.seatOrder {
		if seatID == id {
			return i
		}
	}
	return -1
}

func (r *Room) playerAtSeat(idx int) *Player {
	if idx < 0 || idx >= len(r.seatOrder) {
		return nil
	}
	return r.players[r.seatOrder[idx]]
}

// CurrentPlayerID returns the ID of the seat on the clock, or 0 with ok
// false if no current player is set (e.g. in Lobby).
func (r *Room) CurrentPlayerID() (uint32, bool) {
	p := r.playerAtSeat(r.currentPlayerIdx)
	if p == nil {
		return 0, false
	}
	return p.ID, true
}

// DealerID returns the current hand's dealer seat, or 0 with ok false
// before any hand has been dealt.
func (r *Room) DealerID() (uint32, bool) {
	p := r.playerAtSeat(r.dealerIdx)
	if p == nil {
		return 0, false
	}
	return p.ID, true
}

// SmallBlindID returns the current hand's small-blind seat, or 0 with
// ok false before any hand has been dealt.
func (r *Room) SmallBlindID() (uint32, bool) {
	p := r.playerAtSeat(r.sbIdx)
	if p == nil {
		return 0, false
	}
	return p.ID, true
}

// BigBlindID returns the current hand's big-blind seat, or 0 with ok
// false before any hand has been dealt.
func (r *Room) BigBlindID() (uint32, bool) {
	p := r.playerAtSeat(r.bbIdx)
	if p == nil {
		return 0, false
	}
	return p.ID, true
}

// activeAndAllInCount counts players still live for showdown purposes.
func (r *Room) activeAndAllInCount() int {
	n := 0
	for _, id := range r.seatOrder {
		switch r.players[id].Status {
		case Active, AllIn:
			n++
		}
	}
	return n
}

func (r *Room) nonFoldedPlayers() []*Player {
	var out []*Player
	for _, id := range r.seatOrder {
		p := r.players[id]
		if p.Status == Active || p.Status == AllIn {
			out = append(out, p)
		}
	}
	return out
}

// NonFoldedPlayers exposes the current hand's contenders (Active or
// AllIn players) to the connection handler, which needs them to decide
// between a normal betting round, an uncontested award, and an all-in
// run-out (SPEC_FULL.md §4.5).
func (r *Room) NonFoldedPlayers() []*Player {
	return r.nonFoldedPlayers()
}

// ActiveCount returns the number of players who can still act this
// hand (Active, i.e. not folded, all-in, or sitting out the hand).
// When this drops to one or zero, no further betting is possible and
// the remaining streets run out automatically.
func (r *Room) ActiveCount() int {
	n := 0
	for _, id := range r.seatOrder {
		if r.players[id].Status == Active {
			n++
		}
	}
	return n
}
