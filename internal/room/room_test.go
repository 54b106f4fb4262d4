package room

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vctt94/pokerroomd/internal/protocol"
)

func newTestRoom(t *testing.T, startingBBs, smallBlind, bigBlind uint32) *Room {
	t.Helper()
	return New("t1", protocol.BlindConfig{}, startingBBs, smallBlind, bigBlind, rand.New(rand.NewSource(1)))
}

// afterAction mirrors internal/connhandler's round-advance decision
// (continue betting / uncontested award / all-in run-out / next
// street) against the pure room API, without the locking and pacing
// that only matter to a live connection.
func afterAction(t *testing.T, r *Room) {
	t.Helper()
	if !r.IsBettingComplete() {
		r.NextPlayer()
		return
	}
	if len(r.NonFoldedPlayers()) <= 1 {
		_, err := r.ResolveHand()
		require.NoError(t, err)
		return
	}
	if r.ActiveCount() <= 1 {
		for r.Phase != Showdown {
			_, err := r.AdvancePhase()
			require.NoError(t, err)
		}
		_, err := r.ResolveHand()
		require.NoError(t, err)
		return
	}
	_, err := r.AdvancePhase()
	require.NoError(t, err)
	if r.Phase == Showdown {
		_, err := r.ResolveHand()
		require.NoError(t, err)
	}
}

// totalChips sums every stack plus the pot. Bets move into the pot as
// they are made, so CurrentBet is already counted there.
func totalChips(r *Room) uint32 {
	total := r.Pot
	for _, p := range r.Players() {
		total += p.Chips
	}
	return total
}

// TestHeadsUpFoldPreflop reproduces spec.md §8 scenario 1: two players,
// 1000 chips each, blinds 10/20; the small blind folds preflop and the
// big blind takes the pot uncontested.
func TestHeadsUpFoldPreflop(t *testing.T) {
	r := newTestRoom(t, 50, 10, 20)
	alice, _, err := r.AddPlayer("Alice")
	require.NoError(t, err)
	bob, _, err := r.AddPlayer("Bob")
	require.NoError(t, err)
	require.Equal(t, uint32(1000), alice.Chips)
	require.Equal(t, uint32(1000), bob.Chips)

	before := totalChips(r)
	_, err = r.StartNewHand()
	require.NoError(t, err)
	assert.Equal(t, before, totalChips(r))

	// Heads-up: the dealer (Alice, seated first) posts the small blind
	// and acts first preflop.
	cur, ok := r.CurrentPlayerID()
	require.True(t, ok)
	assert.Equal(t, alice.ID, cur)
	assert.Equal(t, uint32(990), alice.Chips)
	assert.Equal(t, uint32(980), bob.Chips)

	dealerID, ok := r.DealerID()
	require.True(t, ok)
	sbID, ok := r.SmallBlindID()
	require.True(t, ok)
	bbID, ok := r.BigBlindID()
	require.True(t, ok)
	assert.Equal(t, alice.ID, dealerID, "heads-up: the dealer posts the small blind")
	assert.Equal(t, alice.ID, sbID)
	assert.Equal(t, bob.ID, bbID)

	_, err = r.ApplyAction(alice.ID, ActionFold, 0)
	require.NoError(t, err)
	afterAction(t, r)

	assert.Equal(t, uint32(990), alice.Chips)
	assert.Equal(t, uint32(1010), bob.Chips)
	assert.Equal(t, uint32(0), r.Pot)
	assert.Equal(t, before, totalChips(r))

	dealerBefore := r.dealerIdx
	_, err = r.StartNewHand()
	require.NoError(t, err)
	assert.NotEqual(t, dealerBefore, r.dealerIdx, "dealer button should rotate between hands")
}

// TestThreeWayFoldToHeadsUpShowdown reproduces the shape of spec.md §8
// scenario 3: three players see a flop and turn, one folds on the
// turn, and the remaining two go all-in on the river for an evaluated
// showdown. Chip conservation must hold at every step.
func TestThreeWayFoldToHeadsUpShowdown(t *testing.T) {
	r := newTestRoom(t, 25, 10, 20)
	a, _, err := r.AddPlayer("A")
	require.NoError(t, err)
	b, _, err := r.AddPlayer("B")
	require.NoError(t, err)
	c, _, err := r.AddPlayer("C")
	require.NoError(t, err)
	require.Equal(t, uint32(500), a.Chips)

	before := totalChips(r)
	_, err = r.StartNewHand()
	require.NoError(t, err)
	assert.Equal(t, before, totalChips(r))

	dealerID, ok := r.DealerID()
	require.True(t, ok)
	sbID, ok := r.SmallBlindID()
	require.True(t, ok)
	bbID, ok := r.BigBlindID()
	require.True(t, ok)
	assert.Equal(t, a.ID, dealerID)
	assert.Equal(t, b.ID, sbID)
	assert.Equal(t, c.ID, bbID)

	// Preflop: A (dealer/UTG) calls, B (SB) calls, C (BB) checks.
	_, err = r.ApplyAction(a.ID, ActionCall, 0)
	require.NoError(t, err)
	assert.Equal(t, before, totalChips(r))
	afterAction(t, r)

	_, err = r.ApplyAction(b.ID, ActionCall, 0)
	require.NoError(t, err)
	afterAction(t, r)

	_, err = r.ApplyAction(c.ID, ActionCheck, 0)
	require.NoError(t, err)
	afterAction(t, r)
	assert.Equal(t, Flop, r.Phase)
	assert.Equal(t, before, totalChips(r))

	// Flop: everyone checks.
	for i := 0; i < 3; i++ {
		cur, ok := r.CurrentPlayerID()
		require.True(t, ok)
		_, err = r.ApplyAction(cur, ActionCheck, 0)
		require.NoError(t, err)
		afterAction(t, r)
	}
	assert.Equal(t, Turn, r.Phase)
	assert.Equal(t, before, totalChips(r))

	// Turn: B bets, C folds, A calls.
	cur, ok := r.CurrentPlayerID()
	require.True(t, ok)
	assert.Equal(t, b.ID, cur)
	_, err = r.ApplyAction(b.ID, ActionRaise, 50)
	require.NoError(t, err)
	afterAction(t, r)

	_, err = r.ApplyAction(c.ID, ActionFold, 0)
	require.NoError(t, err)
	afterAction(t, r)

	_, err = r.ApplyAction(a.ID, ActionCall, 0)
	require.NoError(t, err)
	afterAction(t, r)
	assert.Equal(t, River, r.Phase)
	assert.Equal(t, before, totalChips(r))
	assert.Len(t, r.NonFoldedPlayers(), 2, "C folded and is excluded from the showdown")

	// River: both remaining players go all-in for the same total.
	cur, ok = r.CurrentPlayerID()
	require.True(t, ok)
	_, err = r.ApplyAction(cur, ActionAllIn, 0)
	require.NoError(t, err)
	afterAction(t, r)

	cur, ok = r.CurrentPlayerID()
	require.True(t, ok)
	_, err = r.ApplyAction(cur, ActionAllIn, 0)
	require.NoError(t, err)
	afterAction(t, r)

	// The run-out resolves the hand without further input. C folded on
	// the turn and neither contributes to nor shares in the showdown
	// pot from that point on.
	assert.Equal(t, uint32(0), r.Pot)
	assert.Equal(t, before, totalChips(r))
	assert.Equal(t, uint32(480), c.Chips)
}

// TestLateEntry reproduces spec.md §8 scenario 6: a player who joins
// mid-hand with late entry enabled is seated sitting out with chips
// frozen at game start, not the room's current stack default.
func TestLateEntry(t *testing.T) {
	r := newTestRoom(t, 50, 10, 20)
	_, _, err := r.AddPlayer("Alice")
	require.NoError(t, err)
	_, _, err = r.AddPlayer("Bob")
	require.NoError(t, err)

	_, err = r.StartNewHand()
	require.NoError(t, err)

	_, _, err = r.AddPlayer("Carol")
	require.ErrorIs(t, err, protocol.ErrGameInProgress)

	r.AllowLateEntry = true
	carol, msgs, err := r.AddPlayer("Carol")
	require.NoError(t, err)
	assert.True(t, carol.SittingOut)
	assert.Equal(t, uint32(1000), carol.Chips, "frozen starting_chips, not a function of current blinds")
	assert.NotEmpty(t, msgs)

	assert.Equal(t, Waiting, carol.Status)
}

func TestDealerSmallBlindBigBlindID_UnsetBeforeFirstHand(t *testing.T) {
	r := newTestRoom(t, 50, 10, 20)
	r.AddPlayer("Alice")
	r.AddPlayer("Bob")

	_, ok := r.DealerID()
	assert.False(t, ok)
	_, ok = r.SmallBlindID()
	assert.False(t, ok)
	_, ok = r.BigBlindID()
	assert.False(t, ok)
}

func TestApplyAction_RejectsOutOfTurn(t *testing.T) {
	r := newTestRoom(t, 50, 10, 20)
	alice, _, _ := r.AddPlayer("Alice")
	bob, _, _ := r.AddPlayer("Bob")
	_, err := r.StartNewHand()
	require.NoError(t, err)

	cur, _ := r.CurrentPlayerID()
	notCur := alice.ID
	if cur == alice.ID {
		notCur = bob.ID
	}
	_, err = r.ApplyAction(notCur, ActionFold, 0)
	assert.ErrorIs(t, err, protocol.ErrNotYourTurn)
}

func TestApplyAction_RejectsIllegalAction(t *testing.T) {
	r := newTestRoom(t, 50, 10, 20)
	r.AddPlayer("Alice")
	r.AddPlayer("Bob")
	_, err := r.StartNewHand()
	require.NoError(t, err)

	cur, _ := r.CurrentPlayerID()
	// The player on the clock faces a live bet (the big blind), so
	// Check is not in valid_actions.
	_, err = r.ApplyAction(cur, ActionCheck, 0)
	assert.ErrorIs(t, err, protocol.ErrInvalidAction)
}

func TestApplyAction_RaiseBelowMinimum(t *testing.T) {
	r := newTestRoom(t, 50, 10, 20)
	r.AddPlayer("Alice")
	r.AddPlayer("Bob")
	_, err := r.StartNewHand()
	require.NoError(t, err)

	cur, _ := r.CurrentPlayerID()
	_, err = r.ApplyAction(cur, ActionRaise, 5)
	assert.ErrorIs(t, err, protocol.ErrBelowMinRaise)
}
