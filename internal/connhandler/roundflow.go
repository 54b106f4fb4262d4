package connhandler

import (
	"time"

	"github.com/vctt94/pokerroomd/internal/cards"
	"github.com/vctt94/pokerroomd/internal/evaluator"
	"github.com/vctt94/pokerroomd/internal/protocol"
	"github.com/vctt94/pokerroomd/internal/room"
	"github.com/vctt94/pokerroomd/internal/roomhub"
)

// interStreetPause separates each community-card reveal during an
// all-in run-out so clients can show them one at a time (SPEC_FULL.md
// §4.5). postHandPause gives players a moment to read the showdown
// result before the next hand deals.
const (
	interStreetPause = 500 * time.Millisecond
	postHandPause    = 2 * time.Second
)

// advanceRound decides what happens after an action or a forced
// check/fold: continue the current betting round, award an
// uncontested pot, run out an all-in hand, or move to the next
// street. Called and returns with hub locked; it unlocks/sleeps/
// relocks internally for the run-out and post-hand pauses.
func (h *Handler) advanceRound(hub *roomhub.Hub) {
	r := hub.Room

	if !r.IsBettingComplete() {
		r.NextPlayer()
		h.startTurnLocked(hub)
		return
	}

	if len(r.NonFoldedPlayers()) <= 1 {
		h.finishHand(hub)
		return
	}

	if r.ActiveCount() <= 1 {
		h.runAllInRunout(hub)
		return
	}

	msgs, err := r.AdvancePhase()
	if err != nil {
		h.log.Errorf("advance phase: %v", err)
		return
	}
	hub.Dispatch(msgs)

	if r.Phase == room.Showdown {
		h.finishHand(hub)
		return
	}
	h.startTurnLocked(hub)
}

// runAllInRunout reveals every remaining player's equity, then deals
// the rest of the board with a pause between streets since no further
// betting is possible (SPEC_FULL.md §4.5 all-in run-out). Called and
// returns with hub locked.
func (h *Handler) runAllInRunout(hub *roomhub.Hub) {
	r := hub.Room

	contenders := r.NonFoldedPlayers()
	holeHands := make([][]cards.Card, len(contenders))
	for i, p := range contenders {
		holeHands[i] = p.HoleCards
	}
	equities, err := evaluator.Equity(r.RNG(), holeHands, r.Community, 1000)
	if err != nil {
		h.log.Errorf("equity simulation: %v", err)
		equities = make([]float64, len(contenders))
	}

	allInHands := make([]protocol.AllInShowdownHand, len(contenders))
	for i, p := range contenders {
		pct := 0.0
		if i < len(equities) {
			pct = equities[i]
		}
		allInHands[i] = protocol.AllInShowdownHand{
			PlayerID:  p.ID,
			Cards:     cardsWire(p.HoleCards),
			EquityPct: pct,
		}
	}
	hub.Broadcast(protocol.AllInShowdownMsg{
		Type:           protocol.TypeAllInShowdown,
		Hands:          allInHands,
		CommunityCards: cardsWire(r.Community),
	})

	for r.Phase != room.Showdown {
		hub.Unlock()
		time.Sleep(interStreetPause)
		hub.Lock()

		msgs, err := r.AdvancePhase()
		if err != nil {
			h.log.Errorf("advance phase during run-out: %v", err)
			break
		}
		hub.Dispatch(msgs)
	}

	h.finishHand(hub)
}

// finishHand resolves the pot, pauses, and deals the next hand if
// enough players still have chips. Called and returns with hub
// locked.
func (h *Handler) finishHand(hub *roomhub.Hub) {
	r := hub.Room

	msgs, err := r.ResolveHand()
	if err != nil {
		h.log.Errorf("resolve hand: %v", err)
		return
	}
	hub.Dispatch(msgs)
	gameOver := !r.GameStarted

	hub.Unlock()
	time.Sleep(postHandPause)
	hub.Lock()

	if gameOver {
		return
	}

	msgs, err = r.StartNewHand()
	if err != nil {
		// Fewer than two players with chips remain (e.g. the
		// grace-period reaper removed a player during the pause); end
		// the game so the host can StartGame again once more players
		// join, rather than erroring.
		r.GameStarted = false
		return
	}
	hub.Dispatch(msgs)
	h.startTurnLocked(hub)
}
