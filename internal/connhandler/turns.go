package connhandler

import (
	"time"

	"github.com/vctt94/pokerroomd/internal/protocol"
	"github.com/vctt94/pokerroomd/internal/room"
	"github.com/vctt94/pokerroomd/internal/roomhub"
)

// autoActDelay is how long a sitting-out player's forced action waits
// before firing, long enough that the preceding broadcasts land first.
const autoActDelay = 100 * time.Millisecond

// startTurnLocked notifies the current player it's their turn and
// arms either an auto-act (sitting-out players) or a turn-timeout
// task. Called and returns with hub locked.
func (h *Handler) startTurnLocked(hub *roomhub.Hub) {
	r := hub.Room
	playerID, ok := r.CurrentPlayerID()
	if !ok {
		return
	}
	p, ok := r.Player(playerID)
	if !ok {
		return
	}

	actions := r.ValidActions(playerID)
	wireActions := make([]string, len(actions))
	for i, a := range actions {
		wireActions[i] = string(a)
	}
	hub.SendTo(playerID, protocol.YourTurnMsg{
		Type:         protocol.TypeYourTurn,
		CurrentBet:   r.CurrentBet,
		YourBet:      p.CurrentBet,
		Pot:          r.Pot,
		MinRaise:     r.MinRaise,
		ValidActions: wireActions,
	})

	turn := hub.NextTurn()

	if p.SittingOut {
		go h.autoActAfterDelay(hub, playerID, turn)
		return
	}

	hub.Broadcast(protocol.TurnTimerStartedMsg{
		Type:        protocol.TypeTurnTimerStarted,
		PlayerID:    playerID,
		TimeoutSecs: uint32(h.turnTimeout.Seconds()),
	})

	go h.turnTimeoutTask(hub, playerID, turn)
}

// forcedAction picks Check when legal, Fold otherwise - the same
// choice a real player makes when they have no chips at risk to call.
func forcedAction(r *room.Room, playerID uint32) room.ActionType {
	for _, a := range r.ValidActions(playerID) {
		if a == room.ActionCheck {
			return room.ActionCheck
		}
	}
	return room.ActionFold
}

// autoActAfterDelay forces a Check-else-Fold for a sitting-out player
// on the clock, after a short delay to let prior broadcasts land. The
// turn counter guards against acting on a stale turn that a rejoin or
// a faster human action already moved past.
func (h *Handler) autoActAfterDelay(hub *roomhub.Hub, playerID uint32, turn uint64) {
	time.Sleep(autoActDelay)

	hub.Lock()
	if hub.TurnCounter() != turn {
		hub.Unlock()
		return
	}
	r := hub.Room
	if cur, ok := r.CurrentPlayerID(); !ok || cur != playerID {
		hub.Unlock()
		return
	}

	action := forcedAction(r, playerID)
	msgs, err := r.ApplyAction(playerID, action, 0)
	if err != nil {
		hub.Unlock()
		return
	}
	hub.Dispatch(msgs)
	h.advanceRound(hub)
	hub.Unlock()
}

// turnTimeoutTask forces a Check-else-Fold once the turn timer expires
// without the player acting, marking them sitting out if the forced
// action was a fold (SPEC_FULL.md §4.5 turn timeout).
func (h *Handler) turnTimeoutTask(hub *roomhub.Hub, playerID uint32, turn uint64) {
	time.Sleep(h.turnTimeout)

	hub.Lock()
	if hub.TurnCounter() != turn {
		hub.Unlock()
		return
	}
	r := hub.Room
	if cur, ok := r.CurrentPlayerID(); !ok || cur != playerID {
		hub.Unlock()
		return
	}

	action := forcedAction(r, playerID)
	msgs, err := r.ApplyAction(playerID, action, 0)
	if err != nil {
		hub.Unlock()
		return
	}
	hub.Dispatch(msgs)

	if action == room.ActionFold {
		if p, ok := r.Player(playerID); ok {
			p.SittingOut = true
		}
		hub.Broadcast(protocol.PlayerSatOutMsg{Type: protocol.TypePlayerSatOut, PlayerID: playerID})
	}

	h.advanceRound(hub)
	hub.Unlock()
}
