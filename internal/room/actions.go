package room

import (
	"github.com/vctt94/pokerroomd/internal/protocol"
)

// ValidActions implements SPEC_FULL.md §4.2 valid_actions.
func (r *Room) ValidActions(playerID uint32) []ActionType {
	p, ok := r.players[playerID]
	if !ok || p.Status != Active {
		return nil
	}
	toCall := r.toCall(p)

	actions := []ActionType{ActionFold}
	if toCall == 0 {
		actions = append(actions, ActionCheck)
	} else if p.Chips >= toCall {
		actions = append(actions, ActionCall)
	}
	if p.Chips > toCall {
		actions = append(actions, ActionRaise)
	}
	if p.Chips > 0 {
		actions = append(actions, ActionAllIn)
	}
	return actions
}

func (r *Room) toCall(p *Player) uint32 {
	if r.CurrentBet <= p.CurrentBet {
		return 0
	}
	return r.CurrentBet - p.CurrentBet
}

func hasAction(actions []ActionType, a ActionType) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}

// ApplyAction implements SPEC_FULL.md §4.2 apply_action. It validates
// against ValidActions first: an illegal action returns an error and
// leaves state unchanged (invariant 3).
func (r *Room) ApplyAction(playerID uint32, action ActionType, amount uint32) ([]OutMsg, error) {
	currentID, ok := r.CurrentPlayerID()
	if !ok || currentID != playerID {
		return nil, protocol.ErrNotYourTurn
	}

	valid := r.ValidActions(playerID)
	if !hasAction(valid, action) {
		return nil, protocol.ErrInvalidAction
	}

	p := r.players[playerID]
	seatIdx := r.seatIndex(playerID)
	var msgs []OutMsg
	var actedAmount *uint32

	switch action {
	case ActionFold:
		p.Status = Folded

	case ActionCheck:
		if r.Phase == PreFlop && r.bigBlindOption && playerID == r.seatOrder[r.lastRaiserIdx] {
			r.bigBlindOption = false
			r.lastRaiserIdx = noRaiser
		}

	case ActionCall:
		toCall := r.toCall(p)
		moved := toCall
		if moved > p.Chips {
			moved = p.Chips
		}
		p.Chips -= moved
		p.CurrentBet += moved
		r.Pot += moved
		if p.Chips == 0 {
			p.Status = AllIn
		}
		actedAmount = &moved

	case ActionRaise:
		toCall := r.toCall(p)
		if amount < r.MinRaise && amount != p.Chips-toCall {
			return nil, protocol.ErrBelowMinRaise
		}
		total := toCall + amount
		if total > p.Chips {
			return nil, protocol.ErrInsufficientChips
		}
		p.Chips -= total
		p.CurrentBet += total
		r.Pot += total
		if p.Chips == 0 {
			p.Status = AllIn
		}
		r.CurrentBet = p.CurrentBet
		r.MinRaise = r.BigBlind
		r.lastRaiserIdx = seatIdx
		r.bigBlindOption = false
		actedAmount = &amount

	case ActionAllIn:
		moved := p.Chips
		p.Chips = 0
		p.CurrentBet += moved
		r.Pot += moved
		p.Status = AllIn
		if p.CurrentBet > r.CurrentBet {
			r.CurrentBet = p.CurrentBet
			r.lastRaiserIdx = seatIdx
			r.bigBlindOption = false
		}
		actedAmount = &moved
	}

	msgs = append(msgs, broadcast(protocol.PlayerActedMsg{
		Type:     protocol.TypePlayerActed,
		PlayerID: playerID,
		Action:   string(action),
		Amount:   actedAmount,
	}))
	msgs = append(msgs, broadcast(protocol.PotUpdateMsg{Type: protocol.TypePotUpdate, Pot: r.Pot}))

	// currentPlayerIdx is left pointing at the seat that just acted so
	// the caller can evaluate IsBettingComplete accurately before
	// deciding whether to call NextPlayer and continue the round, or
	// advance the phase (SPEC_FULL.md §4.2/§4.5 orchestration boundary).
	return msgs, nil
}

// IsBettingComplete implements SPEC_FULL.md §4.2 is_betting_complete.
// It is evaluated with currentPlayerIdx still pointing at the seat that
// just acted: the round is complete once every Active player has
// matched current_bet AND the seat that would act next is the one
// action started or last raised from (i.e. action has come all the way
// back around without a further raise).
func (r *Room) IsBettingComplete() bool {
	if r.activeAndAllInCount() <= 1 {
		return true
	}
	// No Active seat remains to act (every contender is all-in): no
	// further betting is possible regardless of the raiser bookkeeping
	// below, so the round is complete.
	if r.ActiveCount() == 0 {
		return true
	}
	if r.Phase == PreFlop && r.bigBlindOption {
		return false
	}

	for _, id := range r.seatOrder {
		p := r.players[id]
		if p.Status == Active && p.CurrentBet != r.CurrentBet {
			return false
		}
	}

	next := r.peekNextActive(r.currentPlayerIdx)
	if r.lastRaiserIdx != noRaiser {
		return next == r.lastRaiserIdx
	}
	return next == r.firstActorIdx
}

// peekNextActive returns the next Active seat index strictly after
// from, wrapping, without mutating state. Returns from itself if no
// other Active seat exists.
func (r *Room) peekNextActive(from int) int {
	n := len(r.seatOrder)
	if n == 0 {
		return from
	}
	for i := 1; i <= n; i++ {
		idx := (from + i) % n
		if r.playerAtSeat(idx).Status == Active {
			return idx
		}
	}
	return from
}

// NextPlayer implements SPEC_FULL.md §4.2 next_player: advance to the
// next Active seat, wrapping; stay put if none remain (invariant 4).
func (r *Room) NextPlayer() {
	r.currentPlayerIdx = r.peekNextActive(r.currentPlayerIdx)
}
