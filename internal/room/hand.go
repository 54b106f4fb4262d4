package room

import (
	"math"
	"time"

	"github.com/vctt94/pokerroomd/internal/cards"
	"github.com/vctt94/pokerroomd/internal/protocol"
)

// StartNewHand implements SPEC_FULL.md §4.2 start_new_hand. Requires at
// least two players with chips; prunes eliminated players, rotates the
// dealer, posts blinds, deals hole cards, and sets up PreFlop action.
func (r *Room) StartNewHand() ([]OutMsg, error) {
	r.pruneEliminated()

	eligible := 0
	for _, id := range r.seatOrder {
		if r.players[id].Chips > 0 {
			eligible++
		}
	}
	if eligible < 2 {
		return nil, protocol.ErrNotEnoughPlayers
	}

	var msgs []OutMsg

	r.HandNumber++
	r.GameStarted = true

	for _, id := range r.seatOrder {
		p := r.players[id]
		if p.Chips == 0 {
			p.Status = Out
			continue
		}
		if p.SittingOut {
			p.Status = Waiting
			continue
		}
		p.Status = Active
		p.CurrentBet = 0
		p.HoleCards = nil
	}

	n := len(r.seatOrder)
	r.dealerIdx = (r.dealerIdx + 1) % n

	msgs = append(msgs, r.maybeIncreaseBlinds()...)

	sbIdx := (r.dealerIdx + 1) % n
	bbIdx := (r.dealerIdx + 2) % n
	if n == 2 {
		// Heads-up: dealer posts small blind, the other player posts big blind.
		sbIdx = r.dealerIdx
		bbIdx = (r.dealerIdx + 1) % n
	}

	r.sbIdx = sbIdx
	r.bbIdx = bbIdx

	sb := r.playerAtSeat(sbIdx)
	bb := r.playerAtSeat(bbIdx)

	sbPosted := r.postBlind(sb, r.SmallBlind)
	bbPosted := r.postBlind(bb, r.BigBlind)

	r.Pot = sbPosted + bbPosted
	r.CurrentBet = r.BigBlind
	r.MinRaise = r.BigBlind
	r.lastRaiserIdx = bbIdx
	r.bigBlindOption = true

	firstActorIdx := (bbIdx + 1) % n
	if n == 2 {
		firstActorIdx = sbIdx
	}
	r.firstActorIdx = firstActorIdx
	r.currentPlayerIdx = firstActorIdx
	r.advanceToNextActive()

	r.deck = cards.NewDeck(r.rng)
	r.Community = nil
	r.dealHoleCards()

	msgs = append(msgs, broadcast(protocol.NewHandMsg{
		Type:         protocol.TypeNewHand,
		HandNumber:   r.HandNumber,
		DealerID:     r.seatOrder[r.dealerIdx],
		SmallBlindID: sb.ID,
		BigBlindID:   bb.ID,
		SmallBlind:   r.SmallBlind,
		BigBlind:     r.BigBlind,
	}))

	for _, id := range r.seatOrder {
		p := r.players[id]
		if p.Status == Active || p.Status == AllIn {
			msgs = append(msgs, toOne(id, protocol.HoleCardsMsg{
				Type:  protocol.TypeHoleCards,
				Cards: cards.WireSlice(p.HoleCards),
			}))
		}
	}
	msgs = append(msgs, broadcast(protocol.PotUpdateMsg{Type: protocol.TypePotUpdate, Pot: r.Pot}))
	r.Phase = PreFlop
	return msgs, nil
}

// pruneEliminated removes players whose chips hit zero, per invariant 7.
func (r *Room) pruneEliminated() {
	kept := r.seatOrder[:0:0]
	for _, id := range r.seatOrder {
		if r.players[id].Chips == 0 {
			delete(r.players, id)
			continue
		}
		kept = append(kept, id)
	}
	r.seatOrder = kept
}

// postBlind moves up to amount chips from p into the pot, capping at the
// player's stack (a short-stacked blind goes all-in).
func (r *Room) postBlind(p *Player, amount uint32) uint32 {
	posted := amount
	if p.Chips < amount {
		posted = p.Chips
	}
	p.Chips -= posted
	p.CurrentBet = posted
	if p.Chips == 0 {
		p.Status = AllIn
	}
	return posted
}

func (r *Room) dealHoleCards() {
	for i := 0; i < 2; i++ {
		for _, id := range r.seatOrder {
			p := r.players[id]
			if p.Status != Active && p.Status != AllIn {
				continue
			}
			c, ok := r.deck.Draw()
			if !ok {
				continue
			}
			p.HoleCards = append(p.HoleCards, c)
		}
	}
}

// maybeIncreaseBlinds applies the configured blind-increase schedule if
// the configured interval has elapsed since the last increase.
func (r *Room) maybeIncreaseBlinds() []OutMsg {
	if r.BlindConfig.IntervalSecs == 0 || r.BlindConfig.IncreasePercent == 0 {
		return nil
	}
	if r.lastBlindIncrease.IsZero() {
		r.lastBlindIncrease = time.Now()
		return nil
	}
	elapsed := time.Since(r.lastBlindIncrease).Seconds()
	if elapsed < float64(r.BlindConfig.IntervalSecs) {
		return nil
	}
	r.lastBlindIncrease = time.Now()
	factor := 1 + float64(r.BlindConfig.IncreasePercent)/100
	r.SmallBlind = uint32(math.Ceil(float64(r.SmallBlind) * factor))
	r.BigBlind = uint32(math.Ceil(float64(r.BigBlind) * factor))
	return []OutMsg{broadcast(protocol.BlindsIncreasedMsg{
		Type:       protocol.TypeBlindsIncreased,
		SmallBlind: r.SmallBlind,
		BigBlind:   r.BigBlind,
	})}
}

// advanceToNextActive moves currentPlayerIdx forward to the next Active
// seat, wrapping around; it stays put if none is found.
func (r *Room) advanceToNextActive() {
	n := len(r.seatOrder)
	if n == 0 {
		return
	}
	for i := 0; i < n; i++ {
		idx := (r.currentPlayerIdx + i) % n
		if r.playerAtSeat(idx).Status == Active {
			r.currentPlayerIdx = idx
			return
		}
	}
}
