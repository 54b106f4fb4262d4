package room

import (
	"github.com/vctt94/pokerroomd/internal/cards"
	"github.com/vctt94/pokerroomd/internal/evaluator"
	"github.com/vctt94/pokerroomd/internal/protocol"
)

// AdvancePhase implements SPEC_FULL.md §4.2 advance_phase. No burn cards
// are dealt. Resets per-round betting state and deals the next street's
// community cards.
func (r *Room) AdvancePhase() ([]OutMsg, error) {
	for _, id := range r.seatOrder {
		r.players[id].CurrentBet = 0
	}
	r.CurrentBet = 0
	r.lastRaiserIdx = noRaiser
	r.bigBlindOption = false

	n := len(r.seatOrder)
	r.currentPlayerIdx = (r.dealerIdx + 1) % n
	r.advanceToNextActive()
	r.firstActorIdx = r.currentPlayerIdx

	var stage string
	var dealt int
	switch r.Phase {
	case PreFlop:
		r.Phase = Flop
		stage, dealt = "flop", 3
	case Flop:
		r.Phase = Turn
		stage, dealt = "turn", 1
	case Turn:
		r.Phase = River
		stage, dealt = "river", 1
	case River:
		r.Phase = Showdown
		return nil, nil
	default:
		return nil, protocol.ErrInvalidAction
	}

	newCards := make([]cards.Card, 0, dealt)
	for i := 0; i < dealt; i++ {
		c, ok := r.deck.Draw()
		if !ok {
			break
		}
		r.Community = append(r.Community, c)
		newCards = append(newCards, c)
	}

	return []OutMsg{broadcast(protocol.CommunityCardsMsg{
		Type:  protocol.TypeCommunityCards,
		Stage: stage,
		Cards: cards.WireSlice(newCards),
	})}, nil
}

// ResolveHand implements SPEC_FULL.md §4.2 resolve_hand: awards the pot
// either uncontested (one non-folded player left) or via showdown among
// every Active/AllIn player, splitting ties evenly with the remainder
// discarded (SPEC_FULL.md §9 Open Questions).
func (r *Room) ResolveHand() ([]OutMsg, error) {
	var msgs []OutMsg

	contenders := r.nonFoldedPlayers()
	if len(contenders) == 0 {
		return nil, protocol.ErrInvalidAction
	}

	if len(contenders) == 1 {
		winner := contenders[0]
		winner.Chips += r.Pot
		msgs = append(msgs, broadcast(protocol.RoundWinnerMsg{
			Type: protocol.TypeRoundWinner,
			Winners: []protocol.RoundWinnerEntry{
				{PlayerID: winner.ID, Amount: r.Pot, HandLabel: ""},
			},
		}))
	} else {
		hands := make([]evaluator.HandValue, len(contenders))
		for i, p := range contenders {
			hv, err := evaluator.Best(p.HoleCards, r.Community)
			if err != nil {
				return nil, err
			}
			hands[i] = hv
		}

		showdownHands := make([]protocol.ShowdownHand, len(contenders))
		for i, p := range contenders {
			showdownHands[i] = protocol.ShowdownHand{
				PlayerID:  p.ID,
				Cards:     cards.WireSlice(p.HoleCards),
				RankLabel: hands[i].Description,
			}
		}
		msgs = append(msgs, broadcast(protocol.ShowdownMsg{
			Type:  protocol.TypeShowdown,
			Hands: showdownHands,
		}))

		winnerIdxs := evaluator.Winners(hands)
		share := r.Pot / uint32(len(winnerIdxs)) // remainder discarded per spec.md §9

		entries := make([]protocol.RoundWinnerEntry, len(winnerIdxs))
		for i, wi := range winnerIdxs {
			contenders[wi].Chips += share
			entries[i] = protocol.RoundWinnerEntry{
				PlayerID:  contenders[wi].ID,
				Amount:    share,
				HandLabel: hands[wi].Description,
			}
		}
		msgs = append(msgs, broadcast(protocol.RoundWinnerMsg{
			Type:    protocol.TypeRoundWinner,
			Winners: entries,
		}))
	}

	r.Pot = 0 // invariant 2: pot resets to 0 immediately after resolve_hand

	var remainingWithChips []*Player
	for _, id := range r.seatOrder {
		p := r.players[id]
		msgs = append(msgs, broadcast(protocol.ChipUpdateMsg{
			Type:     protocol.TypeChipUpdate,
			PlayerID: p.ID,
			Chips:    p.Chips,
		}))
		if p.Chips == 0 && p.Status != Out {
			p.Status = Out
			msgs = append(msgs, broadcast(protocol.PlayerEliminatedMsg{
				Type:     protocol.TypePlayerEliminated,
				PlayerID: p.ID,
			}))
		} else if p.Chips > 0 {
			remainingWithChips = append(remainingWithChips, p)
		}
	}

	r.Phase = Showdown
	if len(remainingWithChips) == 1 {
		r.GameStarted = false
		msgs = append(msgs, broadcast(protocol.GameOverMsg{
			Type:       protocol.TypeGameOver,
			WinnerID:   remainingWithChips[0].ID,
			WinnerName: remainingWithChips[0].Name,
		}))
	}

	return msgs, nil
}
