// Package connhandler drives one transport connection from lobby to
// termination (SPEC_FULL.md §4.5): the lobby phase awaits
// create/join/rejoin, then the game phase dispatches client actions
// against the bound room and drives turn timers and all-in run-outs.
package connhandler

import (
	"encoding/json"
	"time"

	"github.com/decred/slog"

	"github.com/vctt94/pokerroomd/internal/cards"
	"github.com/vctt94/pokerroomd/internal/protocol"
	"github.com/vctt94/pokerroomd/internal/room"
	"github.com/vctt94/pokerroomd/internal/roomhub"
	"github.com/vctt94/pokerroomd/internal/roommgr"
	"github.com/vctt94/pokerroomd/internal/transport"
)

// Handler binds the room manager to live connections.
type Handler struct {
	mgr         *roommgr.Manager
	log         slog.Logger
	turnTimeout time.Duration
}

// New constructs a connection handler.
func New(mgr *roommgr.Manager, log slog.Logger, turnTimeout time.Duration) *Handler {
	if turnTimeout <= 0 {
		turnTimeout = 30 * time.Second
	}
	return &Handler{mgr: mgr, log: log, turnTimeout: turnTimeout}
}

// Handle implements transport.ConnHandler: it blocks until the
// connection terminates.
func (h *Handler) Handle(conn transport.Conn) {
	h.send(conn, protocol.WelcomeMsg{Type: protocol.TypeWelcome, Message: "welcome"})

	hub, playerID, receiver, ok := h.lobbyPhase(conn)
	if !ok {
		return
	}

	h.gamePhase(conn, hub, playerID, receiver)
}

func (h *Handler) send(conn transport.Conn, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.log.Errorf("marshal outbound message: %v", err)
		return
	}
	if err := conn.WriteMessage(raw); err != nil {
		h.log.Debugf("write to %s failed: %v", conn.RemoteAddr(), err)
	}
}

// lobbyPhase loops until the connection successfully joins or rejoins a
// room, or the transport closes.
func (h *Handler) lobbyPhase(conn transport.Conn) (*roomhub.Hub, uint32, <-chan any, bool) {
	for {
		raw, err := conn.ReadMessage()
		if err != nil {
			return nil, 0, nil, false
		}

		msgType, payload, err := protocol.DecodeClient(raw)
		if err != nil {
			h.send(conn, protocol.ErrorMsg{Type: protocol.TypeError, Message: err.Error()})
			continue
		}

		switch msgType {
		case protocol.TypeCreateRoom:
			m := payload.(protocol.CreateRoomMsg)
			startingBBs := m.StartingBBs
			if startingBBs == 0 {
				startingBBs = 100
			}
			const defaultSmallBlind, defaultBigBlind = 10, 20
			if _, err := h.mgr.CreateRoom(m.RoomID, m.BlindConfig, startingBBs, defaultSmallBlind, defaultBigBlind); err != nil {
				h.send(conn, protocol.RoomErrorMsg{Type: protocol.TypeRoomError, Message: err.Error()})
				continue
			}
			h.send(conn, protocol.RoomCreatedMsg{Type: protocol.TypeRoomCreated, RoomID: m.RoomID})

		case protocol.TypeJoinRoom:
			m := payload.(protocol.JoinRoomMsg)
			result, err := h.mgr.JoinRoom(m.RoomID, m.Name)
			if err != nil {
				h.send(conn, protocol.RoomErrorMsg{Type: protocol.TypeRoomError, Message: err.Error()})
				continue
			}
			h.sendJoinReplies(conn, m.RoomID, result)
			return result.Hub, result.PlayerID, result.Receiver, true

		case protocol.TypeRejoin:
			m := payload.(protocol.RejoinMsg)
			result, err := h.mgr.RejoinRoom(m.RoomID, m.SessionToken)
			if err != nil {
				h.send(conn, protocol.RoomErrorMsg{Type: protocol.TypeRoomError, Message: err.Error()})
				continue
			}
			h.sendRejoinedSnapshot(conn, m.RoomID, result)
			return result.Hub, result.PlayerID, result.Receiver, true

		case protocol.TypePing:
			h.send(conn, protocol.SimpleMsg{Type: protocol.TypePong})

		default:
			h.send(conn, protocol.ErrorMsg{Type: protocol.TypeError, Message: "expected CreateRoom, JoinRoom, Rejoin, or Ping in lobby"})
		}
	}
}

func (h *Handler) sendJoinReplies(conn transport.Conn, roomID string, result *roommgr.JoinResult) {
	hub := result.Hub
	hub.Lock()
	blindConfig := hub.Room.BlindConfig
	allowLateEntry := hub.Room.AllowLateEntry
	playerCount := hub.Room.PlayerCount()
	gameStarted := hub.Room.GameStarted
	players := playerSummaries(hub.Room)
	var replay []any
	if gameStarted {
		replay = buildGameStateReplay(hub.Room)
	}
	hub.Unlock()

	h.send(conn, protocol.RoomJoinedMsg{Type: protocol.TypeRoomJoined, RoomID: roomID, BlindConfig: blindConfig})
	h.send(conn, protocol.JoinedGameMsg{
		Type:           protocol.TypeJoinedGame,
		PlayerID:       result.PlayerID,
		Chips:          chipsOf(hub.Room, result.PlayerID),
		PlayerCount:    playerCount,
		SessionToken:   result.Token,
		IsHost:         result.IsHost,
		AllowLateEntry: allowLateEntry,
	})
	h.send(conn, protocol.PlayerListMsg{Type: protocol.TypePlayerList, Players: players})
	for _, msg := range replay {
		h.send(conn, msg)
	}
}

func chipsOf(r *room.Room, playerID uint32) uint32 {
	if p, ok := r.Player(playerID); ok {
		return p.Chips
	}
	return 0
}

func playerSummaries(r *room.Room) []protocol.PlayerSummary {
	players := r.Players()
	out := make([]protocol.PlayerSummary, len(players))
	for i, p := range players {
		out[i] = protocol.PlayerSummary{ID: p.ID, Name: p.Name, Chips: p.Chips}
	}
	return out
}

// buildGameStateReplay implements the lobby-phase "full state replay"
// for a player joining a room whose game is already in progress
// (SPEC_FULL.md §4.5): GameStarted, NewHand, CommunityCards for the
// current street, PotUpdate, and PlayerSatOut for each sitting-out
// player.
func buildGameStateReplay(r *room.Room) []any {
	var out []any
	out = append(out, protocol.SimpleMsg{Type: protocol.TypeGameStarted})

	dealerID, _ := r.DealerID()
	sbID, _ := r.SmallBlindID()
	bbID, _ := r.BigBlindID()
	out = append(out, protocol.NewHandMsg{
		Type:         protocol.TypeNewHand,
		HandNumber:   r.HandNumber,
		DealerID:     dealerID,
		SmallBlindID: sbID,
		BigBlindID:   bbID,
		SmallBlind:   r.SmallBlind,
		BigBlind:     r.BigBlind,
	})

	if stage, ok := currentStreetStage(r.Phase); ok {
		out = append(out, protocol.CommunityCardsMsg{
			Type:  protocol.TypeCommunityCards,
			Stage: stage,
			Cards: cardsWire(r.Community),
		})
	}
	out = append(out, protocol.PotUpdateMsg{Type: protocol.TypePotUpdate, Pot: r.Pot})

	for _, p := range r.Players() {
		if p.SittingOut {
			out = append(out, protocol.PlayerSatOutMsg{Type: protocol.TypePlayerSatOut, PlayerID: p.ID})
		}
	}
	return out
}

func cardsWire(cs []cards.Card) []cards.Wire { return cards.WireSlice(cs) }

func currentStreetStage(phase room.Phase) (string, bool) {
	switch phase {
	case room.Flop:
		return "flop", true
	case room.Turn:
		return "turn", true
	case room.River, room.Showdown:
		return "river", true
	default:
		return "", false
	}
}

// gamePhase implements SPEC_FULL.md §4.5's post-join loop: a writer
// goroutine drains the player's outbound queue onto the wire while the
// calling goroutine reads client frames and dispatches them against
// the bound room under the hub lock, until the transport closes.
func (h *Handler) gamePhase(conn transport.Conn, hub *roomhub.Hub, playerID uint32, receiver <-chan any) {
	roomID := hub.Room.ID
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range receiver {
			h.send(conn, msg)
		}
	}()

	for {
		raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		msgType, payload, err := protocol.DecodeClient(raw)
		if err != nil {
			h.send(conn, protocol.ErrorMsg{Type: protocol.TypeError, Message: err.Error()})
			continue
		}
		h.dispatchGameMessage(conn, hub, playerID, msgType, payload)
	}

	h.mgr.DisconnectPlayer(roomID, playerID)
	<-writerDone
}

// dispatchGameMessage applies one client message to the room bound to
// hub, acquiring the room lock for the duration of the mutation and
// any resulting broadcasts.
func (h *Handler) dispatchGameMessage(conn transport.Conn, hub *roomhub.Hub, playerID uint32, msgType string, payload any) {
	switch msgType {
	case protocol.TypePing:
		h.send(conn, protocol.SimpleMsg{Type: protocol.TypePong})

	case protocol.TypeStartGame:
		h.handleStartGame(hub, playerID)

	case protocol.TypeFold:
		h.handleAction(hub, playerID, room.ActionFold, 0)
	case protocol.TypeCheck:
		h.handleAction(hub, playerID, room.ActionCheck, 0)
	case protocol.TypeCall:
		h.handleAction(hub, playerID, room.ActionCall, 0)
	case protocol.TypeAllIn:
		h.handleAction(hub, playerID, room.ActionAllIn, 0)
	case protocol.TypeRaise:
		m := payload.(protocol.RaiseMsg)
		h.handleAction(hub, playerID, room.ActionRaise, m.Amount)

	case protocol.TypeSitOut:
		h.handleSitOut(hub, playerID)
	case protocol.TypeSitIn:
		h.handleSitIn(hub, playerID)
	case protocol.TypeToggleLateEntry:
		h.handleToggleLateEntry(hub, playerID)

	case protocol.TypeChat:
		m := payload.(protocol.ChatMsg)
		h.handleChat(hub, playerID, m.Message)

	case protocol.TypeGetPlayers:
		h.handleGetPlayers(hub, playerID)

	default:
		h.send(conn, protocol.ErrorMsg{Type: protocol.TypeError, Message: "unexpected message type in game phase: " + msgType})
	}
}

func (h *Handler) handleStartGame(hub *roomhub.Hub, playerID uint32) {
	hub.Lock()
	defer hub.Unlock()

	r := hub.Room
	if playerID != r.HostID {
		hub.SendTo(playerID, protocol.RoomErrorMsg{Type: protocol.TypeRoomError, Message: protocol.ErrNotHost.Error()})
		return
	}
	if r.GameStarted {
		hub.SendTo(playerID, protocol.RoomErrorMsg{Type: protocol.TypeRoomError, Message: protocol.ErrGameInProgress.Error()})
		return
	}

	msgs, err := r.StartNewHand()
	if err != nil {
		hub.SendTo(playerID, protocol.RoomErrorMsg{Type: protocol.TypeRoomError, Message: err.Error()})
		return
	}
	hub.Dispatch(msgs)
	h.startTurnLocked(hub)
}

func (h *Handler) handleAction(hub *roomhub.Hub, playerID uint32, action room.ActionType, amount uint32) {
	hub.Lock()
	defer hub.Unlock()

	r := hub.Room
	msgs, err := r.ApplyAction(playerID, action, amount)
	if err != nil {
		hub.SendTo(playerID, protocol.ErrorMsg{Type: protocol.TypeError, Message: err.Error()})
		return
	}
	hub.Dispatch(msgs)
	h.advanceRound(hub)
}

func (h *Handler) handleSitOut(hub *roomhub.Hub, playerID uint32) {
	hub.Lock()
	defer hub.Unlock()
	if p, ok := hub.Room.Player(playerID); ok {
		p.SittingOut = true
	}
	hub.Broadcast(protocol.PlayerSatOutMsg{Type: protocol.TypePlayerSatOut, PlayerID: playerID})
}

func (h *Handler) handleSitIn(hub *roomhub.Hub, playerID uint32) {
	hub.Lock()
	defer hub.Unlock()
	if p, ok := hub.Room.Player(playerID); ok {
		p.SittingOut = false
	}
	hub.Broadcast(protocol.PlayerSatInMsg{Type: protocol.TypePlayerSatIn, PlayerID: playerID})
}

func (h *Handler) handleToggleLateEntry(hub *roomhub.Hub, playerID uint32) {
	hub.Lock()
	defer hub.Unlock()
	r := hub.Room
	if playerID != r.HostID {
		hub.SendTo(playerID, protocol.RoomErrorMsg{Type: protocol.TypeRoomError, Message: protocol.ErrNotHost.Error()})
		return
	}
	r.AllowLateEntry = !r.AllowLateEntry
	hub.Broadcast(protocol.LateEntryChangedMsg{Type: protocol.TypeLateEntryChanged, Allowed: r.AllowLateEntry})
}

func (h *Handler) handleChat(hub *roomhub.Hub, playerID uint32, message string) {
	hub.Lock()
	defer hub.Unlock()
	// The sender receives their own chat message echoed back, per
	// original_source/'s chat rebroadcast behavior (SPEC_FULL.md §12).
	hub.Broadcast(protocol.ChatMessageMsg{Type: protocol.TypeChatMessage, PlayerID: playerID, Message: message})
}

func (h *Handler) handleGetPlayers(hub *roomhub.Hub, playerID uint32) {
	hub.Lock()
	defer hub.Unlock()
	hub.SendTo(playerID, protocol.PlayerListMsg{Type: protocol.TypePlayerList, Players: playerSummaries(hub.Room)})
}

func (h *Handler) sendRejoinedSnapshot(conn transport.Conn, roomID string, result *roommgr.JoinResult) {
	hub := result.Hub
	hub.Lock()
	r := hub.Room
	p, _ := r.Player(result.PlayerID)

	var sittingOut, folded []uint32
	for _, pl := range r.Players() {
		if pl.SittingOut {
			sittingOut = append(sittingOut, pl.ID)
		}
		if pl.Status == room.Folded {
			folded = append(folded, pl.ID)
		}
	}

	var holeCards []cards.Wire
	if p != nil {
		holeCards = cardsWire(p.HoleCards)
	}

	dealerID, _ := r.DealerID()
	sbID, _ := r.SmallBlindID()
	bbID, _ := r.BigBlindID()

	snapshot := protocol.RejoinedMsg{
		Type:           protocol.TypeRejoined,
		RoomID:         roomID,
		PlayerID:       result.PlayerID,
		SessionToken:   result.Token,
		Chips:          chipsOf(r, result.PlayerID),
		GameStarted:    r.GameStarted,
		HandNumber:     r.HandNumber,
		Pot:            r.Pot,
		Stage:          r.Phase.String(),
		CommunityCards: cardsWire(r.Community),
		HoleCards:      holeCards,
		Players:        playerSummaries(r),
		SittingOut:     sittingOut,
		Folded:         folded,
		BlindConfig:    r.BlindConfig,
		AllowLateEntry: r.AllowLateEntry,
		IsHost:         result.IsHost,
		DealerID:       dealerID,
		SmallBlindID:   sbID,
		BigBlindID:     bbID,
		SmallBlind:     r.SmallBlind,
		BigBlind:       r.BigBlind,
	}
	hub.Unlock()

	h.send(conn, snapshot)
}
