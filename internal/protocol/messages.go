// Package protocol defines the wire message taxonomy exchanged between a
// client and one room, plus the errors and validation rules at the
// connection boundary. Every message is one JSON object with a `type`
// discriminator (SPEC_FULL.md §6).
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/vctt94/pokerroomd/internal/cards"
)

// BlindConfig describes the blind-increase schedule. Both fields
// defaulting to zero means fixed blinds.
type BlindConfig struct {
	IntervalSecs    uint64 `json:"interval_secs"`
	IncreasePercent uint32 `json:"increase_percent"`
}

// Envelope is the minimal shape needed to read the `type` discriminator
// before dispatching to a concrete message struct.
type Envelope struct {
	Type string `json:"type"`
}

// Client→Server message types.
const (
	TypeCreateRoom      = "CreateRoom"
	TypeJoinRoom        = "JoinRoom"
	TypeRejoin          = "Rejoin"
	TypeStartGame       = "StartGame"
	TypeFold            = "Fold"
	TypeCheck           = "Check"
	TypeCall            = "Call"
	TypeAllIn           = "AllIn"
	TypeRaise           = "Raise"
	TypeSitOut          = "SitOut"
	TypeSitIn           = "SitIn"
	TypeToggleLateEntry = "ToggleLateEntry"
	TypeChat            = "Chat"
	TypeGetPlayers      = "GetPlayers"
	TypePing            = "Ping"
)

// Server→Client message types.
const (
	TypeWelcome           = "Welcome"
	TypeRoomCreated       = "RoomCreated"
	TypeRoomJoined        = "RoomJoined"
	TypeJoinedGame        = "JoinedGame"
	TypeRejoined          = "Rejoined"
	TypeRoomError         = "RoomError"
	TypeError             = "Error"
	TypePlayerJoined      = "PlayerJoined"
	TypePlayerLeft        = "PlayerLeft"
	TypePlayerEliminated  = "PlayerEliminated"
	TypePlayerList        = "PlayerList"
	TypeChatMessage       = "ChatMessage"
	TypeGameStarted       = "GameStarted"
	TypeOk                = "Ok"
	TypePong              = "Pong"
	TypeNewHand           = "NewHand"
	TypeHoleCards         = "HoleCards"
	TypeCommunityCards    = "CommunityCards"
	TypeYourTurn          = "YourTurn"
	TypeTurnTimerStarted  = "TurnTimerStarted"
	TypePlayerActed       = "PlayerActed"
	TypePotUpdate         = "PotUpdate"
	TypeChipUpdate        = "ChipUpdate"
	TypeShowdown          = "Showdown"
	TypeAllInShowdown     = "AllInShowdown"
	TypeRoundWinner       = "RoundWinner"
	TypeGameOver          = "GameOver"
	TypeBlindsIncreased   = "BlindsIncreased"
	TypePlayerSatOut      = "PlayerSatOut"
	TypePlayerSatIn       = "PlayerSatIn"
	TypeLateEntryChanged  = "LateEntryChanged"
)

// --- Client→Server payloads ---

type CreateRoomMsg struct {
	Type        string      `json:"type"`
	RoomID      string      `json:"room_id"`
	BlindConfig BlindConfig `json:"blind_config"`
	StartingBBs uint32      `json:"starting_bbs"`
}

type JoinRoomMsg struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
	Name   string `json:"name"`
}

type RejoinMsg struct {
	Type         string `json:"type"`
	RoomID       string `json:"room_id"`
	SessionToken string `json:"session_token"`
}

type RaiseMsg struct {
	Type   string `json:"type"`
	Amount uint32 `json:"amount"`
}

type ChatMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// DecodeClient parses a raw client frame into a concrete message value,
// dispatching on the type discriminator. The returned value is one of
// the *Msg structs above for message types carrying a payload, or just
// the Envelope itself for payload-less messages (StartGame, Fold,
// Check, Call, AllIn, SitOut, SitIn, ToggleLateEntry, GetPlayers, Ping).
func DecodeClient(raw []byte) (msgType string, payload any, err error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	switch env.Type {
	case TypeCreateRoom:
		var m CreateRoomMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return env.Type, m, nil
	case TypeJoinRoom:
		var m JoinRoomMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return env.Type, m, nil
	case TypeRejoin:
		var m RejoinMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return env.Type, m, nil
	case TypeRaise:
		var m RaiseMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return env.Type, m, nil
	case TypeChat:
		var m ChatMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return env.Type, m, nil
	case TypeStartGame, TypeFold, TypeCheck, TypeCall, TypeAllIn,
		TypeSitOut, TypeSitIn, TypeToggleLateEntry, TypeGetPlayers, TypePing:
		return env.Type, env, nil
	default:
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}
}

// --- Server→Client payloads ---

type PlayerSummary struct {
	ID    uint32 `json:"id"`
	Name  string `json:"name"`
	Chips uint32 `json:"chips"`
}

type WelcomeMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type RoomCreatedMsg struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

type RoomJoinedMsg struct {
	Type        string      `json:"type"`
	RoomID      string      `json:"room_id"`
	BlindConfig BlindConfig `json:"blind_config"`
}

type JoinedGameMsg struct {
	Type           string `json:"type"`
	PlayerID       uint32 `json:"player_id"`
	Chips          uint32 `json:"chips"`
	PlayerCount    int    `json:"player_count"`
	SessionToken   string `json:"session_token"`
	IsHost         bool   `json:"is_host"`
	AllowLateEntry bool   `json:"allow_late_entry"`
}

type RejoinedMsg struct {
	Type           string        `json:"type"`
	RoomID         string        `json:"room_id"`
	PlayerID       uint32        `json:"player_id"`
	SessionToken   string        `json:"session_token"`
	Chips          uint32        `json:"chips"`
	GameStarted    bool          `json:"game_started"`
	HandNumber     uint64        `json:"hand_number"`
	Pot            uint32        `json:"pot"`
	Stage          string        `json:"stage"`
	CommunityCards []cards.Wire  `json:"community_cards"`
	HoleCards      []cards.Wire  `json:"hole_cards"`
	Players        []PlayerSummary `json:"players"`
	SittingOut     []uint32      `json:"sitting_out"`
	Folded         []uint32      `json:"folded"`
	BlindConfig    BlindConfig   `json:"blind_config"`
	AllowLateEntry bool          `json:"allow_late_entry"`
	IsHost         bool          `json:"is_host"`
	DealerID       uint32        `json:"dealer_id"`
	SmallBlindID   uint32        `json:"small_blind_id"`
	BigBlindID     uint32        `json:"big_blind_id"`
	SmallBlind     uint32        `json:"small_blind"`
	BigBlind       uint32        `json:"big_blind"`
}

type RoomErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type PlayerJoinedMsg struct {
	Type     string `json:"type"`
	PlayerID uint32 `json:"player_id"`
	Name     string `json:"name"`
}

type PlayerLeftMsg struct {
	Type     string `json:"type"`
	PlayerID uint32 `json:"player_id"`
}

type PlayerEliminatedMsg struct {
	Type     string `json:"type"`
	PlayerID uint32 `json:"player_id"`
}

type PlayerListMsg struct {
	Type    string          `json:"type"`
	Players []PlayerSummary `json:"players"`
}

type ChatMessageMsg struct {
	Type     string `json:"type"`
	PlayerID uint32 `json:"player_id"`
	Message  string `json:"message"`
}

type SimpleMsg struct {
	Type string `json:"type"`
}

type NewHandMsg struct {
	Type         string `json:"type"`
	HandNumber   uint64 `json:"hand_number"`
	DealerID     uint32 `json:"dealer_id"`
	SmallBlindID uint32 `json:"small_blind_id"`
	BigBlindID   uint32 `json:"big_blind_id"`
	SmallBlind   uint32 `json:"small_blind"`
	BigBlind     uint32 `json:"big_blind"`
}

type HoleCardsMsg struct {
	Type  string       `json:"type"`
	Cards []cards.Wire `json:"cards"`
}

type CommunityCardsMsg struct {
	Type  string       `json:"type"`
	Stage string       `json:"stage"`
	Cards []cards.Wire `json:"cards"`
}

type YourTurnMsg struct {
	Type         string   `json:"type"`
	CurrentBet   uint32   `json:"current_bet"`
	YourBet      uint32   `json:"your_bet"`
	Pot          uint32   `json:"pot"`
	MinRaise     uint32   `json:"min_raise"`
	ValidActions []string `json:"valid_actions"`
}

type TurnTimerStartedMsg struct {
	Type        string `json:"type"`
	PlayerID    uint32 `json:"player_id"`
	TimeoutSecs uint32 `json:"timeout_secs"`
}

type PlayerActedMsg struct {
	Type     string  `json:"type"`
	PlayerID uint32  `json:"player_id"`
	Action   string  `json:"action"`
	Amount   *uint32 `json:"amount,omitempty"`
}

type PotUpdateMsg struct {
	Type string `json:"type"`
	Pot  uint32 `json:"pot"`
}

type ChipUpdateMsg struct {
	Type     string `json:"type"`
	PlayerID uint32 `json:"player_id"`
	Chips    uint32 `json:"chips"`
}

type ShowdownHand struct {
	PlayerID  uint32       `json:"player_id"`
	Cards     []cards.Wire `json:"cards"`
	RankLabel string       `json:"rank_label"`
}

type ShowdownMsg struct {
	Type  string         `json:"type"`
	Hands []ShowdownHand `json:"hands"`
}

type AllInShowdownHand struct {
	PlayerID   uint32       `json:"player_id"`
	Cards      []cards.Wire `json:"cards"`
	EquityPct  float64      `json:"equity_pct"`
}

type AllInShowdownMsg struct {
	Type           string              `json:"type"`
	Hands          []AllInShowdownHand `json:"hands"`
	CommunityCards []cards.Wire        `json:"community_cards"`
}

type RoundWinnerEntry struct {
	PlayerID  uint32 `json:"player_id"`
	Amount    uint32 `json:"amount"`
	HandLabel string `json:"hand_label"`
}

type RoundWinnerMsg struct {
	Type    string             `json:"type"`
	Winners []RoundWinnerEntry `json:"winners"`
}

type GameOverMsg struct {
	Type       string `json:"type"`
	WinnerID   uint32 `json:"winner_id"`
	WinnerName string `json:"winner_name"`
}

type BlindsIncreasedMsg struct {
	Type       string `json:"type"`
	SmallBlind uint32 `json:"small_blind"`
	BigBlind   uint32 `json:"big_blind"`
}

type PlayerSatOutMsg struct {
	Type     string `json:"type"`
	PlayerID uint32 `json:"player_id"`
}

type PlayerSatInMsg struct {
	Type     string `json:"type"`
	PlayerID uint32 `json:"player_id"`
}

type LateEntryChangedMsg struct {
	Type    string `json:"type"`
	Allowed bool   `json:"allowed"`
}
