package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	InboundTypeNameEnter   = "name-enter"
	InboundTypeCreateRoom  = "create-room"
	InboundTypeJoinRoom    = "join-room"
	InboundTypePlayVsBot   = "play-vs-bot"
	InboundTypeToggleReady = "toggle-ready"
	InboundTypeLeaveRoom   = "leave-room"
	InboundTypeBattleEnd   = "battle-end"
	InboundTypeGameCommand = "game-command"

	OutboundTypeStateUpdate      = "state-update"
	OutboundTypeRoomFull         = "room-full"
	OutboundTypeRoomCrash        = "room-crash"
	OutboundTypeNameValid        = "name-valid"
	OutboundTypeNameError        = "name-error"
	OutboundTypeBadRoomID        = "bad-room-id"
	OutboundTypeDuplicateSession = "duplicate-session"
	OutboundTypeSelectStatError  = "select-stat-error"
)

// NameEnterData carries the requested display name.
type NameEnterData struct {
	Name string `json:"name"`
}

// JoinRoomData targets a specific room by its string id.
type JoinRoomData struct {
	RoomID string `json:"roomId"`
}

// GameCommandData is the generic in-game action envelope.
type GameCommandData struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// GameActionSelectStat is the only client-originated game action.
const GameActionSelectStat = "select-stat"

// SelectStatPayload names the stat being picked.
type SelectStatPayload struct {
	Stat string `json:"stat"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// SelectStatErrorData explains a rejected stat pick.
type SelectStatErrorData struct {
	Reason string `json:"reason"`
}
