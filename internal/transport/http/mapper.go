package http

import (
	"context"
	"encoding/json"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/pokeduel-server/internal/core"
	"github.com/vovakirdan/pokeduel-server/internal/proto"
)

// dispatch maps one inbound envelope onto a hub call. Format errors are
// answered directly on the socket; everything well-formed goes to the hub.
// Unknown types and actions are logged and ignored, never fatal.
func (h *WSHandler) dispatch(ctx context.Context, wsConn *websocket.Conn, conn *core.Conn, inbound proto.Inbound) error {
	switch inbound.Type {
	case proto.InboundTypeNameEnter:
		var data proto.NameEnterData
		if err := json.Unmarshal(inbound.Data, &data); err != nil || !proto.ValidName(data.Name) {
			return wsjson.Write(ctx, wsConn, proto.Outbound{Type: proto.OutboundTypeNameError})
		}
		h.hub.EnterName(conn, data.Name)

	case proto.InboundTypeCreateRoom:
		h.hub.CreateRoom(conn)

	case proto.InboundTypeJoinRoom:
		var data proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return wsjson.Write(ctx, wsConn, proto.Outbound{Type: proto.OutboundTypeBadRoomID})
		}
		id, ok := proto.ParseRoomID(data.RoomID)
		if !ok {
			return wsjson.Write(ctx, wsConn, proto.Outbound{Type: proto.OutboundTypeBadRoomID})
		}
		h.hub.JoinRoom(conn, core.RoomID(id))

	case proto.InboundTypePlayVsBot:
		h.hub.PlayVsBot(conn)

	case proto.InboundTypeToggleReady:
		h.hub.ToggleReady(conn)

	case proto.InboundTypeLeaveRoom:
		h.hub.LeaveRoom(conn)

	case proto.InboundTypeBattleEnd:
		h.hub.BattleEnd(conn)

	case proto.InboundTypeGameCommand:
		var data proto.GameCommandData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			h.log.Debug().Err(err).Msg("malformed game command")
			return nil
		}
		switch data.Action {
		case proto.GameActionSelectStat:
			var payload proto.SelectStatPayload
			if err := json.Unmarshal(data.Payload, &payload); err != nil {
				h.log.Debug().Err(err).Msg("malformed select-stat payload")
				return nil
			}
			h.hub.SelectStat(conn, core.StatName(payload.Stat))
		default:
			h.log.Debug().Str("action", data.Action).Msg("ignoring unknown game action")
		}

	default:
		h.log.Debug().Str("type", inbound.Type).Msg("ignoring unknown inbound type")
	}
	return nil
}

// outboundFromPush maps a hub push onto its wire envelope.
func outboundFromPush(push core.Push) proto.Outbound {
	switch push.Kind {
	case core.PushState:
		return proto.Outbound{Type: proto.OutboundTypeStateUpdate, Data: push.Room}
	case core.PushRoomFull:
		return proto.Outbound{Type: proto.OutboundTypeRoomFull}
	case core.PushRoomCrash:
		return proto.Outbound{Type: proto.OutboundTypeRoomCrash}
	case core.PushNameValid:
		return proto.Outbound{Type: proto.OutboundTypeNameValid}
	case core.PushNameError:
		return proto.Outbound{Type: proto.OutboundTypeNameError}
	case core.PushBadRoomID:
		return proto.Outbound{Type: proto.OutboundTypeBadRoomID}
	case core.PushDuplicateSession:
		return proto.Outbound{Type: proto.OutboundTypeDuplicateSession}
	case core.PushSelectStatError:
		return proto.Outbound{
			Type: proto.OutboundTypeSelectStatError,
			Data: proto.SelectStatErrorData{Reason: push.Reason},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeRoomCrash}
	}
}
