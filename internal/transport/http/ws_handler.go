package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/pokeduel-server/internal/core"
	"github.com/vovakirdan/pokeduel-server/internal/proto"
)

// Inbound frames allowed per connection: sustained and burst.
const (
	inboundRate  = rate.Limit(10)
	inboundBurst = 20
)

// WSHandler upgrades HTTP connections and bridges them to the hub: the read
// pump maps inbound envelopes onto hub calls, the write pump drains the
// connection's push channel.
type WSHandler struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer wsConn.Close(websocket.StatusInternalError, "internal error")

	// The identifier is client-supplied and opaque; it is what makes a
	// session reconnectable. A connection without one gets a throwaway id.
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	conn := core.NewConn()
	h.hub.Connect(conn, clientID)
	defer h.hub.Disconnect(conn)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, wsConn, conn, clientID)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, wsConn, conn)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	// A rejected duplicate got its answer; there is nothing else this
	// connection may do, so drop it rather than hold a dead socket open.
	if errors.Is(err, core.ErrDuplicateSession) {
		wsConn.Close(websocket.StatusPolicyViolation, "duplicate session")
		return
	}

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("client_id", clientID).Msg("ws connection closed with error")
		}
	}

	wsConn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, wsConn *websocket.Conn, conn *core.Conn, clientID string) error {
	limiter := rate.NewLimiter(inboundRate, inboundBurst)

	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, wsConn, &inbound); err != nil {
			return err
		}

		if !limiter.Allow() {
			h.log.Warn().Str("client_id", clientID).Str("type", inbound.Type).Msg("dropping inbound frame, rate limited")
			continue
		}

		if err := h.dispatch(ctx, wsConn, conn, inbound); err != nil {
			return err
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, wsConn *websocket.Conn, conn *core.Conn) error {
	for {
		select {
		case push := <-conn.Sends:
			if err := wsjson.Write(ctx, wsConn, outboundFromPush(push)); err != nil {
				return err
			}
			if push.Kind == core.PushDuplicateSession {
				return core.ErrDuplicateSession
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
