// Command ws_smoke checks a running server end to end: connect, enter a
// name, expect name-valid back.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/pokeduel-server/internal/proto"
)

func main() {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	name := flag.String("name", "SmokeTester", "display name to announce")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	namePayload, _ := json.Marshal(proto.NameEnterData{Name: *name})
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeNameEnter, Data: namePayload}); err != nil {
		log.Fatalf("send: %v", err)
	}

	var outbound proto.Outbound
	if err := wsjson.Read(ctx, conn, &outbound); err != nil {
		log.Fatalf("read: %v", err)
	}
	if outbound.Type != proto.OutboundTypeNameValid {
		log.Fatalf("expected %s, got %s", proto.OutboundTypeNameValid, outbound.Type)
	}
	log.Println("smoke ok")
}
