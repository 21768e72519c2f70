// Command ws_duel is a terminal client for manual play against the server:
// it connects, walks through name entry and room setup from flags, renders
// every snapshot, and reads stat picks from stdin.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/pokeduel-server/internal/core"
	"github.com/vovakirdan/pokeduel-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_duel: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	clientID := flag.String("id", "cli-duelist", "stable client identifier")
	name := flag.String("name", "Duelist", "display name")
	room := flag.String("room", "", "room id to join; empty means create")
	vsBot := flag.Bool("bot", false, "play against the bot instead of joining a room")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr+"?client_id="+*clientID, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(v interface{}) {
		if writeErr := wsjson.Write(ctx, conn, v); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	namePayload, err := json.Marshal(proto.NameEnterData{Name: *name})
	if err != nil {
		return fmt.Errorf("marshal name: %w", err)
	}
	send(proto.Inbound{Type: proto.InboundTypeNameEnter, Data: namePayload})

	switch {
	case *vsBot:
		send(proto.Inbound{Type: proto.InboundTypePlayVsBot})
	case *room != "":
		joinPayload, marshalErr := json.Marshal(proto.JoinRoomData{RoomID: *room})
		if marshalErr != nil {
			return fmt.Errorf("marshal join: %w", marshalErr)
		}
		send(proto.Inbound{Type: proto.InboundTypeJoinRoom, Data: joinPayload})
	default:
		send(proto.Inbound{Type: proto.InboundTypeCreateRoom})
	}

	fmt.Printf("Connected to %s as %s\n", *addr, *name)
	fmt.Println("Commands: ready | pick <stat> | battle | leave | quit")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn, send)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var outbound struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data,omitempty"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch outbound.Type {
		case proto.OutboundTypeStateUpdate:
			var view core.ViewRoom
			if err := json.Unmarshal(outbound.Data, &view); err != nil {
				log.Printf("unmarshal snapshot: %v", err)
				continue
			}
			render(view)
		case proto.OutboundTypeSelectStatError:
			var data proto.SelectStatErrorData
			if err := json.Unmarshal(outbound.Data, &data); err == nil {
				fmt.Printf("!! %s\n", data.Reason)
			}
		default:
			fmt.Printf("<< %s\n", outbound.Type)
		}
	}
}

func render(view core.ViewRoom) {
	fmt.Printf("-- room %d --\n", view.RoomID)
	for _, p := range view.Participants {
		marker := " "
		if p.Ready {
			marker = "*"
		}
		fmt.Printf("  [%s] %s\n", marker, p.Name)
	}
	game := view.Game
	if game == nil {
		return
	}
	fmt.Printf("  phase=%s round=%d first=%d", game.Phase, game.Round, game.FirstMove)
	if game.Winner != "" {
		fmt.Printf(" winner=%s", game.Winner)
	}
	fmt.Println()
	if len(game.LockedStats) > 0 {
		fmt.Printf("  locked: %v\n", game.LockedStats)
	}
	for _, side := range []core.ViewPlayer{game.You, game.Opponent} {
		line := fmt.Sprintf("  p%d %s pts=%d", side.MatchID, side.Name, side.Points)
		if side.Creature != nil {
			line += fmt.Sprintf(" creature=%s %v", side.Creature.Name, side.Creature.Stats)
		}
		if side.Selected != nil {
			line += fmt.Sprintf(" picked=%s(%d)", side.Selected.Name, side.Selected.Value)
		}
		if side.Challenged != nil {
			line += fmt.Sprintf(" challenged-on=%s(%d)", side.Challenged.Name, side.Challenged.Value)
		}
		fmt.Println(line)
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, send func(interface{})) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}

			switch fields[0] {
			case "ready":
				send(proto.Inbound{Type: proto.InboundTypeToggleReady})
			case "pick":
				if len(fields) < 2 {
					fmt.Println("usage: pick <stat>")
					continue
				}
				payload, err := json.Marshal(proto.SelectStatPayload{Stat: fields[1]})
				if err != nil {
					log.Printf("marshal pick: %v", err)
					continue
				}
				data, err := json.Marshal(proto.GameCommandData{Action: proto.GameActionSelectStat, Payload: payload})
				if err != nil {
					log.Printf("marshal game command: %v", err)
					continue
				}
				send(proto.Inbound{Type: proto.InboundTypeGameCommand, Data: data})
			case "battle":
				send(proto.Inbound{Type: proto.InboundTypeBattleEnd})
			case "leave":
				send(proto.Inbound{Type: proto.InboundTypeLeaveRoom})
			case "quit":
				return
			default:
				fmt.Println("commands: ready | pick <stat> | battle | leave | quit")
			}
		}
	}
}
