package core

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Settings are the game tunables the hub needs at runtime.
type Settings struct {
	// WinThreshold is the round-win count that ends a match.
	WinThreshold int
	// RevealDelay is how long creatures are shown before selection opens.
	RevealDelay time.Duration
	// RoomShutdownDelay bounds how long a room with only offline occupants
	// survives before teardown.
	RoomShutdownDelay time.Duration
	// FetchTimeout bounds one creature-fetch round trip.
	FetchTimeout time.Duration
}

// BotLauncher starts a scripted opponent for a freshly created room.
type BotLauncher interface {
	Launch(roomID RoomID)
}

// Hub is the sequencing authority between transport events and game state.
// Every public method corresponds to one inbound protocol event; each posts
// onto a serialized task queue drained by Run, so all registry, room and game
// state is touched from exactly one goroutine. Timers and fetch completions
// come back through the same queue and re-validate the room before acting.
type Hub struct {
	clients   *ClientRegistry
	rooms     *RoomRegistry
	creatures CreatureSource
	bots      BotLauncher
	settings  Settings
	tasks     chan func()
	log       *zerolog.Logger
}

// NewHub constructs a hub around the given creature source and settings.
func NewHub(creatures CreatureSource, settings Settings, logger *zerolog.Logger) *Hub {
	h := &Hub{
		clients:   NewClientRegistry(),
		creatures: creatures,
		settings:  settings,
		tasks:     make(chan func(), 256),
		log:       logger,
	}
	h.rooms = NewRoomRegistry(settings.WinThreshold, settings.RoomShutdownDelay, func(id RoomID) {
		h.do(func() { h.handleRoomExpired(id) })
	}, logger)
	return h
}

// SetBotLauncher wires the play-vs-bot flow. Optional; without it the flow
// still creates the room and logs that no bot is available.
func (h *Hub) SetBotLauncher(b BotLauncher) { h.bots = b }

// Run drains the task queue until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-h.tasks:
			task()
		}
	}
}

func (h *Hub) do(task func()) {
	h.tasks <- task
}

// Connect registers conn under the client-supplied identifier, reconnecting
// an existing session when one exists. A duplicate live session is rejected
// without touching the existing one.
func (h *Hub) Connect(conn *Conn, clientID string) {
	h.do(func() { h.handleConnect(conn, clientID, false) })
}

// ConnectBot registers a scripted opponent's connection. Bot connections never
// count toward room liveness, and their records are removed on disconnect
// instead of kept for a reconnect that will never come.
func (h *Hub) ConnectBot(conn *Conn, clientID string) {
	h.do(func() { h.handleConnect(conn, clientID, true) })
}

// Disconnect detaches the connection. The client record stays; if it sits in
// a room, the room's shutdown timer is armed. A disconnect is not a leave.
func (h *Hub) Disconnect(conn *Conn) {
	h.do(func() { h.handleDisconnect(conn) })
}

// EnterName stores the client's display name. Format validation happens at
// the transport boundary before this is called.
func (h *Hub) EnterName(conn *Conn, name string) {
	h.do(func() { h.handleEnterName(conn, name) })
}

// CreateRoom places the client into any room with a free slot and no running
// match, creating one when needed.
func (h *Hub) CreateRoom(conn *Conn) {
	h.do(func() { h.handleCreateRoom(conn) })
}

// JoinRoom places the client into the identified room.
func (h *Hub) JoinRoom(conn *Conn, roomID RoomID) {
	h.do(func() { h.handleJoinRoom(conn, roomID) })
}

// PlayVsBot puts the client into a fresh room and launches a scripted
// opponent that joins through the public flow.
func (h *Hub) PlayVsBot(conn *Conn) {
	h.do(func() { h.handlePlayVsBot(conn) })
}

// ToggleReady flips the client's ready flag; when everyone is ready the match
// sequence begins.
func (h *Hub) ToggleReady(conn *Conn) {
	h.do(func() { h.handleToggleReady(conn) })
}

// LeaveRoom removes the client from its room.
func (h *Hub) LeaveRoom(conn *Conn) {
	h.do(func() { h.handleLeaveRoom(conn) })
}

// BattleEnd forwards the client's battle-finished signal to its game.
func (h *Hub) BattleEnd(conn *Conn) {
	h.do(func() { h.handleBattleEnd(conn) })
}

// SelectStat forwards the client's stat pick to its game.
func (h *Hub) SelectStat(conn *Conn, stat StatName) {
	h.do(func() { h.handleSelectStat(conn, stat) })
}

func (h *Hub) handleConnect(conn *Conn, clientID string, bot bool) {
	client, isNew, err := h.clients.RegisterOrReconnect(conn, clientID)
	if err != nil {
		h.log.Warn().Str("client_id", clientID).Msg("rejecting duplicate session")
		conn.deliver(Push{Kind: PushDuplicateSession})
		return
	}
	if isNew {
		client.Bot = bot
		h.log.Info().Str("client_id", clientID).Bool("bot", bot).Msg("client registered")
		return
	}

	h.log.Info().Str("client_id", clientID).Msg("client reconnected")
	if client.RoomID == 0 {
		return
	}
	h.withRoom(client.RoomID, conn, func(room *Room) error {
		h.rooms.ClearShutdownTimer(room.ID())
		conn.deliver(Push{Kind: PushState, Room: Snapshot(room, client.ID)})
		return nil
	})
}

func (h *Hub) handleDisconnect(conn *Conn) {
	client := h.clients.ByConn(conn)
	if client == nil {
		return
	}
	h.clients.Detach(client)
	if client.Bot {
		h.clients.Remove(client)
	}
	h.log.Info().Str("client_id", client.ID).Msg("client disconnected")

	if client.RoomID == 0 {
		return
	}
	if err := h.rooms.ScheduleShutdownIfInactive(client.RoomID); err != nil {
		h.log.Debug().Err(err).Msg("no shutdown to schedule")
	}
}

func (h *Hub) handleEnterName(conn *Conn, name string) {
	client := h.clients.ByConn(conn)
	if client == nil {
		return
	}
	client.Name = name
	conn.deliver(Push{Kind: PushNameValid})
}

func (h *Hub) handleCreateRoom(conn *Conn) {
	client := h.clients.ByConn(conn)
	if client == nil || client.RoomID != 0 {
		return
	}
	room, _ := h.rooms.PlaceInAnyRoom(client)
	client.RoomID = room.ID()
	h.pushRoomState(room)
}

func (h *Hub) handleJoinRoom(conn *Conn, roomID RoomID) {
	client := h.clients.ByConn(conn)
	if client == nil || client.RoomID != 0 {
		return
	}

	// A stale id on join is not a crashed session, just a bad target.
	room, err := h.rooms.Get(roomID)
	if err != nil {
		conn.deliver(Push{Kind: PushBadRoomID})
		return
	}
	if room.IsFull() {
		conn.deliver(Push{Kind: PushRoomFull})
		return
	}
	room.AddParticipant(client)
	client.RoomID = room.ID()
	h.pushRoomState(room)
}

func (h *Hub) handlePlayVsBot(conn *Conn) {
	client := h.clients.ByConn(conn)
	if client == nil || client.RoomID != 0 {
		return
	}
	room := h.rooms.PlaceInNewRoom(client)
	client.RoomID = room.ID()
	h.pushRoomState(room)

	if h.bots == nil {
		h.log.Warn().Uint64("room_id", uint64(room.ID())).Msg("no bot launcher configured")
		return
	}
	h.bots.Launch(room.ID())
}

func (h *Hub) handleToggleReady(conn *Conn) {
	client := h.clients.ByConn(conn)
	if client == nil || client.RoomID == 0 {
		return
	}
	h.withRoom(client.RoomID, conn, func(room *Room) error {
		room.ToggleReady(client.ID)
		h.pushRoomState(room)
		if room.EveryoneReady() && !room.Started() {
			room.StartMatch()
			h.startMatchSequence(room.ID())
		}
		return nil
	})
}

func (h *Hub) handleLeaveRoom(conn *Conn) {
	client := h.clients.ByConn(conn)
	if client == nil || client.RoomID == 0 {
		return
	}
	roomID := client.RoomID
	h.withRoom(roomID, conn, func(*Room) error {
		if err := h.rooms.RemoveFromRoom(roomID, client); err != nil {
			return err
		}
		client.RoomID = 0
		if room, err := h.rooms.Get(roomID); err == nil {
			h.pushRoomState(room)
		}
		return nil
	})
}

func (h *Hub) handleBattleEnd(conn *Conn) {
	client := h.clients.ByConn(conn)
	if client == nil || client.RoomID == 0 {
		return
	}
	h.withRoom(client.RoomID, conn, func(room *Room) error {
		events, err := room.Forward(Command{Kind: CommandBattleEnd, ClientID: client.ID})
		if err != nil {
			return err
		}
		h.reactToEvents(room, events)
		h.pushRoomState(room)
		return nil
	})
}

func (h *Hub) handleSelectStat(conn *Conn, stat StatName) {
	client := h.clients.ByConn(conn)
	if client == nil || client.RoomID == 0 {
		return
	}
	h.withRoom(client.RoomID, conn, func(room *Room) error {
		events, err := room.Forward(Command{Kind: CommandSelectStat, Stat: stat, ClientID: client.ID})
		if err != nil {
			return err
		}
		h.reactToEvents(room, events)
		if len(events) == 0 {
			// A lone pick produces no event; confirm it to the picker so the
			// client sees the selection registered without waiting for the
			// opponent.
			conn.deliver(Push{Kind: PushState, Room: Snapshot(room, client.ID)})
		}
		return nil
	})
}

// startMatchSequence fetches two creatures off-loop, then re-enters the loop
// to assign them and arm the reveal timer. The room may vanish while the
// fetch is pending; finishMatchSetup re-validates through the room guard.
func (h *Hub) startMatchSequence(roomID RoomID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.settings.FetchTimeout)
		defer cancel()

		var creatures [2]CreatureData
		var err error
		for i := range creatures {
			creatures[i], err = h.creatures.FetchRandomCreature(ctx)
			if err != nil {
				break
			}
		}
		h.do(func() { h.finishMatchSetup(roomID, creatures, err) })
	}()
}

func (h *Hub) finishMatchSetup(roomID RoomID, creatures [2]CreatureData, fetchErr error) {
	h.withRoom(roomID, nil, func(room *Room) error {
		if fetchErr != nil {
			// A match cannot proceed without creature data.
			return fetchErr
		}
		if _, err := room.Forward(Command{Kind: CommandAssignCreatures, Creatures: creatures}); err != nil {
			return err
		}
		h.pushRoomState(room)
		time.AfterFunc(h.settings.RevealDelay, func() {
			h.do(func() { h.revealElapsed(roomID) })
		})
		return nil
	})
}

func (h *Hub) revealElapsed(roomID RoomID) {
	h.withRoom(roomID, nil, func(room *Room) error {
		if _, err := room.Forward(Command{Kind: CommandStartSelect}); err != nil {
			return err
		}
		h.pushRoomState(room)
		return nil
	})
}

func (h *Hub) handleRoomExpired(roomID RoomID) {
	room, err := h.rooms.Get(roomID)
	if err != nil {
		return
	}
	if room.HasLiveParticipant() {
		// Someone came back between arming and firing; keep the room.
		return
	}
	// Teardown doubles as the exit signal for any bot still attached.
	h.crashRoom(roomID)
	h.log.Info().Uint64("room_id", uint64(roomID)).Msg("inactive room expired")
}

func (h *Hub) reactToEvents(room *Room, events []Event) {
	for _, ev := range events {
		switch ev.Kind {
		case EventAllSelected:
			h.pushRoomState(room)
		case EventInvalidStatSelect:
			if target := h.clients.ByID(ev.Target); target != nil && target.conn != nil {
				target.conn.deliver(Push{Kind: PushSelectStatError, Reason: ev.Reason})
			}
		case EventNewMatch:
			h.pushRoomState(room)
			h.startMatchSequence(room.ID())
		case EventGameFinished:
			h.pushRoomState(room)
		}
	}
}

func (h *Hub) pushRoomState(room *Room) {
	for _, c := range room.Participants() {
		if c.conn != nil {
			c.conn.deliver(Push{Kind: PushState, Room: Snapshot(room, c.ID)})
		}
	}
}

// withRoom applies the room-error policy around fn: a stale room id is an
// expected race with teardown and downgrades to a crash notice for the one
// acting client; any other failure is unrecoverable for the room and tears it
// down for everyone.
func (h *Hub) withRoom(id RoomID, conn *Conn, fn func(*Room) error) {
	room, err := h.rooms.Get(id)
	if err == nil {
		err = fn(room)
	}
	if err == nil {
		return
	}

	if errors.Is(err, ErrRoomNotFound) {
		h.log.Debug().Err(err).Uint64("room_id", uint64(id)).Msg("room gone out from under an action")
		if conn != nil {
			if client := h.clients.ByConn(conn); client != nil {
				h.clients.ResetSessionState([]*Client{client})
			}
			conn.deliver(Push{Kind: PushRoomCrash})
		}
		return
	}

	h.log.Error().Err(err).Uint64("room_id", uint64(id)).Msg("room operation failed, crashing room")
	h.crashRoom(id)
}

func (h *Hub) crashRoom(id RoomID) {
	room, err := h.rooms.Get(id)
	if err != nil {
		return
	}
	occupants := room.Participants()
	for _, c := range occupants {
		if c.conn != nil {
			c.conn.deliver(Push{Kind: PushRoomCrash})
		}
	}
	h.clients.ResetSessionState(occupants)
	_ = h.rooms.Delete(id)
}
