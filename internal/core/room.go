package core

import "github.com/rs/zerolog"

// RoomID is a process-lifetime-unique, monotonically increasing room id.
type RoomID uint64

type participant struct {
	client *Client
	ready  bool
}

// Room holds up to two participants and at most one game. It is the only
// place that stamps a room id onto game events.
type Room struct {
	id           RoomID
	slots        []*participant
	game         *Game
	winThreshold int
	log          *zerolog.Logger
}

const maxParticipants = 2

func newRoom(id RoomID, winThreshold int, logger *zerolog.Logger) *Room {
	return &Room{
		id:           id,
		slots:        make([]*participant, 0, maxParticipants),
		winThreshold: winThreshold,
		log:          logger,
	}
}

// ID returns the room's identifier.
func (r *Room) ID() RoomID { return r.id }

// AddParticipant appends the client to a free slot, not ready. Returns false
// when the room is full or the client is already present (idempotent no-op).
func (r *Room) AddParticipant(c *Client) bool {
	if len(r.slots) >= maxParticipants {
		return false
	}
	for _, slot := range r.slots {
		if slot.client.ID == c.ID {
			return false
		}
	}
	r.slots = append(r.slots, &participant{client: c})
	return true
}

// RemoveParticipant drops the client by identifier; no-op if absent.
func (r *Room) RemoveParticipant(c *Client) {
	for i, slot := range r.slots {
		if slot.client.ID == c.ID {
			r.slots = append(r.slots[:i], r.slots[i+1:]...)
			return
		}
	}
}

// SetReady marks the named participant ready. One-directional: un-readying is
// a hub concern, layered on via ToggleReady.
func (r *Room) SetReady(id string) {
	for _, slot := range r.slots {
		if slot.client.ID == id {
			slot.ready = true
			return
		}
	}
}

// ToggleReady flips the named participant's ready flag and returns its new
// value. False for an absent identifier.
func (r *Room) ToggleReady(id string) bool {
	for _, slot := range r.slots {
		if slot.client.ID == id {
			slot.ready = !slot.ready
			return slot.ready
		}
	}
	return false
}

// StartMatch constructs the room's game from the current participants in slot
// order. It does nothing when a game already exists or the room is not full:
// a room runs at most one game instance for its whole life.
func (r *Room) StartMatch() {
	if r.game != nil || !r.IsFull() {
		return
	}
	a := Participant{Name: r.slots[0].client.Name, ID: r.slots[0].client.ID}
	b := Participant{Name: r.slots[1].client.Name, ID: r.slots[1].client.ID}
	r.game = NewGame(a, b, r.winThreshold, r.log)
}

// Forward delegates the command to the game and relays its events with this
// room's id stamped on. No-op when no game has started.
func (r *Room) Forward(cmd Command) ([]Event, error) {
	if r.game == nil {
		return nil, nil
	}
	events, err := r.game.Apply(cmd)
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].RoomID = r.id
	}
	return events, nil
}

// Participants lists the occupants in slot order.
func (r *Room) Participants() []*Client {
	out := make([]*Client, 0, len(r.slots))
	for _, slot := range r.slots {
		out = append(out, slot.client)
	}
	return out
}

// IsFull reports whether both slots are taken.
func (r *Room) IsFull() bool { return len(r.slots) == maxParticipants }

// IsEmpty reports whether no one is left.
func (r *Room) IsEmpty() bool { return len(r.slots) == 0 }

// EveryoneReady reports whether the room is full and all participants ready.
func (r *Room) EveryoneReady() bool {
	if !r.IsFull() {
		return false
	}
	for _, slot := range r.slots {
		if !slot.ready {
			return false
		}
	}
	return true
}

// Started reports whether a match has been constructed.
func (r *Room) Started() bool { return r.game != nil }

// CurrentPhase returns the game's phase, or false when no game exists.
func (r *Room) CurrentPhase() (Phase, bool) {
	if r.game == nil {
		return 0, false
	}
	return r.game.phase, true
}

// HasLiveParticipant reports whether any occupant still owns a connection.
// Bot connections do not count: a bot alone must never keep a room alive.
func (r *Room) HasLiveParticipant() bool {
	for _, slot := range r.slots {
		if slot.client.Connected() && !slot.client.Bot {
			return true
		}
	}
	return false
}
