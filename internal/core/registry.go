package core

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// RoomRegistry owns the collection of rooms: creation, matching of idle
// clients into free slots, and delayed teardown of rooms whose occupants all
// went offline. The shutdown delay is long on purpose: a closed laptop must
// not lose an in-progress match, abandoned rooms must not pile up forever.
type RoomRegistry struct {
	rooms         map[RoomID]*Room
	nextID        RoomID
	timers        map[RoomID]*time.Timer
	shutdownDelay time.Duration
	winThreshold  int
	onExpire      func(RoomID)
	log           *zerolog.Logger
}

// NewRoomRegistry constructs an empty registry. onExpire is invoked from the
// timer goroutine when a shutdown delay elapses; the caller is responsible for
// re-serializing it onto its own loop.
func NewRoomRegistry(winThreshold int, shutdownDelay time.Duration, onExpire func(RoomID), logger *zerolog.Logger) *RoomRegistry {
	return &RoomRegistry{
		rooms:         make(map[RoomID]*Room),
		timers:        make(map[RoomID]*time.Timer),
		shutdownDelay: shutdownDelay,
		winThreshold:  winThreshold,
		onExpire:      onExpire,
		log:           logger,
	}
}

// PlaceInAnyRoom puts the client into an existing room with a free slot whose
// match has not started, or into a fresh room. The second return value is
// true when a room was created.
func (rr *RoomRegistry) PlaceInAnyRoom(c *Client) (*Room, bool) {
	for _, room := range rr.rooms {
		if !room.IsFull() && !room.Started() {
			room.AddParticipant(c)
			return room, false
		}
	}
	room := rr.create()
	room.AddParticipant(c)
	return room, true
}

// PlaceInNewRoom always creates a fresh room for the client, bypassing slot
// reuse. Used for the bot flow, where the opponent joins through the public
// join path right after.
func (rr *RoomRegistry) PlaceInNewRoom(c *Client) *Room {
	room := rr.create()
	room.AddParticipant(c)
	return room
}

func (rr *RoomRegistry) create() *Room {
	rr.nextID++
	room := newRoom(rr.nextID, rr.winThreshold, rr.log)
	rr.rooms[room.id] = room
	rr.log.Info().Uint64("room_id", uint64(room.id)).Msg("room created")
	return room
}

// RemoveFromRoom drops the client from the room. An emptied room is deleted
// immediately; one left with only offline occupants gets a shutdown timer.
func (rr *RoomRegistry) RemoveFromRoom(id RoomID, c *Client) error {
	room, err := rr.Get(id)
	if err != nil {
		return err
	}
	room.RemoveParticipant(c)
	if room.IsEmpty() {
		return rr.Delete(id)
	}
	if !room.HasLiveParticipant() {
		return rr.ScheduleShutdownIfInactive(id)
	}
	return nil
}

// ScheduleShutdownIfInactive arms a deletion timer when no occupant owns a
// live connection. Re-arming replaces any previous timer for the room.
func (rr *RoomRegistry) ScheduleShutdownIfInactive(id RoomID) error {
	room, err := rr.Get(id)
	if err != nil {
		return err
	}
	if room.HasLiveParticipant() {
		return nil
	}
	if prev, ok := rr.timers[id]; ok {
		prev.Stop()
	}
	rr.timers[id] = time.AfterFunc(rr.shutdownDelay, func() {
		rr.onExpire(id)
	})
	rr.log.Debug().Uint64("room_id", uint64(id)).Dur("delay", rr.shutdownDelay).Msg("room shutdown scheduled")
	return nil
}

// ClearShutdownTimer cancels a pending deletion timer, if any. Called when an
// occupant of an inactive room reconnects.
func (rr *RoomRegistry) ClearShutdownTimer(id RoomID) {
	if timer, ok := rr.timers[id]; ok {
		timer.Stop()
		delete(rr.timers, id)
	}
}

// Delete removes the room immediately. A stale id is an expected, recoverable
// condition and comes back as ErrRoomNotFound.
func (rr *RoomRegistry) Delete(id RoomID) error {
	if _, ok := rr.rooms[id]; !ok {
		return fmt.Errorf("delete room %d: %w", id, ErrRoomNotFound)
	}
	rr.ClearShutdownTimer(id)
	delete(rr.rooms, id)
	rr.log.Info().Uint64("room_id", uint64(id)).Msg("room deleted")
	return nil
}

// Get returns the room or ErrRoomNotFound for a stale id.
func (rr *RoomRegistry) Get(id RoomID) (*Room, error) {
	room, ok := rr.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %d: %w", id, ErrRoomNotFound)
	}
	return room, nil
}

// Len returns the number of live rooms.
func (rr *RoomRegistry) Len() int { return len(rr.rooms) }
