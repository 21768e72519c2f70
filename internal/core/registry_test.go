package core

import (
	"errors"
	"testing"
	"time"
)

func testRegistry(delay time.Duration, onExpire func(RoomID)) *RoomRegistry {
	if onExpire == nil {
		onExpire = func(RoomID) {}
	}
	return NewRoomRegistry(3, delay, onExpire, nopLogger())
}

func TestPlaceInAnyRoomReusesFreeSlot(t *testing.T) {
	rr := testRegistry(time.Hour, nil)
	alice := &Client{ID: "a"}
	bob := &Client{ID: "b"}

	first, created := rr.PlaceInAnyRoom(alice)
	if !created {
		t.Fatal("first placement must create a room")
	}
	if first.ID() != 1 {
		t.Fatalf("room id = %d, want ids to start at 1", first.ID())
	}

	second, created := rr.PlaceInAnyRoom(bob)
	if created || second != first {
		t.Fatal("second placement must reuse the free slot")
	}

	third, created := rr.PlaceInAnyRoom(&Client{ID: "c"})
	if !created || third == first {
		t.Fatal("a full room must not be reused")
	}
	if third.ID() != 2 {
		t.Fatalf("room id = %d, want monotonically increasing", third.ID())
	}
}

func TestPlaceInAnyRoomSkipsStartedRooms(t *testing.T) {
	rr := testRegistry(time.Hour, nil)
	alice := &Client{ID: "a", Name: "Alice"}
	bob := &Client{ID: "b", Name: "Bob"}
	room, _ := rr.PlaceInAnyRoom(alice)
	rr.PlaceInAnyRoom(bob)
	room.StartMatch()
	room.RemoveParticipant(bob)

	other, created := rr.PlaceInAnyRoom(&Client{ID: "c"})
	if !created || other == room {
		t.Fatal("a room with a running match must not accept new placements")
	}
}

func TestPlaceInNewRoomAlwaysCreates(t *testing.T) {
	rr := testRegistry(time.Hour, nil)
	first, _ := rr.PlaceInAnyRoom(&Client{ID: "a"})

	second := rr.PlaceInNewRoom(&Client{ID: "b"})
	if second == first {
		t.Fatal("placeInNewRoom must bypass slot reuse")
	}
	if rr.Len() != 2 {
		t.Fatalf("rooms = %d, want 2", rr.Len())
	}
}

func TestRemoveFromRoomDeletesEmptied(t *testing.T) {
	rr := testRegistry(time.Hour, nil)
	alice := &Client{ID: "a"}
	room, _ := rr.PlaceInAnyRoom(alice)

	if err := rr.RemoveFromRoom(room.ID(), alice); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := rr.Get(room.ID()); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("err = %v, want ErrRoomNotFound after emptying", err)
	}
}

func TestDeleteUnknownRoomIsRecoverable(t *testing.T) {
	rr := testRegistry(time.Hour, nil)
	if err := rr.Delete(42); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("err = %v, want ErrRoomNotFound", err)
	}
}

func TestShutdownTimerFiresForInactiveRoom(t *testing.T) {
	expired := make(chan RoomID, 1)
	rr := testRegistry(30*time.Millisecond, func(id RoomID) { expired <- id })

	alice := &Client{ID: "a"} // no live connection
	room, _ := rr.PlaceInAnyRoom(alice)

	if err := rr.ScheduleShutdownIfInactive(room.ID()); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	select {
	case id := <-expired:
		if id != room.ID() {
			t.Fatalf("expired id = %d, want %d", id, room.ID())
		}
	case <-time.After(time.Second):
		t.Fatal("shutdown timer never fired")
	}
}

func TestShutdownTimerSkipsLiveRooms(t *testing.T) {
	expired := make(chan RoomID, 1)
	rr := testRegistry(30*time.Millisecond, func(id RoomID) { expired <- id })

	alice := &Client{ID: "a", conn: NewConn()}
	room, _ := rr.PlaceInAnyRoom(alice)

	if err := rr.ScheduleShutdownIfInactive(room.ID()); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	select {
	case <-expired:
		t.Fatal("timer armed despite a live participant")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClearShutdownTimerCancels(t *testing.T) {
	expired := make(chan RoomID, 1)
	rr := testRegistry(30*time.Millisecond, func(id RoomID) { expired <- id })

	alice := &Client{ID: "a"}
	room, _ := rr.PlaceInAnyRoom(alice)
	if err := rr.ScheduleShutdownIfInactive(room.ID()); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	rr.ClearShutdownTimer(room.ID())

	select {
	case <-expired:
		t.Fatal("cleared timer still fired")
	case <-time.After(100 * time.Millisecond):
	}
}
