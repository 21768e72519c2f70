package core

import (
	"context"
	"testing"
	"time"
)

func testSettings() Settings {
	return Settings{
		WinThreshold:      3,
		RevealDelay:       20 * time.Millisecond,
		RoomShutdownDelay: 80 * time.Millisecond,
		FetchTimeout:      time.Second,
	}
}

func startHub(t *testing.T, src CreatureSource, settings Settings) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := NewHub(src, settings, nopLogger())
	go h.Run(ctx)
	return h
}

func duelSource() *stubSource {
	return &stubSource{creatures: []CreatureData{
		testCreature("bulbasaur", map[StatName]int{StatAttack: 100, StatDefense: 20}),
		testCreature("charmander", map[StatName]int{StatAttack: 50, StatDefense: 10}),
	}}
}

// mustSnapshot drains state pushes until one satisfies cond.
func mustSnapshot(t *testing.T, ch <-chan Push, what string, cond func(*ViewRoom) bool) *ViewRoom {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case p := <-ch:
			if p.Kind == PushState && p.Room != nil && cond(p.Room) {
				return p.Room
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatalf("no snapshot matching %q received", what)
	return nil
}

// setupDuel walks two clients through names, room setup and readiness, and
// waits until stat selection opens.
func setupDuel(t *testing.T, h *Hub) (alice, bob *Conn, roomID RoomID) {
	t.Helper()

	alice, bob = NewConn(), NewConn()
	h.Connect(alice, "alice-id")
	h.Connect(bob, "bob-id")
	h.EnterName(alice, "Alice")
	h.EnterName(bob, "Bob")
	mustPush(t, alice.Sends, PushNameValid)
	mustPush(t, bob.Sends, PushNameValid)

	h.CreateRoom(alice)
	view := mustSnapshot(t, alice.Sends, "room created", func(v *ViewRoom) bool { return v.RoomID != 0 })
	roomID = view.RoomID

	h.JoinRoom(bob, roomID)
	mustSnapshot(t, bob.Sends, "both joined", func(v *ViewRoom) bool { return len(v.Participants) == 2 })

	h.ToggleReady(alice)
	h.ToggleReady(bob)

	// Creatures are fetched asynchronously, then revealed, then selection opens.
	mustGamePhase(t, alice.Sends, "pokemon-reveal")
	mustGamePhase(t, alice.Sends, "selecting-stat")
	mustGamePhase(t, bob.Sends, "selecting-stat")
	return alice, bob, roomID
}

func TestMatchStartSequence(t *testing.T) {
	h := startHub(t, duelSource(), testSettings())
	setupDuel(t, h)
}

func TestRoundResolution(t *testing.T) {
	h := startHub(t, duelSource(), testSettings())
	alice, bob, _ := setupDuel(t, h)

	h.SelectStat(alice, StatAttack)

	// A lone pick is confirmed back to the picker right away.
	confirmed := mustSnapshot(t, alice.Sends, "pick confirmed", func(v *ViewRoom) bool {
		return v.Game != nil && v.Game.You.Selected != nil
	})
	if confirmed.Game.You.Selected.Name != StatAttack {
		t.Fatalf("confirmed pick = %+v, want attack", confirmed.Game.You.Selected)
	}
	if confirmed.Game.Phase != "selecting-stat" {
		t.Fatalf("phase = %q, want still selecting", confirmed.Game.Phase)
	}

	h.SelectStat(bob, StatDefense)

	battle := mustGamePhase(t, alice.Sends, "battle")
	if battle.Game.You.Selected == nil || battle.Game.You.Selected.Value != 100 {
		t.Fatalf("own pick = %+v, want attack 100", battle.Game.You.Selected)
	}
	if battle.Game.Opponent.Selected != nil {
		t.Fatal("opponent's raw pick must never be serialized")
	}
	if battle.Game.You.Challenged == nil || battle.Game.You.Challenged.Name != StatDefense || battle.Game.You.Challenged.Value != 20 {
		t.Fatalf("challenged = %+v, want own defense 20", battle.Game.You.Challenged)
	}

	h.BattleEnd(alice)
	h.BattleEnd(bob)

	next := mustSnapshot(t, alice.Sends, "round 2", func(v *ViewRoom) bool {
		return v.Game != nil && v.Game.Round == 2
	})
	if next.Game.You.Points != 1 || next.Game.Opponent.Points != 0 {
		t.Fatalf("points = %d/%d, want 1/0 for Alice", next.Game.You.Points, next.Game.Opponent.Points)
	}
	if len(next.Game.LockedStats) != 2 {
		t.Fatalf("locked = %v, want both round picks", next.Game.LockedStats)
	}

	// Locked stats are rejected with a targeted error.
	h.SelectStat(alice, StatAttack)
	p := mustPush(t, alice.Sends, PushSelectStatError)
	if p.Reason == "" {
		t.Fatal("rejection must carry a reason")
	}
}

func TestDisconnectReconnectAndExpiry(t *testing.T) {
	h := startHub(t, duelSource(), testSettings())
	alice, bob, _ := setupDuel(t, h)

	h.Disconnect(bob)
	h.Disconnect(alice)

	// Reconnect under the same identifier before the shutdown delay elapses.
	alice2 := NewConn()
	h.Connect(alice2, "alice-id")
	mustSnapshot(t, alice2.Sends, "reconnect snapshot", func(v *ViewRoom) bool { return v.Game != nil })

	time.Sleep(150 * time.Millisecond)
	if got := roomCount(h); got != 1 {
		t.Fatalf("rooms = %d, want the room to survive a reconnect", got)
	}

	// Now let the timer run out with everyone offline.
	h.Disconnect(alice2)
	time.Sleep(150 * time.Millisecond)
	if got := roomCount(h); got != 0 {
		t.Fatalf("rooms = %d, want expiry to delete the room", got)
	}
}

func TestAbandonedBotRoomExpires(t *testing.T) {
	h := startHub(t, duelSource(), testSettings())

	human := NewConn()
	h.Connect(human, "human-id")
	h.EnterName(human, "Ash")
	h.PlayVsBot(human)
	view := mustSnapshot(t, human.Sends, "room created", func(v *ViewRoom) bool { return v.RoomID != 0 })

	// Stand in for the launched opponent the way the bot package registers.
	botConn := NewConn()
	h.ConnectBot(botConn, "bot-1")
	h.EnterName(botConn, "Gym Bot")
	h.JoinRoom(botConn, view.RoomID)

	h.ToggleReady(human)
	h.ToggleReady(botConn)
	mustGamePhase(t, human.Sends, "selecting-stat")

	// The human walks away mid-match; the bot's connection alone must not
	// keep the room alive past the shutdown delay.
	h.Disconnect(human)
	time.Sleep(150 * time.Millisecond)
	if got := roomCount(h); got != 0 {
		t.Fatalf("rooms = %d, want the abandoned bot room gone", got)
	}

	// Teardown tells the still-attached bot to exit.
	mustPush(t, botConn.Sends, PushRoomCrash)

	// And a bot record does not outlive its connection.
	h.Disconnect(botConn)
	gone := make(chan bool, 1)
	h.do(func() { gone <- h.clients.ByID("bot-1") == nil })
	if !<-gone {
		t.Fatal("bot record must be removed on disconnect")
	}
}

func TestDuplicateSessionPush(t *testing.T) {
	h := startHub(t, duelSource(), testSettings())

	first := NewConn()
	h.Connect(first, "abc")

	second := NewConn()
	h.Connect(second, "abc")
	mustPush(t, second.Sends, PushDuplicateSession)
}

func TestJoinUnknownRoom(t *testing.T) {
	h := startHub(t, duelSource(), testSettings())

	conn := NewConn()
	h.Connect(conn, "abc")
	h.JoinRoom(conn, 999)
	mustPush(t, conn.Sends, PushBadRoomID)
}

func TestJoinFullRoom(t *testing.T) {
	h := startHub(t, duelSource(), testSettings())
	_, _, roomID := setupDuel(t, h)

	late := NewConn()
	h.Connect(late, "carol-id")
	h.JoinRoom(late, roomID)
	mustPush(t, late.Sends, PushRoomFull)
}

func TestFetchFailureCrashesRoom(t *testing.T) {
	src := duelSource()
	h := startHub(t, src, testSettings())

	alice, bob := NewConn(), NewConn()
	h.Connect(alice, "alice-id")
	h.Connect(bob, "bob-id")
	h.EnterName(alice, "Alice")
	h.EnterName(bob, "Bob")

	h.CreateRoom(alice)
	view := mustSnapshot(t, alice.Sends, "room created", func(v *ViewRoom) bool { return v.RoomID != 0 })
	h.JoinRoom(bob, view.RoomID)

	src.err = context.DeadlineExceeded
	h.ToggleReady(alice)
	h.ToggleReady(bob)

	mustPush(t, alice.Sends, PushRoomCrash)
	mustPush(t, bob.Sends, PushRoomCrash)
	if got := roomCount(h); got != 0 {
		t.Fatalf("rooms = %d, want the crashed room gone", got)
	}
}

func TestLeaveEmptiesAndDeletesRoom(t *testing.T) {
	h := startHub(t, duelSource(), testSettings())

	alice := NewConn()
	h.Connect(alice, "alice-id")
	h.EnterName(alice, "Alice")
	h.CreateRoom(alice)
	mustSnapshot(t, alice.Sends, "room created", func(v *ViewRoom) bool { return v.RoomID != 0 })

	h.LeaveRoom(alice)
	if got := roomCount(h); got != 0 {
		t.Fatalf("rooms = %d, want the emptied room deleted", got)
	}
}
