// Package bot provides the scripted opponent for the play-vs-bot flow. The
// bot is an ordinary protocol client: it owns a core.Conn, registers through
// the hub's public methods, and reacts to the same snapshots a human sees.
package bot

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pokeduel-server/internal/core"
)

var botNames = []string{"Rocket Rival", "Gym Bot", "Wild Trainer", "Prof. Oakbot"}

// Launcher spawns one bot goroutine per requested room.
type Launcher struct {
	hub        *core.Hub
	thinkDelay time.Duration
	log        *zerolog.Logger
}

// NewLauncher wires a launcher to the hub it will play against.
func NewLauncher(hub *core.Hub, thinkDelay time.Duration, logger *zerolog.Logger) *Launcher {
	return &Launcher{hub: hub, thinkDelay: thinkDelay, log: logger}
}

// Launch starts a bot that joins the room and plays until the match finishes
// or the room goes away.
func (l *Launcher) Launch(roomID core.RoomID) {
	go l.run(roomID)
}

func (l *Launcher) run(roomID core.RoomID) {
	conn := core.NewConn()
	id := "bot-" + uuid.NewString()
	name := botNames[rand.Intn(len(botNames))]

	l.hub.ConnectBot(conn, id)
	l.hub.EnterName(conn, name)
	l.hub.JoinRoom(conn, roomID)

	l.log.Info().Str("bot_id", id).Uint64("room_id", uint64(roomID)).Msg("bot joined")

	readied := false
	for push := range conn.Sends {
		switch push.Kind {
		case core.PushState:
			if done := l.onState(conn, push.Room, &readied); done {
				l.hub.LeaveRoom(conn)
				l.hub.Disconnect(conn)
				return
			}
		case core.PushRoomCrash, core.PushDuplicateSession, core.PushBadRoomID, core.PushRoomFull:
			l.log.Warn().Str("bot_id", id).Int("push", int(push.Kind)).Msg("bot bailing out")
			l.hub.Disconnect(conn)
			return
		}
	}
}

// onState reacts to one snapshot. Returns true when the bot is done with the
// room.
func (l *Launcher) onState(conn *core.Conn, view *core.ViewRoom, readied *bool) bool {
	if view == nil {
		return false
	}

	// Opponent left an unfinished room; no point staying.
	if *readied && len(view.Participants) < 2 {
		return true
	}

	if !*readied {
		*readied = true
		l.hub.ToggleReady(conn)
		return false
	}

	game := view.Game
	if game == nil {
		return false
	}

	switch game.Phase {
	case "selecting-stat":
		if game.You.Selected == nil {
			l.think()
			l.hub.SelectStat(conn, pickStat(game.LockedStats))
		}
	case "battle":
		l.think()
		l.hub.BattleEnd(conn)
	case "finished":
		return true
	}
	return false
}

func (l *Launcher) think() {
	if l.thinkDelay > 0 {
		time.Sleep(l.thinkDelay)
	}
}

// pickStat chooses a random stat that has not been locked this match.
func pickStat(locked []core.StatName) core.StatName {
	used := make(map[core.StatName]struct{}, len(locked))
	for _, s := range locked {
		used[s] = struct{}{}
	}
	free := make([]core.StatName, 0, len(core.AllStats))
	for _, s := range core.AllStats {
		if _, ok := used[s]; !ok {
			free = append(free, s)
		}
	}
	if len(free) == 0 {
		return core.AllStats[0]
	}
	return free[rand.Intn(len(free))]
}
