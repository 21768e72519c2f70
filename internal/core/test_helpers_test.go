package core

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func nopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// testCreature builds a creature where every stat defaults to 10, overridden
// by the given values.
func testCreature(name string, overrides map[StatName]int) CreatureData {
	stats := make(map[StatName]int, len(AllStats))
	for _, s := range AllStats {
		stats[s] = 10
	}
	for s, v := range overrides {
		stats[s] = v
	}
	return CreatureData{ID: 1, Name: name, Types: []string{"normal"}, Stats: stats}
}

// stubSource hands out creatures in order, cycling.
type stubSource struct {
	creatures []CreatureData
	next      int
	err       error
}

func (s *stubSource) FetchRandomCreature(context.Context) (CreatureData, error) {
	if s.err != nil {
		return CreatureData{}, s.err
	}
	c := s.creatures[s.next%len(s.creatures)]
	s.next++
	return c, nil
}

func mustPush(t *testing.T, ch <-chan Push, kind PushKind) Push {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case p := <-ch:
			if p.Kind == kind {
				return p
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatalf("expected push kind %v not received", kind)
	return Push{}
}

// mustGamePhase drains state pushes until one carries a game in the wanted
// phase, returning its snapshot.
func mustGamePhase(t *testing.T, ch <-chan Push, phase string) *ViewRoom {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case p := <-ch:
			if p.Kind == PushState && p.Room != nil && p.Room.Game != nil && p.Room.Game.Phase == phase {
				return p.Room
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatalf("no snapshot with game phase %q received", phase)
	return nil
}

// roomCount reads the registry size on the hub's own loop to stay race-free.
func roomCount(h *Hub) int {
	ch := make(chan int, 1)
	h.do(func() { ch <- h.rooms.Len() })
	return <-ch
}
