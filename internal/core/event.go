package core

// EventKind is a notification a game emits while executing a command.
type EventKind int

const (
	// EventAllSelected fires once both players picked a stat for the round.
	EventAllSelected EventKind = iota
	// EventInvalidStatSelect rejects a pick of an already locked stat.
	EventInvalidStatSelect
	// EventNewMatch fires when the stat pool is exhausted and a fresh match
	// (new creatures, round 1) must begin.
	EventNewMatch
	// EventGameFinished fires when a player reaches the win threshold.
	EventGameFinished
)

// Event describes a game-originated occurrence. The game never learns its
// room: RoomID is stamped by the owning room when it relays the event.
// Target carries a client identifier for events addressed to one client;
// empty means broadcast.
type Event struct {
	Kind   EventKind
	RoomID RoomID
	Target string
	Reason string
}
