package core

import "errors"

var (
	// ErrRoomNotFound marks the expected race between a room's teardown and an
	// in-flight action on it. Callers recover from it; nothing else does.
	ErrRoomNotFound = errors.New("room not found")

	// ErrDuplicateSession reports a second live connection for an identifier
	// that already owns one. Reported, never thrown past the registry caller.
	ErrDuplicateSession = errors.New("duplicate session")

	// ErrUnknownPlayer marks a command routed to a game that has no such
	// participant. This is a programming error upstream, not a client fault.
	ErrUnknownPlayer = errors.New("player not in game")
)
