package core

// PushKind enumerates the messages the hub sends to a single connection.
type PushKind int

const (
	// PushState delivers a fresh per-recipient room snapshot.
	PushState PushKind = iota
	// PushRoomFull rejects a join into an occupied room.
	PushRoomFull
	// PushRoomCrash tells the client its room is gone and the session must reset.
	PushRoomCrash
	// PushNameValid confirms an accepted display name.
	PushNameValid
	// PushNameError rejects a display name.
	PushNameError
	// PushBadRoomID rejects a malformed or unknown room id.
	PushBadRoomID
	// PushDuplicateSession rejects a second live connection for one identifier.
	PushDuplicateSession
	// PushSelectStatError rejects a stat pick, with a human-readable reason.
	PushSelectStatError
)

// Push is one client-bound message.
type Push struct {
	Kind   PushKind
	Room   *ViewRoom
	Reason string
}

// Conn is the core's handle on one live transport attachment. The transport
// write pump drains Sends; the hub never blocks on a slow consumer.
type Conn struct {
	Sends chan Push
}

// NewConn builds a connection handle with a buffered outbound channel.
func NewConn() *Conn {
	return &Conn{Sends: make(chan Push, 16)}
}

func (c *Conn) deliver(p Push) {
	select {
	case c.Sends <- p:
	default:
		// Drop if slow consumer.
	}
}
