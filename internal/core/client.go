package core

// Client is one participant as tracked across connects and disconnects. The
// record outlives its transport attachment: conn is cleared on disconnect and
// restored on reconnect, so a returning identifier finds its session again.
type Client struct {
	ID     string // stable, client-supplied identifier
	Name   string
	RoomID RoomID // 0 while unjoined
	Bot    bool   // scripted opponent; excluded from room liveness
	conn   *Conn  // nil while disconnected
}

// Connected reports whether the client currently owns a live connection.
func (c *Client) Connected() bool {
	return c.conn != nil
}

// ClientRegistry indexes clients by identifier and by live connection.
// At most one record exists per identifier, and a connection maps to at most
// one record.
type ClientRegistry struct {
	byID   map[string]*Client
	byConn map[*Conn]*Client
}

// NewClientRegistry constructs an empty registry.
func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{
		byID:   make(map[string]*Client),
		byConn: make(map[*Conn]*Client),
	}
}

// RegisterOrReconnect attaches conn under the given identifier. An unknown
// identifier creates a fresh record (isNew=true); a known one with no live
// connection is a reconnect. A known identifier that already owns a live
// connection is a duplicate session: nothing is mutated and
// ErrDuplicateSession is returned so the caller can reject the newcomer.
func (r *ClientRegistry) RegisterOrReconnect(conn *Conn, id string) (client *Client, isNew bool, err error) {
	if existing, ok := r.byID[id]; ok {
		if existing.conn != nil {
			return existing, false, ErrDuplicateSession
		}
		existing.conn = conn
		r.byConn[conn] = existing
		return existing, false, nil
	}

	client = &Client{ID: id, conn: conn}
	r.byID[id] = client
	r.byConn[conn] = client
	return client, true, nil
}

// Detach clears the client's live connection but keeps the record, so the
// same identifier can reconnect into it later.
func (r *ClientRegistry) Detach(c *Client) {
	if c.conn != nil {
		delete(r.byConn, c.conn)
		c.conn = nil
	}
}

// Remove deletes the record from both indexes. Used only for hard resets;
// a normal disconnect goes through Detach.
func (r *ClientRegistry) Remove(c *Client) {
	if c.conn != nil {
		delete(r.byConn, c.conn)
		c.conn = nil
	}
	delete(r.byID, c.ID)
}

// ByConn returns the client owning the connection, or nil.
func (r *ClientRegistry) ByConn(conn *Conn) *Client {
	return r.byConn[conn]
}

// ByID returns the client with the identifier, or nil.
func (r *ClientRegistry) ByID(id string) *Client {
	return r.byID[id]
}

// ResetSessionState clears name and room association on each client, used
// after a forced room teardown pushes its occupants back to an unjoined state.
func (r *ClientRegistry) ResetSessionState(clients []*Client) {
	for _, c := range clients {
		c.Name = ""
		c.RoomID = 0
	}
}
