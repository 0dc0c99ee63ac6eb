package realtime

import "sync"

// Conn is the write side of one live connection. The websocket handler
// wraps real sockets; tests plug in fakes.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Registry maps a user id to their currently open connections. A user may
// hold several at once (multiple devices). It grows on connect, shrinks on
// disconnect and keeps no history: when the last connection closes the
// entry disappears entirely.
//
// All methods are safe under concurrent connect/disconnect/emit. Writes to
// a connection happen outside the lock and are fire-and-forget — a failed
// write means the socket is not open and it is simply skipped.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]map[Conn]struct{}
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]map[Conn]struct{})}
}

func (r *Registry) Register(userID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[userID]
	if !ok {
		set = make(map[Conn]struct{})
		r.conns[userID] = set
	}
	set[c] = struct{}{}
}

func (r *Registry) Unregister(userID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[userID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.conns, userID)
	}
}

// ConnectionCount reports how many live connections a user holds.
func (r *Registry) ConnectionCount(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID])
}

func (r *Registry) snapshot(userID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.conns[userID]
	out := make([]Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// EmitToUser delivers the payload to every open connection of one user.
// At-most-once per connection; broken sockets are skipped, never queued.
func (r *Registry) EmitToUser(userID string, payload interface{}) {
	for _, c := range r.snapshot(userID) {
		_ = c.WriteJSON(payload)
	}
}

// EmitToUsers fans the payload out to a deduplicated target list.
func (r *Registry) EmitToUsers(userIDs []string, payload interface{}) {
	seen := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		r.EmitToUser(id, payload)
	}
}
