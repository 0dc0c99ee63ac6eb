package realtime

import "log"

// Frame types on the wire. Every frame is a JSON object with at least a
// "type" discriminator.
const (
	FrameAck          = "connection:ack"
	FrameXpUpdate     = "xp:update"
	FrameSocialUpdate = "social:update"
	FrameSync         = "sync"
)

// Sync scopes.
const (
	ScopePlayers       = "players"
	ScopeMatches       = "matches"
	ScopeNetwork       = "network"
	ScopeRequests      = "requests"
	ScopeNotifications = "notifications"
)

// Frame is the generic push envelope.
type Frame struct {
	Type  string      `json:"type"`
	Scope string      `json:"scope,omitempty"`
	Meta  interface{} `json:"meta,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// MemberResolver resolves the *current* member ids of a network. The
// coordinator calls it fresh at push time — membership can change between
// the triggering event and the push, so the list is never cached.
type MemberResolver func(networkID string) ([]string, error)

// Coordinator is the fan-out layer the services push through.
type Coordinator struct {
	reg     *Registry
	resolve MemberResolver
}

func NewCoordinator(reg *Registry, resolve MemberResolver) *Coordinator {
	return &Coordinator{reg: reg, resolve: resolve}
}

func (c *Coordinator) EmitToUser(userID string, payload interface{}) {
	c.reg.EmitToUser(userID, payload)
}

func (c *Coordinator) EmitToUsers(userIDs []string, payload interface{}) {
	c.reg.EmitToUsers(userIDs, payload)
}

// EmitNetworkSync pushes a sync frame to every current member of the
// network. Resolution failures are logged and swallowed — a push never
// fails the business operation behind it.
func (c *Coordinator) EmitNetworkSync(networkID, scope string, meta interface{}) {
	ids, err := c.resolve(networkID)
	if err != nil {
		log.Printf("[Fanout] member resolve failed for %s: %v", networkID, err)
		return
	}
	c.reg.EmitToUsers(ids, Frame{Type: FrameSync, Scope: scope, Meta: meta})
}

func (c *Coordinator) EmitXpUpdate(userID string, payload interface{}) {
	c.reg.EmitToUser(userID, Frame{Type: FrameXpUpdate, Data: payload})
}

func (c *Coordinator) EmitSocialUpdate(userIDs []string, payload interface{}) {
	c.reg.EmitToUsers(userIDs, Frame{Type: FrameSocialUpdate, Data: payload})
}

func (c *Coordinator) EmitNotificationsUpdate(userID string) {
	c.reg.EmitToUser(userID, Frame{Type: FrameSync, Scope: ScopeNotifications})
}
