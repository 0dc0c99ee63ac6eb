package realtime

import (
	"errors"
	"testing"
)

// fakeConn records every payload written to it.
type fakeConn struct {
	writes []interface{}
	broken bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	if f.broken {
		return errors.New("connection closed")
	}
	f.writes = append(f.writes, v)
	return nil
}

func (f *fakeConn) Close() error { return nil }

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry()
	c1 := &fakeConn{}
	c2 := &fakeConn{}

	reg.Register("u1", c1)
	reg.Register("u1", c2)
	if got := reg.ConnectionCount("u1"); got != 2 {
		t.Fatalf("expected 2 connections, got %d", got)
	}

	reg.Unregister("u1", c1)
	if got := reg.ConnectionCount("u1"); got != 1 {
		t.Fatalf("expected 1 connection after unregister, got %d", got)
	}

	// Last connection closing removes the entry entirely.
	reg.Unregister("u1", c2)
	if got := reg.ConnectionCount("u1"); got != 0 {
		t.Fatalf("expected mapping removed, got %d connections", got)
	}

	// Unregistering an unknown user must not panic.
	reg.Unregister("ghost", c1)
}

func TestEmitToUserHitsAllConnections(t *testing.T) {
	reg := NewRegistry()
	c1 := &fakeConn{}
	c2 := &fakeConn{}
	reg.Register("u1", c1)
	reg.Register("u1", c2)

	reg.EmitToUser("u1", Frame{Type: FrameXpUpdate})

	if len(c1.writes) != 1 || len(c2.writes) != 1 {
		t.Fatalf("expected one write per connection, got %d and %d", len(c1.writes), len(c2.writes))
	}
}

func TestEmitToUsersDeduplicates(t *testing.T) {
	reg := NewRegistry()
	c := &fakeConn{}
	reg.Register("u1", c)

	reg.EmitToUsers([]string{"u1", "u1", "u1"}, Frame{Type: FrameSocialUpdate})

	if len(c.writes) != 1 {
		t.Fatalf("expected duplicate targets collapsed to one write, got %d", len(c.writes))
	}
}

func TestBrokenConnectionIsSkipped(t *testing.T) {
	reg := NewRegistry()
	broken := &fakeConn{broken: true}
	healthy := &fakeConn{}
	reg.Register("u1", broken)
	reg.Register("u1", healthy)

	reg.EmitToUser("u1", Frame{Type: FrameSync, Scope: ScopeNetwork})

	if len(healthy.writes) != 1 {
		t.Fatalf("healthy connection should still receive the frame, got %d writes", len(healthy.writes))
	}
	if len(broken.writes) != 0 {
		t.Fatalf("broken connection should not record writes, got %d", len(broken.writes))
	}
}

func TestEmitNetworkSyncResolvesMembersAtPushTime(t *testing.T) {
	reg := NewRegistry()
	c1 := &fakeConn{}
	c2 := &fakeConn{}
	reg.Register("u1", c1)
	reg.Register("u2", c2)

	members := []string{"u1"}
	coord := NewCoordinator(reg, func(networkID string) ([]string, error) {
		out := make([]string, len(members))
		copy(out, members)
		return out, nil
	})

	coord.EmitNetworkSync("n1", ScopePlayers, nil)
	if len(c1.writes) != 1 || len(c2.writes) != 0 {
		t.Fatalf("first sync: got %d/%d writes, want 1/0", len(c1.writes), len(c2.writes))
	}

	// Membership changes between pushes — the next emit must see it.
	members = []string{"u1", "u2"}
	coord.EmitNetworkSync("n1", ScopePlayers, nil)
	if len(c1.writes) != 2 || len(c2.writes) != 1 {
		t.Fatalf("second sync: got %d/%d writes, want 2/1", len(c1.writes), len(c2.writes))
	}

	frame, ok := c2.writes[0].(Frame)
	if !ok {
		t.Fatalf("expected a Frame payload, got %T", c2.writes[0])
	}
	if frame.Type != FrameSync || frame.Scope != ScopePlayers {
		t.Fatalf("unexpected frame: %+v", frame)
	}
}

func TestEmitNetworkSyncResolverFailureIsSwallowed(t *testing.T) {
	reg := NewRegistry()
	c := &fakeConn{}
	reg.Register("u1", c)

	coord := NewCoordinator(reg, func(networkID string) ([]string, error) {
		return nil, errors.New("db down")
	})

	// Must not panic and must not deliver anything.
	coord.EmitNetworkSync("n1", ScopeMatches, nil)
	if len(c.writes) != 0 {
		t.Fatalf("expected no writes on resolver failure, got %d", len(c.writes))
	}
}
