package app

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Courier/internal/core"
	"github.com/dkeye/Courier/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	fail   bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return core.ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

func (c *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, f := range c.frames {
		var v map[string]any
		require.NoError(t, json.Unmarshal(f, &v))
		out = append(out, v)
	}
	return out
}

func (c *fakeConn) lastEvent(t *testing.T) map[string]any {
	t.Helper()
	events := c.events(t)
	require.NotEmpty(t, events)
	return events[len(events)-1]
}

type fakeStatus struct {
	mu      sync.Mutex
	updates map[string]string
	err     error
}

func newFakeStatus() *fakeStatus {
	return &fakeStatus{updates: make(map[string]string)}
}

func (s *fakeStatus) SetStatus(username, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.updates[username] = status
	return nil
}

func identity(name string) domain.Identity {
	return domain.Identity{ID: domain.UserID("id-" + name), Username: name, Avatar: domain.DefaultAvatar}
}

func TestRegistry_ReplaceByIdentity(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(newFakeStatus())
	alice := identity("alice")
	h1, h2 := &fakeConn{}, &fakeConn{}

	reg.Register(alice, h1)
	reg.Register(alice, h2)

	conn, ok := reg.Resolve(alice.ID)
	req.True(ok)
	req.Same(h2, conn)

	// The orphaned handle's disconnect callback must not evict the
	// newer session.
	reg.Unregister(alice, h1)
	_, ok = reg.Resolve(alice.ID)
	req.True(ok)

	reg.Unregister(alice, h2)
	_, ok = reg.Resolve(alice.ID)
	req.False(ok)
}

func TestRegistry_ListOnlineSortedByUsername(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(newFakeStatus())

	reg.Register(identity("zoe"), &fakeConn{})
	reg.Register(identity("alice"), &fakeConn{})
	reg.Register(identity("bob"), &fakeConn{})

	users := reg.ListOnline()
	req.Len(users, 3)
	req.Equal("alice", users[0].Username)
	req.Equal("bob", users[1].Username)
	req.Equal("zoe", users[2].Username)
	for _, u := range users {
		req.Equal(domain.StatusOnline, u.Status)
	}
}

func TestRegistry_PresenceBroadcastOnRegisterAndUnregister(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(newFakeStatus())
	alice, bob := identity("alice"), identity("bob")
	aliceConn, bobConn := &fakeConn{}, &fakeConn{}

	reg.Register(alice, aliceConn)
	reg.Register(bob, bobConn)

	last := aliceConn.lastEvent(t)
	req.Equal("users-update", last["type"])
	users := last["users"].([]any)
	req.Len(users, 2)

	aliceConn.reset()
	reg.Unregister(bob, bobConn)

	last = aliceConn.lastEvent(t)
	req.Equal("users-update", last["type"])
	users = last["users"].([]any)
	req.Len(users, 1)
	req.Equal("alice", users[0].(map[string]any)["username"])
}

func TestRegistry_StatusWrites(t *testing.T) {
	req := require.New(t)
	status := newFakeStatus()
	reg := NewRegistry(status)
	alice := identity("alice")
	conn := &fakeConn{}

	reg.Register(alice, conn)
	req.Equal(domain.StatusOnline, status.updates["alice"])

	reg.Unregister(alice, conn)
	req.Equal(domain.StatusOffline, status.updates["alice"])
}

func TestRegistry_StatusWriteFailureDoesNotBlockMapping(t *testing.T) {
	req := require.New(t)
	status := newFakeStatus()
	status.err = core.ErrBackpressure
	reg := NewRegistry(status)
	alice := identity("alice")

	reg.Register(alice, &fakeConn{})

	_, ok := reg.Resolve(alice.ID)
	req.True(ok)
}

func TestRegistry_BroadcastIsolatesSendFailures(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(newFakeStatus())
	alice, bob := identity("alice"), identity("bob")
	slow := &fakeConn{fail: true}
	fast := &fakeConn{}

	reg.Register(alice, slow)
	reg.Register(bob, fast)
	fast.reset()

	reg.Broadcast(map[string]string{"type": "probe"})

	events := fast.events(t)
	req.Len(events, 1)
	req.Equal("probe", events[0]["type"])
}
