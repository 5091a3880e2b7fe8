package app

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/dkeye/Courier/internal/core"
	"github.com/dkeye/Courier/internal/domain"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// StatusStore receives best-effort presence writes. A failure is logged
// and never blocks or reverts the in-memory mapping.
type StatusStore interface {
	SetStatus(username, status string) error
}

// Session is a live binding between an identity and one transport
// connection.
type Session struct {
	Identity domain.Identity
	Conn     core.Conn
	JoinedAt time.Time
}

// Registry is the authoritative map of who is connected. All mutation
// and read-for-fan-out serialize through its mutex; nothing else may
// hold session state.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.UserID]*Session
	status   StatusStore
}

func NewRegistry(status StatusStore) *Registry {
	return &Registry{
		sessions: make(map[domain.UserID]*Session),
		status:   status,
	}
}

// Register inserts or replaces the mapping for the identity. A second
// authentication for the same identity wins: the previous transport
// handle is orphaned, not closed, and its disconnect callback becomes a
// no-op via the conn guard in Unregister.
func (r *Registry) Register(id domain.Identity, conn core.Conn) *Session {
	sess := &Session{Identity: id, Conn: conn, JoinedAt: time.Now().UTC()}
	r.mu.Lock()
	r.sessions[id.ID] = sess
	r.mu.Unlock()

	if err := r.status.SetStatus(id.Username, domain.StatusOnline); err != nil {
		log.Warn().Err(err).Str("module", "app.registry").Str("username", id.Username).Msg("status write failed")
	}
	log.Info().Str("module", "app.registry").Str("username", id.Username).Msg("session registered")
	r.broadcastPresence()
	return sess
}

// Unregister removes the mapping only when the caller still owns it.
func (r *Registry) Unregister(id domain.Identity, conn core.Conn) {
	r.mu.Lock()
	cur, ok := r.sessions[id.ID]
	if !ok || cur.Conn != conn {
		r.mu.Unlock()
		log.Debug().Str("module", "app.registry").Str("username", id.Username).Msg("stale unregister ignored")
		return
	}
	delete(r.sessions, id.ID)
	r.mu.Unlock()

	if err := r.status.SetStatus(id.Username, domain.StatusOffline); err != nil {
		log.Warn().Err(err).Str("module", "app.registry").Str("username", id.Username).Msg("status write failed")
	}
	log.Info().Str("module", "app.registry").Str("username", id.Username).Msg("session unregistered")
	r.broadcastPresence()
}

func (r *Registry) Get(id domain.UserID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Resolve returns the live transport handle of an identity.
func (r *Registry) Resolve(id domain.UserID) (core.Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[id]; ok {
		return s.Conn, true
	}
	return nil, false
}

// ListOnline returns a presence snapshot ordered by display name.
func (r *Registry) ListOnline() []PresenceDTO {
	r.mu.RLock()
	sessions := lo.Values(r.sessions)
	r.mu.RUnlock()

	users := lo.Map(sessions, func(s *Session, _ int) PresenceDTO {
		return PresenceDTO{
			ID:       s.Identity.ID,
			Username: s.Identity.Username,
			Avatar:   s.Identity.Avatar,
			Status:   domain.StatusOnline,
		}
	})
	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})
	return users
}

// Broadcast delivers one payload to every registered session. A send
// failure is isolated to that connection and logged.
func (r *Registry) Broadcast(v any) {
	r.broadcastExcept("", v)
}

// BroadcastExcept delivers to everyone but the origin.
func (r *Registry) BroadcastExcept(origin domain.UserID, v any) {
	r.broadcastExcept(origin, v)
}

func (r *Registry) broadcastExcept(origin domain.UserID, v any) {
	frame, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.registry").Msg("broadcast marshal")
		return
	}

	r.mu.RLock()
	targets := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		if id == origin {
			continue
		}
		targets = append(targets, s)
	}
	r.mu.RUnlock()

	for _, s := range targets {
		if err := s.Conn.TrySend(core.Frame(frame)); err != nil {
			log.Warn().Err(err).Str("module", "app.registry").Str("username", s.Identity.Username).Msg("broadcast send dropped")
		}
	}
}

func (r *Registry) broadcastPresence() {
	r.Broadcast(UsersUpdateEvent{Type: "users-update", Users: r.ListOnline()})
}

func sendJSON(conn core.Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app").Msg("sendJSON marshal")
		return
	}
	if err := conn.TrySend(core.Frame(b)); err != nil {
		log.Warn().Err(err).Str("module", "app").Msg("sendJSON dropped")
	}
}
