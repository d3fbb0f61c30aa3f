package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"codesync-server/internal/core"
	"codesync-server/internal/domain"
	"codesync-server/internal/metrics"
)

// connEntry holds everything the relay tracks per live connection: the
// display identity (empty until join), the transport endpoint, the liveness
// timestamp and the cancel func for the connection's pumps.
type connEntry struct {
	Username string
	Session  core.SignalConnection
	Cancel   context.CancelFunc
	LastPong time.Time
}

type connSnap struct {
	SID     domain.ConnID
	Session core.SignalConnection
}

// Registry maps live connections to their identity and session.
type Registry struct {
	mu      sync.RWMutex
	entries map[domain.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[domain.ConnID]*connEntry)}
}

// Bind registers a connection at handshake time, before any join. The
// handshake counts as the first probe response.
func (r *Registry) Bind(sid domain.ConnID, sess core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[sid] = &connEntry{
		Session:  sess,
		Cancel:   cancel,
		LastPong: time.Now(),
	}
	metrics.OpenConnections.Set(float64(len(r.entries)))
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound connection")
}

func (r *Registry) SetUsername(sid domain.ConnID, username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sid]
	if !ok {
		return false
	}
	e.Username = username
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("username", username).Msg("identity set")
	return true
}

// Username returns the identity recorded at join, or ok=false for a
// connection the registry does not know.
func (r *Registry) Username(sid domain.ConnID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[sid]
	if !ok {
		return "", false
	}
	return e.Username, true
}

func (r *Registry) Session(sid domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[sid]
	if !ok {
		return nil, false
	}
	return e.Session, true
}

// Touch records a probe response.
func (r *Registry) Touch(sid domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[sid]; ok {
		e.LastPong = time.Now()
	}
}

// Remove deletes the entry and returns it. The second return is true only
// for the first caller; concurrent disconnect triggers race for it and the
// losers see ok=false.
func (r *Registry) Remove(sid domain.ConnID) (*connEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sid]
	if !ok {
		return nil, false
	}
	delete(r.entries, sid)
	metrics.OpenConnections.Set(float64(len(r.entries)))
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("removed connection")
	return e, true
}

// Live snapshots every registered connection for probe fan-out.
func (r *Registry) Live() []connSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]connSnap, 0, len(r.entries))
	for sid, e := range r.entries {
		out = append(out, connSnap{SID: sid, Session: e.Session})
	}
	return out
}

// Stale lists connections whose last probe response is older than cutoff.
func (r *Registry) Stale(cutoff time.Time) []domain.ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.ConnID
	for sid, e := range r.entries {
		if e.LastPong.Before(cutoff) {
			out = append(out, sid)
		}
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
