package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecivil/civil-portal/internal/core/domain"
	"github.com/ecivil/civil-portal/internal/core/ports"
)

const (
	defaultIdleTTL       = 30 * time.Minute
	defaultSweepInterval = time.Minute
)

// Registry owns the live Session of every browser client. Sessions are built
// lazily, restored once from the store, and evicted after IdleTTL without
// traffic. An evicted client is restored again on its next request.
type Registry struct {
	store    ports.SessionStore
	identity ports.IdentityProvider
	audit    ports.AuditSink
	log      zerolog.Logger
	idleTTL  time.Duration
	onLive   func(live int)
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// RegistryOptions tunes a Registry. Zero values select defaults.
type RegistryOptions struct {
	IdleTTL time.Duration
	// Audit receives auth events of every session. Optional.
	Audit ports.AuditSink
	// OnLiveChange is called with the number of live sessions after a
	// session is created or evicted. Optional.
	OnLiveChange func(live int)
}

// NewRegistry returns an empty Registry.
func NewRegistry(store ports.SessionStore, identity ports.IdentityProvider, log zerolog.Logger, opts RegistryOptions) *Registry {
	ttl := opts.IdleTTL
	if ttl <= 0 {
		ttl = defaultIdleTTL
	}
	return &Registry{
		store:    store,
		identity: identity,
		audit:    opts.Audit,
		log:      log,
		idleTTL:  ttl,
		onLive:   opts.OnLiveChange,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Acquire returns the session of clientID, creating it on first use and
// restoring it until a restore succeeds. A session is left not-checked only
// when its store could not be read; the next Acquire retries. The second
// result reports whether the session was created by this call.
func (r *Registry) Acquire(ctx context.Context, clientID string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[clientID]
	if !ok {
		s = NewSession(clientID, r.store, r.identity, r.audit, r.log)
		s.now = r.now
		r.sessions[clientID] = s
	}
	live := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		r.notifyLive(live)
	}
	s.restore(ctx)
	s.touch(r.now())
	return s, !ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle for longer than the idle TTL and returns how
// many were removed. Sessions with an operation in flight are kept.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	evicted := 0
	for id, s := range r.sessions {
		if now.Sub(s.idleSince()) <= r.idleTTL {
			continue
		}
		if s.State() == domain.StateChecking {
			continue
		}
		delete(r.sessions, id)
		evicted++
	}
	live := len(r.sessions)
	r.mu.Unlock()

	if evicted > 0 {
		r.log.Debug().Int("evicted", evicted).Int("live", live).Msg("idle sessions evicted")
		r.notifyLive(live)
	}
	return evicted
}

func (r *Registry) notifyLive(live int) {
	if r.onLive != nil {
		r.onLive(live)
	}
}

// Run sweeps on every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			r.Sweep(t)
		}
	}
}
