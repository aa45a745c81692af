package conversation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrSessionNotFound is returned when a session id is unknown.
var ErrSessionNotFound = errors.New("session not found")

// defaultIdleTimeout is how long an untouched session survives before the
// sweeper destroys it.
const defaultIdleTimeout = 30 * time.Minute

// Persister saves session snapshots outside process memory so state
// survives restarts. Implementations live in the storage package.
type Persister interface {
	Save(ctx context.Context, state *State) error
	Load(ctx context.Context, sessionID string) (*State, error)
	Delete(ctx context.Context, sessionID string) error
}

type session struct {
	mu    sync.Mutex
	state *State
	// lastSeen is UnixNano, atomic because the sweeper reads it under
	// the store lock while handlers update it under the session lock.
	lastSeen atomic.Int64
}

func (s *session) touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

// Store holds live sessions. Each session's utterances are processed
// strictly sequentially under its own lock; sessions are independent and
// run in parallel.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*session
	idleTimeout time.Duration
	persist     Persister
	logger      *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIdleTimeout overrides how long idle sessions are kept.
func WithIdleTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.idleTimeout = d
		}
	}
}

// WithPersister attaches snapshot persistence. Without one the store is
// memory-only.
func WithPersister(p Persister) StoreOption {
	return func(s *Store) { s.persist = p }
}

// NewStore creates a session store.
func NewStore(logger *slog.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		sessions:    make(map[string]*session),
		idleTimeout: defaultIdleTimeout,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithSession runs fn with exclusive access to the session's state,
// creating the session if needed. State mutations are persisted after fn
// returns without error.
func (s *Store) WithSession(ctx context.Context, sessionID string, fn func(*State) error) error {
	sess := s.getOrCreate(ctx, sessionID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.touch()
	if err := fn(sess.state); err != nil {
		return err
	}

	s.save(ctx, sess.state)
	return nil
}

// Snapshot returns a read-only deep copy of a session's state.
func (s *Store) Snapshot(ctx context.Context, sessionID string) (*State, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()

	if !ok {
		if s.persist != nil {
			state, err := s.persist.Load(ctx, sessionID)
			if err == nil && state != nil {
				s.adopt(state)
				return state.Snapshot(), nil
			}
		}
		return nil, ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state.Snapshot(), nil
}

// Reset discards a session's contents and returns the fresh state. An
// unknown session is created so the caller always gets an initial state.
func (s *Store) Reset(ctx context.Context, sessionID string) *State {
	sess := s.getOrCreate(ctx, sessionID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.state.Reset()
	sess.touch()
	s.save(ctx, sess.state)
	return sess.state.Snapshot()
}

// Destroy drops a session from memory and persistence.
func (s *Store) Destroy(ctx context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.Delete(ctx, sessionID); err != nil {
			s.logger.Warn("failed to delete persisted session", "session", sessionID, "error", err)
		}
	}
}

// Len returns how many sessions are live.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep destroys sessions idle past the timeout. Run it periodically.
func (s *Store) Sweep(ctx context.Context) int {
	cutoff := time.Now().Add(-s.idleTimeout).UnixNano()

	s.mu.Lock()
	var expired []string
	for id, sess := range s.sessions {
		if sess.lastSeen.Load() < cutoff {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, id := range expired {
		if s.persist != nil {
			if err := s.persist.Delete(ctx, id); err != nil {
				s.logger.Warn("failed to delete expired session", "session", id, "error", err)
			}
		}
	}

	if len(expired) > 0 {
		s.logger.Info("swept idle sessions", "count", len(expired))
	}
	return len(expired)
}

// RunSweeper sweeps on an interval until the context is canceled.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func (s *Store) getOrCreate(ctx context.Context, sessionID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		return sess
	}

	state := NewState(sessionID)
	if s.persist != nil {
		if loaded, err := s.persist.Load(ctx, sessionID); err == nil && loaded != nil {
			state = loaded
		}
	}

	sess := &session{state: state}
	sess.touch()
	s.sessions[sessionID] = sess
	return sess
}

// adopt registers a state loaded from persistence.
func (s *Store) adopt(state *State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[state.SessionID]; !ok {
		sess := &session{state: state}
		sess.touch()
		s.sessions[state.SessionID] = sess
	}
}

func (s *Store) save(ctx context.Context, state *State) {
	if s.persist == nil {
		return
	}
	if err := s.persist.Save(ctx, state.Snapshot()); err != nil {
		s.logger.Warn("failed to persist session", "session", state.SessionID, "error", err)
	}
}
