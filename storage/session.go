// Package storage persists conversation session snapshots in NATS KV so
// discovery state survives process restarts.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/specdialog/conversation"
)

// BucketSessions holds one entry per discovery session, keyed by
// session id.
const BucketSessions = "specdialog-sessions"

// sessionHistory keeps a few revisions so a bad write can be inspected.
const sessionHistory = 5

// invalidKeyChars strips characters NATS KV keys cannot carry.
var invalidKeyChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// SessionStore implements conversation.Persister on a NATS KV bucket.
type SessionStore struct {
	kv jetstream.KeyValue
}

// NewSessionStore creates a session store, creating the KV bucket if it
// doesn't exist.
func NewSessionStore(ctx context.Context, js jetstream.JetStream) (*SessionStore, error) {
	kv, err := getOrCreateBucket(ctx, js, BucketSessions)
	if err != nil {
		return nil, fmt.Errorf("create sessions bucket: %w", err)
	}
	return &SessionStore{kv: kv}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "Specdialog discovery session snapshots",
		History:     sessionHistory,
	})
}

// Save writes a session snapshot, overwriting any previous revision.
func (s *SessionStore) Save(ctx context.Context, state *conversation.State) error {
	if state.SessionID == "" {
		return fmt.Errorf("session id is required")
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if _, err := s.kv.Put(ctx, SessionKey(state.SessionID), data); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Load reads a session snapshot. Returns ErrNotFound for unknown ids.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*conversation.State, error) {
	entry, err := s.kv.Get(ctx, SessionKey(sessionID))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var state conversation.State
	if err := json.Unmarshal(entry.Value(), &state); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &state, nil
}

// Delete removes a session snapshot. Deleting an unknown id is not an
// error.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.kv.Delete(ctx, SessionKey(sessionID)); err != nil && !isNotFound(err) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// List returns the ids of all persisted sessions.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if err == jetstream.ErrNoKeysFound {
			return nil, nil
		}
		return nil, fmt.Errorf("list session keys: %w", err)
	}
	return keys, nil
}

// SessionKey sanitizes a session id into a valid KV key.
func SessionKey(sessionID string) string {
	return invalidKeyChars.ReplaceAllString(sessionID, "_")
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "key not found")
}
