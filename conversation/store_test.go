package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestStoreCreateAndSnapshot(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	err := store.WithSession(ctx, "s-1", func(state *State) error {
		state.Entities = nil
		state.ProgressScore = 0
		return nil
	})
	if err != nil {
		t.Fatalf("WithSession: %v", err)
	}

	snap, err := store.Snapshot(ctx, "s-1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.SessionID != "s-1" || snap.Phase != PhaseDiscovery {
		t.Errorf("snapshot = %+v, want fresh discovery state", snap)
	}
}

func TestStoreSnapshotUnknownSession(t *testing.T) {
	store := NewStore(nil)

	_, err := store.Snapshot(context.Background(), "missing")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestStoreReset(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	_ = store.WithSession(ctx, "s-1", func(state *State) error {
		state.Phase = PhaseReview
		state.ProgressScore = 80
		return nil
	})

	fresh := store.Reset(ctx, "s-1")
	if fresh.Phase != PhaseDiscovery || fresh.ProgressScore != 0 {
		t.Errorf("reset state = %+v, want initial", fresh)
	}
}

func TestStoreWithSessionError(t *testing.T) {
	store := NewStore(nil)
	wantErr := errors.New("boom")

	err := store.WithSession(context.Background(), "s-1", func(*State) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

func TestStoreSweepDestroysIdleSessions(t *testing.T) {
	store := NewStore(nil, WithIdleTimeout(time.Millisecond))
	ctx := context.Background()

	_ = store.WithSession(ctx, "s-idle", func(*State) error { return nil })
	store.mu.Lock()
	store.sessions["s-idle"].lastSeen.Store(time.Now().Add(-time.Minute).UnixNano())
	store.mu.Unlock()

	if swept := store.Sweep(ctx); swept != 1 {
		t.Fatalf("swept = %d, want 1", swept)
	}
	if _, err := store.Snapshot(ctx, "s-idle"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound after sweep", err)
	}
}

type memPersister struct {
	saved map[string]*State
}

func (p *memPersister) Save(_ context.Context, state *State) error {
	if p.saved == nil {
		p.saved = make(map[string]*State)
	}
	p.saved[state.SessionID] = state
	return nil
}

func (p *memPersister) Load(_ context.Context, sessionID string) (*State, error) {
	if s, ok := p.saved[sessionID]; ok {
		return s.Snapshot(), nil
	}
	return nil, ErrSessionNotFound
}

func (p *memPersister) Delete(_ context.Context, sessionID string) error {
	delete(p.saved, sessionID)
	return nil
}

func TestStorePersistsAndRecovers(t *testing.T) {
	persist := &memPersister{}
	ctx := context.Background()

	store := NewStore(nil, WithPersister(persist))
	_ = store.WithSession(ctx, "s-1", func(state *State) error {
		state.ProgressScore = 42
		return nil
	})

	// A new store simulates a process restart.
	recovered := NewStore(nil, WithPersister(persist))
	snap, err := recovered.Snapshot(ctx, "s-1")
	if err != nil {
		t.Fatalf("Snapshot after restart: %v", err)
	}
	if snap.ProgressScore != 42 {
		t.Errorf("progress = %d, want 42", snap.ProgressScore)
	}
}

func TestStoreConcurrentAccessAndSweep(t *testing.T) {
	store := NewStore(nil, WithIdleTimeout(time.Nanosecond))
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		id := "s-" + string(rune('a'+w))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				_ = store.WithSession(ctx, id, func(*State) error { return nil })
			}
		}()
	}
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				store.Sweep(ctx)
			}
		}()
	}
	wg.Wait()
}
