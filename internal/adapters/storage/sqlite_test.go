package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xvierd/tec-office/internal/domain"
)

func sampleState() domain.TimerState {
	end := time.Date(2026, 3, 1, 10, 25, 0, 0, time.UTC)
	return domain.TimerState{
		WorkMinutes:        25,
		ShortBreakMinutes:  5,
		LongBreakMinutes:   15,
		LongBreakInterval:  4,
		CompletedPomodoros: 2,
		CurrentPhase:       domain.PhaseWork,
		Active:             true,
		EndTime:            &end,
		LastUpdated:        end.Add(-25 * time.Minute),
	}
}

func TestNewMemory(t *testing.T) {
	storage, err := NewMemory()
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}
	defer func() { _ = storage.Close() }()

	if storage == nil {
		t.Error("NewMemory() returned nil storage")
	}
}

func TestSQLite_SaveAndLoad(t *testing.T) {
	storage, err := NewMemory()
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}
	defer func() { _ = storage.Close() }()

	ctx := context.Background()

	t.Run("load missing user", func(t *testing.T) {
		state, err := storage.Load(ctx, "nobody")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if state != nil {
			t.Errorf("Load() = %+v, want nil", state)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		want := sampleState()
		if err := storage.Save(ctx, "alice", want); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := storage.Load(ctx, "alice")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got == nil {
			t.Fatal("Load() returned nil")
		}
		if got.CurrentPhase != want.CurrentPhase || got.CompletedPomodoros != want.CompletedPomodoros {
			t.Errorf("Load() = %+v, want %+v", got, want)
		}
		if got.EndTime == nil || !got.EndTime.Equal(*want.EndTime) {
			t.Errorf("EndTime = %v, want %v", got.EndTime, want.EndTime)
		}
	})

	t.Run("save replaces", func(t *testing.T) {
		state := sampleState()
		state.Active = false
		state.EndTime = nil
		state.CurrentPhase = domain.PhaseShortBreak
		state.CompletedPomodoros = 3
		if err := storage.Save(ctx, "alice", state); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, _ := storage.Load(ctx, "alice")
		if got.CurrentPhase != domain.PhaseShortBreak || got.CompletedPomodoros != 3 {
			t.Errorf("Load() = %+v, want replaced record", got)
		}
		if got.EndTime != nil {
			t.Errorf("EndTime = %v, want nil", got.EndTime)
		}
	})

	t.Run("users are isolated", func(t *testing.T) {
		_ = storage.Save(ctx, "bob", domain.TimerState{CurrentPhase: domain.PhaseIdle, LongBreakInterval: 4})
		alice, _ := storage.Load(ctx, "alice")
		if alice.CompletedPomodoros != 3 {
			t.Errorf("alice CompletedPomodoros = %d after saving bob", alice.CompletedPomodoros)
		}
	})
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "airth.db")
	ctx := context.Background()

	first, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := first.Save(ctx, "alice", sampleState()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	_ = first.Close()

	second, err := New(path)
	if err != nil {
		t.Fatalf("New() reopen error = %v", err)
	}
	defer func() { _ = second.Close() }()

	got, err := second.Load(ctx, "alice")
	if err != nil || got == nil {
		t.Fatalf("Load() = %v, %v", got, err)
	}
	if got.CompletedPomodoros != 2 {
		t.Errorf("CompletedPomodoros = %d, want 2", got.CompletedPomodoros)
	}
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "storage")
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	if got, err := store.Load(ctx, "alice"); err != nil || got != nil {
		t.Fatalf("Load() missing = %v, %v; want nil, nil", got, err)
	}

	if err := store.Save(ctx, "alice", sampleState()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "pomodoro_alice.json")); err != nil {
		t.Errorf("expected pomodoro_alice.json: %v", err)
	}

	got, err := store.Load(ctx, "alice")
	if err != nil || got == nil {
		t.Fatalf("Load() = %v, %v", got, err)
	}
	if got.CurrentPhase != domain.PhaseWork || !got.Active {
		t.Errorf("Load() = %+v", got)
	}
}

func TestFileStore_SanitizesUserID(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewFileStore(dir)

	if err := store.Save(context.Background(), "../../etc/passwd", sampleState()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1 file inside the store dir", len(entries))
	}
	if name := entries[0].Name(); name != "pomodoro_..%2F..%2Fetc%2Fpasswd.json" {
		t.Errorf("file name = %q", name)
	}
}

func TestFileStore_DistinctUsersDoNotCollide(t *testing.T) {
	store, _ := NewFileStore(t.TempDir())
	ctx := context.Background()

	users := []string{"alice@x", "alice_x", "alice%40x", "a/b", "a_b", "a b", "a+b"}
	for i, user := range users {
		state := sampleState()
		state.CompletedPomodoros = i + 1
		if err := store.Save(ctx, user, state); err != nil {
			t.Fatalf("Save(%q) error = %v", user, err)
		}
	}

	for i, user := range users {
		got, err := store.Load(ctx, user)
		if err != nil || got == nil {
			t.Fatalf("Load(%q) = %v, %v", user, got, err)
		}
		if got.CompletedPomodoros != i+1 {
			t.Errorf("Load(%q) CompletedPomodoros = %d, want %d", user, got.CompletedPomodoros, i+1)
		}
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewFileStore(dir)
	_ = os.WriteFile(filepath.Join(dir, "pomodoro_alice.json"), []byte("{not json"), 0o644)

	if _, err := store.Load(context.Background(), "alice"); err == nil {
		t.Error("Load() error = nil for a corrupt file")
	}
}

// brokenStore fails every call.
type brokenStore struct{}

func (brokenStore) Save(context.Context, string, domain.TimerState) error { return os.ErrPermission }
func (brokenStore) Load(context.Context, string) (*domain.TimerState, error) {
	return nil, os.ErrPermission
}
func (brokenStore) Close() error   { return nil }
func (brokenStore) Migrate() error { return nil }

func TestFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("failing primary uses secondary", func(t *testing.T) {
		secondary, _ := NewFileStore(t.TempDir())
		store := NewFallback(brokenStore{}, secondary, nil)

		if err := store.Save(ctx, "alice", sampleState()); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		got, err := store.Load(ctx, "alice")
		if err != nil || got == nil {
			t.Fatalf("Load() = %v, %v", got, err)
		}
	})

	t.Run("nil primary", func(t *testing.T) {
		secondary, _ := NewFileStore(t.TempDir())
		store := NewFallback(nil, secondary, nil)

		if err := store.Save(ctx, "alice", sampleState()); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if got, _ := secondary.Load(ctx, "alice"); got == nil {
			t.Error("secondary has no record")
		}
	})

	t.Run("healthy primary is preferred", func(t *testing.T) {
		primary, _ := NewMemory()
		secondary, _ := NewFileStore(t.TempDir())
		store := NewFallback(primary, secondary, nil)
		defer func() { _ = store.Close() }()

		_ = store.Save(ctx, "alice", sampleState())
		if got, _ := secondary.Load(ctx, "alice"); got != nil {
			t.Error("secondary written while primary healthy")
		}
		if got, _ := store.Load(ctx, "alice"); got == nil {
			t.Error("Load() = nil, want primary record")
		}
	})

	t.Run("primary miss reads secondary", func(t *testing.T) {
		primary, _ := NewMemory()
		secondary, _ := NewFileStore(t.TempDir())
		_ = secondary.Save(ctx, "alice", sampleState())
		store := NewFallback(primary, secondary, nil)
		defer func() { _ = store.Close() }()

		if got, _ := store.Load(ctx, "alice"); got == nil {
			t.Error("Load() = nil, want secondary record")
		}
	})
}
