package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+s.Addr(), time.Hour)
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	return store, s
}

func TestNewRedisStore(t *testing.T) {
	s := miniredis.RunT(t)

	store, err := NewRedisStore("redis://"+s.Addr(), time.Hour)
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestNewRedisStore_BadURL(t *testing.T) {
	if _, err := NewRedisStore("not a url", time.Hour); err == nil {
		t.Error("expected error for malformed redis url")
	}
}

func TestRedisStore_SaveAndGet(t *testing.T) {
	store, _ := setupTestRedis(t)
	defer store.Close()

	ctx := context.Background()
	state := NewState("session-1", testQuestions(), DifficultyAdvanced)
	state.RecordAnswer(QuestionRecord{QuestionID: 1, Answer: "answer", Analysis: evaluationWithScore(8)})

	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Get(ctx, "session-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if loaded.SessionID != "session-1" {
		t.Errorf("expected session-1, got %s", loaded.SessionID)
	}
	if loaded.DifficultyLevel != DifficultyAdvanced {
		t.Errorf("expected difficulty %q, got %q", DifficultyAdvanced, loaded.DifficultyLevel)
	}
	if loaded.SessionStats.AverageScore != 8 {
		t.Errorf("expected average 8, got %f", loaded.SessionStats.AverageScore)
	}
}

func TestRedisStore_GetMissing(t *testing.T) {
	store, _ := setupTestRedis(t)
	defer store.Close()

	_, err := store.Get(context.Background(), "nope")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+s.Addr(), time.Second)
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	state := NewState("session-1", testQuestions(), "")
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	s.FastForward(2 * time.Second)

	_, err = store.Get(ctx, "session-1")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound for expired session, got %v", err)
	}
}

func TestRedisStore_SaveRenewsTTL(t *testing.T) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+s.Addr(), time.Minute)
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	state := NewState("session-1", testQuestions(), "")
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	s.FastForward(45 * time.Second)

	// Saving again restarts the idle clock.
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	s.FastForward(45 * time.Second)

	if _, err := store.Get(ctx, "session-1"); err != nil {
		t.Errorf("expected session to survive renewed TTL, got %v", err)
	}
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := setupTestRedis(t)
	defer store.Close()

	ctx := context.Background()
	state := NewState("session-1", testQuestions(), "")
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Delete(ctx, "session-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Get(ctx, "session-1"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
