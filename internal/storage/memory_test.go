package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hammamikhairi/brewguide/internal/domain"
	"github.com/hammamikhairi/brewguide/internal/logger"
)

func TestMemoryStoreCRUD(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	now := time.Now()
	session := &domain.Session{
		ID:            "test-session-1",
		RecipeID:      "classic-v60",
		RecipeName:    "Classic V60",
		Status:        domain.SessionActive,
		ResumedAt:     now,
		AnnouncedStep: -1,
		WarnedStep:    -1,
		StartedAt:     now,
		UpdatedAt:     now,
	}

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(ctx, "test-session-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ID != session.ID || loaded.RecipeID != session.RecipeID {
		t.Fatalf("loaded session differs: %+v", loaded)
	}

	if _, err := store.Load(ctx, "nonexistent"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	active, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active session, got %d", len(active))
	}

	if err := store.Delete(ctx, "test-session-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, "test-session-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "nonexistent"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	sess := &domain.Session{ID: "s1", Status: domain.SessionPaused, Offset: 10 * time.Second}
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	sess.Offset = time.Hour
	loaded, _ := store.Load(ctx, "s1")
	if loaded.Offset != 10*time.Second {
		t.Fatalf("store shares memory with caller: offset %s", loaded.Offset)
	}

	loaded.Offset = time.Minute
	again, _ := store.Load(ctx, "s1")
	if again.Offset != 10*time.Second {
		t.Fatalf("loaded session shares memory with store: offset %s", again.Offset)
	}
}

func TestMemoryStoreSaveInvalid(t *testing.T) {
	store := NewMemoryStore(logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	if err := store.Save(ctx, nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Save(ctx, &domain.Session{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty ID, got %v", err)
	}
}

func TestMemoryStoreListActiveFilters(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	sessions := []*domain.Session{
		{ID: "s1", Status: domain.SessionActive, StartedAt: base.Add(time.Minute)},
		{ID: "s2", Status: domain.SessionPaused, StartedAt: base},
		{ID: "s3", Status: domain.SessionCompleted, StartedAt: base},
		{ID: "s4", Status: domain.SessionAbandoned, StartedAt: base},
	}

	for _, s := range sessions {
		if err := store.Save(ctx, s); err != nil {
			t.Fatalf("save %s: %v", s.ID, err)
		}
	}

	active, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active/paused sessions, got %d", len(active))
	}
	if active[0].ID != "s2" || active[1].ID != "s1" {
		t.Fatalf("expected oldest first [s2 s1], got [%s %s]", active[0].ID, active[1].ID)
	}
}
