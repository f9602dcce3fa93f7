package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"olstudio/adapters/stats/regression"
	"olstudio/domain/core"
	"olstudio/domain/dataset"
)

func makeDataset(t *testing.T, values ...float64) dataset.Dataset {
	t.Helper()
	cells := make([]dataset.Value, len(values))
	for i, v := range values {
		cells[i] = dataset.NewNumericValue(v)
	}
	ds, err := dataset.FromColumns([]dataset.Column{{Name: "v", Cells: cells}})
	if err != nil {
		t.Fatalf("FromColumns failed: %v", err)
	}
	return ds
}

func TestMemoryStore_SessionLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ds := makeDataset(t, 1, 2, 3)

	token := store.CreateSession(ds)
	if !strings.HasPrefix(string(token), "session_") {
		t.Errorf("Expected session_ token prefix, got %q", token)
	}

	raw, err := store.RawDataset(token)
	if err != nil {
		t.Fatalf("RawDataset failed: %v", err)
	}
	if raw.RowCount() != 3 {
		t.Errorf("Expected 3 rows, got %d", raw.RowCount())
	}

	// Cleaning has not run yet.
	if _, err := store.CleanedDataset(token); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound before cleaning, got %v", err)
	}

	cleaned := makeDataset(t, 1, 2)
	if err := store.SetCleaned(token, cleaned); err != nil {
		t.Fatalf("SetCleaned failed: %v", err)
	}
	got, err := store.CleanedDataset(token)
	if err != nil {
		t.Fatalf("CleanedDataset failed: %v", err)
	}
	if got.RowCount() != 2 {
		t.Errorf("Expected 2 cleaned rows, got %d", got.RowCount())
	}

	store.DeleteSession(token)
	if _, err := store.RawDataset(token); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after delete, got %v", err)
	}
	// Deleting again is a no-op.
	store.DeleteSession(token)
}

func TestMemoryStore_UnknownToken(t *testing.T) {
	store := NewMemoryStore()
	token := core.SessionToken("session_deadbeef")

	if _, err := store.RawDataset(token); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := store.SetCleaned(token, makeDataset(t, 1)); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := store.StoreModel(token, &regression.Model{ModelName: "m"}); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if _, err := store.Models(token); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemoryStore_ModelsKeepInsertionOrder(t *testing.T) {
	store := NewMemoryStore()
	token := store.CreateSession(makeDataset(t, 1))

	for _, name := range []string{"third", "first", "second"} {
		if err := store.StoreModel(token, &regression.Model{ModelName: name}); err != nil {
			t.Fatalf("StoreModel failed: %v", err)
		}
	}

	models, err := store.Models(token)
	if err != nil {
		t.Fatalf("Models failed: %v", err)
	}
	want := []string{"third", "first", "second"}
	if len(models) != len(want) {
		t.Fatalf("Expected %d models, got %d", len(want), len(models))
	}
	for i, name := range want {
		if models[i].ModelName != name {
			t.Errorf("Position %d: expected %q, got %q", i, name, models[i].ModelName)
		}
	}
}

func TestMemoryStore_OverwriteKeepsOriginalPosition(t *testing.T) {
	store := NewMemoryStore()
	token := store.CreateSession(makeDataset(t, 1))

	store.StoreModel(token, &regression.Model{ModelName: "a", RSquared: 0.1})
	store.StoreModel(token, &regression.Model{ModelName: "b"})
	store.StoreModel(token, &regression.Model{ModelName: "a", RSquared: 0.9})

	models, _ := store.Models(token)
	if len(models) != 2 {
		t.Fatalf("Expected 2 models after overwrite, got %d", len(models))
	}
	if models[0].ModelName != "a" || models[0].RSquared != 0.9 {
		t.Errorf("Expected refitted 'a' first, got %q R²=%v", models[0].ModelName, models[0].RSquared)
	}

	model, err := store.Model(token, core.ModelName("a"))
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}
	if model.RSquared != 0.9 {
		t.Errorf("Expected overwritten model, got R²=%v", model.RSquared)
	}

	if _, err := store.Model(token, core.ModelName("ghost")); !errors.Is(err, core.ErrModelNotFound) {
		t.Errorf("Expected ErrModelNotFound, got %v", err)
	}
}

func TestMemoryStore_SessionsAreIsolated(t *testing.T) {
	store := NewMemoryStore()
	first := store.CreateSession(makeDataset(t, 1))
	second := store.CreateSession(makeDataset(t, 2))

	if first == second {
		t.Fatal("Tokens must be unique")
	}
	store.StoreModel(first, &regression.Model{ModelName: "m"})

	models, err := store.Models(second)
	if err != nil {
		t.Fatalf("Models failed: %v", err)
	}
	if len(models) != 0 {
		t.Errorf("Model leaked across sessions: %d", len(models))
	}
}

func TestMemoryStore_CleanupExpired(t *testing.T) {
	store := NewMemoryStore()
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	stale := store.CreateSession(makeDataset(t, 1))

	current = current.Add(3 * time.Hour)
	fresh := store.CreateSession(makeDataset(t, 2))

	removed := store.CleanupExpired(2 * time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 evicted session, got %d", removed)
	}
	if _, err := store.RawDataset(stale); !errors.Is(err, core.ErrSessionNotFound) {
		t.Error("Stale session should be gone")
	}
	if _, err := store.RawDataset(fresh); err != nil {
		t.Errorf("Fresh session should survive: %v", err)
	}
}

func TestMemoryStore_AccessRefreshesTTL(t *testing.T) {
	store := NewMemoryStore()
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	token := store.CreateSession(makeDataset(t, 1))

	current = current.Add(90 * time.Minute)
	if _, err := store.RawDataset(token); err != nil {
		t.Fatalf("RawDataset failed: %v", err)
	}

	current = current.Add(90 * time.Minute)
	if removed := store.CleanupExpired(2 * time.Hour); removed != 0 {
		t.Errorf("Recently touched session evicted (%d removed)", removed)
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	token := store.CreateSession(makeDataset(t, 1, 2, 3))
	extra := makeDataset(t, 4, 5)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				store.CreateSession(extra)
			case 1:
				store.RawDataset(token)
			case 2:
				store.StoreModel(token, &regression.Model{ModelName: "m"})
			default:
				store.Models(token)
			}
		}(i)
	}
	wg.Wait()

	if _, err := store.RawDataset(token); err != nil {
		t.Errorf("Session lost under concurrency: %v", err)
	}
}
