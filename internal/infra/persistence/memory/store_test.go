package memory

import (
	"context"
	"testing"
	"time"

	"platebind/pkg/domain"
)

func runRecord(id string, started time.Time) domain.RunRecord {
	return domain.RunRecord{
		ID:        id,
		GroupBy:   []string{"batch", "plate"},
		JoinBy:    []string{"batch", "plate"},
		Status:    domain.RunStatusRunning,
		StartedAt: started,
	}
}

func TestStoreSaveAndGet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if err := store.SaveRun(ctx, runRecord("run-1", base)); err != nil {
		t.Fatalf("save: %v", err)
	}
	rec, ok, err := store.GetRun(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if rec.Status != domain.RunStatusRunning {
		t.Fatalf("unexpected status %s", rec.Status)
	}

	rec.Status = domain.RunStatusSucceeded
	now := base.Add(time.Minute)
	rec.CompletedAt = &now
	if err := store.SaveRun(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	rec, ok, err = store.GetRun(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get after upsert: ok=%v err=%v", ok, err)
	}
	if rec.Status != domain.RunStatusSucceeded || rec.CompletedAt == nil {
		t.Fatalf("upsert must replace the record: %+v", rec)
	}

	if _, ok, _ := store.GetRun(ctx, "missing"); ok {
		t.Fatal("missing run must report ok=false")
	}
}

func TestStoreListOrdering(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	_ = store.SaveRun(ctx, runRecord("b", base.Add(time.Hour)))
	_ = store.SaveRun(ctx, runRecord("a", base))
	_ = store.SaveRun(ctx, runRecord("c", base))

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].ID != "a" || runs[1].ID != "c" || runs[2].ID != "b" {
		t.Fatalf("expected start-time then id ordering, got %s %s %s", runs[0].ID, runs[1].ID, runs[2].ID)
	}
}
