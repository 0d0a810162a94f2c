package audit

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	entries := []Entry{
		{RunID: "run_aaa", Skill: "equity-scorer", Action: ActionRouted, Method: "file-extension", Status: "ok", Detail: ".vcf"},
		{RunID: "run_aaa", Skill: "equity-scorer", Action: ActionExecuted, Status: "ok"},
		{RunID: "run_bbb", Skill: "seq-wrangler", Action: ActionRouted, Method: "keyword", Status: "ok", Detail: "qc"},
		{RunID: "run_bbb", Skill: "seq-wrangler", Action: ActionExecuted, Status: "error", Error: "samtools not found"},
	}
	for _, e := range entries {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	all, err := store.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(all))
	}
	if all[0].Skill != "equity-scorer" || all[0].Action != ActionRouted {
		t.Errorf("expected oldest-first ordering, got %+v", all[0])
	}
	if all[0].CreatedAt.IsZero() {
		t.Error("expected created_at to be populated")
	}
}

func TestListFilters(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	seed := []Entry{
		{RunID: "run_aaa", Skill: "equity-scorer", Action: ActionRouted, Status: "ok"},
		{RunID: "run_aaa", Skill: "equity-scorer", Action: ActionExecuted, Status: "ok"},
		{RunID: "run_bbb", Skill: "seq-wrangler", Action: ActionExecuted, Status: "error", Error: "boom"},
	}
	for _, e := range seed {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	byRun, err := store.List(ctx, Filter{RunID: "run_aaa"})
	if err != nil {
		t.Fatalf("List by run: %v", err)
	}
	if len(byRun) != 2 {
		t.Errorf("expected 2 entries for run_aaa, got %d", len(byRun))
	}

	byStatus, err := store.List(ctx, Filter{Status: "error"})
	if err != nil {
		t.Fatalf("List by status: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].Error != "boom" {
		t.Errorf("unexpected error entries: %+v", byStatus)
	}

	byAction, err := store.List(ctx, Filter{Action: ActionExecuted, Limit: 1})
	if err != nil {
		t.Fatalf("List by action: %v", err)
	}
	if len(byAction) != 1 {
		t.Errorf("expected limit 1 to apply, got %d", len(byAction))
	}
}

func TestRecordConcurrent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	const n = 32
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			errs <- store.Record(ctx, Entry{
				RunID:  "run_ccc",
				Skill:  "equity-scorer",
				Action: ActionExecuted,
				Status: "ok",
				Detail: strconv.Itoa(i),
			})
		}(i)
	}
	for i := 0; i < n; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("concurrent Record: %v", err)
		}
	}

	all, err := store.List(ctx, Filter{RunID: "run_ccc"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != n {
		t.Fatalf("expected %d entries, got %d", n, len(all))
	}
}

func TestListEmpty(t *testing.T) {
	store := testStore(t)

	got, err := store.List(context.Background(), Filter{RunID: "run_none"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no entries, got %d", len(got))
	}
}
