package runs

import (
	"strings"
	"testing"
	"time"
)

func TestCreateGetRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	r, err := store.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !strings.HasPrefix(r.ID, "run_") {
		t.Errorf("ID = %q, want run_ prefix", r.ID)
	}
	if r.Status != RunActive {
		t.Errorf("Status = %q, want %q", r.Status, RunActive)
	}

	got, err := store.Get(r.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != r.ID {
		t.Errorf("Get ID = %q, want %q", got.ID, r.ID)
	}
}

func TestGetNotFound(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := store.Get("run_nonexistent")
	if err == nil {
		t.Fatal("expected error for missing run")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %q, want 'not found'", err)
	}
}

func TestUpdateMeta(t *testing.T) {
	store := NewFileStore(t.TempDir())

	r, err := store.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	r.Skill = "equity-scorer"
	r.Method = "file-extension"
	r.Status = RunCompleted
	r.Inputs = []InputFile{{Path: "/data/cohort.vcf", SHA256: "abc123"}}

	if err := store.UpdateMeta(r); err != nil {
		t.Fatalf("UpdateMeta: %v", err)
	}

	got, err := store.Get(r.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Skill != "equity-scorer" {
		t.Errorf("Skill = %q, want equity-scorer", got.Skill)
	}
	if got.Status != RunCompleted {
		t.Errorf("Status = %q, want completed", got.Status)
	}
	if len(got.Inputs) != 1 || got.Inputs[0].SHA256 != "abc123" {
		t.Errorf("unexpected inputs: %+v", got.Inputs)
	}
}

func TestListOrdering(t *testing.T) {
	store := NewFileStore(t.TempDir())

	first, err := store.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	second, err := store.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("expected most recently updated first, got %s then %s", list[0].ID, list[1].ID)
	}
}

func TestListEmptyDir(t *testing.T) {
	store := NewFileStore(t.TempDir() + "/missing")

	list, err := store.List()
	if err != nil {
		t.Fatalf("List on missing dir: %v", err)
	}
	if list != nil {
		t.Errorf("expected nil for missing dir, got %v", list)
	}
}
