package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bioclaw/bioclaw/internal/events"
	"github.com/bioclaw/bioclaw/internal/skills"
)

func workflowSkill(steps []skills.Step) *skills.Skill {
	return &skills.Skill{
		Name:        "scrna-orchestrator",
		Description: "test workflow",
		Type:        skills.SkillTypeWorkflow,
		Status:      skills.StatusMVP,
		Steps:       steps,
	}
}

func TestRunWorkflowLinear(t *testing.T) {
	r := New(nil, Config{})
	dir := t.TempDir()

	s := workflowSkill([]skills.Step{
		{ID: "qc", Command: "echo qc-done"},
		{ID: "cluster", Command: `echo "after $(cat $BIOCLAW_STEP_QC_OUTPUT)"`, Needs: []string{"qc"}},
	})

	result, err := r.Run(context.Background(), s, nil, map[string]string{}, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.TrimSpace(result.Output) != "after qc-done" {
		t.Errorf("expected dependent step to see qc output, got %q", result.Output)
	}
	if len(result.Steps) != 2 {
		t.Errorf("expected 2 step results, got %d", len(result.Steps))
	}

	// Step outputs are persisted in the run directory.
	data, err := os.ReadFile(filepath.Join(dir, "steps", "qc.out"))
	if err != nil {
		t.Fatalf("read step output: %v", err)
	}
	if strings.TrimSpace(string(data)) != "qc-done" {
		t.Errorf("unexpected persisted output %q", data)
	}
}

func TestRunWorkflowParallelSteps(t *testing.T) {
	r := New(nil, Config{})
	dir := t.TempDir()

	// Both branches touch a file; the join step must observe both.
	s := workflowSkill([]skills.Step{
		{ID: "prep", Command: "echo start"},
		{ID: "left", Command: "touch left.done; echo left", Needs: []string{"prep"}},
		{ID: "right", Command: "touch right.done; echo right", Needs: []string{"prep"}},
		{ID: "join", Command: "ls left.done right.done >/dev/null && echo both", Needs: []string{"left", "right"}},
	})

	result, err := r.Run(context.Background(), s, nil, map[string]string{}, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(result.Output) != "both" {
		t.Errorf("expected join to run last, got %q", result.Output)
	}
}

func TestRunWorkflowFailFast(t *testing.T) {
	r := New(nil, Config{})
	dir := t.TempDir()

	s := workflowSkill([]skills.Step{
		{ID: "boom", Command: "echo broken >&2; exit 1"},
		{ID: "never", Command: "touch never.ran", Needs: []string{"boom"}},
	})

	_, err := r.Run(context.Background(), s, nil, map[string]string{}, dir)
	if err == nil {
		t.Fatal("expected workflow error")
	}
	if !strings.Contains(err.Error(), `step "boom"`) {
		t.Errorf("expected failing step in error, got %v", err)
	}

	if _, statErr := os.Stat(filepath.Join(dir, "never.ran")); statErr == nil {
		t.Error("dependent step ran despite upstream failure")
	}
}

func TestRunWorkflowEmitsStepEvents(t *testing.T) {
	bus := events.NewBus(64)
	defer bus.Close()

	var mu sync.Mutex
	var types []events.EventType
	bus.Subscribe(func(e events.Event) {
		mu.Lock()
		types = append(types, e.Type)
		mu.Unlock()
	}, events.EventSkillStepStarted, events.EventSkillStepCompleted)

	r := New(bus, Config{})

	s := workflowSkill([]skills.Step{
		{ID: "only", Command: "echo ok"},
	})

	ctx := events.ContextWithRunID(context.Background(), "run_wf")
	if _, err := r.Run(ctx, s, nil, map[string]string{}, t.TempDir()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(types) != 2 {
		t.Fatalf("expected started+completed events, got %v", types)
	}
}
