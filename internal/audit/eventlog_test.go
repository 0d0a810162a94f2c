package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bioclaw/bioclaw/internal/events"
)

func TestEventLogger_WriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	bus := events.NewBus(64)
	defer bus.Close()

	el := NewEventLogger(dir, bus)
	defer el.Close()

	bus.Publish(events.Event{
		ID:        "evt-1",
		Type:      events.EventRouteDecided,
		Timestamp: time.Now(),
		Source:    events.SourceRouter,
		Payload:   map[string]any{"skill": "equity-scorer"},
	})

	// Give the async subscriber time to process.
	time.Sleep(100 * time.Millisecond)

	data, err := os.ReadFile(filepath.Join(dir, "_global.jsonl"))
	if err != nil {
		t.Fatalf("read JSONL: %v", err)
	}

	var got events.Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "evt-1" {
		t.Errorf("got ID %q, want %q", got.ID, "evt-1")
	}
	if got.Type != events.EventRouteDecided {
		t.Errorf("got type %q, want %q", got.Type, events.EventRouteDecided)
	}
}

func TestEventLogger_RunRouting(t *testing.T) {
	dir := t.TempDir()
	bus := events.NewBus(64)
	defer bus.Close()

	el := NewEventLogger(dir, bus)
	defer el.Close()

	bus.Publish(events.Event{
		ID:        "evt-run",
		RunID:     "run_xyz",
		Type:      events.EventSkillStarted,
		Timestamp: time.Now(),
		Source:    events.SourceRunner,
		Payload:   map[string]any{"skill_name": "seq-wrangler"},
	})

	time.Sleep(100 * time.Millisecond)

	if _, err := os.Stat(filepath.Join(dir, "run_xyz.jsonl")); err != nil {
		t.Errorf("expected per-run log file: %v", err)
	}
}
