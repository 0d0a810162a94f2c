package audit

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bioclaw/bioclaw/internal/events"
)

// Recorder subscribes to bus events and turns them into audit entries.
type Recorder struct {
	store       Store
	unsubscribe func()
}

// NewRecorder creates a Recorder that listens for routing and skill events.
func NewRecorder(bus *events.Bus, store Store) *Recorder {
	r := &Recorder{store: store}
	r.unsubscribe = bus.Subscribe(r.handleEvent,
		events.EventRouteDecided,
		events.EventSkillCompleted,
		events.EventReportWritten,
		events.EventBundleCreated,
	)
	return r
}

// Close unsubscribes the recorder from the event bus.
func (r *Recorder) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
}

func (r *Recorder) handleEvent(e events.Event) {
	entry, ok := entryFromEvent(e)
	if !ok {
		return
	}
	if err := r.store.Record(context.Background(), entry); err != nil {
		slog.Error("audit recorder: record entry", "type", e.Type, "error", err)
	}
}

func entryFromEvent(e events.Event) (Entry, bool) {
	switch e.Type {
	case events.EventRouteDecided:
		p, ok := events.GetRouteDecidedPayload(e)
		if !ok {
			return Entry{}, false
		}
		return Entry{
			RunID:     e.RunID,
			Skill:     p.Skill,
			Action:    ActionRouted,
			Method:    p.Method,
			Status:    "ok",
			Detail:    p.Matched,
			CreatedAt: e.Timestamp,
		}, true

	case events.EventSkillCompleted:
		p, ok := events.GetSkillCompletedPayload(e)
		if !ok {
			return Entry{}, false
		}
		status := "ok"
		if p.Error != "" {
			status = "error"
		}
		return Entry{
			RunID:     e.RunID,
			Skill:     p.SkillName,
			Action:    ActionExecuted,
			Status:    status,
			Detail:    truncate(p.Output, 500),
			Error:     p.Error,
			CreatedAt: e.Timestamp,
		}, true

	case events.EventReportWritten:
		p, ok := events.GetReportWrittenPayload(e)
		if !ok {
			return Entry{}, false
		}
		return Entry{
			RunID:     e.RunID,
			Skill:     strings.Join(p.Skills, ","),
			Action:    ActionReported,
			Status:    "ok",
			Detail:    p.Path,
			CreatedAt: e.Timestamp,
		}, true

	case events.EventBundleCreated:
		p, ok := events.GetBundleCreatedPayload(e)
		if !ok {
			return Entry{}, false
		}
		return Entry{
			RunID:     e.RunID,
			Action:    ActionBundled,
			Status:    "ok",
			Detail:    p.Path,
			CreatedAt: e.Timestamp,
		}, true
	}

	return Entry{}, false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
