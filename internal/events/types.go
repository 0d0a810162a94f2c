package events

import (
	"fmt"
	"sync/atomic"
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	// Request lifecycle
	EventRequestReceived EventType = "request.received"
	EventRouteDecided    EventType = "route.decided"

	// Skill execution
	EventSkillStarted       EventType = "skill.started"
	EventSkillCompleted     EventType = "skill.completed"
	EventSkillStepStarted   EventType = "skill.step.started"
	EventSkillStepCompleted EventType = "skill.step.completed"

	// Artifacts
	EventReportWritten EventType = "report.written"
	EventBundleCreated EventType = "bundle.created"

	// Watches
	EventWatchTriggered EventType = "watch.triggered"
)

// EventSource identifies the component that emitted an event.
type EventSource string

const (
	SourceRouter  EventSource = "router"
	SourceRunner  EventSource = "runner"
	SourceReport  EventSource = "report"
	SourceBundle  EventSource = "bundle"
	SourceWatch   EventSource = "watch"
	SourceGateway EventSource = "gateway"
)

// Event represents an event in the system.
type Event struct {
	ID        string         `json:"id"`
	RunID     string         `json:"run_id,omitempty"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    EventSource    `json:"source"`
	Payload   map[string]any `json:"payload"`
}

// eventIDCounter is used to generate sequential event IDs.
var eventIDCounter uint64

func generateEventID() string {
	seq := atomic.AddUint64(&eventIDCounter, 1)
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), seq)
}
