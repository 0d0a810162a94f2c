package events

import (
	"encoding/json"
	"time"
)

// EventPayload is the interface all typed payloads implement.
type EventPayload interface {
	EventType() EventType
}

// =============================================================================
// REQUEST EVENTS
// =============================================================================

type RequestReceivedPayload struct {
	Query  string   `json:"query,omitempty"`
	Inputs []string `json:"inputs,omitempty"`
	Skill  string   `json:"skill,omitempty"` // explicit override, if any
}

func (RequestReceivedPayload) EventType() EventType { return EventRequestReceived }

type RouteDecidedPayload struct {
	Skill      string   `json:"skill"`
	Method     string   `json:"method"`
	Matched    string   `json:"matched,omitempty"` // extension or keyword that decided
	Candidates []string `json:"candidates,omitempty"`
}

func (RouteDecidedPayload) EventType() EventType { return EventRouteDecided }

// =============================================================================
// SKILL EVENTS
// =============================================================================

type SkillStartedPayload struct {
	SkillName string   `json:"skill_name"`
	Inputs    []string `json:"inputs,omitempty"`
	WorkDir   string   `json:"work_dir,omitempty"`
}

func (SkillStartedPayload) EventType() EventType { return EventSkillStarted }

type SkillCompletedPayload struct {
	SkillName string        `json:"skill_name"`
	Output    string        `json:"output,omitempty"`
	ExitCode  int           `json:"exit_code"`
	Duration  time.Duration `json:"duration,omitempty"`
	Error     string        `json:"error,omitempty"`
}

func (SkillCompletedPayload) EventType() EventType { return EventSkillCompleted }

type SkillStepStartedPayload struct {
	SkillName string `json:"skill_name"`
	StepID    string `json:"step_id"`
	StepTitle string `json:"step_title,omitempty"`
}

func (SkillStepStartedPayload) EventType() EventType { return EventSkillStepStarted }

type SkillStepCompletedPayload struct {
	SkillName string        `json:"skill_name"`
	StepID    string        `json:"step_id"`
	StepTitle string        `json:"step_title,omitempty"`
	Output    string        `json:"output,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Error     string        `json:"error,omitempty"`
}

func (SkillStepCompletedPayload) EventType() EventType { return EventSkillStepCompleted }

// =============================================================================
// ARTIFACT EVENTS
// =============================================================================

type ReportWrittenPayload struct {
	Path   string   `json:"path"`
	Title  string   `json:"title,omitempty"`
	Skills []string `json:"skills,omitempty"`
}

func (ReportWrittenPayload) EventType() EventType { return EventReportWritten }

type BundleCreatedPayload struct {
	Path  string `json:"path"`
	Files int    `json:"files"`
}

func (BundleCreatedPayload) EventType() EventType { return EventBundleCreated }

// =============================================================================
// WATCH EVENTS
// =============================================================================

type WatchTriggeredPayload struct {
	Name   string   `json:"name"`
	Inputs []string `json:"inputs,omitempty"`
}

func (WatchTriggeredPayload) EventType() EventType { return EventWatchTriggered }

// =============================================================================
// TYPED EVENT CONSTRUCTORS
// =============================================================================

func NewTypedEvent(source EventSource, payload EventPayload) Event {
	return Event{
		ID:        generateEventID(),
		Type:      payload.EventType(),
		Timestamp: time.Now(),
		Source:    source,
		Payload:   toMap(payload),
	}
}

func NewTypedEventWithRun(source EventSource, payload EventPayload, runID string) Event {
	return Event{
		ID:        generateEventID(),
		RunID:     runID,
		Type:      payload.EventType(),
		Timestamp: time.Now(),
		Source:    source,
		Payload:   toMap(payload),
	}
}

func toMap(v any) map[string]any {
	var result map[string]any
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return result
}

// =============================================================================
// TYPED PAYLOAD EXTRACTORS
// =============================================================================

func ExtractPayload[T EventPayload](e Event) (T, bool) {
	var result T
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return result, false
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, false
	}
	return result, true
}

func GetRequestReceivedPayload(e Event) (RequestReceivedPayload, bool) {
	return ExtractPayload[RequestReceivedPayload](e)
}

func GetRouteDecidedPayload(e Event) (RouteDecidedPayload, bool) {
	return ExtractPayload[RouteDecidedPayload](e)
}

func GetSkillStartedPayload(e Event) (SkillStartedPayload, bool) {
	return ExtractPayload[SkillStartedPayload](e)
}

func GetSkillCompletedPayload(e Event) (SkillCompletedPayload, bool) {
	return ExtractPayload[SkillCompletedPayload](e)
}

func GetSkillStepCompletedPayload(e Event) (SkillStepCompletedPayload, bool) {
	return ExtractPayload[SkillStepCompletedPayload](e)
}

func GetReportWrittenPayload(e Event) (ReportWrittenPayload, bool) {
	return ExtractPayload[ReportWrittenPayload](e)
}

func GetBundleCreatedPayload(e Event) (BundleCreatedPayload, bool) {
	return ExtractPayload[BundleCreatedPayload](e)
}

func GetWatchTriggeredPayload(e Event) (WatchTriggeredPayload, bool) {
	return ExtractPayload[WatchTriggeredPayload](e)
}
