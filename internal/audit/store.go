// Package audit persists the audit trail: every routing decision and skill
// execution is recorded, queryable by run, skill, action, and status.
package audit

import (
	"context"
	"time"
)

// Action identifies what kind of event an entry records.
type Action string

const (
	ActionRouted   Action = "routed"
	ActionExecuted Action = "executed"
	ActionReported Action = "reported"
	ActionBundled  Action = "bundled"
)

// Entry is one audit trail record.
type Entry struct {
	ID        int64     `json:"id"`
	RunID     string    `json:"run_id,omitempty"`
	Skill     string    `json:"skill,omitempty"`
	Action    Action    `json:"action"`
	Method    string    `json:"method,omitempty"` // routing method, for routed entries
	Status    string    `json:"status"`           // ok or error
	Detail    string    `json:"detail,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter narrows a List query. Zero values mean "any".
type Filter struct {
	RunID  string
	Skill  string
	Action Action
	Status string
	Limit  int
}

// Store is the audit persistence interface.
type Store interface {
	Record(ctx context.Context, e Entry) error
	List(ctx context.Context, f Filter) ([]Entry, error)
	Close() error
}
