// Package runs tracks one analysis lifecycle per routed request: a run
// directory holding metadata, skill outputs, and generated reports.
package runs

import (
	"time"
)

// RunStatus represents the lifecycle state of a run.
type RunStatus string

const (
	RunActive    RunStatus = "active"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// InputFile records an input and its checksum at run creation time.
type InputFile struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256,omitempty"`
}

// Run is the metadata for one request lifecycle.
type Run struct {
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Status    RunStatus   `json:"status"`
	Query     string      `json:"query,omitempty"`
	Skill     string      `json:"skill,omitempty"`
	Method    string      `json:"method,omitempty"` // how the skill was selected
	Inputs    []InputFile `json:"inputs,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// Store is the interface run persistence implements.
type Store interface {
	Create() (*Run, error)
	Get(id string) (*Run, error)
	List() ([]*Run, error)
	UpdateMeta(r *Run) error
	Dir(id string) string
}
