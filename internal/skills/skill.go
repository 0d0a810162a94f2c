package skills

import (
	"fmt"
	"os"
	"strings"

	"github.com/marcozac/go-jsonc"
)

// SkillType distinguishes simple (single command) from workflow (DAG) skills.
type SkillType string

const (
	SkillTypeSimple   SkillType = "simple"
	SkillTypeWorkflow SkillType = "workflow"
)

// SkillStatus tracks how far along a skill is.
type SkillStatus string

const (
	StatusMVP     SkillStatus = "mvp"
	StatusPlanned SkillStatus = "planned"
)

// Skill represents a declarative skill loaded from JSONC or SKILL.md frontmatter.
type Skill struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Type        SkillType         `json:"type" yaml:"type"`
	Status      SkillStatus       `json:"status" yaml:"status"`
	Version     int               `json:"version" yaml:"version"`
	Command     string            `json:"command" yaml:"command"` // for simple skills
	Requires    []string          `json:"requires" yaml:"requires"`
	Triggers    TriggerConfig     `json:"triggers" yaml:"triggers"`
	Vars        map[string]Var    `json:"vars" yaml:"vars"`
	Steps       []Step            `json:"steps" yaml:"steps"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Dir is the directory the skill was loaded from (SKILL.md skills only).
	Dir string `json:"-" yaml:"-"`
}

// TriggerConfig declares the input signature a skill handles.
type TriggerConfig struct {
	Extensions []string `json:"extensions" yaml:"extensions"` // file suffixes, e.g. ".vcf", ".vcf.gz"
	Keywords   []string `json:"keywords" yaml:"keywords"`     // lowercase query keywords
}

// Var describes a skill input variable.
type Var struct {
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
	Default     string `json:"default" yaml:"default"`
}

// Step describes a single step in a workflow skill.
type Step struct {
	ID      string   `json:"id" yaml:"id"`
	Title   string   `json:"title" yaml:"title"`
	Command string   `json:"command" yaml:"command"`
	Needs   []string `json:"needs" yaml:"needs"`
}

// LoadSkill reads a JSONC skill definition from disk.
func LoadSkill(path string) (*Skill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skill %s: %w", path, err)
	}

	var s Skill
	if err := jsonc.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse skill %s: %w", path, err)
	}

	s.applyDefaults()

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validate skill %s: %w", path, err)
	}

	return &s, nil
}

// applyDefaults infers the type from steps and defaults the status to mvp.
func (s *Skill) applyDefaults() {
	if s.Type == "" {
		if len(s.Steps) > 0 {
			s.Type = SkillTypeWorkflow
		} else {
			s.Type = SkillTypeSimple
		}
	}
	if s.Status == "" {
		s.Status = StatusMVP
	}
	for i, ext := range s.Triggers.Extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.Triggers.Extensions[i] = ext
	}
	for i, kw := range s.Triggers.Keywords {
		s.Triggers.Keywords[i] = strings.ToLower(kw)
	}
}

// Validate checks the skill definition for consistency.
func (s *Skill) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("skill name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("skill %q: description is required", s.Name)
	}

	switch s.Status {
	case StatusMVP, StatusPlanned:
	default:
		return fmt.Errorf("skill %q: unknown status %q", s.Name, s.Status)
	}

	switch s.Type {
	case SkillTypeSimple:
		if s.Command == "" && s.Status != StatusPlanned {
			return fmt.Errorf("skill %q: simple skill requires a command", s.Name)
		}
	case SkillTypeWorkflow:
		if len(s.Steps) == 0 {
			return fmt.Errorf("skill %q: workflow skill requires at least one step", s.Name)
		}
		if err := s.validateSteps(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("skill %q: unknown type %q", s.Name, s.Type)
	}

	return nil
}

func (s *Skill) validateSteps() error {
	ids := make(map[string]bool, len(s.Steps))

	// Collect all step IDs
	for _, step := range s.Steps {
		if step.ID == "" {
			return fmt.Errorf("skill %q: step ID is required", s.Name)
		}
		if ids[step.ID] {
			return fmt.Errorf("skill %q: duplicate step ID %q", s.Name, step.ID)
		}
		ids[step.ID] = true
	}

	// Validate needs references
	for _, step := range s.Steps {
		for _, need := range step.Needs {
			if !ids[need] {
				return fmt.Errorf("skill %q: step %q depends on unknown step %q", s.Name, step.ID, need)
			}
			if need == step.ID {
				return fmt.Errorf("skill %q: step %q cannot depend on itself", s.Name, step.ID)
			}
		}
	}

	// Validate step commands
	for _, step := range s.Steps {
		if step.Command == "" {
			return fmt.Errorf("skill %q: step %q requires a command", s.Name, step.ID)
		}
	}

	return nil
}

// Runnable reports whether the skill can be executed.
// Planned skills can be routed to but refuse execution.
func (s *Skill) Runnable() bool {
	return s.Status != StatusPlanned
}

// HandlesExtension returns the matching declared extension for path, longest
// suffix first so ".vcf.gz" wins over ".gz". Empty string means no match.
func (s *Skill) HandlesExtension(path string) string {
	lower := strings.ToLower(path)
	best := ""
	for _, ext := range s.Triggers.Extensions {
		if strings.HasSuffix(lower, ext) && len(ext) > len(best) {
			best = ext
		}
	}
	return best
}

// KeywordHits counts how many declared keywords appear in the query.
func (s *Skill) KeywordHits(query string) (int, string) {
	lower := strings.ToLower(query)
	hits := 0
	first := ""
	for _, kw := range s.Triggers.Keywords {
		if strings.Contains(lower, kw) {
			hits++
			if first == "" {
				first = kw
			}
		}
	}
	return hits, first
}

// String returns a human-readable representation of the skill.
func (s *Skill) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s (%s, %s)", s.Name, s.Type, s.Status))
	if len(s.Steps) > 0 {
		sb.WriteString(fmt.Sprintf(", %d steps", len(s.Steps)))
	}
	return sb.String()
}
