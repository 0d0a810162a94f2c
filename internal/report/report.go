// Package report assembles the markdown analysis reports bioclaw writes
// into each run directory.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bioclaw/bioclaw/internal/events"
)

// Section is one titled block of report body content.
type Section struct {
	Title string
	Body  string
}

// Builder assembles a markdown analysis report.
type Builder struct {
	title    string
	skills   []string
	inputs   []string
	sections []Section
	now      func() time.Time
}

// NewBuilder creates a report builder for the given title.
func NewBuilder(title string) *Builder {
	return &Builder{
		title: title,
		now:   time.Now,
	}
}

// WithSkills records the skills that produced the report.
func (b *Builder) WithSkills(names ...string) *Builder {
	b.skills = append(b.skills, names...)
	return b
}

// WithInputs records input files; checksums are computed at render time.
func (b *Builder) WithInputs(paths ...string) *Builder {
	b.inputs = append(b.inputs, paths...)
	return b
}

// AddSection appends a titled body section.
func (b *Builder) AddSection(title, body string) *Builder {
	b.sections = append(b.sections, Section{Title: title, Body: body})
	return b
}

// Render produces the full markdown document: the standard header (date,
// skills used, input checksums) followed by the body sections.
func (b *Builder) Render() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Analysis Report: %s\n\n", b.title))
	sb.WriteString(fmt.Sprintf("**Date**: %s\n", b.now().UTC().Format("2006-01-02 15:04 UTC")))
	sb.WriteString(fmt.Sprintf("**Skills used**: %s\n", strings.Join(b.skills, ", ")))
	sb.WriteString("**Input files**:\n")
	for _, input := range b.inputs {
		name := filepath.Base(input)
		sum, err := SHA256File(input)
		if err != nil {
			sb.WriteString(fmt.Sprintf("- `%s`: (file not found)\n", name))
			continue
		}
		sb.WriteString(fmt.Sprintf("- `%s`: `%s`\n", name, sum))
	}
	sb.WriteString("\n---\n")

	for _, sec := range b.sections {
		sb.WriteString(fmt.Sprintf("\n## %s\n\n%s\n", sec.Title, strings.TrimRight(sec.Body, "\n")))
	}

	return sb.String()
}

// Write renders the report to dir/report.md and publishes a report.written
// event on the bus (which may be nil).
func (b *Builder) Write(dir string, bus *events.Bus, runID string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	path := filepath.Join(dir, "report.md")
	if err := os.WriteFile(path, []byte(b.Render()), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	if bus != nil {
		bus.Publish(events.NewTypedEventWithRun(events.SourceReport, events.ReportWrittenPayload{
			Path:   path,
			Title:  b.title,
			Skills: b.skills,
		}, runID))
	}

	return path, nil
}
