// Package bundle exports a completed run as a self-contained reproducibility
// bundle: input copies, the report, a manifest with checksums and tool
// versions, and a rerun script.
package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/bioclaw/bioclaw/internal/events"
	"github.com/bioclaw/bioclaw/internal/report"
	"github.com/bioclaw/bioclaw/internal/runs"
	"github.com/bioclaw/bioclaw/internal/skills"
)

// Manifest describes everything needed to reproduce a run.
type Manifest struct {
	RunID     string            `json:"run_id"`
	Skill     string            `json:"skill"`
	Query     string            `json:"query,omitempty"`
	Method    string            `json:"method,omitempty"`
	Command   string            `json:"command,omitempty"`
	Inputs    []runs.InputFile  `json:"inputs"`
	Tools     map[string]string `json:"tools,omitempty"` // executable -> version line
	CreatedAt time.Time         `json:"created_at"`
}

// Exporter writes reproducibility bundles for completed runs.
type Exporter struct {
	runs     runs.Store
	registry *skills.Registry
	bus      *events.Bus
}

// NewExporter creates a bundle exporter.
func NewExporter(store runs.Store, registry *skills.Registry, bus *events.Bus) *Exporter {
	return &Exporter{runs: store, registry: registry, bus: bus}
}

// Export writes the bundle for runID into destDir and returns its manifest.
// destDir must not already exist.
func (e *Exporter) Export(ctx context.Context, runID, destDir string) (*Manifest, error) {
	r, err := e.runs.Get(runID)
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}

	if _, err := os.Stat(destDir); err == nil {
		return nil, fmt.Errorf("bundle dir already exists: %s", destDir)
	}
	if err := os.MkdirAll(filepath.Join(destDir, "inputs"), 0o755); err != nil {
		return nil, fmt.Errorf("create bundle dir: %w", err)
	}

	m := &Manifest{
		RunID:     r.ID,
		Skill:     r.Skill,
		Query:     r.Query,
		Method:    r.Method,
		CreatedAt: time.Now().UTC(),
	}

	var sk *skills.Skill
	if e.registry != nil && r.Skill != "" {
		if s := e.registry.Get(r.Skill); s != nil {
			sk = s
			m.Command = s.Command
			m.Tools = captureToolVersions(ctx, s.Requires)
		}
	}

	files := 0
	for _, in := range r.Inputs {
		dst := filepath.Join(destDir, "inputs", filepath.Base(in.Path))
		if err := copyFile(in.Path, dst); err != nil {
			slog.Warn("bundle: input missing, recorded without copy", "path", in.Path, "error", err)
		} else {
			files++
		}
		sum := in.SHA256
		if sum == "" {
			if s, err := report.SHA256File(in.Path); err == nil {
				sum = s
			}
		}
		m.Inputs = append(m.Inputs, runs.InputFile{Path: filepath.Base(in.Path), SHA256: sum})
	}

	reportSrc := filepath.Join(e.runs.Dir(r.ID), "report.md")
	if err := copyFile(reportSrc, filepath.Join(destDir, "report.md")); err == nil {
		files++
	}

	if err := writeJSON(filepath.Join(destDir, "manifest.json"), m); err != nil {
		return nil, err
	}
	files++

	if err := writeRerunScript(filepath.Join(destDir, "rerun.sh"), m, sk); err != nil {
		return nil, err
	}
	files++

	if e.bus != nil {
		e.bus.Publish(events.NewTypedEventWithRun(events.SourceBundle, events.BundleCreatedPayload{
			Path:  destDir,
			Files: files,
		}, r.ID))
	}

	slog.Info("bundle created", "run", r.ID, "path", destDir, "files", files)
	return m, nil
}

// captureToolVersions runs `tool --version` for each required executable and
// keeps the first output line. Missing tools are recorded as such.
func captureToolVersions(ctx context.Context, tools []string) map[string]string {
	if len(tools) == 0 {
		return nil
	}
	versions := make(map[string]string, len(tools))
	for _, tool := range tools {
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		out, err := exec.CommandContext(cctx, tool, "--version").CombinedOutput()
		cancel()
		if err != nil {
			versions[tool] = "not available"
			continue
		}
		line := strings.TrimSpace(out2line(out))
		if line == "" {
			line = "unknown"
		}
		versions[tool] = line
	}
	return versions
}

func out2line(out []byte) string {
	s := string(out)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

func writeRerunScript(path string, m *Manifest, sk *skills.Skill) error {
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("# Reproduces this analysis against the bundled inputs.\n")
	b.WriteString("set -eu\n\n")
	fmt.Fprintf(&b, "cd \"$(dirname \"$0\")\"\n\n")

	args := []string{"bioclaw", "run", "--skill", shellQuote(m.Skill)}
	for _, in := range m.Inputs {
		args = append(args, shellQuote(filepath.Join("inputs", in.Path)))
	}
	b.WriteString(strings.Join(args, " "))
	b.WriteString("\n")

	if sk != nil && sk.Command != "" {
		fmt.Fprintf(&b, "\n# Underlying command template:\n#   %s\n", sk.Command)
	}
	return os.WriteFile(path, []byte(b.String()), 0o755)
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$&|;<>()*?[]#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
