// Package pipeline wires the full analysis flow: create a run, route the
// request, execute the selected skill, and write the report into the run
// directory.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bioclaw/bioclaw/internal/events"
	"github.com/bioclaw/bioclaw/internal/report"
	"github.com/bioclaw/bioclaw/internal/router"
	"github.com/bioclaw/bioclaw/internal/runner"
	"github.com/bioclaw/bioclaw/internal/runs"
	"github.com/bioclaw/bioclaw/internal/skills"
)

// Pipeline executes routed analysis requests end to end.
type Pipeline struct {
	registry *skills.Registry
	router   *router.Router
	runner   *runner.Runner
	runs     runs.Store
	bus      *events.Bus
}

// New assembles a pipeline.
func New(registry *skills.Registry, rt *router.Router, rn *runner.Runner, store runs.Store, bus *events.Bus) *Pipeline {
	return &Pipeline{
		registry: registry,
		router:   rt,
		runner:   rn,
		runs:     store,
		bus:      bus,
	}
}

// Outcome is the result of one pipeline execution.
type Outcome struct {
	Run        *runs.Run
	Decision   *router.Decision
	Result     *runner.Result
	ReportPath string
}

// Execute runs a request through routing, execution, and reporting. The run
// is persisted in every case; on failure its status and error are recorded
// and the error returned.
func (p *Pipeline) Execute(ctx context.Context, req router.Request, vars map[string]string) (*Outcome, error) {
	r, err := p.runs.Create()
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	ctx = events.ContextWithRunID(ctx, r.ID)
	r.Query = req.Query

	for _, input := range req.Inputs {
		if _, err := os.Stat(input); err != nil {
			return p.fail(r, fmt.Errorf("input file not found: %s", input))
		}
		sum, err := report.SHA256File(input)
		if err != nil {
			return p.fail(r, fmt.Errorf("checksum %s: %w", input, err))
		}
		r.Inputs = append(r.Inputs, runs.InputFile{Path: input, SHA256: sum})
	}

	decision, err := p.router.Route(ctx, req)
	if err != nil {
		return p.fail(r, err)
	}
	r.Skill = decision.SkillName
	r.Method = string(decision.Method)
	if err := p.runs.UpdateMeta(r); err != nil {
		slog.Warn("pipeline: persist run meta", "run", r.ID, "error", err)
	}

	workDir := p.runs.Dir(r.ID)
	result, err := p.runner.Run(ctx, decision.Skill, req.Inputs, vars, workDir)
	if err != nil {
		_, ferr := p.fail(r, err)
		return &Outcome{Run: r, Decision: decision}, ferr
	}

	reportPath, err := p.writeReport(r, decision, result, workDir)
	if err != nil {
		slog.Warn("pipeline: write report", "run", r.ID, "error", err)
	}

	r.Status = runs.RunCompleted
	if err := p.runs.UpdateMeta(r); err != nil {
		slog.Warn("pipeline: persist run meta", "run", r.ID, "error", err)
	}

	return &Outcome{
		Run:        r,
		Decision:   decision,
		Result:     result,
		ReportPath: reportPath,
	}, nil
}

func (p *Pipeline) writeReport(r *runs.Run, decision *router.Decision, result *runner.Result, workDir string) (string, error) {
	title := r.Query
	if title == "" {
		title = decision.SkillName
	}

	b := report.NewBuilder(title).
		WithSkills(decision.SkillName).
		WithInputs(inputPaths(r)...)

	section := fmt.Sprintf("Selected via %s", decision.Method)
	if decision.Matched != "" {
		section += fmt.Sprintf(" (matched %q)", decision.Matched)
	}
	b.AddSection("Routing", section)

	if result.Output != "" {
		b.AddSection(decision.SkillName, "```\n"+result.Output+"\n```")
	}
	for id, out := range result.Steps {
		if out == "" || out == result.Output {
			continue
		}
		b.AddSection(decision.SkillName+" / "+id, "```\n"+out+"\n```")
	}

	return b.Write(workDir, p.bus, r.ID)
}

func (p *Pipeline) fail(r *runs.Run, cause error) (*Outcome, error) {
	r.Status = runs.RunFailed
	r.Error = cause.Error()
	if err := p.runs.UpdateMeta(r); err != nil {
		slog.Warn("pipeline: persist failed run", "run", r.ID, "error", err)
	}
	return &Outcome{Run: r}, cause
}

func inputPaths(r *runs.Run) []string {
	paths := make([]string, 0, len(r.Inputs))
	for _, in := range r.Inputs {
		paths = append(paths, in.Path)
	}
	return paths
}
