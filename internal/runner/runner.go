// Package runner executes routed skills: a simple skill runs its shell
// command, a workflow skill runs its DAG of steps with parallel execution
// where dependencies allow.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/bioclaw/bioclaw/internal/events"
	"github.com/bioclaw/bioclaw/internal/skills"
)

var (
	// ErrSkillPlanned means the routed skill is declared but not yet implemented.
	ErrSkillPlanned = errors.New("skill is planned but not yet implemented")
)

const defaultTimeout = 30 * time.Minute

// Config holds runner settings.
type Config struct {
	Shell   string        // shell binary used for commands (default: sh)
	Timeout time.Duration // per-command timeout (default: 30m)
}

// Runner executes skills inside run working directories.
type Runner struct {
	bus     *events.Bus
	shell   string
	timeout time.Duration
}

// Result captures the outcome of a skill execution.
type Result struct {
	Skill    string            `json:"skill"`
	Output   string            `json:"output"`
	ExitCode int               `json:"exit_code"`
	Duration time.Duration     `json:"duration"`
	Steps    map[string]string `json:"steps,omitempty"` // step ID -> output
}

// New creates a Runner. The bus may be nil.
func New(bus *events.Bus, cfg Config) *Runner {
	if cfg.Shell == "" {
		cfg.Shell = "sh"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Runner{
		bus:     bus,
		shell:   cfg.Shell,
		timeout: cfg.Timeout,
	}
}

// Run executes the skill with the given inputs and variables inside workDir.
func (r *Runner) Run(ctx context.Context, skill *skills.Skill, inputs []string, vars map[string]string, workDir string) (*Result, error) {
	if !skill.Runnable() {
		return nil, fmt.Errorf("%w: %q", ErrSkillPlanned, skill.Name)
	}
	if err := checkRequires(skill); err != nil {
		return nil, err
	}
	if vars == nil {
		vars = make(map[string]string)
	}
	if err := r.applyVarDefaults(skill, vars); err != nil {
		return nil, err
	}

	runID := events.RunIDFromContext(ctx)
	r.publish(events.NewTypedEventWithRun(events.SourceRunner, events.SkillStartedPayload{
		SkillName: skill.Name,
		Inputs:    inputs,
		WorkDir:   workDir,
	}, runID))

	start := time.Now()

	var (
		result *Result
		err    error
	)
	switch skill.Type {
	case skills.SkillTypeWorkflow:
		result, err = r.runWorkflow(ctx, skill, inputs, vars, workDir)
	default:
		result, err = r.runSimple(ctx, skill, inputs, vars, workDir)
	}

	completed := events.SkillCompletedPayload{
		SkillName: skill.Name,
		Duration:  time.Since(start),
	}
	if result != nil {
		completed.Output = result.Output
		completed.ExitCode = result.ExitCode
		result.Duration = time.Since(start)
	}
	if err != nil {
		completed.Error = err.Error()
	}
	r.publish(events.NewTypedEventWithRun(events.SourceRunner, completed, runID))

	return result, err
}

func (r *Runner) runSimple(ctx context.Context, skill *skills.Skill, inputs []string, vars map[string]string, workDir string) (*Result, error) {
	output, exitCode, err := r.execCommand(ctx, skill, skill.Command, inputs, vars, workDir, nil)
	result := &Result{
		Skill:    skill.Name,
		Output:   output,
		ExitCode: exitCode,
	}
	if err != nil {
		return result, fmt.Errorf("skill %q: %w", skill.Name, err)
	}
	return result, nil
}

// execCommand runs one shell command and returns its stdout and exit code.
// A non-zero exit is returned as an error carrying the captured stderr.
func (r *Runner) execCommand(ctx context.Context, skill *skills.Skill, command string, inputs []string, vars map[string]string, workDir string, extraEnv map[string]string) (string, int, error) {
	expanded := expandCommand(command, inputs, vars, workDir)

	slog.Debug("executing skill command", "skill", skill.Name, "command", expanded)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.shell, "-c", expanded)
	cmd.Dir = workDir
	cmd.Env = buildEnv(skill, inputs, vars, workDir, extraEnv)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return stdout.String(), -1, fmt.Errorf("command timed out: %w", ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), exitErr.ExitCode(),
				fmt.Errorf("command exited with status %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return stdout.String(), -1, fmt.Errorf("exec: %w", err)
	}

	return stdout.String(), 0, nil
}

// checkRequires verifies the skill's external tools are on PATH.
func checkRequires(skill *skills.Skill) error {
	var missing []string
	for _, tool := range skill.Requires {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("skill %q: required tools not found on PATH: %s",
			skill.Name, strings.Join(missing, ", "))
	}
	return nil
}

// applyVarDefaults fills defaults and rejects missing required variables.
func (r *Runner) applyVarDefaults(skill *skills.Skill, vars map[string]string) error {
	for name, v := range skill.Vars {
		if _, ok := vars[name]; ok {
			continue
		}
		if v.Default != "" {
			vars[name] = v.Default
			continue
		}
		if v.Required {
			return fmt.Errorf("skill %q: required variable %q not provided", skill.Name, name)
		}
	}
	return nil
}

// expandCommand substitutes ${input}, ${inputs}, ${workdir}, and skill
// variables into the command template.
func expandCommand(command string, inputs []string, vars map[string]string, workDir string) string {
	return os.Expand(command, func(key string) string {
		switch key {
		case "input":
			if len(inputs) > 0 {
				return inputs[0]
			}
			return ""
		case "inputs":
			return strings.Join(inputs, " ")
		case "workdir":
			return workDir
		}
		if v, ok := vars[key]; ok {
			return v
		}
		// Leave unknown references for the shell.
		return "${" + key + "}"
	})
}

// buildEnv assembles the environment for a skill command: the parent env,
// BIOCLAW_* variables, skill vars, and any per-step extras. Skills loaded
// from a SKILL.md directory get that directory prepended to PATH so their
// companion scripts resolve.
func buildEnv(skill *skills.Skill, inputs []string, vars map[string]string, workDir string, extraEnv map[string]string) []string {
	env := os.Environ()

	if skill.Dir != "" {
		env = append(env, "PATH="+skill.Dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}

	env = append(env, "BIOCLAW_WORKDIR="+workDir)
	if len(inputs) > 0 {
		env = append(env, "BIOCLAW_INPUT="+inputs[0])
		env = append(env, "BIOCLAW_INPUTS="+strings.Join(inputs, " "))
	}
	for name, value := range vars {
		env = append(env, "BIOCLAW_VAR_"+envName(name)+"="+value)
	}
	for name, value := range extraEnv {
		env = append(env, name+"="+value)
	}
	return env
}

// envName uppercases an identifier and maps dashes to underscores.
func envName(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

func (r *Runner) publish(e events.Event) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(e)
}
