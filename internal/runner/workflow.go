package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bioclaw/bioclaw/internal/events"
	"github.com/bioclaw/bioclaw/internal/skills"
)

// runWorkflow executes a workflow skill's steps in DAG order, running steps
// whose dependencies are satisfied in parallel. Fail-fast on first error.
// The result carries the output of the last step in topological order.
func (r *Runner) runWorkflow(ctx context.Context, skill *skills.Skill, inputs []string, vars map[string]string, workDir string) (*Result, error) {
	dag, err := skills.NewDAG(skill.Steps)
	if err != nil {
		return nil, fmt.Errorf("build DAG for skill %q: %w", skill.Name, err)
	}

	stepsDir := filepath.Join(workDir, "steps")
	if err := os.MkdirAll(stepsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create steps dir: %w", err)
	}

	completed := make(map[string]bool)
	results := make(map[string]string)
	var mu sync.Mutex

	for {
		mu.Lock()
		ready := dag.ReadySteps(completed)
		mu.Unlock()

		if len(ready) == 0 {
			break
		}

		// Run ready steps in parallel
		var wg sync.WaitGroup
		errCh := make(chan error, len(ready))

		for _, stepID := range ready {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()

				mu.Lock()
				resultsCopy := make(map[string]string, len(results))
				for k, v := range results {
					resultsCopy[k] = v
				}
				mu.Unlock()

				output, err := r.runStep(ctx, skill, dag, id, inputs, vars, workDir, stepsDir, resultsCopy)
				if err != nil {
					errCh <- fmt.Errorf("step %q: %w", id, err)
					return
				}

				mu.Lock()
				completed[id] = true
				results[id] = output
				mu.Unlock()
			}(stepID)
		}

		wg.Wait()
		close(errCh)

		// Fail-fast: return first error
		if err := <-errCh; err != nil {
			return nil, fmt.Errorf("skill %q: %w", skill.Name, err)
		}
	}

	result := &Result{
		Skill: skill.Name,
		Steps: results,
	}

	// The output of the last step in topological order is the skill output.
	order := dag.TopologicalOrder()
	if len(order) > 0 {
		result.Output = results[order[len(order)-1]]
	}
	return result, nil
}

// runStep executes one workflow step. The step's stdout is persisted to
// steps/<id>.out; dependents see their needs' output files via
// BIOCLAW_STEP_<ID>_OUTPUT environment variables.
func (r *Runner) runStep(ctx context.Context, skill *skills.Skill, dag *skills.DAG, stepID string, inputs []string, vars map[string]string, workDir, stepsDir string, prevResults map[string]string) (string, error) {
	step := dag.Step(stepID)
	if step == nil {
		return "", fmt.Errorf("step %q not found in DAG", stepID)
	}

	runID := events.RunIDFromContext(ctx)
	r.publish(events.NewTypedEventWithRun(events.SourceRunner, events.SkillStepStartedPayload{
		SkillName: skill.Name,
		StepID:    stepID,
		StepTitle: step.Title,
	}, runID))

	start := time.Now()

	extraEnv := make(map[string]string, len(step.Needs))
	for _, need := range step.Needs {
		if _, ok := prevResults[need]; ok {
			extraEnv["BIOCLAW_STEP_"+envName(need)+"_OUTPUT"] = filepath.Join(stepsDir, need+".out")
		}
	}

	output, _, err := r.execCommand(ctx, skill, step.Command, inputs, vars, workDir, extraEnv)

	if err == nil {
		if werr := os.WriteFile(filepath.Join(stepsDir, stepID+".out"), []byte(output), 0o644); werr != nil {
			err = fmt.Errorf("persist step output: %w", werr)
		}
	}

	payload := events.SkillStepCompletedPayload{
		SkillName: skill.Name,
		StepID:    stepID,
		StepTitle: step.Title,
		Output:    output,
		Duration:  time.Since(start),
	}
	if err != nil {
		payload.Error = err.Error()
	}
	r.publish(events.NewTypedEventWithRun(events.SourceRunner, payload, runID))

	return output, err
}
