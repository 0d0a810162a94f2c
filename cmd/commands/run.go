package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/bioclaw/bioclaw/internal/audit"
	"github.com/bioclaw/bioclaw/internal/config"
	"github.com/bioclaw/bioclaw/internal/events"
	"github.com/bioclaw/bioclaw/internal/pipeline"
	"github.com/bioclaw/bioclaw/internal/report"
	"github.com/bioclaw/bioclaw/internal/router"
	"github.com/bioclaw/bioclaw/internal/runner"
	"github.com/bioclaw/bioclaw/internal/runs"
)

// NewRunCommand returns the run subcommand.
func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Route a request to a skill and execute it",
		ArgsUsage: "[query words and input files...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "skill",
				Aliases: []string{"s"},
				Usage:   "Force a specific skill instead of detecting one",
			},
			&cli.StringSliceFlag{
				Name:  "var",
				Usage: "Skill variable as key=value (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "no-render",
				Usage: "Print the raw report instead of rendering it",
			},
		},
		Action: runRun,
	}
}

func runRun(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)
	cfg := loadConfig(cmd)

	registry, err := loadRegistry(cfg)
	if err != nil {
		return fmt.Errorf("load skills: %w", err)
	}

	query, inputs := splitRequest(cmd.Args().Slice())
	req := router.Request{
		Query:  query,
		Inputs: inputs,
		Skill:  cmd.String("skill"),
	}
	if req.Query == "" && len(req.Inputs) == 0 && req.Skill == "" {
		return fmt.Errorf("usage: bioclaw run <query and/or input files>")
	}

	vars, err := parseVars(cmd.StringSlice("var"))
	if err != nil {
		return err
	}

	bus := events.NewBus(cfg.Events.BufferSize)
	defer bus.Close()

	cleanup := startAuditSinks(cfg, bus)
	defer cleanup()

	store := runs.NewFileStore(cfg.Runner.RunsDir)
	rt := router.New(registry, bus)
	rn := runner.New(bus, runner.Config{
		Shell:   cfg.Runner.ShellCmd,
		Timeout: cfg.Runner.Timeout.Duration(),
	})
	p := pipeline.New(registry, rt, rn, store, bus)

	outcome, err := p.Execute(ctx, req, vars)
	if err != nil {
		if outcome != nil && outcome.Run != nil {
			fmt.Printf("Run %s failed: %v\n", outcome.Run.ID, err)
		}
		return err
	}

	fmt.Printf("Run %s completed with %s (%s, %s)\n\n",
		outcome.Run.ID, outcome.Decision.SkillName, outcome.Decision.Method,
		outcome.Result.Duration.Truncate(time.Millisecond))

	if outcome.ReportPath != "" {
		printReport(outcome.ReportPath, cmd.Bool("no-render"))
	}
	return nil
}

// startAuditSinks opens the SQLite recorder and the JSONL event logger.
// Failures degrade to warnings: an unavailable audit store never blocks an
// analysis.
func startAuditSinks(cfg *config.Config, bus *events.Bus) func() {
	var closers []func()

	if store, err := audit.OpenSQLite(cfg.Audit.DBPath); err != nil {
		slog.Warn("audit store unavailable", "path", cfg.Audit.DBPath, "error", err)
	} else {
		rec := audit.NewRecorder(bus, store)
		closers = append(closers, rec.Close, func() { store.Close() })
	}

	logger := audit.NewEventLogger(cfg.Audit.LogDir, bus)
	closers = append(closers, logger.Close)

	return func() {
		for _, c := range closers {
			c()
		}
	}
}

func parseVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --var %q, want key=value", p)
		}
		vars[k] = v
	}
	return vars, nil
}

func printReport(path string, raw bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("read report", "path", path, "error", err)
		return
	}
	if raw {
		fmt.Println(string(data))
		return
	}
	fmt.Println(report.RenderTerminal(string(data), 100))
}
