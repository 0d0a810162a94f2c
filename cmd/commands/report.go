package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/bioclaw/bioclaw/internal/report"
	"github.com/bioclaw/bioclaw/internal/runs"
)

// NewReportCommand returns the report subcommand.
func NewReportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "View analysis reports",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Render a run's report in the terminal",
				ArgsUsage: "<run_id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "raw",
						Usage: "Print the raw markdown instead of rendering it",
					},
					&cli.IntFlag{
						Name:  "width",
						Usage: "Render width",
						Value: 100,
					},
				},
				Action: runReportShow,
			},
		},
		DefaultCommand: "show",
	}
}

func runReportShow(_ context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: bioclaw report show <run_id>")
	}

	cfg := loadConfig(cmd)
	store := runs.NewFileStore(cfg.Runner.RunsDir)
	if _, err := store.Get(id); err != nil {
		return fmt.Errorf("load run: %w", err)
	}

	path := filepath.Join(store.Dir(id), "report.md")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("no report for run %s: %w", id, err)
	}

	if cmd.Bool("raw") {
		fmt.Println(string(data))
		return nil
	}
	fmt.Println(report.RenderTerminal(string(data), int(cmd.Int("width"))))
	return nil
}
