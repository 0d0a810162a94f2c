package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/bioclaw/bioclaw/internal/bundle"
	"github.com/bioclaw/bioclaw/internal/runs"
)

// NewBundleCommand returns the bundle subcommand.
func NewBundleCommand() *cli.Command {
	return &cli.Command{
		Name:      "bundle",
		Usage:     "Export a run as a reproducibility bundle",
		ArgsUsage: "<run_id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Bundle directory (default: ./<run_id>-bundle)",
			},
		},
		Action: runBundle,
	}
}

func runBundle(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: bioclaw bundle <run_id>")
	}

	cfg := loadConfig(cmd)
	registry, err := loadRegistry(cfg)
	if err != nil {
		return fmt.Errorf("load skills: %w", err)
	}

	dest := cmd.String("output")
	if dest == "" {
		dest = id + "-bundle"
	}

	store := runs.NewFileStore(cfg.Runner.RunsDir)
	exp := bundle.NewExporter(store, registry, nil)

	m, err := exp.Export(ctx, id, dest)
	if err != nil {
		return err
	}

	abs, _ := filepath.Abs(dest)
	fmt.Printf("Bundle written to %s\n", abs)
	fmt.Printf("  Skill:  %s\n", m.Skill)
	fmt.Printf("  Inputs: %d\n", len(m.Inputs))
	for tool, version := range m.Tools {
		fmt.Printf("  Tool:   %s (%s)\n", tool, version)
	}
	return nil
}
