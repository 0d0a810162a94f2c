package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/bioclaw/bioclaw/internal/runs"
)

// NewRunsCommand returns the runs subcommand.
func NewRunsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Inspect analysis runs",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all runs",
				Action: runRunsList,
			},
			{
				Name:      "show",
				Usage:     "Show one run's metadata",
				ArgsUsage: "<run_id>",
				Action:    runRunsShow,
			},
		},
		DefaultCommand: "list",
	}
}

func runRunsList(_ context.Context, cmd *cli.Command) error {
	cfg := loadConfig(cmd)
	store := runs.NewFileStore(cfg.Runner.RunsDir)

	list, err := store.List()
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(list) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tSKILL\tMETHOD\tUPDATED\tQUERY")
	for _, r := range list {
		query := r.Query
		if query == "" {
			query = "-"
		}
		skill := r.Skill
		if skill == "" {
			skill = "-"
		}
		method := r.Method
		if method == "" {
			method = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Status, skill, method, r.UpdatedAt.Format("2006-01-02 15:04"), query)
	}
	return w.Flush()
}

func runRunsShow(_ context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: bioclaw runs show <run_id>")
	}

	cfg := loadConfig(cmd)
	store := runs.NewFileStore(cfg.Runner.RunsDir)

	r, err := store.Get(id)
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}

	fmt.Printf("ID:      %s\n", r.ID)
	fmt.Printf("Status:  %s\n", r.Status)
	fmt.Printf("Created: %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	if r.Query != "" {
		fmt.Printf("Query:   %s\n", r.Query)
	}
	if r.Skill != "" {
		fmt.Printf("Skill:   %s (%s)\n", r.Skill, r.Method)
	}
	for _, in := range r.Inputs {
		fmt.Printf("Input:   %s  %s\n", in.Path, in.SHA256)
	}
	if r.Error != "" {
		fmt.Printf("Error:   %s\n", r.Error)
	}
	fmt.Printf("Dir:     %s\n", store.Dir(r.ID))
	return nil
}
