package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
)

// NewWatchesCommand returns the watches subcommand.
func NewWatchesCommand() *cli.Command {
	return &cli.Command{
		Name:   "watches",
		Usage:  "List configured scheduled analyses",
		Action: runWatchesList,
	}
}

func runWatchesList(_ context.Context, cmd *cli.Command) error {
	cfg := loadConfig(cmd)

	if len(cfg.Watches) == 0 {
		fmt.Println("No watches configured.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCRON\tGLOB\tSKILL\tQUERY")
	for _, wc := range cfg.Watches {
		skill := wc.Skill
		if skill == "" {
			skill = "-"
		}
		query := wc.Query
		if query == "" {
			query = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", wc.Name, wc.Cron, wc.Glob, skill, query)
	}
	return w.Flush()
}
