package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/bioclaw/bioclaw/internal/audit"
)

// NewAuditCommand returns the audit subcommand.
func NewAuditCommand() *cli.Command {
	return &cli.Command{
		Name:  "audit",
		Usage: "Query the audit trail",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "run",
				Usage: "Filter by run ID",
			},
			&cli.StringFlag{
				Name:  "skill",
				Usage: "Filter by skill name",
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Filter by status (ok, error)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum entries to show",
				Value: 50,
			},
		},
		Action: runAudit,
	}
}

func runAudit(ctx context.Context, cmd *cli.Command) error {
	cfg := loadConfig(cmd)

	store, err := audit.OpenSQLite(cfg.Audit.DBPath)
	if err != nil {
		return fmt.Errorf("open audit store: %w", err)
	}
	defer store.Close()

	entries, err := store.List(ctx, audit.Filter{
		RunID:  cmd.String("run"),
		Skill:  cmd.String("skill"),
		Status: cmd.String("status"),
		Limit:  cmd.Int("limit"),
	})
	if err != nil {
		return fmt.Errorf("query audit trail: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No audit entries found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tRUN\tACTION\tSKILL\tSTATUS\tDETAIL")
	for _, e := range entries {
		detail := e.Detail
		if e.Error != "" {
			detail = e.Error
		}
		if len(detail) > 60 {
			detail = detail[:57] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.RunID, e.Action, e.Skill, e.Status, detail)
	}
	return w.Flush()
}
