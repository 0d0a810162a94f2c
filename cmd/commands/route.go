package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/bioclaw/bioclaw/internal/router"
)

// NewRouteCommand returns the route subcommand.
func NewRouteCommand() *cli.Command {
	return &cli.Command{
		Name:      "route",
		Usage:     "Show which skill would handle a request, without running it",
		ArgsUsage: "[query words and input files...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "skill",
				Aliases: []string{"s"},
				Usage:   "Force a specific skill instead of detecting one",
			},
		},
		Action: runRoute,
	}
}

func runRoute(ctx context.Context, cmd *cli.Command) error {
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
		return fmt.Errorf("usage: bioclaw route <query and/or input files>")
	}

	decision, err := router.New(registry, nil).Route(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("Skill:  %s\n", decision.SkillName)
	fmt.Printf("Method: %s\n", decision.Method)
	if decision.Matched != "" {
		fmt.Printf("Match:  %s\n", decision.Matched)
	}
	if len(decision.Candidates) > 0 {
		fmt.Printf("Also matched: %s\n", strings.Join(decision.Candidates, ", "))
	}
	if !decision.Skill.Runnable() {
		fmt.Printf("Note:   %s is planned and cannot be executed yet\n", decision.SkillName)
	}
	return nil
}
