package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
)

// NewSkillsCommand returns the skills subcommand.
func NewSkillsCommand() *cli.Command {
	return &cli.Command{
		Name:  "skills",
		Usage: "Inspect available analysis skills",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all loaded skills",
				Action: runSkillsList,
			},
			{
				Name:      "show",
				Usage:     "Show one skill in detail",
				ArgsUsage: "<skill>",
				Action:    runSkillsShow,
			},
			{
				Name:   "validate",
				Usage:  "Validate skill definitions and check required tools",
				Action: runSkillsValidate,
			},
		},
		DefaultCommand: "list",
	}
}

func runSkillsList(_ context.Context, cmd *cli.Command) error {
	cfg := loadConfig(cmd)
	registry, err := loadRegistry(cfg)
	if err != nil {
		return fmt.Errorf("load skills: %w", err)
	}

	all := registry.All()
	if len(all) == 0 {
		fmt.Println("No skills found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS\tTYPE\tEXTENSIONS\tDESCRIPTION")
	for _, s := range all {
		exts := strings.Join(s.Triggers.Extensions, ",")
		if exts == "" {
			exts = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.Name, s.Status, s.Type, exts, s.Description)
	}
	return w.Flush()
}

func runSkillsValidate(_ context.Context, cmd *cli.Command) error {
	cfg := loadConfig(cmd)
	registry, err := loadRegistry(cfg)
	if err != nil {
		return fmt.Errorf("load skills: %w", err)
	}

	problems := 0
	for _, s := range registry.All() {
		if err := s.Validate(); err != nil {
			fmt.Printf("%-20s INVALID: %v\n", s.Name, err)
			problems++
			continue
		}
		missing := make([]string, 0, len(s.Requires))
		for _, tool := range s.Requires {
			if _, err := exec.LookPath(tool); err != nil {
				missing = append(missing, tool)
			}
		}
		if len(missing) > 0 {
			fmt.Printf("%-20s OK (missing tools: %s)\n", s.Name, strings.Join(missing, ", "))
			continue
		}
		fmt.Printf("%-20s OK\n", s.Name)
	}
	if problems > 0 {
		return fmt.Errorf("%d skill(s) failed validation", problems)
	}
	return nil
}

func runSkillsShow(_ context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("usage: bioclaw skills show <skill>")
	}

	cfg := loadConfig(cmd)
	registry, err := loadRegistry(cfg)
	if err != nil {
		return fmt.Errorf("load skills: %w", err)
	}

	s := registry.Get(name)
	if s == nil {
		return fmt.Errorf("skill %q not found (available: %s)", name, strings.Join(registry.Names(), ", "))
	}

	fmt.Printf("Name:        %s\n", s.Name)
	fmt.Printf("Description: %s\n", s.Description)
	fmt.Printf("Status:      %s\n", s.Status)
	fmt.Printf("Type:        %s\n", s.Type)
	if s.Version != 0 {
		fmt.Printf("Version:     %d\n", s.Version)
	}
	if len(s.Triggers.Extensions) > 0 {
		fmt.Printf("Extensions:  %s\n", strings.Join(s.Triggers.Extensions, ", "))
	}
	if len(s.Triggers.Keywords) > 0 {
		fmt.Printf("Keywords:    %s\n", strings.Join(s.Triggers.Keywords, ", "))
	}
	if len(s.Requires) > 0 {
		fmt.Printf("Requires:    %s\n", strings.Join(s.Requires, ", "))
	}
	if s.Command != "" {
		fmt.Printf("Command:     %s\n", s.Command)
	}
	for _, step := range s.Steps {
		needs := ""
		if len(step.Needs) > 0 {
			needs = " (needs " + strings.Join(step.Needs, ", ") + ")"
		}
		fmt.Printf("Step %-12s %s%s\n", step.ID+":", step.Command, needs)
	}
	return nil
}
