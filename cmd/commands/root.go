package commands

import (
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/bioclaw/bioclaw/internal/config"
	"github.com/bioclaw/bioclaw/internal/skills"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "bioclaw",
		Usage: "Bioinformatics skill orchestrator",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewRouteCommand(),
			NewRunCommand(),
			NewSkillsCommand(),
			NewRunsCommand(),
			NewReportCommand(),
			NewAuditCommand(),
			NewBundleCommand(),
			NewWatchesCommand(),
			NewSeedCommand(),
			NewEventsCommand(),
			NewStatusCommand(),
			NewServeCommand(),
		},
	}
}

// setupLogging switches on debug output when --debug is set.
func setupLogging(cmd *cli.Command) {
	if cmd.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
}

// loadConfig reads the config file named by --config, falling back to
// defaults when it is missing or unreadable.
func loadConfig(cmd *cli.Command) *config.Config {
	path := cmd.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		slog.Warn("config unreadable, using defaults", "path", path, "error", err)
		cfg, _ = config.Load("")
	}
	return cfg
}

// loadRegistry builds the skill registry from the configured directories.
func loadRegistry(cfg *config.Config) (*skills.Registry, error) {
	registry := skills.NewRegistry()
	for _, dir := range cfg.Skills.Dirs {
		if err := registry.LoadDir(dir); err != nil {
			return nil, err
		}
	}
	registry.Filter(cfg.Skills.Enabled)
	return registry, nil
}

// splitRequest separates positional args into input files (paths that exist)
// and query words (everything else).
func splitRequest(args []string) (query string, inputs []string) {
	var words []string
	for _, a := range args {
		if info, err := os.Stat(a); err == nil && !info.IsDir() {
			inputs = append(inputs, a)
			continue
		}
		words = append(words, a)
	}
	return strings.Join(words, " "), inputs
}
