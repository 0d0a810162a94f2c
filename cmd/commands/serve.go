package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/bioclaw/bioclaw/internal/audit"
	"github.com/bioclaw/bioclaw/internal/config"
	"github.com/bioclaw/bioclaw/internal/events"
	"github.com/bioclaw/bioclaw/internal/gateway"
	"github.com/bioclaw/bioclaw/internal/heartbeat"
	"github.com/bioclaw/bioclaw/internal/pipeline"
	"github.com/bioclaw/bioclaw/internal/router"
	"github.com/bioclaw/bioclaw/internal/runner"
	"github.com/bioclaw/bioclaw/internal/runs"
	"github.com/bioclaw/bioclaw/internal/watch"
)

// NewServeCommand returns the serve subcommand.
func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the gateway server and scheduled watches",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to listen on",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)
	cfg := loadConfig(cmd)

	// CLI flags override config
	if cmd.IsSet("host") {
		cfg.Gateway.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Gateway.Port = cmd.Int("port")
	}

	registry, err := loadRegistry(cfg)
	if err != nil {
		return fmt.Errorf("load skills: %w", err)
	}
	slog.Info("skills loaded", "count", len(registry.All()))

	bus := events.NewBus(cfg.Events.BufferSize)
	defer bus.Close()

	var storeIface audit.Store
	auditStore, err := audit.OpenSQLite(cfg.Audit.DBPath)
	if err != nil {
		slog.Warn("audit store unavailable", "path", cfg.Audit.DBPath, "error", err)
	} else {
		defer auditStore.Close()
		storeIface = auditStore
		rec := audit.NewRecorder(bus, auditStore)
		defer rec.Close()
	}

	logger := audit.NewEventLogger(cfg.Audit.LogDir, bus)
	defer logger.Close()

	store := runs.NewFileStore(cfg.Runner.RunsDir)
	rt := router.New(registry, bus)
	rn := runner.New(bus, runner.Config{
		Shell:   cfg.Runner.ShellCmd,
		Timeout: cfg.Runner.Timeout.Duration(),
	})
	p := pipeline.New(registry, rt, rn, store, bus)

	// Watches dispatch through the same pipeline as CLI requests.
	watcher := watch.New(cfg.Watches, bus, func(ctx context.Context, wc config.WatchConfig, inputs []string) {
		_, err := p.Execute(ctx, router.Request{
			Query:  wc.Query,
			Inputs: inputs,
			Skill:  wc.Skill,
		}, nil)
		if err != nil {
			slog.Error("watch run failed", "watch", wc.Name, "error", err)
		}
	})
	watcher.Start(ctx)
	defer watcher.Stop()

	hb := heartbeat.NewWriter(filepath.Join(config.BioclawPath(), "heartbeat.json"))
	hb.Start()
	defer hb.Stop()

	server := gateway.NewServer(bus, registry, store, storeIface, rt, cfg.Gateway.Host, cfg.Gateway.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
