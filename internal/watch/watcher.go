package watch

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bioclaw/bioclaw/internal/config"
	"github.com/bioclaw/bioclaw/internal/events"
)

// DefaultCooldown is the minimum interval between two triggers of the same watch.
const DefaultCooldown = 60 * time.Second

// Dispatch runs an analysis for the files a watch picked up.
type Dispatch func(ctx context.Context, w config.WatchConfig, inputs []string)

// entry is the runtime state for one configured watch.
type entry struct {
	cfg     config.WatchConfig
	cron    *CronExpr
	lastRun time.Time
	seen    map[string]time.Time // path -> mod time already dispatched
}

// Watcher fires configured analyses on a cron schedule, globbing each watch's
// input pattern and dispatching only files that are new or modified since the
// last trigger.
type Watcher struct {
	bus      *events.Bus
	dispatch Dispatch

	mu      sync.Mutex
	entries []*entry

	done chan struct{}
}

// New builds a Watcher from the config-declared watches. Watches with invalid
// cron expressions are skipped with a warning.
func New(watches []config.WatchConfig, bus *events.Bus, dispatch Dispatch) *Watcher {
	w := &Watcher{
		bus:      bus,
		dispatch: dispatch,
		done:     make(chan struct{}),
	}
	for _, wc := range watches {
		expr, err := ParseCron(wc.Cron)
		if err != nil {
			slog.Warn("watch: invalid cron", "watch", wc.Name, "error", err)
			continue
		}
		w.entries = append(w.entries, &entry{
			cfg:  wc,
			cron: expr,
			seen: make(map[string]time.Time),
		})
	}
	return w
}

// Start begins the minute ticker.
func (w *Watcher) Start(ctx context.Context) {
	slog.Info("watcher started", "watches", len(w.entries))
	go w.loop(ctx)
}

// Stop halts the watcher.
func (w *Watcher) Stop() {
	close(w.done)
	slog.Info("watcher stopped")
}

// Entries returns a snapshot of the configured watches.
func (w *Watcher) Entries() []config.WatchConfig {
	w.mu.Lock()
	defer w.mu.Unlock()

	result := make([]config.WatchConfig, 0, len(w.entries))
	for _, e := range w.entries {
		result = append(result, e.cfg)
	}
	return result
}

func (w *Watcher) loop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			w.Check(ctx, now)
		}
	}
}

// Check evaluates every watch against the given time and dispatches those due.
func (w *Watcher) Check(ctx context.Context, now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, e := range w.entries {
		if !e.cron.Matches(now) {
			continue
		}
		if now.Sub(e.lastRun) < DefaultCooldown {
			continue
		}
		w.trigger(ctx, e)
	}
}

// trigger globs the watch pattern and dispatches unseen files. Caller holds w.mu.
func (w *Watcher) trigger(ctx context.Context, e *entry) {
	matches, err := doublestar.FilepathGlob(e.cfg.Glob)
	if err != nil {
		slog.Warn("watch: glob failed", "watch", e.cfg.Name, "glob", e.cfg.Glob, "error", err)
		return
	}

	var inputs []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		if prev, ok := e.seen[m]; ok && !info.ModTime().After(prev) {
			continue
		}
		e.seen[m] = info.ModTime()
		inputs = append(inputs, m)
	}

	if len(inputs) == 0 {
		return
	}

	e.lastRun = time.Now()
	slog.Info("watch triggered", "watch", e.cfg.Name, "files", len(inputs))

	if w.bus != nil {
		w.bus.Publish(events.NewTypedEvent(events.SourceWatch, events.WatchTriggeredPayload{
			Name:   e.cfg.Name,
			Inputs: inputs,
		}))
	}

	if w.dispatch != nil {
		cfg := e.cfg
		go w.dispatch(ctx, cfg, inputs)
	}
}
