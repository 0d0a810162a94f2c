package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bioclaw/bioclaw/internal/config"
	"github.com/bioclaw/bioclaw/internal/events"
)

func TestParseCron(t *testing.T) {
	expr, err := ParseCron("0 6 * * *")
	if err != nil {
		t.Fatalf("ParseCron: %v", err)
	}

	at := time.Date(2026, 3, 10, 6, 0, 30, 0, time.UTC)
	if !expr.Matches(at) {
		t.Errorf("expected 06:00 to match %q", expr)
	}
	if expr.Matches(at.Add(time.Minute)) {
		t.Errorf("expected 06:01 not to match %q", expr)
	}

	next := expr.Next(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	if next.Hour() != 6 || next.Day() != 11 {
		t.Errorf("unexpected next activation: %v", next)
	}
}

func TestParseCronInvalid(t *testing.T) {
	if _, err := ParseCron("not a cron"); err == nil {
		t.Fatal("expected error for invalid expression")
	}
}

func TestWatcherSkipsInvalidCron(t *testing.T) {
	w := New([]config.WatchConfig{
		{Name: "bad", Cron: "???"},
		{Name: "good", Cron: "* * * * *", Glob: "/tmp/none/*.vcf"},
	}, nil, nil)

	if got := len(w.Entries()); got != 1 {
		t.Fatalf("expected 1 entry, got %d", got)
	}
	if w.Entries()[0].Name != "good" {
		t.Errorf("unexpected entry: %+v", w.Entries()[0])
	}
}

func TestWatcherDispatchesNewFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "cohort.vcf"))
	writeFile(t, filepath.Join(dir, "notes.txt"))

	bus := events.NewBus(16)
	defer bus.Close()

	var mu sync.Mutex
	var gotWatch string
	var gotInputs []string
	done := make(chan struct{})

	w := New([]config.WatchConfig{{
		Name:  "incoming-vcf",
		Cron:  "* * * * *",
		Glob:  filepath.Join(dir, "*.vcf"),
		Query: "annotate variants",
	}}, bus, func(ctx context.Context, wc config.WatchConfig, inputs []string) {
		mu.Lock()
		gotWatch = wc.Name
		gotInputs = inputs
		mu.Unlock()
		close(done)
	})

	ch, unsub := bus.SubscribeChan(4)
	defer unsub()
	w.Check(context.Background(), time.Now())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch not called")
	}

	mu.Lock()
	defer mu.Unlock()
	if gotWatch != "incoming-vcf" {
		t.Errorf("unexpected watch name %q", gotWatch)
	}
	if len(gotInputs) != 1 || filepath.Base(gotInputs[0]) != "cohort.vcf" {
		t.Errorf("unexpected inputs %v", gotInputs)
	}

	select {
	case e := <-ch:
		if string(e.Type) != "watch.triggered" {
			t.Errorf("unexpected event type %s", e.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no watch.triggered event")
	}
}

func TestWatcherIgnoresSeenFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "cohort.vcf"))

	var mu sync.Mutex
	calls := 0

	w := New([]config.WatchConfig{{
		Name: "incoming",
		Cron: "* * * * *",
		Glob: filepath.Join(dir, "*.vcf"),
	}}, nil, func(ctx context.Context, wc config.WatchConfig, inputs []string) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	w.Check(context.Background(), time.Now())
	// Second check well past cooldown: same file, no dispatch.
	w.mu.Lock()
	w.entries[0].lastRun = time.Now().Add(-2 * DefaultCooldown)
	w.mu.Unlock()
	w.Check(context.Background(), time.Now())

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected 1 dispatch, got %d", calls)
	}
}

func TestWatcherCooldown(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.fastq"))

	var mu sync.Mutex
	calls := 0

	w := New([]config.WatchConfig{{
		Name: "seq",
		Cron: "* * * * *",
		Glob: filepath.Join(dir, "*.fastq"),
	}}, nil, func(ctx context.Context, wc config.WatchConfig, inputs []string) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	w.Check(context.Background(), time.Now())
	writeFile(t, filepath.Join(dir, "b.fastq"))
	// Still inside the cooldown window, new file or not.
	w.Check(context.Background(), time.Now())

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected 1 dispatch inside cooldown, got %d", calls)
	}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("data\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}
