package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	content := `{
	// This is a JSONC comment
	"gateway": {
		"host": "0.0.0.0",
		"port": 9999
	},
	"skills": {
		"dirs": ["/opt/bioclaw/skills"]
	},
	"runner": {
		"timeout": "5m"
	},
	"audit": {
		"db_path": "${{ .Env.BIOCLAW_AUDIT_DB }}"
	},
	"watches": [
		{
			"name": "nightly-qc",
			"cron": "0 2 * * *",
			"glob": "/data/incoming/**/*.fastq.gz",
			"query": "run qc on new sequencing data"
		}
	]
}`

	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("BIOCLAW_AUDIT_DB", "/var/lib/bioclaw/audit.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Gateway.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Gateway.Host)
	}
	if cfg.Gateway.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Gateway.Port)
	}
	if len(cfg.Skills.Dirs) != 1 || cfg.Skills.Dirs[0] != "/opt/bioclaw/skills" {
		t.Errorf("unexpected skills dirs: %v", cfg.Skills.Dirs)
	}
	if cfg.Runner.Timeout.Duration() != 5*time.Minute {
		t.Errorf("expected 5m timeout, got %s", cfg.Runner.Timeout.Duration())
	}
	if cfg.Audit.DBPath != "/var/lib/bioclaw/audit.db" {
		t.Errorf("expected env-expanded db path, got %s", cfg.Audit.DBPath)
	}
	if len(cfg.Watches) != 1 || cfg.Watches[0].Name != "nightly-qc" {
		t.Errorf("unexpected watches: %+v", cfg.Watches)
	}
}

func TestLoadDefaults(t *testing.T) {
	content := `{}`
	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Gateway.Host != "127.0.0.1" {
		t.Errorf("expected default host 127.0.0.1, got %s", cfg.Gateway.Host)
	}
	if cfg.Gateway.Port != 18640 {
		t.Errorf("expected default port 18640, got %d", cfg.Gateway.Port)
	}
	if cfg.Events.BufferSize != 1024 {
		t.Errorf("expected default buffer size 1024, got %d", cfg.Events.BufferSize)
	}
	if cfg.Runner.Timeout.Duration() != 30*time.Minute {
		t.Errorf("expected default timeout 30m, got %s", cfg.Runner.Timeout.Duration())
	}
	if cfg.Runner.ShellCmd != "sh" {
		t.Errorf("expected default shell sh, got %s", cfg.Runner.ShellCmd)
	}
	if len(cfg.Skills.Dirs) == 0 {
		t.Error("expected default skills dir")
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.jsonc"))
	if err != nil {
		t.Fatalf("missing config should yield defaults, got %v", err)
	}
	if cfg.Gateway.Port != 18640 {
		t.Errorf("expected default port, got %d", cfg.Gateway.Port)
	}
}
