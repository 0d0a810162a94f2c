package config

import "time"

// Config is the root configuration for bioclaw.
type Config struct {
	Gateway GatewayConfig `json:"gateway"`
	Events  EventsConfig  `json:"events"`
	Skills  SkillsConfig  `json:"skills"`
	Runner  RunnerConfig  `json:"runner"`
	Audit   AuditConfig   `json:"audit"`
	Watches []WatchConfig `json:"watches"`
}

// SkillsConfig configures the skill system.
type SkillsConfig struct {
	Dirs    []string `json:"dirs"`    // skill directories (default: [$BIOCLAW_PATH/skills])
	Enabled []string `json:"enabled"` // enabled skill names (empty = all)
}

// GatewayConfig holds the gateway server settings.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	BufferSize int `json:"buffer_size"`
}

// RunnerConfig holds skill execution settings.
type RunnerConfig struct {
	Timeout  Duration `json:"timeout"`   // per-command timeout (default: 30m)
	RunsDir  string   `json:"runs_dir"`  // where run directories live (default: $BIOCLAW_PATH/runs)
	ShellCmd string   `json:"shell_cmd"` // shell used to run skill commands (default: sh)
}

// AuditConfig holds audit trail settings.
type AuditConfig struct {
	DBPath string `json:"db_path"` // SQLite database (default: $BIOCLAW_PATH/audit.db)
	LogDir string `json:"log_dir"` // JSONL event logs (default: $BIOCLAW_PATH/logs)
}

// WatchConfig declares a scheduled analysis over a file glob.
type WatchConfig struct {
	Name  string `json:"name"`
	Cron  string `json:"cron"`  // 5-field cron expression
	Glob  string `json:"glob"`  // doublestar pattern for input files
	Query string `json:"query"` // routed like a user query (optional if skill set)
	Skill string `json:"skill"` // explicit skill override (optional)
}

// Duration wraps time.Duration for JSON unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	// Remove quotes
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}
