package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeSkillFixture(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	skillsDir := filepath.Join(dir, "skills")
	if err := os.MkdirAll(skillsDir, 0o755); err != nil {
		t.Fatalf("mkdir skills dir: %v", err)
	}

	skill := `{
  "name": "vcf-annotator",
  "description": "Annotate VCF variants",
  "type": "simple",
  "status": "mvp",
  "version": 1,
  "command": "echo annotated",
  "triggers": {
    "extensions": [".vcf", ".vcf.gz"],
    "keywords": ["annotate"]
  }
}`
	if err := os.WriteFile(filepath.Join(skillsDir, "vcf-annotator.jsonc"), []byte(skill), 0o644); err != nil {
		t.Fatalf("write skill: %v", err)
	}

	cfgPath := filepath.Join(dir, "bioclaw.jsonc")
	cfg := `{"skills": {"dirs": ["` + skillsDir + `"]}}`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func TestSkillsShowVersionedSkill(t *testing.T) {
	cfgPath := writeSkillFixture(t)

	cmd := NewRootCommand()
	err := cmd.Run(context.Background(), []string{"bioclaw", "--config", cfgPath, "skills", "show", "vcf-annotator"})
	if err != nil {
		t.Fatalf("skills show: %v", err)
	}
}

func TestSkillsShowUnknownSkill(t *testing.T) {
	cfgPath := writeSkillFixture(t)

	cmd := NewRootCommand()
	err := cmd.Run(context.Background(), []string{"bioclaw", "--config", cfgPath, "skills", "show", "nope"})
	if err == nil {
		t.Fatal("expected error for unknown skill")
	}
}

func TestSkillsList(t *testing.T) {
	cfgPath := writeSkillFixture(t)

	cmd := NewRootCommand()
	err := cmd.Run(context.Background(), []string{"bioclaw", "--config", cfgPath, "skills", "list"})
	if err != nil {
		t.Fatalf("skills list: %v", err)
	}
}
