package skills

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()

	skill := &Skill{
		Name:        "seq-wrangler",
		Description: "FASTQ/BAM quality control and alignment",
		Type:        SkillTypeSimple,
		Status:      StatusMVP,
		Command:     "seq_qc.sh ${input}",
	}

	if err := r.Register(skill); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := r.Get("seq-wrangler")
	if got == nil {
		t.Fatal("expected skill, got nil")
	}
	if got.Name != "seq-wrangler" {
		t.Errorf("expected name 'seq-wrangler', got %q", got.Name)
	}
}

func TestRegistry_DuplicateRegister(t *testing.T) {
	r := NewRegistry()

	skill := &Skill{
		Name:        "dup",
		Description: "A skill",
		Type:        SkillTypeSimple,
		Status:      StatusMVP,
		Command:     "true",
	}

	if err := r.Register(skill); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := r.Register(skill)
	if err == nil {
		t.Fatal("expected error for duplicate registration")
	}
}

func TestRegistry_GetMissing(t *testing.T) {
	r := NewRegistry()
	if r.Get("nope") != nil {
		t.Error("expected nil for missing skill")
	}
}

func TestRegistry_AllAndNames(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"vcf-annotator", "equity-scorer", "lit-synthesizer"} {
		_ = r.Register(&Skill{
			Name:        name,
			Description: "desc",
			Type:        SkillTypeSimple,
			Status:      StatusMVP,
			Command:     "true",
		})
	}

	all := r.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 skills, got %d", len(all))
	}
	// Sorted
	if all[0].Name != "equity-scorer" || all[1].Name != "lit-synthesizer" || all[2].Name != "vcf-annotator" {
		t.Errorf("unexpected order: %v, %v, %v", all[0].Name, all[1].Name, all[2].Name)
	}

	names := r.Names()
	if len(names) != 3 {
		t.Fatalf("expected 3 names, got %d", len(names))
	}
	if names[0] != "equity-scorer" {
		t.Errorf("unexpected name order: %v", names)
	}
}

func TestRegistry_LoadDir(t *testing.T) {
	dir := t.TempDir()

	// A valid JSONC skill
	skillJSON := `{
		"name": "lit-synthesizer",
		"description": "Summarize literature for a gene or variant",
		"command": "lit_synth.sh",
		"triggers": { "keywords": ["literature", "pubmed", "papers"] }
	}`
	if err := os.WriteFile(filepath.Join(dir, "lit-synthesizer.jsonc"), []byte(skillJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	// A valid SKILL.md skill in a subdirectory
	skillDir := filepath.Join(dir, "vcf-annotator")
	if err := os.MkdirAll(skillDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(sampleSkillMD), 0o644); err != nil {
		t.Fatal(err)
	}

	// An invalid skill (missing name)
	invalidJSON := `{ "description": "bad" }`
	if err := os.WriteFile(filepath.Join(dir, "invalid.jsonc"), []byte(invalidJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	// A subdirectory without SKILL.md (should be skipped)
	if err := os.MkdirAll(filepath.Join(dir, "notes"), 0o755); err != nil {
		t.Fatal(err)
	}

	// A non-skill file (should be ignored)
	if err := os.WriteFile(filepath.Join(dir, "readme.md"), []byte("# skills"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadDir(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Get("lit-synthesizer") == nil {
		t.Error("expected lit-synthesizer to be loaded")
	}
	if r.Get("vcf-annotator") == nil {
		t.Error("expected vcf-annotator to be loaded from SKILL.md")
	}
	if len(r.All()) != 2 {
		t.Errorf("expected 2 skills, got %d", len(r.All()))
	}
}

func TestRegistry_Filter(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"a", "b", "c"} {
		_ = r.Register(&Skill{Name: name, Description: "d", Type: SkillTypeSimple, Status: StatusMVP, Command: "true"})
	}

	r.Filter([]string{"a", "c"})

	if r.Get("b") != nil {
		t.Error("expected b to be filtered out")
	}
	if len(r.All()) != 2 {
		t.Errorf("expected 2 skills after filter, got %d", len(r.All()))
	}

	// Empty filter keeps everything
	r.Filter(nil)
	if len(r.All()) != 2 {
		t.Errorf("empty filter should be a no-op, got %d", len(r.All()))
	}
}
