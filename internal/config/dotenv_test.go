package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotenv(t *testing.T) {
	content := `# Reference data locations
VEP_CACHE=/refdata/vep
REF_FASTA=/refdata/GRCh38.fa

# Quoted values
ENTREZ_API_KEY="my-secret-value"
SINGLE='single-quoted'

# Spaces around =
SPACED_KEY = spaced_value

export EXPORTED_KEY=exported_value
`

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	// Clear any existing values.
	for _, k := range []string{"VEP_CACHE", "REF_FASTA", "ENTREZ_API_KEY", "SINGLE", "SPACED_KEY", "EXPORTED_KEY"} {
		os.Unsetenv(k)
	}

	if err := LoadDotenv(path); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		key, want string
	}{
		{"VEP_CACHE", "/refdata/vep"},
		{"REF_FASTA", "/refdata/GRCh38.fa"},
		{"ENTREZ_API_KEY", "my-secret-value"},
		{"SINGLE", "single-quoted"},
		{"SPACED_KEY", "spaced_value"},
		{"EXPORTED_KEY", "exported_value"},
	}
	for _, tt := range tests {
		if got := os.Getenv(tt.key); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.key, tt.want, got)
		}
	}
}

func TestLoadDotenvNoOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("VEP_CACHE=/from/dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("VEP_CACHE", "/already/set")

	if err := LoadDotenv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("VEP_CACHE"); got != "/already/set" {
		t.Errorf("existing env var was overridden: %q", got)
	}
}

func TestLoadDotenvMissingFile(t *testing.T) {
	if err := LoadDotenv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}
