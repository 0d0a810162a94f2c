package demo

import (
	"bytes"
	"encoding/csv"
	"os"
	"strings"
	"testing"
)

func TestGenerateDataset(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(DefaultConfig())

	vcfPath, mapPath, err := gen.Generate(dir)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, err := os.ReadFile(vcfPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")

	if !strings.HasPrefix(lines[0], "##fileformat=VCFv4.3") {
		t.Errorf("bad VCF header: %q", lines[0])
	}

	var header string
	variants := 0
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "#CHROM"):
			header = l
		case !strings.HasPrefix(l, "#"):
			variants++
		}
	}
	if variants != 500 {
		t.Errorf("expected 500 variants, got %d", variants)
	}

	cols := strings.Split(header, "\t")
	if got := len(cols) - 9; got != 50 {
		t.Errorf("expected 50 samples, got %d", got)
	}
	if cols[9] != "AFR_001" || cols[len(cols)-1] != "SAS_008" {
		t.Errorf("unexpected sample ordering: first=%s last=%s", cols[9], cols[len(cols)-1])
	}

	f, err := os.Open(mapPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 51 {
		t.Errorf("expected header + 50 rows, got %d", len(rows))
	}
	if rows[0][0] != "sample_id" {
		t.Errorf("unexpected csv header: %v", rows[0])
	}
	for _, row := range rows[1:] {
		if !strings.HasPrefix(row[0], row[1]) {
			t.Errorf("sample %s does not carry population prefix %s", row[0], row[1])
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()

	if _, _, err := NewGenerator(DefaultConfig()).Generate(dirA); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewGenerator(DefaultConfig()).Generate(dirB); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"demo_populations.vcf", "demo_population_map.csv"} {
		a, err := os.ReadFile(dirA + "/" + name)
		if err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(dirB + "/" + name)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(a, b) {
			t.Errorf("%s differs between identical seeds", name)
		}
	}
}

func TestGenotypeFrequencies(t *testing.T) {
	g := NewGenerator(Config{Seed: 7, SNPs: 10, Chrom: "22", StartPos: 100, Spacing: 10})

	hom := 0
	for i := 0; i < 2000; i++ {
		if g.drawGenotype(0.05) == "1/1" {
			hom++
		}
	}
	// At AF 0.05 the expected 1/1 rate is 0.25%; allow generous slack.
	if hom > 30 {
		t.Errorf("too many homozygous alt calls at low AF: %d", hom)
	}
}
