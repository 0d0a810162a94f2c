// Package demo generates a deterministic synthetic multi-population VCF
// dataset plus a companion population map, suitable for exercising the
// analysis skills without real genomes.
package demo

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

// Population describes one superpopulation in the synthetic cohort.
type Population struct {
	Code      string
	Label     string
	N         int
	Countries []string
}

// Populations is the cohort design, in fixed order so a given seed always
// yields the same dataset. Sample counts are deliberately imbalanced: the
// European group dominates, mirroring the skew in real reference panels.
var Populations = []Population{
	{Code: "AFR", Label: "African", N: 8, Countries: []string{"Nigeria", "Kenya", "Ghana", "South Africa"}},
	{Code: "AMR", Label: "Admixed American", N: 5, Countries: []string{"Mexico", "Colombia", "Peru", "Brazil"}},
	{Code: "EAS", Label: "East Asian", N: 7, Countries: []string{"China", "Japan", "Korea", "Vietnam"}},
	{Code: "EUR", Label: "European", N: 22, Countries: []string{"UK", "Germany", "France", "Spain", "Italy", "Sweden", "Poland", "Ireland"}},
	{Code: "SAS", Label: "South Asian", N: 8, Countries: []string{"India", "Pakistan", "Bangladesh", "Sri Lanka"}},
}

// Config controls dataset generation.
type Config struct {
	Seed     int64
	SNPs     int
	Chrom    string
	StartPos int
	Spacing  int
}

// DefaultConfig returns the standard demo dataset parameters: 500 SNPs on
// chr22 at 500bp spacing.
func DefaultConfig() Config {
	return Config{
		Seed:     42,
		SNPs:     500,
		Chrom:    "22",
		StartPos: 16_000_000,
		Spacing:  500,
	}
}

// Generator produces the synthetic dataset.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// NewGenerator creates a generator for the given config.
func NewGenerator(cfg Config) *Generator {
	if cfg.SNPs == 0 {
		cfg = DefaultConfig()
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// Generate writes demo_populations.vcf and demo_population_map.csv into dir
// and returns their paths.
func (g *Generator) Generate(dir string) (vcfPath, mapPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}

	afs := g.populationAFs()
	samples := g.samples()

	vcfPath = filepath.Join(dir, "demo_populations.vcf")
	if err := g.writeVCF(vcfPath, samples, afs); err != nil {
		return "", "", err
	}

	mapPath = filepath.Join(dir, "demo_population_map.csv")
	if err := g.writePopulationMap(mapPath, samples); err != nil {
		return "", "", err
	}
	return vcfPath, mapPath, nil
}

// populationAFs draws per-population allele frequencies for each SNP.
// Three SNP classes: common shared (40%), population-differentiated (45%,
// modelling out-of-Africa drift plus American admixture), and
// population-private (15%).
func (g *Generator) populationAFs() map[string][]float64 {
	afs := make(map[string][]float64, len(Populations))
	for _, p := range Populations {
		afs[p.Code] = make([]float64, 0, g.cfg.SNPs)
	}

	for i := 0; i < g.cfg.SNPs; i++ {
		r := g.rng.Float64()
		switch {
		case r < 0.40:
			base := g.uniform(0.10, 0.50)
			for _, p := range Populations {
				jitter := g.rng.NormFloat64() * 0.08
				afs[p.Code] = append(afs[p.Code], clampAF(base+jitter))
			}

		case r < 0.85:
			afrAF := g.uniform(0.15, 0.75)
			eurAF := clampAF(afrAF + g.uniform(-0.35, -0.05))
			for _, p := range Populations {
				var af float64
				switch p.Code {
				case "AFR":
					af = afrAF
				case "EUR":
					af = eurAF
				case "EAS":
					af = clampAF(afrAF + g.uniform(-0.40, -0.10))
				case "SAS":
					af = clampAF(afrAF + g.uniform(-0.25, 0.05))
				case "AMR":
					indigenous := g.uniform(0.05, 0.60)
					af = clampAF(0.25*afrAF + 0.35*eurAF + 0.40*indigenous)
				}
				afs[p.Code] = append(afs[p.Code], af)
			}

		default:
			focal := Populations[g.rng.Intn(len(Populations))].Code
			for _, p := range Populations {
				if p.Code == focal {
					afs[p.Code] = append(afs[p.Code], g.uniform(0.20, 0.55))
				} else {
					afs[p.Code] = append(afs[p.Code], g.uniform(0.00, 0.02))
				}
			}
		}
	}
	return afs
}

// samples returns sample IDs with population prefixes (AFR_001...).
func (g *Generator) samples() []string {
	var samples []string
	for _, p := range Populations {
		for i := 1; i <= p.N; i++ {
			samples = append(samples, fmt.Sprintf("%s_%03d", p.Code, i))
		}
	}
	return samples
}

// drawGenotype draws a diploid genotype under Hardy-Weinberg equilibrium.
func (g *Generator) drawGenotype(af float64) string {
	r := g.rng.Float64()
	p := 1 - af
	switch {
	case r < p*p:
		return "0/0"
	case r < p*p+2*p*af:
		return "0/1"
	default:
		return "1/1"
	}
}

func (g *Generator) writeVCF(path string, samples []string, afs map[string][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create vcf: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "##fileformat=VCFv4.3")
	fmt.Fprintln(w, "##source=bioclaw_demo_generator")
	fmt.Fprintf(w, "##contig=<ID=%s,length=51304566>\n", g.cfg.Chrom)
	fmt.Fprintln(w, `##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`)
	fmt.Fprintln(w, `##INFO=<ID=AC,Number=A,Type=Integer,Description="Allele count">`)
	fmt.Fprintln(w, `##INFO=<ID=AN,Number=1,Type=Integer,Description="Total alleles">`)

	fmt.Fprint(w, "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT")
	for _, s := range samples {
		fmt.Fprint(w, "\t", s)
	}
	fmt.Fprintln(w)

	bases := []string{"A", "C", "G", "T"}
	for idx := 0; idx < g.cfg.SNPs; idx++ {
		pos := g.cfg.StartPos + idx*g.cfg.Spacing
		ref := bases[g.rng.Intn(len(bases))]
		alt := ref
		for alt == ref {
			alt = bases[g.rng.Intn(len(bases))]
		}

		ac, an := 0, 0
		genotypes := make([]string, 0, len(samples))
		for _, sample := range samples {
			pop := sample[:3]
			gt := g.drawGenotype(afs[pop][idx])
			genotypes = append(genotypes, gt)
			if gt == "0/1" {
				ac++
			} else if gt == "1/1" {
				ac += 2
			}
			an += 2
		}

		fmt.Fprintf(w, "%s\t%d\trs_demo_%04d\t%s\t%s\t.\tPASS\tAC=%d;AN=%d\tGT",
			g.cfg.Chrom, pos, idx+1, ref, alt, ac, an)
		for _, gt := range genotypes {
			fmt.Fprint(w, "\t", gt)
		}
		fmt.Fprintln(w)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("write vcf: %w", err)
	}
	return f.Close()
}

func (g *Generator) writePopulationMap(path string, samples []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create population map: %w", err)
	}
	defer f.Close()

	byCode := make(map[string]Population, len(Populations))
	for _, p := range Populations {
		byCode[p.Code] = p
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"sample_id", "population", "superpopulation", "country"}); err != nil {
		return err
	}
	for _, sample := range samples {
		p := byCode[sample[:3]]
		country := p.Countries[g.rng.Intn(len(p.Countries))]
		if err := w.Write([]string{sample, p.Code, p.Label, country}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write population map: %w", err)
	}
	return f.Close()
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func clampAF(af float64) float64 {
	if af < 0.01 {
		return 0.01
	}
	if af > 0.99 {
		return 0.99
	}
	return af
}
