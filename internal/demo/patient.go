package demo

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

// PanelSNP is one variant in the nutrigenomics panel: its locus (GRCh37),
// the non-risk base, the risk base, and the global risk allele frequency
// (approximate gnomAD v4 values).
type PanelSNP struct {
	RSID  string
	Chrom string
	Pos   string
	Ref   string
	Risk  string
	Freq  float64
}

// NutrigxPanel is the SNP panel consumed by the nutrigx-advisor skill, in
// fixed order so a given seed always yields the same patient file.
var NutrigxPanel = []PanelSNP{
	{RSID: "rs1801133", Chrom: "1", Pos: "11854476", Ref: "C", Risk: "T", Freq: 0.32},
	{RSID: "rs1801131", Chrom: "1", Pos: "11856378", Ref: "A", Risk: "C", Freq: 0.20},
	{RSID: "rs1805087", Chrom: "1", Pos: "237048500", Ref: "A", Risk: "G", Freq: 0.17},
	{RSID: "rs2228570", Chrom: "12", Pos: "48272895", Ref: "T", Risk: "C", Freq: 0.42},
	{RSID: "rs731236", Chrom: "12", Pos: "48239835", Ref: "T", Risk: "C", Freq: 0.38},
	{RSID: "rs4588", Chrom: "4", Pos: "72608790", Ref: "C", Risk: "A", Freq: 0.28},
	{RSID: "rs174546", Chrom: "11", Pos: "61327359", Ref: "T", Risk: "C", Freq: 0.47},
	{RSID: "rs1535", Chrom: "11", Pos: "61311797", Ref: "G", Risk: "A", Freq: 0.38},
	{RSID: "rs953413", Chrom: "6", Pos: "11044620", Ref: "A", Risk: "G", Freq: 0.44},
	{RSID: "rs429358", Chrom: "19", Pos: "45411941", Ref: "T", Risk: "C", Freq: 0.15},
	{RSID: "rs7412", Chrom: "19", Pos: "45412079", Ref: "C", Risk: "T", Freq: 0.08},
	{RSID: "rs7501331", Chrom: "16", Pos: "81274254", Ref: "C", Risk: "T", Freq: 0.24},
	{RSID: "rs12934922", Chrom: "16", Pos: "81271111", Ref: "A", Risk: "T", Freq: 0.42},
	{RSID: "rs33972313", Chrom: "5", Pos: "110032987", Ref: "C", Risk: "T", Freq: 0.05},
	{RSID: "rs1256335", Chrom: "1", Pos: "21882173", Ref: "C", Risk: "T", Freq: 0.35},
	{RSID: "rs9939609", Chrom: "16", Pos: "53820527", Ref: "T", Risk: "A", Freq: 0.43},
	{RSID: "rs7903146", Chrom: "10", Pos: "114758349", Ref: "C", Risk: "T", Freq: 0.29},
	{RSID: "rs1801282", Chrom: "3", Pos: "12393125", Ref: "C", Risk: "G", Freq: 0.12},
	{RSID: "rs662799", Chrom: "11", Pos: "116700773", Ref: "T", Risk: "C", Freq: 0.09},
	{RSID: "rs762551", Chrom: "15", Pos: "75041917", Ref: "A", Risk: "C", Freq: 0.31},
	{RSID: "rs4410790", Chrom: "7", Pos: "17381394", Ref: "C", Risk: "T", Freq: 0.41},
	{RSID: "rs1229984", Chrom: "4", Pos: "100239319", Ref: "G", Risk: "A", Freq: 0.05},
	{RSID: "rs671", Chrom: "12", Pos: "111803962", Ref: "G", Risk: "A", Freq: 0.00},
	{RSID: "rs4988235", Chrom: "2", Pos: "136616754", Ref: "G", Risk: "A", Freq: 0.35},
	{RSID: "rs4880", Chrom: "6", Pos: "160113872", Ref: "T", Risk: "C", Freq: 0.47},
	{RSID: "rs1050450", Chrom: "3", Pos: "49394834", Ref: "C", Risk: "T", Freq: 0.28},
	{RSID: "rs1800566", Chrom: "16", Pos: "69748869", Ref: "C", Risk: "T", Freq: 0.22},
	{RSID: "rs4680", Chrom: "22", Pos: "19951271", Ref: "G", Risk: "A", Freq: 0.49},
}

// GeneratePatient writes one synthetic 23andMe-format raw genotype file
// (patient_<seed>.csv) into dir and returns its path. Genotypes are drawn
// under Hardy-Weinberg equilibrium from each SNP's risk allele frequency.
func GeneratePatient(dir string, seed int64) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("patient_%d.csv", seed))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create patient file: %w", err)
	}
	defer f.Close()

	rng := rand.New(rand.NewSource(seed))
	w := bufio.NewWriter(f)

	fmt.Fprintf(w, "# This data file generated by 23andMe at %s\n",
		time.Now().Format("Mon Jan 02 00:00:00 2006"))
	fmt.Fprintln(w, "# This file contains raw genotype data, including data that is not used in 23andMe reports.")
	fmt.Fprintf(w, "# SYNTHETIC DATA - generated by bioclaw seed (seed=%d)\n", seed)
	fmt.Fprintln(w, "# NOT REAL PATIENT DATA.")
	fmt.Fprintln(w, "#")
	fmt.Fprintln(w, "# rsid\tchromosome\tposition\tgenotype")

	for _, snp := range NutrigxPanel {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", snp.RSID, snp.Chrom, snp.Pos, patientGenotype(snp, rng))
	}

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("write patient file: %w", err)
	}
	return path, nil
}

// patientGenotype draws one two-base genotype: p2 homozygous ref, 2pq het
// (allele order randomized, as in real raw exports), q2 homozygous risk.
func patientGenotype(snp PanelSNP, rng *rand.Rand) string {
	q := snp.Freq
	p := 1.0 - q
	homRef := p * p
	het := 2 * p * q

	r := rng.Float64()
	switch {
	case r < homRef:
		return snp.Ref + snp.Ref
	case r < homRef+het:
		if rng.Intn(2) == 0 {
			return snp.Ref + snp.Risk
		}
		return snp.Risk + snp.Ref
	default:
		return snp.Risk + snp.Risk
	}
}
