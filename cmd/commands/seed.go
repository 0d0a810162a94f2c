package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/bioclaw/bioclaw/internal/demo"
)

// NewSeedCommand returns the seed subcommand.
func NewSeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Generate the synthetic multi-population demo dataset",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory",
				Value:   ".",
			},
			&cli.IntFlag{
				Name:  "snps",
				Usage: "Number of SNPs to generate",
				Value: 500,
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Random seed",
				Value: 42,
			},
			&cli.IntFlag{
				Name:  "patients",
				Usage: "Also generate N synthetic 23andMe patient files",
			},
		},
		Action: runSeed,
	}
}

func runSeed(_ context.Context, cmd *cli.Command) error {
	cfg := demo.DefaultConfig()
	cfg.SNPs = cmd.Int("snps")
	cfg.Seed = int64(cmd.Int("seed"))

	gen := demo.NewGenerator(cfg)
	vcfPath, mapPath, err := gen.Generate(cmd.String("output"))
	if err != nil {
		return fmt.Errorf("generate demo dataset: %w", err)
	}

	fmt.Println("Demo dataset written:")
	fmt.Printf("  VCF:            %s\n", vcfPath)
	fmt.Printf("  Population map: %s\n", mapPath)

	for i := 0; i < cmd.Int("patients"); i++ {
		path, err := demo.GeneratePatient(cmd.String("output"), cfg.Seed+int64(i))
		if err != nil {
			return fmt.Errorf("generate patient file: %w", err)
		}
		fmt.Printf("  Patient:        %s\n", path)
	}
	return nil
}
