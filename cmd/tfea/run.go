package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tfea/adapters/regions"
	"tfea/app"
	"tfea/domain/core"
	"tfea/internal/config"
	"tfea/internal/container"
	"tfea/ports"
)

type runOptions struct {
	envFile      string
	regionDir    string
	pattern      string
	outputDir    string
	name         string
	seed         int64
	inner        float64
	outer        float64
	permutations int
	fdrCutoff    float64
	pvalCutoff   float64
	workers      int
	trialWorkers int
	traces       bool
	persist      bool
	verify       bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [region-files...]",
		Short: "Score every motif and write the results workbook and reports",
		Long: `Score motifs from per-motif ranked distance files (<motif>.bed).

Files are taken from the arguments, or from --regions-dir matched against
--pattern. Settings default to the TFEA_* environment variables; flags
override them.

Outputs written to --output:
  results.xlsx   Results, Skipped, Failed and Parameters sheets
  report.html    summary with significant motifs first
  results.json   run with per-motif results
  traces/        running sum, rank metric and null samples (with --traces)

With --verify the run is replayed from the same seed before outputs are
written and the command fails if any motif stream or score differs.

Example: tfea run --regions-dir ./ranked --output ./out --seed 7 --permutations 1000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runEnrichment(cmd.Context(), cfg, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.envFile, "env-file", "", "Read settings from this env file instead of .env")
	flags.StringVar(&opts.regionDir, "regions-dir", "", "Directory of per-motif region files")
	flags.StringVar(&opts.pattern, "pattern", "*.bed", "Glob for region files inside --regions-dir")
	flags.StringVarP(&opts.outputDir, "output", "o", "", "Output directory")
	flags.StringVar(&opts.name, "name", "", "Run name")
	flags.Int64Var(&opts.seed, "seed", 42, "Random seed for the permutation null")
	flags.Float64Var(&opts.inner, "inner-window", 150, "Close-hit distance threshold (h)")
	flags.Float64Var(&opts.outer, "outer-window", 1500, "Exclusion distance threshold (H)")
	flags.IntVar(&opts.permutations, "permutations", 1000, "Null samples per motif")
	flags.Float64Var(&opts.fdrCutoff, "fdr", 0.1, "FDR significance cutoff")
	flags.Float64Var(&opts.pvalCutoff, "pval-cutoff", 0.01, "Region p-value cutoff marked in traces")
	flags.IntVar(&opts.workers, "workers", 0, "Motifs scored concurrently")
	flags.IntVar(&opts.trialWorkers, "trial-workers", 1, "Permutation trials per motif run concurrently")
	flags.BoolVar(&opts.traces, "traces", false, "Write per-motif trace files")
	flags.BoolVar(&opts.persist, "persist", false, "Store the run in DATABASE_URL")
	flags.BoolVar(&opts.verify, "verify", false, "Replay the run and fail unless it reproduces the same fingerprint")

	return cmd
}

// loadRunConfig reads the environment and applies explicitly set flags
func loadRunConfig(cmd *cobra.Command, opts *runOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.envFile != "" {
		cfg, err = config.LoadFile(opts.envFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("regions-dir") {
		cfg.Paths.RegionDir = opts.regionDir
	}
	if flags.Changed("pattern") {
		cfg.Paths.RegionPattern = opts.pattern
	}
	if flags.Changed("output") {
		cfg.Paths.OutputDir = opts.outputDir
	}
	if flags.Changed("name") {
		cfg.Paths.RunName = opts.name
	}
	if flags.Changed("seed") {
		cfg.Engine.Seed = opts.seed
	}
	if flags.Changed("inner-window") {
		cfg.Engine.InnerWindow = opts.inner
	}
	if flags.Changed("outer-window") {
		cfg.Engine.OuterWindow = opts.outer
	}
	if flags.Changed("permutations") {
		cfg.Engine.Permutations = opts.permutations
	}
	if flags.Changed("fdr") {
		cfg.Engine.FDRCutoff = opts.fdrCutoff
	}
	if flags.Changed("pval-cutoff") {
		cfg.Engine.PValueCutoff = opts.pvalCutoff
	}
	if flags.Changed("workers") {
		cfg.Engine.Workers = opts.workers
	}
	if flags.Changed("trial-workers") {
		cfg.Engine.TrialWorkers = opts.trialWorkers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func regionSource(cfg *config.Config, files []string) (ports.RegionSource, error) {
	if len(files) > 0 {
		return regions.NewFileSource(files...)
	}
	if cfg.Paths.RegionDir == "" {
		return nil, fmt.Errorf("no region files given: pass files or set --regions-dir / TFEA_REGION_DIR")
	}
	return regions.NewDirSource(cfg.Paths.RegionDir, cfg.Paths.RegionPattern)
}

func runEnrichment(ctx context.Context, cfg *config.Config, opts *runOptions, files []string) error {
	source, err := regionSource(cfg, files)
	if err != nil {
		return err
	}

	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())

	if opts.persist {
		if cfg.Database.URL == "" {
			return fmt.Errorf("--persist requires DATABASE_URL")
		}
		if err := c.ConnectDatabase(ctx); err != nil {
			return err
		}
	}

	fmt.Printf("🔬 Scoring motifs (seed %d, %d permutations, windows %g/%g)...\n",
		cfg.Engine.Seed, cfg.Engine.Permutations, cfg.Engine.InnerWindow, cfg.Engine.OuterWindow)

	req := app.BatchRequest{
		Name:       cfg.Paths.RunName,
		Source:     source,
		Seed:       cfg.Engine.Seed,
		KeepTraces: opts.traces,
	}
	report, err := c.EnrichmentService.Run(ctx, req)
	if err != nil {
		return err
	}

	if opts.verify {
		if err := c.EnrichmentService.Verify(ctx, req, report.Run.Fingerprint); err != nil {
			if core.IsDeterminismError(err) {
				return fmt.Errorf("determinism check failed: %w", err)
			}
			return err
		}
		fmt.Printf("🔁 Replay reproduced fingerprint %s\n", report.Run.Fingerprint)
	}

	written, err := writeOutputs(cfg.Paths.OutputDir, report)
	if err != nil {
		return err
	}

	printSummary(os.Stdout, report.Run)
	fmt.Printf("\n📁 Outputs:\n")
	for _, path := range written {
		fmt.Printf("  %s\n", path)
	}
	return nil
}
