package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"trajgan/gan"
	"trajgan/nn"
	"trajgan/utils"

	"golang.org/x/exp/rand"
)

// Network sizes used by the entry point.
const (
	noiseSize   = 32
	hiddenSize  = 64
	maxTrajLen  = 128
	arrayLength = 128
)

var (
	outDir  = flag.String("out", "", "directory for config and initial weight JSON (empty: do not write)")
	quiet   = flag.Bool("quiet", false, "suppress summaries and timing output")
	samples = flag.Int("samples", 1, "number of noise samples to push through generator and discriminator")
)

func main() {
	flag.Parse()
	utils.Verbose = !*quiet

	if err := run(*outDir, *samples); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(outDir string, samples int) error {
	var stats utils.TimingStats
	start := time.Now()

	buildStart := time.Now()
	genConf, err := gan.GeneratorConfig(noiseSize, hiddenSize, maxTrajLen)
	if err != nil {
		return fmt.Errorf("generator config: %w", err)
	}
	discConf, err := gan.DiscriminatorConfig(arrayLength, hiddenSize)
	if err != nil {
		return fmt.Errorf("discriminator config: %w", err)
	}
	stats.BuildTime = time.Since(buildStart)

	initStart := time.Now()
	generator := nn.NewComputationGraph(genConf)
	if err := generator.Init(); err != nil {
		return fmt.Errorf("init generator: %w", err)
	}
	discriminator := nn.NewComputationGraph(discConf)
	if err := discriminator.Init(); err != nil {
		return fmt.Errorf("init discriminator: %w", err)
	}
	stats.ModelInitTime = time.Since(initStart)

	utils.Logf("=== GENERATOR (noise=%d hidden=%d len=%d) ===\n%s\n", noiseSize, hiddenSize, maxTrajLen, genConf.Summary())
	utils.Logf("=== DISCRIMINATOR (len=%d hidden=%d) ===\n%s\n", arrayLength, hiddenSize, discConf.Summary())

	// Training is out of scope; one pass shows the two graphs fit together.
	g, d := &gan.Generator{ComputationGraph: generator}, &gan.Discriminator{ComputationGraph: discriminator}
	src := rand.NewSource(uint64(genConf.Net.Seed))
	fwdStart := time.Now()
	for i := 0; i < samples; i++ {
		traj, err := g.Generate(gan.SampleNoise(noiseSize, src))
		if err != nil {
			return err
		}
		score, err := d.Score(traj)
		if err != nil {
			return err
		}
		utils.Logf("sample %d: trajectory %v, score %.6f\n", i, traj.Shape, score)
	}
	stats.ForwardPassTime = time.Since(fwdStart)

	if outDir != "" {
		if err := export(outDir, "generator", generator); err != nil {
			return err
		}
		if err := export(outDir, "discriminator", discriminator); err != nil {
			return err
		}
		utils.Logf("wrote configs and weights to %s\n", outDir)
	}

	stats.TotalTime = time.Since(start)
	utils.PrintTimingStats(&stats, samples)
	return nil
}

func export(dir, name string, g *nn.ComputationGraph) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := utils.SaveConfig(filepath.Join(dir, name+"_config.json"), g.Config); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	mw, err := utils.ExportWeights(g)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := utils.SaveWeights(filepath.Join(dir, name+"_weights.json"), mw); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
