// trajgan-client: generates trajectories and scores them through a remote
// encrypted discriminator head
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trajgan/core/ckkswrapper"
	"trajgan/gan"
	"trajgan/split"
	"trajgan/utils"

	"golang.org/x/exp/rand"
)

var seed = flag.Uint64("seed", 42, "Noise seed")

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	flag.IntVar(&cfg.NoiseSize, "noise", cfg.NoiseSize, "Generator noise size")
	flag.IntVar(&cfg.HiddenSize, "hidden", cfg.HiddenSize, "Hidden channels of both networks")
	flag.IntVar(&cfg.MaxTrajLen, "len", cfg.MaxTrajLen, "Trajectory length")
	flag.IntVar(&cfg.LogN, "logN", cfg.LogN, "Ring dimension log2")
	flag.IntVar(&cfg.Samples, "samples", cfg.Samples, "Trajectories to score")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Server address")
	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	flag.Parse()
	utils.Verbose = cfg.Verbose
	cfg.ArrayLength = cfg.MaxTrajLen

	if err := utils.ValidateConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *utils.Config) error {
	start := time.Now()
	var stats utils.TimingStats

	initStart := time.Now()
	gen, err := gan.NewGenerator(cfg.NoiseSize, cfg.HiddenSize, cfg.MaxTrajLen)
	if err != nil {
		return err
	}
	disc, err := gan.NewDiscriminator(cfg.ArrayLength, cfg.HiddenSize)
	if err != nil {
		return err
	}
	stats.ModelInitTime = time.Since(initStart)

	heStart := time.Now()
	he, err := ckkswrapper.NewHeContextWithLogN(cfg.LogN)
	if err != nil {
		return err
	}
	stats.HEInitTime = time.Since(heStart)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	client, err := split.NewClient(he, disc, conn)
	if err != nil {
		return err
	}
	log("connected to %s (logN=%d)", cfg.Addr, cfg.LogN)

	src := rand.NewSource(*seed)
	for i := 0; i < cfg.Samples; i++ {
		fwdStart := time.Now()
		traj, err := gen.Generate(gan.SampleNoise(cfg.NoiseSize, src))
		if err != nil {
			return err
		}
		stats.ForwardPassTime += time.Since(fwdStart)

		score, err := client.Score(ctx, traj)
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		log("sample %d: score %.6f", i, score)
	}
	if err := client.Close(); err != nil {
		return err
	}

	stats.Add(client.Stats)
	stats.TotalTime = time.Since(start)
	utils.PrintTimingStats(&stats, cfg.Samples)
	return nil
}

func log(format string, args ...interface{}) {
	utils.Logf("[CLIENT] "+format+"\n", args...)
}
