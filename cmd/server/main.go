// trajgan-server: scores encrypted discriminator features over TCP
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"trajgan/gan"
	"trajgan/split"
	"trajgan/utils"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	flag.IntVar(&cfg.ArrayLength, "len", cfg.ArrayLength, "Trajectory length scored by the discriminator")
	flag.IntVar(&cfg.HiddenSize, "hidden", cfg.HiddenSize, "Discriminator hidden channels")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	flag.Parse()
	utils.Verbose = cfg.Verbose
	// the server never generates; keep validation happy for a custom length
	cfg.MaxTrajLen = cfg.ArrayLength

	if err := utils.ValidateConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	disc, err := gan.NewDiscriminator(cfg.ArrayLength, cfg.HiddenSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "discriminator: %v\n", err)
		os.Exit(1)
	}
	srv, err := split.NewServer(disc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "listen: %v\n", err)
		os.Exit(1)
	}
	log("listening on %s (len=%d, hidden=%d)", ln.Addr(), cfg.ArrayLength, cfg.HiddenSize)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Serve(ctx, ln); err != nil {
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		os.Exit(1)
	}
	log("server done")
}

func log(format string, args ...interface{}) {
	utils.Logf("[SERVER] "+format+"\n", args...)
}
