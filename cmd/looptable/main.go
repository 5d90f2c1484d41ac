package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/katalvlaran/ringloop/looptable"
	"github.com/katalvlaran/ringloop/rama"
)

const usage = `looptable - build and inspect loop closure tables

Usage:
  %[1]s [options] build    build tables 1..-max into -dir
  %[1]s [options] info     describe the tables found in -dir

Options:
`

func main() {
	defaults := looptable.DefaultOptions()
	var (
		help      = flag.Bool("help", false, "Show help message")
		version   = flag.Bool("version", false, "Show version information")
		dir       = flag.String("dir", "./tables", "Directory holding looptable_NN.lt files")
		maxLength = flag.Int("max", 16, "Longest chain length to build")
		seed      = flag.Int64("seed", defaults.Seed, "Random seed (0 uses the fixed default)")
		base      = flag.Int("base", defaults.BaseSamples, "Single residues sampled for the length-1 table")
		samples1  = flag.Int("samples1", defaults.Samples1, "Draws from the first-half table per build")
		samples2  = flag.Int("samples2", defaults.Samples2, "Draws from the second-half table per first draw")
		cutoff    = flag.Float64("cluster", defaults.ClusterCutoff, "Cluster cutoff after building (0 disables)")
		ramaName  = flag.String("rama", "general", "Ramachandran sampler: general, glycine, proline or uniform")
		overwrite = flag.Bool("overwrite", false, "Rebuild tables that already exist")
		quiet     = flag.Bool("quiet", false, "Suppress progress output")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *help {
		flag.Usage()
		return
	}
	if *version {
		fmt.Printf("looptable v1.0.0\n")
		return
	}

	sampler, err := rama.ByName(*ramaName)
	if err != nil {
		log.Fatalf("Invalid -rama: %v", err)
	}
	opts := looptable.DefaultOptions()
	opts.Dir = *dir
	opts.Seed = *seed
	opts.BaseSamples = *base
	opts.Samples1 = *samples1
	opts.Samples2 = *samples2
	opts.ClusterCutoff = *cutoff
	opts.Sampler = sampler
	if !*quiet {
		opts.Logger = log.Default()
	}

	switch cmd := flag.Arg(0); cmd {
	case "build":
		err = build(opts, *maxLength, *overwrite)
	case "info":
		err = info(opts, *maxLength)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func build(opts looptable.Options, maxLength int, overwrite bool) error {
	lib, err := looptable.NewLibrary(opts)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Building tables 1..%d in %s (seed %d)", maxLength, opts.Dir, opts.Seed)
	if err = lib.Build(ctx, maxLength, overwrite); err != nil {
		return err
	}
	printInfo(lib.Loaded())

	return nil
}

func info(opts looptable.Options, maxLength int) error {
	opts.BuildMissing = false
	opts.Logger = nil
	lib, err := looptable.NewLibrary(opts)
	if err != nil {
		return err
	}

	var n int
	for n = 1; n <= maxLength; n++ {
		if _, err = os.Stat(looptable.TablePath(opts.Dir, n)); err != nil {
			continue
		}
		if _, err = lib.Table(n); err != nil {
			return err
		}
	}
	printInfo(lib.Loaded())

	return nil
}

func printInfo(tables []looptable.TableInfo) {
	fmt.Printf("%6s %9s %10s %10s %8s %6s\n", "length", "fragments", "lower", "upper", "step", "bins")
	for _, t := range tables {
		fmt.Printf("%6d %9d %10.3f %10.3f %8.4f %6d\n",
			t.ChainLength, t.Size, t.Lower, t.Upper, t.Step, t.Populated)
	}
}
