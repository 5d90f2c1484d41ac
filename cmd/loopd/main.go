package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/katalvlaran/ringloop/api"
	"github.com/katalvlaran/ringloop/looptable"
)

func main() {
	// Define command-line flags
	var (
		help         = flag.Bool("help", false, "Show help message")
		version      = flag.Bool("version", false, "Show version information")
		port         = flag.String("port", "8080", "Port to run the server on")
		dir          = flag.String("dir", "./tables", "Directory holding looptable_NN.lt files")
		buildMissing = flag.Bool("build-missing", false, "Build tables missing from -dir on first use")
		persist      = flag.Bool("persist", false, "Write tables built on demand back into -dir")
		preload      = flag.Int("preload", 0, "Load every table a gap of this many residues needs at startup")
		seed         = flag.Int64("seed", 0, "Random seed for tables built on demand")
	)

	flag.Parse()

	if *help {
		fmt.Printf("loopd - backbone loop closure service\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s --dir ./tables                   # Serve prebuilt tables\n", os.Args[0])
		fmt.Printf("  %s --build-missing --persist        # Build and keep tables as needed\n", os.Args[0])
		return
	}

	if *version {
		fmt.Printf("loopd v1.0.0\n")
		return
	}

	opts := looptable.DefaultOptions()
	opts.Dir = *dir
	opts.BuildMissing = *buildMissing
	opts.Persist = *persist
	opts.Seed = *seed
	opts.Logger = log.Default()
	lib, err := looptable.NewLibrary(opts)
	if err != nil {
		log.Fatalf("Failed to open table library: %v", err)
	}
	log.Printf("Using table directory: %s", *dir)

	if *preload > 0 {
		if err = lib.Preload(*preload + 1); err != nil {
			log.Fatalf("Failed to preload tables: %v", err)
		}
	}

	// Initialize Gin router
	router := gin.Default()

	// Setup API routes
	api.SetupRoutes(router, lib, log.Default())

	// Start the server
	log.Printf("Starting server on port %s...", *port)
	if err := router.Run(":" + *port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
