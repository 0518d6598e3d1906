package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/minifold/minifold/pkg/config"
)

// Build-time variables injected via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = `Minifold - Build output asset optimizer

Usage:
  minifold <command> [flags]

Commands:
  init     Initialize a sample configuration file
  run      Optimize the configured asset directory once
  watch    Optimize on every change to the asset directory
  version  Show version information

Flags:
  --config string    Path to config file (default: $XDG_CONFIG_HOME/minifold/config.yaml)
  --root string      Asset directory, overriding the configured one
  --force            Force overwrite existing config file (init command only)

Examples:
  # Initialize config file
  minifold init

  # Optimize ./dist once
  minifold run --root dist

  # Keep optimizing as the build rewrites assets
  minifold watch

  # Use environment variables to override config
  MINIFOLD_LOGGING_LEVEL=DEBUG minifold run

Environment Variables:
  All configuration options can be overridden using environment variables.
  Format: MINIFOLD_<SECTION>_<KEY> (use underscores for nested keys)

  Examples:
    MINIFOLD_LOGGING_LEVEL=DEBUG
    MINIFOLD_CACHE_ENABLED=false
    MINIFOLD_OPTIMIZE_PARALLEL_WORKERS=4
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	switch command := os.Args[1]; command {
	case "init":
		runInit()
	case "run":
		runOnce()
	case "watch":
		runWatch()
	case "help", "--help", "-h":
		fmt.Print(usage)
	case "version", "--version", "-v":
		fmt.Printf("minifold %s (commit: %s, built: %s)\n", version, commit, date)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// runInit handles the init subcommand
func runInit() {
	initFlags := flag.NewFlagSet("init", flag.ExitOnError)
	configFile := initFlags.String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/minifold/config.yaml)")
	force := initFlags.Bool("force", false, "Force overwrite existing config file")

	if err := initFlags.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	var configPath string
	var err error
	if *configFile != "" {
		err = config.InitConfigToPath(*configFile, *force)
		configPath = *configFile
	} else {
		configPath, err = config.InitConfig(*force)
	}
	if err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Optimize your build output with: minifold run")
	fmt.Printf("  3. Or specify custom config: minifold run --config %s\n", configPath)
}
