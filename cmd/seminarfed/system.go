package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pevans/seminarfed/config"
	"github.com/pevans/seminarfed/dialect"
	"github.com/pevans/seminarfed/fetch"
	"github.com/pevans/seminarfed/importer"
	"github.com/pevans/seminarfed/seminars"
)

// app bundles the stores and services a command works with.
type app struct {
	store    *seminars.Store
	configs  *config.ConfigStore
	registry *dialect.Registry
	runner   *importer.Runner
}

// openApp opens the database and builds the import pipeline, exiting on
// failure.
func openApp(settings config.Settings) *app {
	registry, err := dialect.NewRegistry(settings.Dialects)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid dialect configuration: %v\n", err)
		os.Exit(1)
	}

	store, err := seminars.NewStore(settings.DSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open seminar store: %v\n", err)
		os.Exit(1)
	}

	configs, err := config.NewConfigStore(settings.DSN, config.Config{
		DefaultDialect: dialect.PlainID,
		ImportSchedule: settings.Schedule,
	})
	if err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "Error: failed to open config store: %v\n", err)
		os.Exit(1)
	}

	client := fetch.NewClient(settings.Fetch.Timeout, settings.Fetch.Attempts, settings.Fetch.UserAgent)

	return &app{
		store:    store,
		configs:  configs,
		registry: registry,
		runner:   importer.NewRunner(store, registry, client),
	}
}

func (a *app) Close() {
	a.configs.Close()
	a.store.Close()
}

func handleInit(settings config.Settings, args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	fs.Parse(args)

	fmt.Println("Initializing seminarfed...")
	fmt.Println()

	created, err := config.WriteDefaultConfigFile(*force)
	configPath, _ := config.ConfigFilePath()
	switch {
	case err != nil:
		fmt.Fprintf(os.Stderr, "  ✗ Failed to create config file: %v\n", err)
		fmt.Println()
		fmt.Println("✗ Initialization failed")
		os.Exit(1)
	case created:
		fmt.Printf("  ✓ Config file: %s\n", configPath)
		// Pick up the database path the new file points at, unless the
		// environment overrides it.
		settings = config.Load()
	default:
		fmt.Printf("  Config file: %s (already exists)\n", configPath)
	}

	if dir := filepath.Dir(settings.DSN); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ Failed to create database directory: %v\n", err)
			os.Exit(1)
		}
	}

	a := openApp(settings)
	a.Close()
	fmt.Printf("  ✓ Database: %s\n", settings.DSN)

	fmt.Println()
	fmt.Println("✓ seminarfed initialized")
	fmt.Println()
	fmt.Println("You can now:")
	fmt.Println("  - Add seminars with 'seminarfed seminars add'")
	fmt.Println("  - Import agendas with 'seminarfed import'")
}

func handleDialects(settings config.Settings, args []string) {
	fs := flag.NewFlagSet("dialects", flag.ExitOnError)
	format := fs.String("format", "table", "Output format (table or json)")
	fs.Parse(args)

	registry, err := dialect.NewRegistry(settings.Dialects)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid dialect configuration: %v\n", err)
		os.Exit(1)
	}

	switch *format {
	case "json":
		configs := make(map[string]dialect.Config)
		for _, name := range registry.Names() {
			strategy, _ := registry.Lookup(name)
			configs[name] = strategy.Config()
		}
		printJSON(configs)
	case "table":
		printDialectsTable(registry)
	default:
		fmt.Fprintf(os.Stderr, "Error: --format must be 'table' or 'json'\n")
		os.Exit(1)
	}
}
