package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pevans/seminarfed/config"
	"github.com/pevans/seminarfed/importer"
	"github.com/pevans/seminarfed/scheduler"
)

func handleImport(settings config.Settings, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "Read the agenda from a file instead of the seminar's source ('-' for stdin)")
	dialectID := fs.String("dialect", "", "Override the seminar's dialect")
	jsonOutput := fs.Bool("json", false, "Print the result as JSON")
	fs.Parse(args)

	// Allow flags after the seminar ID too.
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: seminar ID is required\n")
		fmt.Fprintf(os.Stderr, "Usage: seminarfed import <seminar-id> [--file path] [--dialect id]\n")
		os.Exit(1)
	}
	idArg := fs.Arg(0)
	fs.Parse(fs.Args()[1:])
	id := parseSeminarID(idArg)

	a := openApp(settings)
	defer a.Close()

	var result importer.Result
	if *file != "" {
		html, err := readInput(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read %s: %v\n", *file, err)
			os.Exit(1)
		}
		result = a.runner.ImportHTML(id, html, *dialectID)
	} else {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		result = a.runner.ImportSource(ctx, id, *dialectID)
	}

	if *jsonOutput {
		printJSON(result)
	} else {
		printImportResult(result)
	}

	if !result.Success {
		a.Close()
		os.Exit(1)
	}
}

// readInput reads a whole file, or stdin when path is "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func handleSync(settings config.Settings, args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	fs.Parse(args)

	a := openApp(settings)
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Importing all seminars with a source URL...")

	s := scheduler.NewImportScheduler(a.store, a.runner, settings.Schedule)
	summary, err := s.RunOnce(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: sync failed: %v\n", err)
		a.Close()
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("Sync completed:")
	fmt.Printf("  Seminars imported: %d\n", summary.Succeeded)
	fmt.Printf("  Seminars failed: %d\n", summary.Failed)
	fmt.Printf("  %s\n", summary.Stats)

	if summary.Failed > 0 {
		a.Close()
		os.Exit(1)
	}
}

func handleWatch(settings config.Settings, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	schedule := fs.String("schedule", "", "Cron schedule (default: stored import_schedule)")
	fs.Parse(args)

	a := openApp(settings)
	defer a.Close()

	if *schedule == "" {
		cfg, err := a.configs.GetConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read configuration: %v\n", err)
			os.Exit(1)
		}
		*schedule = cfg.ImportSchedule
	}
	if err := config.ValidateSchedule(*schedule); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scheduler.NewImportScheduler(a.store, a.runner, *schedule)
	if err := s.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Watching seminars on schedule %q (Ctrl+C to stop)\n", *schedule)
	<-ctx.Done()
	s.Stop()
}
