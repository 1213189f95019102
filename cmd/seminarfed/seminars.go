package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pevans/seminarfed/config"
	"github.com/pevans/seminarfed/seminars"
)

func handleSeminarsCommand(settings config.Settings, action string, args []string) {
	switch action {
	case "help", "--help", "-h":
		printSeminarsUsage()
		return
	}

	a := openApp(settings)
	defer a.Close()

	switch action {
	case "list":
		handleSeminarsList(a, args)
	case "add":
		handleSeminarsAdd(a, args)
	case "delete":
		handleSeminarsDelete(a, args)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown seminars command: %s\n\n", action)
		printSeminarsUsage()
		os.Exit(1)
	}
}

func printSeminarsUsage() {
	fmt.Println("seminarfed seminars - Manage seminars")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  seminarfed seminars <action> [arguments]")
	fmt.Println()
	fmt.Println("Actions:")
	fmt.Println("  list       List all seminars")
	fmt.Println("  add        Add a new seminar")
	fmt.Println("  delete     Delete a seminar and its agenda")
	fmt.Println("  help       Show this help message")
}

func handleSeminarsList(a *app, args []string) {
	fs := flag.NewFlagSet("seminars list", flag.ExitOnError)
	format := fs.String("format", "table", "Output format (table or json)")
	fs.Parse(args)

	list, err := a.store.ListSeminars()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list seminars: %v\n", err)
		os.Exit(1)
	}

	switch *format {
	case "json":
		if list == nil {
			list = []seminars.Seminar{}
		}
		printJSON(map[string]any{"seminars": list, "total": len(list)})
	case "table":
		printSeminarsTable(list)
	default:
		fmt.Fprintf(os.Stderr, "Error: --format must be 'table' or 'json'\n")
		os.Exit(1)
	}
}

func handleSeminarsAdd(a *app, args []string) {
	fs := flag.NewFlagSet("seminars add", flag.ExitOnError)
	name := fs.String("name", "", "Seminar name")
	url := fs.String("url", "", "Agenda page or feed URL")
	sourceType := fs.String("type", seminars.SourceTypeHTML, "Source type (html or feed)")
	dialectID := fs.String("dialect", "", "Markup dialect (default: configured default_dialect)")
	fs.Parse(args)

	if *name == "" {
		fmt.Fprintf(os.Stderr, "Error: --name is required\n")
		fs.Usage()
		os.Exit(1)
	}

	if *dialectID == "" {
		*dialectID = config.NewDialectPolicy(a.configs, a.registry).Default()
	}
	if !a.registry.Has(*dialectID) {
		fmt.Fprintf(os.Stderr, "Error: unknown dialect %q (available: %v)\n", *dialectID, a.registry.Names())
		os.Exit(1)
	}

	seminar, err := a.store.CreateSeminar(*name, *url, *sourceType, *dialectID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create seminar: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Created seminar: %s\n", seminar.ID.String())
	fmt.Printf("  Name: %s\n", seminar.Name)
	fmt.Printf("  Dialect: %s\n", seminar.Dialect)
	if seminar.SourceURL != "" {
		fmt.Printf("  Source: %s (%s)\n", seminar.SourceURL, seminar.SourceType)
	}
}

func handleSeminarsDelete(a *app, args []string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Error: seminar ID is required\n")
		fmt.Fprintf(os.Stderr, "Usage: seminarfed seminars delete <seminar-id>\n")
		os.Exit(1)
	}

	id := parseSeminarID(args[0])

	if err := a.store.DeleteSeminar(id); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to delete seminar: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Deleted seminar: %s\n", id.String())
}

// parseSeminarID parses a seminar ID argument, exiting when it is invalid.
func parseSeminarID(arg string) uuid.UUID {
	id, err := uuid.Parse(arg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid seminar ID: %v\n", err)
		os.Exit(1)
	}
	return id
}
