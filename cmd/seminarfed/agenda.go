package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pevans/seminarfed/config"
	"github.com/pevans/seminarfed/seminars"
)

func handleAgenda(settings config.Settings, args []string) {
	fs := flag.NewFlagSet("agenda", flag.ExitOnError)
	format := fs.String("format", "table", "Output format (table or json)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: seminar ID is required\n")
		fmt.Fprintf(os.Stderr, "Usage: seminarfed agenda <seminar-id> [--format table|json]\n")
		os.Exit(1)
	}
	idArg := fs.Arg(0)
	fs.Parse(fs.Args()[1:])
	id := parseSeminarID(idArg)

	a := openApp(settings)
	defer a.Close()

	seminar, err := a.store.GetSeminar(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to get seminar: %v\n", err)
		a.Close()
		os.Exit(1)
	}

	agenda, err := a.store.Agenda(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load agenda: %v\n", err)
		a.Close()
		os.Exit(1)
	}

	switch *format {
	case "json":
		if agenda == nil {
			agenda = []seminars.AgendaSection{}
		}
		printJSON(map[string]any{"seminar": seminar, "sections": agenda})
	case "table":
		printAgenda(seminar, agenda)
	default:
		fmt.Fprintf(os.Stderr, "Error: --format must be 'table' or 'json'\n")
		a.Close()
		os.Exit(1)
	}
}
