package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pevans/seminarfed/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	settings := config.Load()
	setLogLevel(settings.LogLevel)

	subcommand := os.Args[1]
	args := os.Args[2:]

	switch subcommand {
	case "init":
		handleInit(settings, args)
	case "seminars":
		if len(args) < 1 {
			printSeminarsUsage()
			os.Exit(1)
		}
		handleSeminarsCommand(settings, args[0], args[1:])
	case "import":
		handleImport(settings, args)
	case "agenda":
		handleAgenda(settings, args)
	case "sync":
		handleSync(settings, args)
	case "watch":
		handleWatch(settings, args)
	case "dialects":
		handleDialects(settings, args)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

// setLogLevel applies a zerolog level name, keeping info on bad input.
func setLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

func printUsage() {
	fmt.Println("seminarfed - Seminar agenda importer")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  seminarfed <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init       Create the config file and database")
	fmt.Println("  seminars   Manage seminars")
	fmt.Println("  import     Import a seminar's agenda")
	fmt.Println("  agenda     Show a seminar's agenda")
	fmt.Println("  sync       Import every seminar with a source URL once")
	fmt.Println("  watch      Import every seminar on the configured schedule")
	fmt.Println("  dialects   List the available dialects")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  SEMINARFED_DB              Path to the database (default: seminarfed.db)")
	fmt.Println("  SEMINARFED_SCHEDULE        Cron schedule for watch (default: 0 * * * *)")
	fmt.Println("  SEMINARFED_LOG_LEVEL       Log level (default: info)")
	fmt.Println("  SEMINARFED_FETCH_TIMEOUT   Per-request fetch timeout (default: 10s)")
	fmt.Println("  SEMINARFED_FETCH_ATTEMPTS  Fetch attempts per page (default: 3)")
}
