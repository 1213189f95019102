package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pevans/seminarfed/dialect"
	"github.com/pevans/seminarfed/importer"
	"github.com/pevans/seminarfed/seminars"
)

// printJSON prints v as indented JSON
func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to marshal JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(data))
}

// printSeminarsTable prints seminars in human-readable table format
func printSeminarsTable(list []seminars.Seminar) {
	if len(list) == 0 {
		fmt.Println("No seminars configured.")
		return
	}

	fmt.Printf("%-36s %-10s %-30s %s\n", "ID", "DIALECT", "NAME", "SOURCE")
	fmt.Println(strings.Repeat("-", 100))

	for _, seminar := range list {
		source := seminar.SourceURL
		if source == "" {
			source = "-"
		} else if seminar.SourceType == seminars.SourceTypeFeed {
			source += " (feed)"
		}

		fmt.Printf("%-36s %-10s %-30s %s\n",
			seminar.ID.String(),
			seminar.Dialect,
			truncate(seminar.Name, 30),
			source,
		)
	}
}

// printAgenda prints a seminar's sections and topic trees
func printAgenda(seminar *seminars.Seminar, agenda []seminars.AgendaSection) {
	fmt.Println(seminar.Name)
	if seminar.LastImportedAt != nil {
		fmt.Printf("Last imported: %s\n", seminar.LastImportedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println()

	if len(agenda) == 0 {
		fmt.Println("No sections imported yet.")
		return
	}

	for _, section := range agenda {
		header := fmt.Sprintf("%d. %s", section.Order+1, section.Name)
		if section.AllowPublicSubmissions {
			header += " [open for submissions]"
		}
		fmt.Println(header)

		if len(section.Topics) == 0 {
			fmt.Println("   (no topics)")
		}
		for _, topic := range section.Topics {
			printTopic(topic, 1)
		}
		fmt.Println()
	}
}

func printTopic(topic *seminars.AgendaTopic, depth int) {
	line := strings.Repeat("   ", depth) + "- " + topic.Name

	var flags []string
	if !topic.Votable {
		flags = append(flags, "not votable")
	}
	if !topic.Payable {
		flags = append(flags, "not payable")
	}
	if len(flags) > 0 {
		line += " (" + strings.Join(flags, ", ") + ")"
	}
	if topic.Link != nil {
		line += " <" + *topic.Link + ">"
	}
	fmt.Println(line)

	for _, sub := range topic.Subtopics {
		printTopic(sub, depth+1)
	}
}

// printImportResult prints the run log followed by a summary
func printImportResult(result importer.Result) {
	if result.Log != "" {
		fmt.Println(result.Log)
		fmt.Println()
	}

	if result.Success {
		fmt.Println("✓ Import finished")
	} else {
		fmt.Println("✗ Import failed")
	}
}

// printDialectsTable prints the registered dialects and their key settings
func printDialectsTable(registry *dialect.Registry) {
	fmt.Printf("%-10s %-8s %-10s %s\n", "DIALECT", "HEADER", "ATTR", "SKIPS")
	fmt.Println(strings.Repeat("-", 60))

	for _, name := range registry.Names() {
		strategy, err := registry.Lookup(name)
		if err != nil {
			continue
		}
		cfg := strategy.Config()

		attr := cfg.RequiredAttr
		if attr == "" {
			attr = "-"
		}
		skips := strings.Join(cfg.Skip, ", ")
		if skips == "" {
			skips = "-"
		}

		fmt.Printf("%-10s %-8s %-10s %s\n", name, cfg.HeaderSelector, attr, skips)
	}
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
