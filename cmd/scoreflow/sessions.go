package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/scoreflow-xyz/go-scoreflow/convlog"
)

func sessionsCmd(args []string) error {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	dbPath := fs.String("db", "sessions.db", "Session log database")
	limit := fs.Int("limit", 20, "Maximum sessions to show")
	outputJSON := fs.Bool("json", false, "Output results as JSON")
	showWarnings := fs.Bool("warnings", false, "Include each session's warnings")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: scoreflow sessions [options]

Show logged conversion sessions, newest first.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := convlog.New(*dbPath, slog.Default())
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer store.Close()

	sessions, err := store.Sessions(*limit)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	if *outputJSON {
		data, err := json.MarshalIndent(sessions, "", "  ")
		if err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded")
		return nil
	}

	for _, sess := range sessions {
		status := "failed"
		if sess.OK {
			status = "ok"
		}
		fmt.Printf("%s  %s -> %s  %s  notes=%d warnings=%d\n",
			sess.ID, sess.SourceFormat, sess.TargetFormat,
			status, sess.NoteCount, sess.WarningCount)
		if *showWarnings && sess.WarningCount > 0 {
			warnings, err := store.SessionWarnings(sess.ID)
			if err != nil {
				return fmt.Errorf("list warnings: %w", err)
			}
			for _, w := range warnings {
				if w.Location != "" {
					fmt.Printf("    %s: %s\n", w.Location, w.Message)
				} else {
					fmt.Printf("    %s\n", w.Message)
				}
			}
		}
	}
	return nil
}
