package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/scoreflow-xyz/go-scoreflow/lilypond"
	"github.com/scoreflow-xyz/go-scoreflow/lilypond/dsl"
	"github.com/scoreflow-xyz/go-scoreflow/score"
)

func validateCmd(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	outputJSON := fs.Bool("json", false, "Output results as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: scoreflow validate <score.ly> [options]

Parse a LilyPond file into the common tree and check its structural
invariants.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Checks performed:
  - Unique element identities
  - Staff groups with at least one child
  - Power-of-two durations
  - Resolvable span references
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("input file required")
	}

	source, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	seq, err := dsl.Parse(string(source))
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	doc, _, err := lilypond.Import(seq)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	result := score.Validate(doc)

	if *outputJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		fmt.Println(string(data))
	} else {
		if result.Valid {
			fmt.Println("Valid")
		} else {
			fmt.Printf("Invalid: %d error(s)\n", len(result.Errors))
		}
		for _, e := range result.Errors {
			fmt.Printf("  error [%s] %s", e.Code, e.Message)
			if e.Fix != "" {
				fmt.Printf(" (fix: %s)", e.Fix)
			}
			fmt.Println()
		}
		for _, w := range result.Warnings {
			fmt.Printf("  warning [%s] %s\n", w.Code, w.Message)
		}
	}

	if !result.Valid {
		os.Exit(1)
	}
	return nil
}
