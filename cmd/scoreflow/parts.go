package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/scoreflow-xyz/go-scoreflow/convert"
	"github.com/scoreflow-xyz/go-scoreflow/interchange"
	"github.com/scoreflow-xyz/go-scoreflow/lilypond"
	"github.com/scoreflow-xyz/go-scoreflow/lilypond/dsl"
)

func partsCmd(args []string) error {
	fs := flag.NewFlagSet("parts", flag.ExitOnError)
	outputFile := fs.String("output", "", "Write JSON part list to file instead of stdout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: scoreflow parts <score.ly> [options]

Parse a LilyPond file and derive its part list: groups, parts, and
staff counts, printed as JSON.

Options:
`)
		fs.PrintDefaults()
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

	ctx := convert.NewContext("ly")
	doc, ext, err := lilypond.ImportStaves([]*dsl.Sequence{seq}, ctx)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	list, err := interchange.ExportParts(doc.ScoreDef, ext, ctx)
	if err != nil {
		return fmt.Errorf("derive parts: %w", err)
	}

	for _, w := range ctx.Warnings() {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w.String())
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("Wrote %s\n", *outputFile)
		return nil
	}
	fmt.Println(string(data))
	return nil
}
