package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/scoreflow-xyz/go-scoreflow/convert"
	"github.com/scoreflow-xyz/go-scoreflow/convlog"
	"github.com/scoreflow-xyz/go-scoreflow/lilypond"
	"github.com/scoreflow-xyz/go-scoreflow/lilypond/dsl"
	"github.com/scoreflow-xyz/go-scoreflow/score"
)

func convertCmd(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	outputFile := fs.String("output", "", "Write regenerated source to file instead of stdout")
	logDB := fs.String("log", "", "Record the conversion session in this SQLite database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: scoreflow convert <score.ly> [options]

Parse a LilyPond file into the common tree, then regenerate source from
the tree. Conversion warnings are printed to stderr.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  scoreflow convert score.ly
  scoreflow convert score.ly --output roundtrip.ly
  scoreflow convert score.ly --log sessions.db
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

	var store *convlog.Store
	var sessionID string
	if *logDB != "" {
		store, err = convlog.New(*logDB, slog.Default())
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer store.Close()
		sessionID, err = store.Begin("lilypond", "lilypond")
		if err != nil {
			return fmt.Errorf("begin session: %w", err)
		}
	}

	ctx := convert.NewContext("ly")

	seq, err := dsl.Parse(string(source))
	if err != nil {
		finishSession(store, sessionID, 0, ctx, false)
		return fmt.Errorf("parse: %w", err)
	}

	doc, ext, err := lilypond.ImportStaves([]*dsl.Sequence{seq}, ctx)
	if err != nil {
		finishSession(store, sessionID, 0, ctx, false)
		return fmt.Errorf("import: %w", err)
	}

	out, err := lilypond.ExportWithContext(doc, ext, ctx)
	if err != nil {
		finishSession(store, sessionID, countNotes(doc), ctx, false)
		return fmt.Errorf("export: %w", err)
	}

	for _, w := range ctx.Warnings() {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w.String())
	}
	finishSession(store, sessionID, countNotes(doc), ctx, true)

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(out+"\n"), 0644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("Wrote %s\n", *outputFile)
		return nil
	}
	fmt.Println(out)
	return nil
}

func finishSession(store *convlog.Store, sessionID string, notes int, ctx *convert.Context, ok bool) {
	if store == nil {
		return
	}
	if err := store.Finish(sessionID, notes, ctx.Warnings(), ok); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: log session: %v\n", err)
	}
}

// countNotes tallies note and chord events across all layers.
func countNotes(doc *score.Document) int {
	if doc == nil || doc.Section == nil {
		return 0
	}
	count := 0
	for _, staff := range doc.Section.Staves {
		for _, layer := range staff.Layers {
			for _, child := range layer.Children {
				count += countChild(child)
			}
		}
	}
	return count
}

func countChild(child score.LayerChild) int {
	switch c := child.(type) {
	case *score.Note, *score.Chord:
		return 1
	case *score.BTrem:
		return countChild(c.Child)
	}
	return 0
}
