package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "convert":
		if err := convertCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "parts":
		if err := partsCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "validate":
		if err := validateCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "sessions":
		if err := sessionsCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("scoreflow version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`scoreflow - music notation interchange tool

Usage:
  scoreflow <command> [options]

Commands:
  convert    Round-trip a LilyPond file through the common tree
  parts      Derive the part list of a LilyPond file
  validate   Validate the converted tree structure
  sessions   Show logged conversion sessions
  help       Show this help message
  version    Show version information

Examples:
  # Round-trip a file and print the regenerated source
  scoreflow convert score.ly

  # Record the conversion session in a log database
  scoreflow convert score.ly --log sessions.db

  # Print the derived part list as JSON
  scoreflow parts score.ly

  # Structural validation report
  scoreflow validate score.ly --json

For command-specific help, run:
  scoreflow <command> --help`)
}
