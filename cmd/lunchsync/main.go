// Command lunchsync converts Singapore bank exports into a normalized
// transaction list and writes it to CSV/TSV, PostgreSQL, or Lunch Money.
//
// Usage:
//
//	lunchsync [flags] <files-or-directories>
//	lunchsync setup [flags] [directory]
//	lunchsync status
//	lunchsync parsers
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A .env beside the binary is a convenience, not a requirement.
	_ = godotenv.Load()

	args := os.Args[1:]

	var err error
	if len(args) > 0 {
		switch args[0] {
		case "setup":
			err = runSetup(args[1:])
		case "status":
			err = runStatus(args[1:])
		case "parsers":
			err = runParsers(args[1:])
		case "help", "-h", "--help":
			printUsage()
			return
		default:
			err = runConvert(args)
		}
	} else {
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `lunchsync - normalize Singapore bank exports

Usage:
  lunchsync [flags] <files-or-directories>   convert exports
  lunchsync setup [flags] [directory]        interactive configuration
  lunchsync status                           show configuration status
  lunchsync parsers                          list supported bank formats

Run 'lunchsync -h <files>' for conversion flags.
`)
}
