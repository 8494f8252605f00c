package main

import (
	"flag"
	"fmt"

	"github.com/ArionMiles/lunchsync/pkg/accounts"
	"github.com/ArionMiles/lunchsync/pkg/banks"
	"github.com/ArionMiles/lunchsync/pkg/logging"
)

// runParsers lists the supported bank export formats in detection order.
func runParsers(args []string) error {
	fs := flag.NewFlagSet("lunchsync parsers", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := logging.Setup(logging.DefaultConfig(false))
	registry := banks.NewRegistry(accounts.NewResolver(nil, "", logger))

	fmt.Println("Supported bank formats (checked in order):")
	for _, p := range registry.All() {
		fmt.Printf("  %-18s %s\n", p.Name(), p.Bank())
	}
	return nil
}
