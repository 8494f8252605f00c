package main

import (
	"context"
	"flag"
	"os"

	"github.com/ArionMiles/lunchsync/pkg/accounts"
	"github.com/ArionMiles/lunchsync/pkg/banks"
	"github.com/ArionMiles/lunchsync/pkg/config"
	"github.com/ArionMiles/lunchsync/pkg/logging"
	"github.com/ArionMiles/lunchsync/pkg/lunchmoney"
	"github.com/ArionMiles/lunchsync/pkg/setup"
)

func runSetup(args []string) error {
	fs := flag.NewFlagSet("lunchsync setup", flag.ExitOnError)
	apiKey := fs.String("api-key", "", "Lunch Money API key (skips the prompt)")
	configPath := fs.String("config", "", "path to config.json")
	verbose := fs.Bool("v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := logging.Setup(logging.DefaultConfig(*verbose))

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	// Detection only needs the parsers; account names are irrelevant here.
	registry := banks.NewRegistry(accounts.NewResolver(nil, "", logger))

	w := &setup.Wizard{
		In:  os.Stdin,
		Out: os.Stdout,
		NewFetcher: func(key string) setup.AssetFetcher {
			return lunchmoney.New(key, logger)
		},
		SavePath: *configPath,
	}

	_, err = w.Run(context.Background(), cfg, fs.Args(), *apiKey, registry)
	return err
}
