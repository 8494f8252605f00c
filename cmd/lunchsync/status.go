package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/ArionMiles/lunchsync/pkg/config"
	"github.com/ArionMiles/lunchsync/pkg/logging"
	"github.com/ArionMiles/lunchsync/pkg/lunchmoney"
	"github.com/ArionMiles/lunchsync/pkg/setup"
)

// runStatus reports what is configured and whether the Lunch Money API is
// reachable with the stored key.
func runStatus(args []string) error {
	fs := flag.NewFlagSet("lunchsync status", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config.json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := logging.Setup(logging.DefaultConfig(false))

	fmt.Println("=== Lunchsync Status ===")
	fmt.Println()

	allGood := true

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Config: ✗ %v\n", err)
		return err
	}

	if len(cfg.Accounts) > 0 {
		fmt.Printf("Accounts: ✓ %d configured\n", len(cfg.Accounts))
		for _, acc := range cfg.Accounts {
			fmt.Printf("  - %s (%s, %s)\n", acc.Name, acc.Bank, setup.MaskCardNumber(acc.CardNumber))
		}
	} else {
		fmt.Println("Accounts: ✗ None configured (run 'lunchsync setup')")
		allGood = false
	}

	apiKey := cfg.LunchMoney.APIKey
	if apiKey == "" {
		fmt.Println("Lunch Money API key: ✗ Not configured")
		allGood = false
	} else {
		fmt.Println("Lunch Money API key: ✓ Configured")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client := lunchmoney.New(apiKey, logger)
		assets, err := client.GetAssets(ctx)
		if err != nil {
			fmt.Printf("Lunch Money API: ✗ %v\n", err)
			allGood = false
		} else {
			fmt.Printf("Lunch Money API: ✓ Connected (%d asset(s))\n", len(assets))
		}
	}

	if len(cfg.LunchMoney.AccountMapping) > 0 {
		fmt.Printf("Asset mappings: ✓ %d configured\n", len(cfg.LunchMoney.AccountMapping))
		for name, assetID := range cfg.LunchMoney.AccountMapping {
			fmt.Printf("  - %s -> asset %d\n", name, assetID)
		}
	} else {
		fmt.Println("Asset mappings: ✗ None configured")
		allGood = false
	}

	fmt.Println()
	if allGood {
		fmt.Println("✓ Ready to upload.")
	} else {
		fmt.Println("⚠ Setup incomplete. Run 'lunchsync setup' to finish configuration.")
	}
	return nil
}
