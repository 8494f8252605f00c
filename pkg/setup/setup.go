// Package setup implements the interactive configuration wizard: scan bank
// exports for accounts, fetch Lunch Money assets, and let the user map one
// to the other. The mapped asset's name becomes the account's friendly
// name, so uploads line up without further configuration.
package setup

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ArionMiles/lunchsync/pkg/api"
	"github.com/ArionMiles/lunchsync/pkg/config"
	"github.com/ArionMiles/lunchsync/pkg/lunchmoney"
	"github.com/ArionMiles/lunchsync/pkg/reader"
)

// MaskCardNumber hides all but the last four digits for display.
func MaskCardNumber(cardNumber string) string {
	clean := strings.NewReplacer("-", "", " ", "").Replace(cardNumber)
	if len(clean) > 4 {
		return "****" + clean[len(clean)-4:]
	}
	return cardNumber
}

// ParserSource lists the registered parsers, letting the scanner probe each
// format without depending on the registry type.
type ParserSource interface {
	All() []api.Parser
}

// ScanForAccounts reads each export under paths and collects the accounts
// the parsers can identify, deduplicated by card number. Unreadable files
// and unrecognized formats are skipped; setup works with whatever it can
// find.
func ScanForAccounts(paths []string, parsers ParserSource, readFile func(string) (string, error)) []api.DetectedAccount {
	if readFile == nil {
		readFile = reader.ReadFile
	}

	var detected []api.DetectedAccount
	seen := make(map[string]bool)

	for _, path := range reader.FindExports(paths) {
		content, err := readFile(path)
		if err != nil {
			continue
		}

		for _, p := range parsers.All() {
			if !p.CanParse(content, path) {
				continue
			}
			if acc := p.DetectAccount(content); acc != nil && !seen[acc.CardNumber] {
				seen[acc.CardNumber] = true
				detected = append(detected, *acc)
			}
			break
		}
	}
	return detected
}

// AssetFetcher is the slice of the Lunch Money client the wizard needs.
type AssetFetcher interface {
	GetAssets(ctx context.Context) ([]lunchmoney.Asset, error)
}

// Wizard drives the interactive setup session.
type Wizard struct {
	In  io.Reader
	Out io.Writer

	// NewFetcher builds the API client once a key is known.
	NewFetcher func(apiKey string) AssetFetcher

	// SavePath overrides where the config is written. Empty uses the
	// default location.
	SavePath string
}

// Run executes the wizard against an existing config (which may be empty)
// and returns the updated config. The config is only saved when setup
// reaches a usable state.
func (w *Wizard) Run(ctx context.Context, cfg *config.Config, scanPaths []string, apiKey string, parsers ParserSource) (*config.Config, error) {
	out := w.Out
	in := bufio.NewScanner(w.In)

	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintln(out, "  LUNCHSYNC SETUP")
	fmt.Fprintln(out, strings.Repeat("=", 50))

	var detected []api.DetectedAccount
	if len(scanPaths) > 0 {
		fmt.Fprintln(out, "\nScanning bank export files...")
		detected = ScanForAccounts(scanPaths, parsers, nil)

		if len(detected) == 0 {
			fmt.Fprintln(out, "No accounts found in the provided files.")
			fmt.Fprintln(out, "Make sure you're providing bank export files (CSV/XLS).")
			return cfg, nil
		}
		fmt.Fprintf(out, "Found %d account(s):\n\n", len(detected))
		for _, acc := range detected {
			fmt.Fprintf(out, "  %s: %s\n", acc.DisplayHint, MaskCardNumber(acc.CardNumber))
		}
	} else {
		fmt.Fprintln(out, "\nNo bank export files provided.")
		fmt.Fprintln(out, "Usage: lunchsync setup ~/Downloads/bank-exports/")
	}

	if apiKey == "" {
		if existing := cfg.LunchMoney.APIKey; existing != "" {
			masked := "***"
			if len(existing) > 8 {
				masked = existing[:8] + "..."
			}
			fmt.Fprintf(out, "\nExisting Lunch Money API key: %s\n", masked)
			fmt.Fprint(out, "Use this key? [Y/n]: ")
			answer := readLine(in)
			if answer == "" || strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes") {
				apiKey = existing
			}
		}
		if apiKey == "" {
			fmt.Fprintln(out, "\nGet your API key at: https://my.lunchmoney.app/developers")
			fmt.Fprint(out, "Lunch Money API key: ")
			apiKey = readLine(in)
		}
	}
	if apiKey == "" {
		fmt.Fprintln(out, "\nNo API key provided. Cannot complete setup.")
		return cfg, nil
	}
	cfg.LunchMoney.APIKey = apiKey

	fmt.Fprintln(out, "\nFetching Lunch Money assets...")
	assets, err := w.NewFetcher(apiKey).GetAssets(ctx)
	if err != nil {
		fmt.Fprintf(out, "Error fetching assets: %v\n", err)
		fmt.Fprintln(out, "Please check your API key and try again.")
		return cfg, err
	}
	if len(assets) == 0 {
		fmt.Fprintln(out, "No assets found in your Lunch Money account.")
		fmt.Fprintln(out, "Create assets at https://my.lunchmoney.app/ then run setup again.")
		return cfg, nil
	}

	fmt.Fprintf(out, "Found %d asset(s):\n\n", len(assets))
	for i, asset := range assets {
		fmt.Fprintf(out, "  [%d] %s\n", i+1, asset.Name)
	}

	if len(detected) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, strings.Repeat("-", 50))
		fmt.Fprintln(out, "MAP ACCOUNTS TO LUNCH MONEY ASSETS")
		fmt.Fprintln(out, strings.Repeat("-", 50))
		fmt.Fprintln(out, "\nThe asset name will be used as the account name.")

		var accountsCfg []config.Account
		mapping := make(map[string]int)

		for _, acc := range detected {
			fmt.Fprintf(out, "\n%s (%s):\n", acc.DisplayHint, MaskCardNumber(acc.CardNumber))

			for {
				fmt.Fprintf(out, "  Select asset [1-%d] or 's' to skip: ", len(assets))
				choice := readLine(in)

				if strings.EqualFold(choice, "s") {
					fmt.Fprintln(out, "  Skipped.")
					break
				}

				idx, err := strconv.Atoi(choice)
				if err != nil || idx < 1 || idx > len(assets) {
					fmt.Fprintf(out, "  Invalid. Enter 1-%d or 's' to skip.\n", len(assets))
					continue
				}

				asset := assets[idx-1]
				accountsCfg = append(accountsCfg, config.Account{
					CardNumber: acc.CardNumber,
					Name:       asset.Name,
					Bank:       acc.Bank,
					Type:       acc.AccountType,
				})
				mapping[asset.Name] = asset.ID
				fmt.Fprintf(out, "  -> %s\n", asset.Name)
				break
			}
		}

		cfg.Accounts = accountsCfg
		cfg.LunchMoney.AccountMapping = mapping
	}

	savedPath, err := cfg.Save(w.SavePath)
	if err != nil {
		return cfg, fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintln(out, "SETUP COMPLETE")
	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintf(out, "\nConfiguration saved to: %s\n", savedPath)

	if len(cfg.Accounts) > 0 {
		fmt.Fprintf(out, "\nConfigured %d account(s):\n", len(cfg.Accounts))
		for _, acc := range cfg.Accounts {
			fmt.Fprintf(out, "  - %s (%s)\n", acc.Name, acc.Bank)
		}
	}
	fmt.Fprintln(out, "\nYou can now run:")
	fmt.Fprintln(out, "  lunchsync ~/Downloads/ --output lunchmoney")
	fmt.Fprintln(out, "  lunchsync ~/Downloads/ --output lunchmoney --dry-run")

	return cfg, nil
}

func readLine(in *bufio.Scanner) string {
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}
