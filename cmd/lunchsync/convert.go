package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"

	"github.com/ArionMiles/lunchsync/pkg/accounts"
	"github.com/ArionMiles/lunchsync/pkg/api"
	"github.com/ArionMiles/lunchsync/pkg/banks"
	"github.com/ArionMiles/lunchsync/pkg/config"
	"github.com/ArionMiles/lunchsync/pkg/logging"
	"github.com/ArionMiles/lunchsync/pkg/lunchmoney"
	"github.com/ArionMiles/lunchsync/pkg/normalizer"
	"github.com/ArionMiles/lunchsync/pkg/reader"
	csvwriter "github.com/ArionMiles/lunchsync/pkg/writer/csv"
	"github.com/ArionMiles/lunchsync/pkg/writer/postgres"
)

type convertOptions struct {
	outputPath string
	format     string
	full       bool
	output     string
	noDedup    bool
	noSort     bool
	configPath string
	account    string
	dryRun     bool
	apiKey     string
	verbose    bool
}

func runConvert(args []string) error {
	fs := flag.NewFlagSet("lunchsync", flag.ExitOnError)
	var opts convertOptions
	fs.StringVar(&opts.outputPath, "o", "", "output file (default stdout)")
	fs.StringVar(&opts.outputPath, "output-file", "", "output file (default stdout)")
	fs.StringVar(&opts.format, "format", "csv", "delimited format: csv or tsv")
	fs.BoolVar(&opts.full, "full", false, "write all transaction fields, not just the compact view")
	fs.StringVar(&opts.output, "output", "csv", "destination: csv, postgres, or lunchmoney")
	fs.BoolVar(&opts.noDedup, "no-dedup", false, "keep duplicate transactions")
	fs.BoolVar(&opts.noSort, "no-sort", false, "keep file order instead of sorting newest first")
	fs.StringVar(&opts.configPath, "config", "", "path to config.json")
	fs.StringVar(&opts.account, "account", "", "force this account name for all transactions")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "show what would be uploaded without uploading")
	fs.StringVar(&opts.apiKey, "api-key", "", "Lunch Money API key (overrides config)")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := logging.Setup(logging.DefaultConfig(opts.verbose))

	if fs.NArg() == 0 {
		return errors.New("no input files or directories given")
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	resolver := accounts.NewResolver(cfg.Mappings(), opts.account, logger.With("component", "accounts"))
	registry := banks.NewRegistry(resolver)
	n := normalizer.New(registry, normalizer.Options{
		Deduplicate:    !opts.noDedup,
		SortDescending: !opts.noSort,
	}, logger.With("component", "normalizer"))

	files := reader.FindExports(fs.Args())
	if len(files) == 0 {
		return errors.New("no valid input files found")
	}

	txs := n.ProcessFiles(files)

	for _, fe := range n.Errors() {
		fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", fe.Path, fe.Message)
	}
	if pending := n.PendingSkipped(); pending > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d pending transaction(s)\n", pending)
	}
	fmt.Fprintf(os.Stderr, "Processed %d file(s), %d transaction(s)\n", len(files), len(txs))

	switch opts.output {
	case "csv":
		return writeDelimited(txs, opts)
	case "postgres":
		return storePostgres(txs, logger)
	case "lunchmoney":
		return uploadLunchMoney(txs, cfg, opts, logger)
	default:
		return errors.Errorf("unknown output %q (expected csv, postgres, or lunchmoney)", opts.output)
	}
}

func writeDelimited(txs []api.Transaction, opts convertOptions) error {
	var delimiter rune
	switch opts.format {
	case "csv":
		delimiter = ','
	case "tsv":
		delimiter = '\t'
	default:
		return errors.Errorf("unknown format %q (expected csv or tsv)", opts.format)
	}

	if opts.outputPath == "" {
		if opts.full {
			return csvwriter.WriteFullTo(txs, os.Stdout, delimiter)
		}
		return csvwriter.WriteCompactTo(txs, os.Stdout, delimiter)
	}

	if opts.full {
		if err := csvwriter.WriteFull(txs, opts.outputPath, delimiter); err != nil {
			return err
		}
	} else {
		if err := csvwriter.WriteCompact(txs, opts.outputPath, delimiter); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", opts.outputPath)
	return nil
}

func storePostgres(txs []api.Transaction, logger *slog.Logger) error {
	pg, err := config.LoadPostgres()
	if err != nil {
		return err
	}
	if pg.Host == "" {
		return errors.New("POSTGRES_HOST is not set")
	}

	sink, err := postgres.New(postgres.Config{
		Host:     pg.Host,
		Port:     pg.Port,
		Database: pg.Database,
		User:     pg.User,
		Password: pg.Password,
		SSLMode:  pg.SSLMode,
	}, logger.With("component", "postgres_writer"))
	if err != nil {
		return err
	}
	defer sink.Close()

	inserted, err := sink.Store(context.Background(), txs)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Stored %d new transaction(s), %d duplicate(s)\n", inserted, len(txs)-inserted)
	return nil
}

func uploadLunchMoney(txs []api.Transaction, cfg *config.Config, opts convertOptions, logger *slog.Logger) error {
	apiKey := cfg.APIKey(opts.apiKey)
	if apiKey == "" && !opts.dryRun {
		return errors.New("no Lunch Money API key configured; run 'lunchsync setup' or pass --api-key")
	}

	mapping := cfg.LunchMoney.AccountMapping
	if len(mapping) == 0 && !opts.dryRun {
		return errors.New("no account mapping configured; run 'lunchsync setup'")
	}

	if opts.dryRun {
		printDryRun(txs, mapping)
		return nil
	}

	client := lunchmoney.New(apiKey, logger.With("component", "lunchmoney"))
	result := client.UploadTransactions(context.Background(), txs, mapping, true)

	fmt.Fprintf(os.Stderr, "Uploaded %d, skipped %d of %d transaction(s)\n",
		result.Uploaded, result.Skipped, result.Total())
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "Upload error: %s\n", e)
	}
	if len(result.Errors) > 0 {
		return errors.New("some batches failed to upload")
	}
	return nil
}

// printDryRun previews the upload grouped by account, flagging accounts
// that have no asset mapping and would be skipped.
func printDryRun(txs []api.Transaction, mapping map[string]int) {
	fmt.Println("Dry run: nothing will be uploaded.")
	fmt.Println()

	byAccount := make(map[string][]api.Transaction)
	var order []string
	for _, tx := range txs {
		if _, seen := byAccount[tx.Account]; !seen {
			order = append(order, tx.Account)
		}
		byAccount[tx.Account] = append(byAccount[tx.Account], tx)
	}

	for _, account := range order {
		group := byAccount[account]
		if assetID, ok := mapping[account]; ok {
			fmt.Printf("%s -> asset %d (%d transaction(s))\n", account, assetID, len(group))
		} else {
			fmt.Printf("%s -> NOT MAPPED, would be skipped (%d transaction(s))\n", account, len(group))
		}
		for _, tx := range group {
			extID := lunchmoney.GenerateExternalID(tx)
			if len(extID) > 16 {
				extID = extID[:16] + "..."
			}
			fmt.Printf("  %s  %10s  %-40s  [%s]\n",
				tx.Date.Format("2006-01-02"), tx.Amount.String(), tx.Description, extID)
		}
	}
}
