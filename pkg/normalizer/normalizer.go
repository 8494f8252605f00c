// Package normalizer drives the conversion pipeline: read each export,
// pick a parser, collect transactions, then deduplicate and sort the merged
// result. File-level failures are isolated so one bad export never aborts a
// batch.
package normalizer

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/ArionMiles/lunchsync/pkg/api"
	"github.com/ArionMiles/lunchsync/pkg/reader"
)

// FileError records why a file produced no transactions.
type FileError struct {
	Path    string
	Message string
}

// Selector picks a parser for file content, nil when none matches.
type Selector interface {
	Select(content, filepath string) api.Parser
}

// Options control the merge stage of the pipeline.
type Options struct {
	// Deduplicate drops transactions whose identity key was already seen,
	// keeping the first occurrence.
	Deduplicate bool
	// SortDescending orders the merged list newest first with a stable
	// sort, preserving parse order within a date.
	SortDescending bool
	// ReadFile overrides how file content is loaded. Defaults to
	// reader.ReadFile.
	ReadFile func(path string) (string, error)
}

// Normalizer accumulates per-batch state; create one per processing run or
// call ProcessFiles, which resets it.
type Normalizer struct {
	registry Selector
	opts     Options
	logger   *slog.Logger

	errors         []FileError
	pendingSkipped int
}

func New(registry Selector, opts Options, logger *slog.Logger) *Normalizer {
	if opts.ReadFile == nil {
		opts.ReadFile = reader.ReadFile
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{registry: registry, opts: opts, logger: logger}
}

// ProcessFile parses a single export. Failures are recorded in Errors and
// yield an empty list rather than an error.
func (n *Normalizer) ProcessFile(path string) []api.Transaction {
	content, err := n.opts.ReadFile(path)
	if err != nil {
		n.errors = append(n.errors, FileError{Path: path, Message: err.Error()})
		return nil
	}

	parser := n.registry.Select(content, path)
	if parser == nil {
		n.errors = append(n.errors, FileError{Path: path, Message: "No parser found for this file format"})
		return nil
	}

	txs, pending, err := parser.Parse(content)
	if err != nil {
		n.errors = append(n.errors, FileError{Path: path, Message: fmt.Sprintf("Parse error: %v", err)})
		return nil
	}

	n.pendingSkipped += pending
	n.logger.Debug("parsed export",
		"path", path,
		"parser", parser.Name(),
		"transactions", len(txs),
		"pending_skipped", pending,
	)
	return txs
}

// ProcessFiles parses every file and returns the merged transaction list,
// deduplicated and sorted per Options. Accumulated errors and pending
// counts are reset at the start of each call.
func (n *Normalizer) ProcessFiles(paths []string) []api.Transaction {
	n.errors = nil
	n.pendingSkipped = 0

	var all []api.Transaction
	for _, path := range paths {
		all = append(all, n.ProcessFile(path)...)
	}

	if n.opts.Deduplicate {
		all = deduplicate(all)
	}
	if n.opts.SortDescending {
		sort.SliceStable(all, func(i, j int) bool {
			return all[i].Date.After(all[j].Date)
		})
	}
	return all
}

// ProcessDirectory processes every export file found directly in dir.
func (n *Normalizer) ProcessDirectory(dir string) []api.Transaction {
	return n.ProcessFiles(reader.FindExports([]string{dir}))
}

// Errors returns the file-level failures from the last run.
func (n *Normalizer) Errors() []FileError {
	return append([]FileError(nil), n.errors...)
}

// PendingSkipped returns how many pending rows parsers skipped in the last
// run.
func (n *Normalizer) PendingSkipped() int {
	return n.pendingSkipped
}

func deduplicate(txs []api.Transaction) []api.Transaction {
	seen := make(map[api.DedupKey]struct{}, len(txs))
	unique := txs[:0:0]

	for _, tx := range txs {
		key := tx.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, tx)
	}
	return unique
}
