// Package csv writes normalized transactions as delimited text. The column
// order and header text are consumed by downstream spreadsheets and scripts
// and must not change.
package csv

import (
	"encoding/csv"
	"io"
	"os"
	"time"

	"github.com/ArionMiles/lunchsync/pkg/api"
)

var compactHeader = []string{"Date", "Description", "Amount", "Account"}

var fullHeader = []string{
	"date",
	"description",
	"amount",
	"account",
	"original_currency",
	"original_amount",
	"category",
	"reference",
}

// WriteCompact writes the 4-column view to path. delimiter is ',' for CSV
// or '\t' for TSV.
func WriteCompact(txs []api.Transaction, path string, delimiter rune) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteCompactTo(txs, w, delimiter)
	})
}

// WriteCompactTo writes the 4-column view to w.
func WriteCompactTo(txs []api.Transaction, w io.Writer, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	if err := cw.Write(compactHeader); err != nil {
		return err
	}
	for _, tx := range txs {
		record := []string{
			tx.Date.Format(time.DateOnly),
			tx.Description,
			tx.Amount.String(),
			tx.Account,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFull writes every transaction field to path.
func WriteFull(txs []api.Transaction, path string, delimiter rune) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteFullTo(txs, w, delimiter)
	})
}

// WriteFullTo writes every transaction field to w.
func WriteFullTo(txs []api.Transaction, w io.Writer, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	if err := cw.Write(fullHeader); err != nil {
		return err
	}
	for _, tx := range txs {
		originalAmount := ""
		if tx.OriginalAmount != nil {
			originalAmount = tx.OriginalAmount.String()
		}
		record := []string{
			tx.Date.Format(time.DateOnly),
			tx.Description,
			tx.Amount.String(),
			tx.Account,
			tx.OriginalCurrency,
			originalAmount,
			tx.Category,
			tx.Reference,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
