package banks

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ArionMiles/lunchsync/pkg/accounts"
	"github.com/ArionMiles/lunchsync/pkg/api"
	"github.com/ArionMiles/lunchsync/pkg/parse"
)

// uobAccountNumber matches the "Account Number:,NNNN" metadata line in the
// statement preamble. The export arrives as a spreadsheet, so the comma is
// an artifact of flattening to CSV.
var uobAccountNumber = regexp.MustCompile(`Account Number:,(\d+)`)

// UOBCredit parses UOB credit card statements exported as spreadsheets and
// flattened to CSV text. UOB reports a single signed amount column with the
// inverse of the canonical convention (negative means payment), so every
// amount is negated. Pending rows carry the PENDING sentinel in the posting
// date column and are counted and skipped.
type UOBCredit struct {
	resolver *accounts.Resolver
}

func NewUOBCredit(resolver *accounts.Resolver) *UOBCredit {
	return &UOBCredit{resolver: resolver}
}

func (p *UOBCredit) Name() string { return "uob-credit" }
func (p *UOBCredit) Bank() string { return "UOB" }

func (p *UOBCredit) CanParse(content, _ string) bool {
	upper := strings.ToUpper(content)
	return strings.Contains(upper, "UNITED OVERSEAS BANK") &&
		(strings.Contains(upper, "LADY'S SOLITAIRE") || strings.Contains(upper, "PREFERRED PLATINUM")) &&
		strings.Contains(upper, "TRANSACTION DATE")
}

func (p *UOBCredit) DetectAccount(content string) *api.DetectedAccount {
	number := findInHead(content, 15, uobAccountNumber)
	if number == "" {
		return nil
	}
	return &api.DetectedAccount{
		CardNumber:  number,
		Bank:        p.Bank(),
		AccountType: "credit_card",
		DisplayHint: "UOB Credit Card",
	}
}

func (p *UOBCredit) Parse(content string) ([]api.Transaction, int, error) {
	upper := strings.ToUpper(content)
	account := "UOB Card"
	switch {
	case strings.Contains(upper, "LADY'S SOLITAIRE"):
		account = "UOB Lady's Solitaire"
	case strings.Contains(upper, "PREFERRED PLATINUM"):
		account = "UOB Platinum VISA"
	}
	if number := findInHead(content, 15, uobAccountNumber); number != "" {
		account = p.resolver.Resolve(number)
	}

	// Quoted description fields can span lines, so the whole content goes
	// through one CSV reader instead of line splitting.
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var txs []api.Transaction
	pendingSkipped := 0
	inTransactions := false
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("uob: malformed statement: %w", err)
		}
		if len(row) == 0 {
			continue
		}

		if len(row) >= 3 && strings.Contains(row[0], "Transaction Date") && strings.Contains(row[1], "Posting Date") {
			inTransactions = true
			continue
		}
		if !inTransactions {
			continue
		}
		if len(row) < 7 {
			continue
		}
		if rowContains(row, "Previous Balance") {
			continue
		}

		postingDate := strings.TrimSpace(row[1])
		if strings.EqualFold(postingDate, "PENDING") {
			pendingSkipped++
			continue
		}

		// The posting date is the settlement date, which is what the ledger
		// should carry.
		date, ok := parse.ParseDate(postingDate)
		if !ok {
			continue
		}

		desc := parse.CleanDescription(row[2])

		// Transaction Amount Local sits in the last column; some statements
		// leave it blank and carry the amount one column earlier.
		amountStr := strings.TrimSpace(row[len(row)-1])
		if amountStr == "" {
			amountStr = strings.TrimSpace(row[len(row)-2])
		}
		amount, ok := parse.ParseAmount(amountStr)
		if !ok {
			continue
		}

		txs = append(txs, api.NewTransaction(date, desc, amount.Neg(), account, rawRow(row)))
	}
	return txs, pendingSkipped, nil
}

func rowContains(row []string, substr string) bool {
	for _, cell := range row {
		if strings.Contains(cell, substr) {
			return true
		}
	}
	return false
}
