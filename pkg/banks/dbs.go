package banks

import (
	"encoding/csv"
	"regexp"
	"strings"

	"github.com/ArionMiles/lunchsync/pkg/accounts"
	"github.com/ArionMiles/lunchsync/pkg/api"
	"github.com/ArionMiles/lunchsync/pkg/parse"
)

// dbsSavingsAccountNumber matches the xxx-x-xxxxxx account number embedded
// in the DBS savings statement banner line.
var dbsSavingsAccountNumber = regexp.MustCompile(`DBS Savings Account\s+(\d{3}-\d-\d{6})`)

// csvFields parses a single export line with CSV quoting rules. Reports
// false for lines that are not valid CSV.
func csvFields(line string) ([]string, bool) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	row, err := reader.Read()
	if err != nil {
		return nil, false
	}
	return row, true
}

// DBSSavings parses DBS savings account CSV exports. Rows carry a
// transaction code and reference columns between the date and the
// debit/credit pair, and descriptions may be quoted.
type DBSSavings struct {
	resolver *accounts.Resolver
}

func NewDBSSavings(resolver *accounts.Resolver) *DBSSavings {
	return &DBSSavings{resolver: resolver}
}

func (p *DBSSavings) Name() string { return "dbs-savings" }
func (p *DBSSavings) Bank() string { return "DBS" }

func (p *DBSSavings) CanParse(content, _ string) bool {
	return strings.Contains(content, "DBS Savings Account") &&
		strings.Contains(content, "Transaction Code")
}

func (p *DBSSavings) DetectAccount(_ string) *api.DetectedAccount { return nil }

func (p *DBSSavings) Parse(content string) ([]api.Transaction, int, error) {
	accountID := findInHead(content, 10, dbsSavingsAccountNumber)
	if accountID == "" {
		accountID = "DBS Savings"
	}
	account := p.resolver.Resolve(accountID)

	var txs []api.Transaction
	inTransactions := false
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		if strings.Contains(line, "Transaction Date") && strings.Contains(line, "Transaction Code") {
			inTransactions = true
			continue
		}
		if !inTransactions {
			continue
		}

		parts, ok := csvFields(line)
		if !ok || len(parts) < 8 {
			continue
		}

		date, ok := parse.ParseDate(parts[0])
		if !ok {
			continue
		}

		desc := parse.CleanDescription(parts[2])
		debit, dok := amountAt(parts, 7)
		credit, cok := amountAt(parts, 8)

		if amount, ok := debitCreditTransaction(debit, credit, dok, cok); ok {
			txs = append(txs, api.NewTransaction(date, desc, amount, account, rawRow(parts)))
		}
	}
	return txs, 0, nil
}

// DBSCredit parses DBS credit card CSV exports. The status column flags
// pending rows, which are counted and skipped rather than imported.
type DBSCredit struct {
	resolver *accounts.Resolver
}

func NewDBSCredit(resolver *accounts.Resolver) *DBSCredit {
	return &DBSCredit{resolver: resolver}
}

func (p *DBSCredit) Name() string { return "dbs-credit" }
func (p *DBSCredit) Bank() string { return "DBS" }

func (p *DBSCredit) CanParse(content, _ string) bool {
	return (strings.Contains(content, "DBS MasterCard") ||
		strings.Contains(content, "Card Transaction Details")) &&
		strings.Contains(content, "Transaction Posting Date")
}

func (p *DBSCredit) DetectAccount(content string) *api.DetectedAccount {
	card := findInHead(content, 10, dashedCardNumber)
	if card == "" {
		return nil
	}
	return &api.DetectedAccount{
		CardNumber:  card,
		Bank:        p.Bank(),
		AccountType: "credit_card",
		DisplayHint: "DBS Credit Card",
	}
}

func (p *DBSCredit) Parse(content string) ([]api.Transaction, int, error) {
	accountID := findInHead(content, 10, dashedCardNumber)
	if accountID == "" {
		accountID = "DBS Card"
	}
	account := p.resolver.Resolve(accountID)

	var txs []api.Transaction
	pendingSkipped := 0
	inTransactions := false
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		if strings.Contains(line, "Transaction Date") && strings.Contains(line, "Transaction Posting Date") {
			inTransactions = true
			continue
		}
		if !inTransactions {
			continue
		}

		parts, ok := csvFields(line)
		if !ok || len(parts) < 7 {
			continue
		}

		// Transaction Status column
		if len(parts) > 5 && strings.EqualFold(strings.TrimSpace(parts[5]), "pending") {
			pendingSkipped++
			continue
		}

		date, ok := parse.ParseDate(parts[0])
		if !ok {
			continue
		}

		desc := parse.CleanDescription(parts[2])
		debit, dok := amountAt(parts, 6)
		credit, cok := amountAt(parts, 7)

		if amount, ok := debitCreditTransaction(debit, credit, dok, cok); ok {
			txs = append(txs, api.NewTransaction(date, desc, amount, account, rawRow(parts)))
		}
	}
	return txs, pendingSkipped, nil
}
