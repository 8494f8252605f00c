package banks

import (
	"encoding/csv"
	"io"
	"regexp"
	"strings"

	"github.com/ArionMiles/lunchsync/pkg/accounts"
	"github.com/ArionMiles/lunchsync/pkg/api"
	"github.com/ArionMiles/lunchsync/pkg/parse"
)

const (
	ocbcCreditHeader = "Transaction date,Description,Withdrawals"
	ocbc360Header    = "Transaction date,Value date,Description"
)

// ocbc360AccountNumber matches the xxx-xxxxxx-xxx account number OCBC prints
// above the 360 statement table.
var ocbc360AccountNumber = regexp.MustCompile(`(\d{3}-\d{6}-\d{3})`)

// OCBCCredit parses OCBC credit card CSV exports. The format uses split
// withdrawal/deposit columns and naive comma splitting is safe because OCBC
// never quotes fields in this export.
type OCBCCredit struct {
	resolver *accounts.Resolver
}

func NewOCBCCredit(resolver *accounts.Resolver) *OCBCCredit {
	return &OCBCCredit{resolver: resolver}
}

func (p *OCBCCredit) Name() string { return "ocbc-credit" }
func (p *OCBCCredit) Bank() string { return "OCBC" }

func (p *OCBCCredit) CanParse(content, _ string) bool {
	return (strings.Contains(content, "OCBC Rewards Card") ||
		strings.Contains(content, "OCBC Credit Card")) &&
		strings.Contains(content, ocbcCreditHeader)
}

func (p *OCBCCredit) DetectAccount(content string) *api.DetectedAccount {
	card := findInHead(content, 10, dashedCardNumber)
	if card == "" {
		return nil
	}
	return &api.DetectedAccount{
		CardNumber:  card,
		Bank:        p.Bank(),
		AccountType: "credit_card",
		DisplayHint: "OCBC Credit Card",
	}
}

func (p *OCBCCredit) Parse(content string) ([]api.Transaction, int, error) {
	accountID := findInHead(content, 10, dashedCardNumber)
	if accountID == "" {
		accountID = "OCBC Card"
	}
	account := p.resolver.Resolve(accountID)

	var txs []api.Transaction
	inTransactions := false
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		if strings.Contains(line, ocbcCreditHeader) {
			inTransactions = true
			continue
		}
		if !inTransactions {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 3 {
			continue
		}
		date, ok := parse.ParseDate(parts[0])
		if !ok {
			continue
		}

		desc := parse.CleanDescription(parts[1])
		withdrawal, wok := amountAt(parts, 2)
		deposit, dok := amountAt(parts, 3)

		if amount, ok := debitCreditTransaction(withdrawal, deposit, wok, dok); ok {
			txs = append(txs, api.NewTransaction(date, desc, amount, account, rawLine(line)))
		}
	}
	return txs, 0, nil
}

// OCBC360 parses OCBC 360 savings account CSV exports. Fields can be quoted
// here, so rows go through a real CSV reader.
type OCBC360 struct {
	resolver *accounts.Resolver
}

func NewOCBC360(resolver *accounts.Resolver) *OCBC360 {
	return &OCBC360{resolver: resolver}
}

func (p *OCBC360) Name() string { return "ocbc-360" }
func (p *OCBC360) Bank() string { return "OCBC" }

func (p *OCBC360) CanParse(content, _ string) bool {
	return strings.Contains(content, "360 Account") &&
		strings.Contains(content, ocbc360Header)
}

func (p *OCBC360) DetectAccount(content string) *api.DetectedAccount {
	number := findInHead(content, 10, ocbc360AccountNumber)
	if number == "" {
		return nil
	}
	return &api.DetectedAccount{
		CardNumber:  number,
		Bank:        p.Bank(),
		AccountType: "savings",
		DisplayHint: "OCBC 360 Account",
	}
}

func (p *OCBC360) Parse(content string) ([]api.Transaction, int, error) {
	accountID := findInHead(content, 10, ocbc360AccountNumber)
	if accountID == "" {
		accountID = "OCBC 360"
	}
	account := p.resolver.Resolve(accountID)

	headerIdx := strings.Index(content, ocbc360Header)
	if headerIdx == -1 {
		return nil, 0, nil
	}

	reader := csv.NewReader(strings.NewReader(content[headerIdx:]))
	reader.FieldsPerRecord = -1

	headerSkipped := false
	var txs []api.Transaction
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if !headerSkipped {
			headerSkipped = true
			continue
		}
		if len(row) < 5 {
			continue
		}

		date, ok := parse.ParseDate(row[0])
		if !ok {
			continue
		}

		desc := parse.CleanDescription(row[2])
		withdrawal, wok := amountAt(row, 3)
		deposit, dok := amountAt(row, 4)

		if amount, ok := debitCreditTransaction(withdrawal, deposit, wok, dok); ok {
			txs = append(txs, api.NewTransaction(date, desc, amount, account, rawRow(row)))
		}
	}
	return txs, 0, nil
}
