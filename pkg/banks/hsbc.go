package banks

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/ArionMiles/lunchsync/pkg/api"
	"github.com/ArionMiles/lunchsync/pkg/parse"
)

// hsbcMaskedCard is the bullet-masked card tail HSBC embeds in every
// Revolution export row.
const hsbcMaskedCard = "•••• •••• •••• 3363"

// HSBCRevolution parses HSBC Revolution card CSV exports. The file is
// headerless and carries a single signed amount column already matching the
// canonical convention, so amounts pass through unchanged. The card is
// identified by its masked tail rather than a full number, so the account
// label is fixed.
type HSBCRevolution struct{}

func NewHSBCRevolution() *HSBCRevolution { return &HSBCRevolution{} }

func (p *HSBCRevolution) Name() string { return "hsbc-revolution" }
func (p *HSBCRevolution) Bank() string { return "HSBC" }

func (p *HSBCRevolution) CanParse(content, _ string) bool {
	if strings.Contains(content, hsbcMaskedCard) {
		return true
	}
	return strings.Contains(strings.ToUpper(content), "PYMT @ AXS") &&
		strings.Contains(content, "3363")
}

func (p *HSBCRevolution) DetectAccount(content string) *api.DetectedAccount {
	if !p.CanParse(content, "") {
		return nil
	}
	return &api.DetectedAccount{
		CardNumber:  "3363",
		Bank:        p.Bank(),
		AccountType: "credit_card",
		DisplayHint: "HSBC Revolution",
	}
}

func (p *HSBCRevolution) Parse(content string) ([]api.Transaction, int, error) {
	const account = "HSBC Revolution"

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var txs []api.Transaction
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if len(row) < 3 {
			continue
		}

		date, ok := parse.ParseDate(row[0])
		if !ok {
			continue
		}

		desc := parse.CleanDescription(row[1])
		amount, ok := parse.ParseAmount(strings.TrimSpace(row[len(row)-1]))
		if !ok {
			continue
		}

		txs = append(txs, api.NewTransaction(date, desc, amount, account, rawRow(row)))
	}
	return txs, 0, nil
}
