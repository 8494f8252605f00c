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

var (
	// citiCardNumber matches the apostrophe-wrapped 16-digit card number in
	// the last column of every Citi export row.
	citiCardNumber = regexp.MustCompile(`'(\d{16})'`)

	citiLeadingDate = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}`)
)

// Citi parses Citibank credit card CSV exports. The file is headerless with
// exactly five columns per row (date, description, amount, blank, wrapped
// card number), detected structurally from the first row. Amounts are
// already canonical. The card number appears per row, so the account is
// resolved per transaction rather than once per file.
type Citi struct {
	resolver *accounts.Resolver
}

func NewCiti(resolver *accounts.Resolver) *Citi {
	return &Citi{resolver: resolver}
}

func (p *Citi) Name() string { return "citi-credit" }
func (p *Citi) Bank() string { return "Citi" }

func (p *Citi) CanParse(content, _ string) bool {
	content = strings.TrimPrefix(content, "\ufeff")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) == 0 {
		return false
	}

	row, ok := csvFields(lines[0])
	if !ok || len(row) != 5 {
		return false
	}
	return citiLeadingDate.MatchString(row[0]) && citiCardNumber.MatchString(row[4])
}

func (p *Citi) DetectAccount(content string) *api.DetectedAccount {
	content = strings.TrimPrefix(content, "\ufeff")
	m := citiCardNumber.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	return &api.DetectedAccount{
		CardNumber:  m[1],
		Bank:        p.Bank(),
		AccountType: "credit_card",
		DisplayHint: "Citi Credit Card",
	}
}

func (p *Citi) Parse(content string) ([]api.Transaction, int, error) {
	content = strings.TrimPrefix(content, "\ufeff")

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
		if len(row) < 5 {
			continue
		}

		date, ok := parse.ParseDate(row[0])
		if !ok {
			continue
		}

		desc := parse.CleanDescription(row[1])
		amount, ok := parse.ParseAmount(row[2])
		if !ok {
			continue
		}

		cardNum := "Citi Card"
		if m := citiCardNumber.FindStringSubmatch(row[4]); m != nil {
			cardNum = m[1]
		}
		account := p.resolver.Resolve(cardNum)

		txs = append(txs, api.NewTransaction(date, desc, amount, account, rawRow(row)))
	}
	return txs, 0, nil
}
