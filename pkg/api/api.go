// Package api defines the core data structures and contracts for lunchsync.
package api

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is assigned to every transaction unless a parser knows
// better.
const DefaultCurrency = "SGD"

// NoDescription replaces an empty description at construction time.
const NoDescription = "(No description)"

// dedupDescriptionLen is how much of the description participates in dedup
// identity. Overlapping exports often differ only in the tail (reference
// fragments, location suffixes), so identity is deliberately truncated.
const dedupDescriptionLen = 30

// Transaction is a normalized bank transaction. Amounts follow one sign
// convention across every bank: negative = money leaving the account,
// positive = money entering it.
//
// Transactions are created once per parsed row via NewTransaction and never
// mutated afterwards.
type Transaction struct {
	Date             time.Time
	Description      string
	Amount           decimal.Decimal
	Account          string
	OriginalCurrency string
	OriginalAmount   *decimal.Decimal
	Category         string
	// Reference is a bank-provided unique transaction identifier, when the
	// bank supplies one. Used for external deduplication.
	Reference string

	// RawData carries the original source row for debugging and audit. It
	// never participates in dedup identity.
	RawData map[string]any
}

// NewTransaction builds a Transaction with the default currency, replacing
// an empty description with the NoDescription placeholder. Parsers construct
// transactions only through this function.
func NewTransaction(date time.Time, description string, amount decimal.Decimal, account string, raw map[string]any) Transaction {
	if strings.TrimSpace(description) == "" {
		description = NoDescription
	}
	return Transaction{
		Date:             date,
		Description:      description,
		Amount:           amount,
		Account:          account,
		OriginalCurrency: DefaultCurrency,
		RawData:          raw,
	}
}

// IsExpense reports whether money left the account.
func (t Transaction) IsExpense() bool { return t.Amount.IsNegative() }

// IsIncome reports whether money entered the account.
func (t Transaction) IsIncome() bool { return t.Amount.IsPositive() }

// DedupKey identifies a transaction for cross-file deduplication: date,
// first 30 characters of the description, the amount's canonical string
// form, and the resolved account. Narrower than full field equality on
// purpose.
type DedupKey struct {
	Date        string
	Description string
	Amount      string
	Account     string
}

// Key returns the transaction's deduplication identity.
func (t Transaction) Key() DedupKey {
	desc := t.Description
	if runes := []rune(desc); len(runes) > dedupDescriptionLen {
		desc = string(runes[:dedupDescriptionLen])
	}
	return DedupKey{
		Date:        t.Date.Format(time.DateOnly),
		Description: desc,
		Amount:      t.Amount.String(),
		Account:     t.Account,
	}
}

// DetectedAccount is the output of lightweight account sniffing used by the
// setup wizard. It is not part of the transaction pipeline.
type DetectedAccount struct {
	CardNumber  string
	Bank        string
	AccountType string // credit_card or savings
	DisplayHint string // e.g. "OCBC Credit Card"
}

// Parser is implemented by one concrete type per bank/product export
// format.
type Parser interface {
	// Name identifies the variant (e.g. "ocbc-credit"). Registration is
	// keyed on it.
	Name() string
	// Bank returns the issuing bank's display name.
	Bank() string
	// CanParse reports whether the content matches this variant's format.
	// Detection is content-based; the filepath is at most a tie-breaking
	// signal. Predicates must not accept another variant's exports.
	CanParse(content, filepath string) bool
	// Parse extracts transactions from matching content. pendingSkipped
	// counts pending (unsettled) rows the variant excluded; it is zero for
	// variants whose bank never reports pending rows. Row-level problems
	// are skipped silently; an error means the whole file is unusable.
	Parse(content string) (txs []Transaction, pendingSkipped int, err error)
	// DetectAccount extracts the account identifier present in the content
	// without fully parsing it, or nil when the variant cannot tell.
	DetectAccount(content string) *DetectedAccount
}
