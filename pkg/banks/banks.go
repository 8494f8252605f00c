// Package banks contains one parser per supported bank export format and
// the registry that picks the right one for a given file's content.
package banks

import (
	"regexp"
	"strings"

	"github.com/ArionMiles/lunchsync/pkg/parse"
	"github.com/shopspring/decimal"
)

// dashedCardNumber matches the masked-but-dashed card numbers OCBC and DBS
// print in their export headers.
var dashedCardNumber = regexp.MustCompile(`(\d{4}-\d{4}-\d{4}-\d{4})`)

// headLines returns up to n leading lines of content.
func headLines(content string, n int) []string {
	lines := strings.Split(content, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return lines
}

// findInHead applies re to the first n lines and returns the first capture
// group of the first match.
func findInHead(content string, n int, re *regexp.Regexp) string {
	for _, line := range headLines(content, n) {
		if m := re.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}

// amountAt parses the field at index i as an amount. Reports false when the
// index is out of range or the field is not an amount.
func amountAt(fields []string, i int) (decimal.Decimal, bool) {
	if i >= len(fields) {
		return decimal.Decimal{}, false
	}
	return parse.ParseAmount(fields[i])
}

// rawLine wraps an unparsed source line for Transaction.RawData.
func rawLine(line string) map[string]any {
	return map[string]any{"line": line}
}

// rawRow wraps a parsed source row for Transaction.RawData.
func rawRow(row []string) map[string]any {
	return map[string]any{"row": append([]string(nil), row...)}
}

// debitCreditTransaction applies the split-column sign convention shared by
// the OCBC and DBS formats: a non-zero debit/withdrawal is stored negated,
// otherwise a non-zero credit/deposit is stored as-is. Returns false when
// neither column holds a usable amount.
func debitCreditTransaction(debit, credit decimal.Decimal, debitOK, creditOK bool) (decimal.Decimal, bool) {
	if debitOK && !debit.IsZero() {
		return debit.Neg(), true
	}
	if creditOK && !credit.IsZero() {
		return credit, true
	}
	return decimal.Decimal{}, false
}
