// Package accounts resolves raw account and card identifiers found in bank
// exports to the friendly labels configured by the user.
package accounts

import (
	"fmt"
	"log/slog"
	"strings"
)

// AccountMapping maps a bank account/card identifier to a friendly name.
type AccountMapping struct {
	Identifier  string
	Name        string
	Bank        string
	AccountType string // credit_card, savings, checking
}

var identifierNormalizer = strings.NewReplacer("-", "", " ", "")

// lastN returns the final n characters of s, or all of s when shorter.
func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// Matches reports whether candidate refers to this account. Both sides are
// normalized by stripping hyphens and spaces; an exact match or a last-4
// suffix match (candidate at least 4 characters long) counts.
func (m AccountMapping) Matches(candidate string) bool {
	cleanCandidate := identifierNormalizer.Replace(candidate)
	cleanID := identifierNormalizer.Replace(m.Identifier)

	if cleanCandidate == cleanID {
		return true
	}
	return len(cleanCandidate) >= 4 && lastN(cleanCandidate, 4) == lastN(cleanID, 4)
}

// Resolver turns raw identifiers into account labels. Mappings are scanned
// in configured order and the first match wins; two mappings sharing a
// last-4 suffix therefore shadow each other, which the resolver warns about
// once at construction without changing the match order.
type Resolver struct {
	mappings []AccountMapping
	override string
	logger   *slog.Logger
}

// NewResolver builds a resolver over the configured mappings. A non-empty
// override always wins, used when the caller pinned an account label for a
// whole processing run.
func NewResolver(mappings []AccountMapping, override string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{mappings: mappings, override: override, logger: logger}
	r.warnAmbiguousSuffixes()
	return r
}

// Resolve returns the friendly name for identifier: the override when set,
// the first matching mapping otherwise, and a masked "Unknown (last4)"
// fallback when nothing matches. Identifiers too short to mask are returned
// unchanged.
func (r *Resolver) Resolve(identifier string) string {
	if r.override != "" {
		return r.override
	}

	for _, m := range r.mappings {
		if m.Matches(identifier) {
			return m.Name
		}
	}

	clean := identifierNormalizer.Replace(identifier)
	if len(clean) >= 4 {
		return fmt.Sprintf("Unknown (%s)", lastN(clean, 4))
	}
	return identifier
}

func (r *Resolver) warnAmbiguousSuffixes() {
	firstBySuffix := make(map[string]string, len(r.mappings))
	warned := make(map[string]bool)

	for _, m := range r.mappings {
		suffix := lastN(identifierNormalizer.Replace(m.Identifier), 4)
		if suffix == "" {
			continue
		}
		first, seen := firstBySuffix[suffix]
		if !seen {
			firstBySuffix[suffix] = m.Name
			continue
		}
		if !warned[suffix] {
			r.logger.Warn("account mappings share a last-4 suffix; first match wins",
				"suffix", suffix,
				"first", first,
				"shadowed", m.Name,
			)
			warned[suffix] = true
		}
	}
}
