package accounts

import (
	"log/slog"
	"testing"
)

func testMappings() []AccountMapping {
	return []AccountMapping{
		{Identifier: "5400-1261-0258-1483", Name: "OCBC Rewards", Bank: "OCBC", AccountType: "credit_card"},
		{Identifier: "601-123456-001", Name: "OCBC 360", Bank: "OCBC", AccountType: "savings"},
		{Identifier: "4567123412341234", Name: "UOB Platinum", Bank: "UOB", AccountType: "credit_card"},
	}
}

func TestAccountMappingMatches(t *testing.T) {
	m := AccountMapping{Identifier: "5400-1261-0258-1483", Name: "OCBC Rewards"}

	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{"exact with dashes", "5400-1261-0258-1483", true},
		{"exact without dashes", "5400126102581483", true},
		{"exact with spaces", "5400 1261 0258 1483", true},
		{"last four only", "1483", true},
		{"different card same issuer", "5400-1261-0258-9999", false},
		{"too short", "483", false},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.Matches(tc.candidate); got != tc.want {
				t.Errorf("Matches(%q) = %v, want %v", tc.candidate, got, tc.want)
			}
		})
	}
}

func TestResolverResolve(t *testing.T) {
	r := NewResolver(testMappings(), "", slog.Default())

	tests := []struct {
		name       string
		identifier string
		want       string
	}{
		{"full match", "5400-1261-0258-1483", "OCBC Rewards"},
		{"suffix match", "XXXX-XXXX-XXXX-1483", "OCBC Rewards"},
		{"savings account", "601-123456-001", "OCBC 360"},
		{"unmapped card masked", "4111-1111-1111-1111", "Unknown (1111)"},
		{"short identifier unchanged", "abc", "abc"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Resolve(tc.identifier); got != tc.want {
				t.Errorf("Resolve(%q) = %q, want %q", tc.identifier, got, tc.want)
			}
		})
	}
}

func TestResolverOverrideWins(t *testing.T) {
	r := NewResolver(testMappings(), "My Account", slog.Default())

	for _, id := range []string{"5400-1261-0258-1483", "unmapped", ""} {
		if got := r.Resolve(id); got != "My Account" {
			t.Errorf("Resolve(%q) = %q, want override to win", id, got)
		}
	}
}

func TestResolverAmbiguousSuffixFirstWins(t *testing.T) {
	mappings := []AccountMapping{
		{Identifier: "1111-2222-3333-4444", Name: "First Card"},
		{Identifier: "9999-8888-7777-4444", Name: "Second Card"},
	}
	r := NewResolver(mappings, "", slog.Default())

	if got := r.Resolve("4444"); got != "First Card" {
		t.Errorf("Resolve(%q) = %q, want first configured mapping", "4444", got)
	}
	// Suffix matching shadows the second mapping even on its full
	// identifier; the warning at construction covers this case.
	if got := r.Resolve("9999-8888-7777-4444"); got != "First Card" {
		t.Errorf("Resolve(full shadowed id) = %q, want %q", got, "First Card")
	}
}

func TestResolverNoMappings(t *testing.T) {
	r := NewResolver(nil, "", nil)

	if got := r.Resolve("5400126102581483"); got != "Unknown (1483)" {
		t.Errorf("Resolve with no mappings = %q, want %q", got, "Unknown (1483)")
	}
}
