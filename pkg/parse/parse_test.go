package parse

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	want := date(2026, time.January, 30)

	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"slash format", "30/01/2026", want, true},
		{"abbreviated month", "30 Jan 2026", want, true},
		{"dash format", "30-01-2026", want, true},
		{"iso format", "2026-01-30", want, true},
		{"full month name", "30 January 2026", want, true},
		{"quoted", `"30/01/2026"`, want, true},
		{"surrounding whitespace", "  30/01/2026  ", want, true},
		{"empty", "", time.Time{}, false},
		{"whitespace only", "   ", time.Time{}, false},
		{"not a date", "Previous Balance", time.Time{}, false},
		{"trailing garbage", "30/01/2026 extra", time.Time{}, false},
		{"american order rejected as day", "01/30/2026", time.Time{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseDate(tc.input)
			if ok != tc.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if ok && !got.Equal(tc.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"plain", "123.45", "123.45", true},
		{"thousands separator", "1,234.56", "1234.56", true},
		{"accounting negative", "(123.45)", "-123.45", true},
		{"explicit negative", "-123.45", "-123.45", true},
		{"currency marker", "SGD 123.45", "123.45", true},
		{"dollar sign", "$99.90", "99.9", true},
		{"quoted with comma", `"1,234.56"`, "1234.56", true},
		{"embedded whitespace", "1 234.56", "1234.56", true},
		{"empty", "", "", false},
		{"whitespace only", "  ", "", false},
		{"not a number", "n/a", "", false},
		{"bare dash", "-", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseAmount(tc.input)
			if ok != tc.ok {
				t.Fatalf("ParseAmount(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if ok && got.String() != tc.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tc.input, got, tc.want)
			}
		})
	}
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses whitespace", "GROCERY    STORE\n\tPTE LTD", "GROCERY STORE PTE LTD"},
		{"strips bullet mask", "NTUC FAIRPRICE •••• •••• •••• 3363", "NTUC FAIRPRICE"},
		{"strips x mask", "AMAZON XXXX-XXXX-XXXX-1234", "AMAZON"},
		{"strips ref number", "GRAB RIDE Ref No: 482910", "GRAB RIDE"},
		{"strips trailing country code", "COLD STORAGE SG", "COLD STORAGE"},
		{"keeps embedded country code", "SG PETROL STATION", "SG PETROL STATION"},
		{"strips trailing currency code", "TRANSFERWISE USD", "TRANSFERWISE"},
		{"multiline field", "PAYMENT\nRECEIVED", "PAYMENT RECEIVED"},
		{"already clean", "STARBUCKS COFFEE", "STARBUCKS COFFEE"},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CleanDescription(tc.input)
			if got != tc.want {
				t.Errorf("CleanDescription(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestCleanDescriptionIdempotent(t *testing.T) {
	inputs := []string{
		"GROCERY    STORE\nPTE LTD",
		"NTUC FAIRPRICE •••• •••• •••• 3363 SG",
		"AMAZON XXXX-XXXX-XXXX-1234 Ref No: 12345",
		"COLD STORAGE SG",
		"STARBUCKS COFFEE",
		"",
	}

	for _, in := range inputs {
		once := CleanDescription(in)
		twice := CleanDescription(once)
		if once != twice {
			t.Errorf("CleanDescription not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
