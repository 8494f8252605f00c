package csv

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ArionMiles/lunchsync/pkg/api"
)

func sampleTransactions() []api.Transaction {
	foreign := decimal.RequireFromString("12.34")
	return []api.Transaction{
		{
			Date:             time.Date(2026, time.January, 30, 0, 0, 0, 0, time.UTC),
			Description:      "GROCERY, STORE",
			Amount:           decimal.RequireFromString("-300.00"),
			Account:          "OCBC Rewards",
			OriginalCurrency: "SGD",
		},
		{
			Date:             time.Date(2026, time.January, 28, 0, 0, 0, 0, time.UTC),
			Description:      "REFUND",
			Amount:           decimal.RequireFromString("50.00"),
			Account:          "OCBC Rewards",
			OriginalCurrency: "USD",
			OriginalAmount:   &foreign,
			Reference:        "REF-123",
		},
	}
}

func TestWriteCompactTo(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCompactTo(sampleTransactions(), &buf, ','); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), buf.String())
	}
	if lines[0] != "Date,Description,Amount,Account" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != `2026-01-30,"GROCERY, STORE",-300,OCBC Rewards` {
		t.Errorf("row = %q", lines[1])
	}
	if lines[2] != "2026-01-28,REFUND,50,OCBC Rewards" {
		t.Errorf("row = %q", lines[2])
	}
}

func TestWriteCompactToTSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCompactTo(sampleTransactions(), &buf, '\t'); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "Date\tDescription\tAmount\tAccount" {
		t.Errorf("header = %q", lines[0])
	}
	// The comma in the description needs no quoting under a tab delimiter.
	if lines[1] != "2026-01-30\tGROCERY, STORE\t-300\tOCBC Rewards" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestWriteFullTo(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFullTo(sampleTransactions(), &buf, ','); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "date,description,amount,account,original_currency,original_amount,category,reference" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != "2026-01-28,REFUND,50,OCBC Rewards,USD,12.34,,REF-123" {
		t.Errorf("row = %q", lines[2])
	}
}

func TestWriteCompactFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteCompact(sampleTransactions(), path, ','); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "Date,Description,Amount,Account\n") {
		t.Errorf("unexpected file content: %q", data)
	}
}

func TestWriteEmptyList(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCompactTo(nil, &buf, ','); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "Date,Description,Amount,Account" {
		t.Errorf("empty list output = %q, want header only", got)
	}
}
