package lunchmoney

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ArionMiles/lunchsync/pkg/api"
)

func sampleTx(desc string, amount string) api.Transaction {
	return api.Transaction{
		Date:             time.Date(2026, time.January, 30, 0, 0, 0, 0, time.UTC),
		Description:      desc,
		Amount:           decimal.RequireFromString(amount),
		Account:          "OCBC Rewards",
		OriginalCurrency: "SGD",
	}
}

func TestGenerateExternalIDDeterministic(t *testing.T) {
	tx := sampleTx("GROCERY STORE", "-300.00")

	first := GenerateExternalID(tx)
	second := GenerateExternalID(tx)
	require.Equal(t, first, second)
	require.Len(t, first, 75)

	// Hex characters only for hashed IDs.
	require.Regexp(t, "^[0-9a-f]+$", first)
}

func TestGenerateExternalIDChangesWithFields(t *testing.T) {
	base := sampleTx("GROCERY STORE", "-300.00")

	changed := base
	changed.Amount = decimal.RequireFromString("-300.01")
	require.NotEqual(t, GenerateExternalID(base), GenerateExternalID(changed))

	changed = base
	changed.Account = "Other Card"
	require.NotEqual(t, GenerateExternalID(base), GenerateExternalID(changed))
}

func TestGenerateExternalIDUsesReference(t *testing.T) {
	tx := sampleTx("GROCERY STORE", "-300.00")
	tx.Reference = "BANK-REF-42"
	require.Equal(t, "BANK-REF-42", GenerateExternalID(tx))

	tx.Reference = strings.Repeat("R", 100)
	require.Equal(t, strings.Repeat("R", 75), GenerateExternalID(tx))
}

func TestGetAssets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/assets", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"assets":[{"id":7,"name":"OCBC Rewards","type_name":"credit"}]}`))
	}))
	defer srv.Close()

	c := New("test-key", slog.Default())
	c.BaseURL = srv.URL

	assets, err := c.GetAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 1)
	require.Equal(t, 7, assets[0].ID)
	require.Equal(t, "OCBC Rewards", assets[0].Name)
}

func TestGetAssetsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New("bad-key", slog.Default())
	c.BaseURL = srv.URL

	_, err := c.GetAssets(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}

func TestUploadTransactions(t *testing.T) {
	var gotReq insertRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transactions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		// Two inserted, one server-side duplicate.
		_, _ = w.Write([]byte(`{"ids":[101,102]}`))
	}))
	defer srv.Close()

	c := New("test-key", slog.Default())
	c.BaseURL = srv.URL

	txs := []api.Transaction{
		sampleTx("GROCERY STORE", "-300.00"),
		sampleTx("REFUND", "50.00"),
		sampleTx("DUPLICATE ROW", "-10.00"),
	}
	unmapped := sampleTx("UNMAPPED", "-5.00")
	unmapped.Account = "Mystery Card"
	txs = append(txs, unmapped)

	mapping := map[string]int{"OCBC Rewards": 7}
	result := c.UploadTransactions(context.Background(), txs, mapping, true)

	require.Empty(t, result.Errors)
	require.Equal(t, 2, result.Uploaded)
	// One duplicate plus one unmapped account.
	require.Equal(t, 2, result.Skipped)
	require.Equal(t, 4, result.Total())

	require.Len(t, gotReq.Transactions, 3)
	require.True(t, gotReq.DebitAsNegative)
	require.True(t, gotReq.SkipDuplicates)

	p := gotReq.Transactions[0]
	require.Equal(t, "2026-01-30", p.Date)
	require.InDelta(t, -300.00, p.Amount, 0.001)
	require.Equal(t, "GROCERY STORE", p.Payee)
	require.Equal(t, "sgd", p.Currency)
	require.Equal(t, 7, p.AssetID)
	require.Equal(t, "uncleared", p.Status)
	require.NotEmpty(t, p.ExternalID)
}

func TestUploadTransactionsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New("test-key", slog.Default())
	c.BaseURL = srv.URL

	result := c.UploadTransactions(context.Background(),
		[]api.Transaction{sampleTx("GROCERY STORE", "-300.00")},
		map[string]int{"OCBC Rewards": 7}, true)

	require.Zero(t, result.Uploaded)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0], "Batch 1")
}

func TestUploadTransactionsTruncatesPayee(t *testing.T) {
	var gotReq insertRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(`{"ids":[1]}`))
	}))
	defer srv.Close()

	c := New("test-key", slog.Default())
	c.BaseURL = srv.URL

	tx := sampleTx(strings.Repeat("A", 200), "-1.00")
	c.UploadTransactions(context.Background(), []api.Transaction{tx}, map[string]int{"OCBC Rewards": 7}, true)

	require.Len(t, gotReq.Transactions[0].Payee, 140)
}

func TestUploadTransactionsEmpty(t *testing.T) {
	c := New("test-key", slog.Default())
	c.BaseURL = "http://127.0.0.1:0"

	result := c.UploadTransactions(context.Background(), nil, nil, true)
	require.Zero(t, result.Total())
	require.Empty(t, result.Errors)
}
