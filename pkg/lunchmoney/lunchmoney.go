// Package lunchmoney is a minimal client for the Lunch Money REST API,
// covering the two endpoints the uploader needs: listing assets and bulk
// inserting transactions.
package lunchmoney

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"

	"github.com/ArionMiles/lunchsync/pkg/api"
)

const (
	// DefaultBaseURL is the production Lunch Money API endpoint.
	DefaultBaseURL = "https://dev.lunchmoney.app/v1"

	// MaxBatchSize is the API's per-request transaction limit.
	MaxBatchSize = 500

	maxExternalIDLen = 75
	maxPayeeLen      = 140
)

// Asset is a Lunch Money manually-managed account.
type Asset struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	TypeName    string `json:"type_name"`
	Balance     string `json:"balance"`
	Currency    string `json:"currency"`
}

// UploadResult summarizes an upload run. Skipped covers both transactions
// without a mapped asset and server-side duplicates.
type UploadResult struct {
	Uploaded int
	Skipped  int
	Errors   []string
}

// Total is the number of transactions processed.
func (r UploadResult) Total() int { return r.Uploaded + r.Skipped }

// Client calls the Lunch Money API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	// BaseURL is overridable for tests.
	BaseURL string
}

func New(apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		BaseURL:    DefaultBaseURL,
	}
}

// GenerateExternalID returns a stable identifier for server-side duplicate
// detection: the bank reference when present, otherwise a hash of the
// fields that define the transaction's identity. Both forms respect the
// API's length cap.
func GenerateExternalID(tx api.Transaction) string {
	if tx.Reference != "" {
		if len(tx.Reference) > maxExternalIDLen {
			return tx.Reference[:maxExternalIDLen]
		}
		return tx.Reference
	}

	data := fmt.Sprintf("%s|%s|%s|%s",
		tx.Date.Format(time.DateOnly), tx.Amount.String(), tx.Description, tx.Account)
	sum := sha256.Sum256([]byte(data))
	id := hex.EncodeToString(sum[:])
	return id[:maxExternalIDLen]
}

type transactionPayload struct {
	Date       string  `json:"date"`
	Amount     float64 `json:"amount"`
	Payee      string  `json:"payee"`
	Currency   string  `json:"currency"`
	AssetID    int     `json:"asset_id"`
	ExternalID string  `json:"external_id"`
	Status     string  `json:"status"`
}

func toPayload(tx api.Transaction, assetID int) transactionPayload {
	payee := tx.Description
	if len(payee) > maxPayeeLen {
		payee = payee[:maxPayeeLen]
	}
	return transactionPayload{
		Date:       tx.Date.Format(time.DateOnly),
		Amount:     tx.Amount.InexactFloat64(),
		Payee:      payee,
		Currency:   strings.ToLower(tx.OriginalCurrency),
		AssetID:    assetID,
		ExternalID: GenerateExternalID(tx),
		// Uncleared transactions land in the review queue for categorization.
		Status: "uncleared",
	}
}

// httpStatusError carries the status code for retry decisions.
type httpStatusError struct {
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("lunchmoney: HTTP %d: %s", e.status, e.body)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+"/"+endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &httpStatusError{status: resp.StatusCode, body: string(data)}
	}
	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

// GetAssets returns all manually-managed accounts.
func (c *Client) GetAssets(ctx context.Context) ([]Asset, error) {
	var result struct {
		Assets []Asset `json:"assets"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "assets", nil, &result); err != nil {
		return nil, err
	}
	return result.Assets, nil
}

type insertRequest struct {
	Transactions    []transactionPayload `json:"transactions"`
	DebitAsNegative bool                 `json:"debit_as_negative"`
	SkipDuplicates  bool                 `json:"skip_duplicates"`
}

// UploadTransactions inserts transactions in batches. mapping translates
// resolved account names to Lunch Money asset IDs; transactions for
// unmapped accounts are counted as skipped, not errors. A failed batch is
// recorded and the remaining batches still run.
func (c *Client) UploadTransactions(ctx context.Context, txs []api.Transaction, mapping map[string]int, skipDuplicates bool) UploadResult {
	var result UploadResult

	var payloads []transactionPayload
	for _, tx := range txs {
		assetID, ok := mapping[tx.Account]
		if !ok {
			result.Skipped++
			continue
		}
		payloads = append(payloads, toPayload(tx, assetID))
	}

	for i := 0; i < len(payloads); i += MaxBatchSize {
		end := min(i+MaxBatchSize, len(payloads))
		batch := payloads[i:end]
		batchNum := i/MaxBatchSize + 1

		var inserted struct {
			IDs []int `json:"ids"`
		}
		err := retry.Do(
			func() error {
				return c.doJSON(ctx, http.MethodPost, "transactions", insertRequest{
					Transactions:    batch,
					DebitAsNegative: true,
					SkipDuplicates:  skipDuplicates,
				}, &inserted)
			},
			retry.RetryIf(func(err error) bool {
				var statusErr *httpStatusError
				if errors.As(err, &statusErr) && statusErr.status == http.StatusTooManyRequests {
					c.logger.Warn("rate limited, will retry", "batch", batchNum)
					return true
				}
				return false
			}),
			retry.Attempts(2),
			retry.Delay(60*time.Second),
			retry.LastErrorOnly(true),
		)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Batch %d: %v", batchNum, err))
			continue
		}

		result.Uploaded += len(inserted.IDs)
		result.Skipped += len(batch) - len(inserted.IDs)
		c.logger.Debug("uploaded batch",
			"batch", batchNum,
			"sent", len(batch),
			"inserted", len(inserted.IDs),
		)
	}
	return result
}
