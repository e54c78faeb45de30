/**
 * @description
 * This package provides a client for the Quiltt data-aggregation API. It
 * exposes the three read operations the sync pipeline needs for an external
 * account: ACH numbers, descriptive metadata, and transaction history.
 *
 * Key features:
 * - Pure reads keyed by the external account id; no side effects upstream.
 * - No retries: transport failures propagate as-is to the caller.
 * - Quiltt serves ACH numbers from a dedicated endpoint, separate from the
 *   descriptive account metadata.
 *
 * @dependencies
 * - context, encoding/json, fmt, io, net/http, time: Standard Go libraries.
 * - The service's internal domain package for Quiltt resource models.
 */
package quilttclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/wealthloop/aggregator-service/internal/domain"
)

// transactionsPageLimit bounds the single page read by GetTransactions.
// Quiltt paginates beyond this; the workflow treats one page as the full set.
const transactionsPageLimit = 500

// ErrAccountNumbersMissing is returned when the upstream response lacks either
// the account number or the routing number.
var ErrAccountNumbersMissing = errors.New("account or routing number missing from provider response")

// Client is a client for the Quiltt API.
type Client struct {
	baseURL    string
	apiSecret  string
	httpClient *http.Client
}

// NewClient creates a new Quiltt API client.
func NewClient(baseURL, apiSecret string) *Client {
	return &Client{
		baseURL:   baseURL,
		apiSecret: apiSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetAccountNumbers fetches the ACH account/routing pair for an external
// account id from the dedicated numbers endpoint.
func (c *Client) GetAccountNumbers(ctx context.Context, accountID string) (*domain.QuilttAccountNumbers, error) {
	url := fmt.Sprintf("%s/accounts/%s/ach", c.baseURL, accountID)
	var resp numbersEnvelope

	if err := c.do(ctx, url, &resp); err != nil {
		return nil, err
	}
	if resp.Data.Number == "" || resp.Data.Routing == "" {
		return nil, ErrAccountNumbersMissing
	}
	return &resp.Data, nil
}

// GetAccount fetches the descriptive metadata for an external account id. The
// first entry of the returned Sources list carries the raw account subtype.
func (c *Client) GetAccount(ctx context.Context, accountID string) (*domain.QuilttAccount, error) {
	url := fmt.Sprintf("%s/accounts/%s", c.baseURL, accountID)
	var resp accountEnvelope

	if err := c.do(ctx, url, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GetTransactions fetches one bounded page of transaction history for an
// external account id.
func (c *Client) GetTransactions(ctx context.Context, accountID string) (*domain.TransactionSet, error) {
	url := fmt.Sprintf("%s/accounts/%s/transactions?limit=%d", c.baseURL, accountID, transactionsPageLimit)
	var resp transactionsEnvelope

	if err := c.do(ctx, url, &resp); err != nil {
		return nil, err
	}
	return &domain.TransactionSet{AccountID: accountID, Transactions: resp.Data}, nil
}

type numbersEnvelope struct {
	Data domain.QuilttAccountNumbers `json:"data"`
}

type accountEnvelope struct {
	Data domain.QuilttAccount `json:"data"`
}

type transactionsEnvelope struct {
	Data []domain.QuilttTransaction `json:"data"`
}

// do is a helper function to make GET requests to the Quiltt API.
func (c *Client) do(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiSecret)

	log.Printf("Making Quiltt API request: GET %s", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("Quiltt API returned non-success status code %d: %s", resp.StatusCode, string(respBody))
		return fmt.Errorf("quiltt API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	return nil
}
