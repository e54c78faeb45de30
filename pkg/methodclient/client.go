/**
 * @description
 * This package provides a client for interacting with the Method
 * banking-connectivity API. It encapsulates the logic for making
 * authenticated HTTP requests to Method's account and verification endpoints.
 *
 * Key features:
 * - Manages the API base URL and secret key.
 * - Provides methods for the Method operations the pipeline needs
 *   (create/list/update accounts, attach verifications).
 * - Handles JSON serialization/deserialization and error handling for API calls.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, io, net/http, time: Standard Go libraries.
 * - github.com/google/uuid: Idempotency keys for create calls.
 * - The service's internal domain package for Method API request/response models.
 */
package methodclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/wealthloop/aggregator-service/internal/domain"
)

// listAccountsLimit bounds the single page read by ListAccounts. Method
// paginates beyond this; the reconciliation job reads one page and treats it
// as the full snapshot.
const listAccountsLimit = 500

// Client is a client for the Method API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new Method API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateAccount creates a new ACH account on Method for the given holder.
func (c *Client) CreateAccount(ctx context.Context, req domain.CreateAccountRequest) (*domain.MethodAccount, error) {
	url := fmt.Sprintf("%s/accounts", c.baseURL)
	var resp accountEnvelope

	if err := c.do(ctx, http.MethodPost, url, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// CreateVerification attaches a verification object to an existing account.
// The request's Type tag identifies the evidence source and exactly one
// evidence bundle is set.
func (c *Client) CreateVerification(ctx context.Context, accountID string, req domain.CreateVerificationRequest) (*domain.Verification, error) {
	url := fmt.Sprintf("%s/accounts/%s/verification", c.baseURL, accountID)
	var resp verificationEnvelope

	if err := c.do(ctx, http.MethodPost, url, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ListAccounts fetches the account list (one bounded page) from Method,
// including liability and credit-card facets.
func (c *Client) ListAccounts(ctx context.Context) ([]domain.MethodAccount, error) {
	url := fmt.Sprintf("%s/accounts?expand[]=liability&page[limit]=%d", c.baseURL, listAccountsLimit)
	var resp accountListEnvelope

	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// UpdateAccount updates the mutable fields of an existing Method account.
func (c *Client) UpdateAccount(ctx context.Context, accountID string, req domain.UpdateAccountRequest) (*domain.MethodAccount, error) {
	url := fmt.Sprintf("%s/accounts/%s", c.baseURL, accountID)
	var resp accountEnvelope

	if err := c.do(ctx, http.MethodPut, url, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

type accountEnvelope struct {
	Data domain.MethodAccount `json:"data"`
}

type accountListEnvelope struct {
	Data []domain.MethodAccount `json:"data"`
}

type verificationEnvelope struct {
	Data domain.Verification `json:"data"`
}

// do is a helper function to make HTTP requests to the Method API.
func (c *Client) do(ctx context.Context, method, url string, body, target interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if method == http.MethodPost {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	log.Printf("Making Method API request: %s %s", method, url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("Method API returned non-success status code %d: %s", resp.StatusCode, string(respBody))
		return fmt.Errorf("method API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	if target != nil {
		if err := json.Unmarshal(respBody, target); err != nil {
			return fmt.Errorf("failed to unmarshal response body: %w", err)
		}
	}

	return nil
}
