// Package ledger is the HTTP adapter for the external balance ledger.
// Ledger operations are idempotent per correlation id, which makes the
// client's retries safe.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/shopspring/decimal"

	"payout/internal/domain"
	"payout/internal/port"
)

type Client struct {
	baseURL    string
	httpClient *retryablehttp.Client
}

func NewClient(baseURL string) port.BalanceLedger {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 3
	httpClient.Logger = nil
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type mutationRequest struct {
	UserID          string           `json:"user_id"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	Currency        string           `json:"currency,omitempty"`
	CorrelationID   string           `json:"correlation_id,omitempty"`
	CorrelationType string           `json:"correlation_type,omitempty"`
	HoldID          string           `json:"hold_id,omitempty"`
	Reason          string           `json:"reason,omitempty"`
}

func (c *Client) DebitAvailable(ctx context.Context, userID string, amount decimal.Decimal, correlationID uuid.UUID) error {
	return c.post(ctx, "/api/balance/debit", mutationRequest{
		UserID:        userID,
		Amount:        &amount,
		CorrelationID: correlationID.String(),
	})
}

func (c *Client) ReleaseHold(ctx context.Context, userID string, holdID uuid.UUID) error {
	return c.post(ctx, "/api/balance/holds/release", mutationRequest{
		UserID: userID,
		HoldID: holdID.String(),
	})
}

func (c *Client) InitiateRefund(ctx context.Context, userID string, amount decimal.Decimal, correlationID uuid.UUID) error {
	return c.post(ctx, "/api/balance/refunds", mutationRequest{
		UserID:        userID,
		Amount:        &amount,
		CorrelationID: correlationID.String(),
	})
}

func (c *Client) ReleaseBalance(ctx context.Context, userID string, amount decimal.Decimal, currency string, correlation domain.Correlation, reason string) error {
	return c.post(ctx, "/api/balance/release", mutationRequest{
		UserID:          userID,
		Amount:          &amount,
		Currency:        currency,
		CorrelationID:   correlation.ID.String(),
		CorrelationType: string(correlation.Type),
		Reason:          reason,
	})
}

func (c *Client) post(ctx context.Context, path string, body mutationRequest) error {
	if c.baseURL == "" {
		return fmt.Errorf("ledger client not configured")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal ledger request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create ledger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do ledger request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("ledger %s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}
