// Package notifier is the HTTP adapter for the outbound email service.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/shopspring/decimal"

	"payout/internal/port"
)

type EmailClient struct {
	baseURL    string
	httpClient *retryablehttp.Client
}

func NewEmailClient(baseURL string) port.Notifier {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 2
	httpClient.Logger = nil
	return &EmailClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type refundEmailRequest struct {
	UserID   string          `json:"user_id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Template string          `json:"template"`
}

func (c *EmailClient) SendWithdrawalRefundEmail(ctx context.Context, userID string, amount decimal.Decimal, currency string) error {
	if c.baseURL == "" {
		return fmt.Errorf("email client not configured")
	}

	payload, err := json.Marshal(refundEmailRequest{
		UserID:   userID,
		Amount:   amount,
		Currency: currency,
		Template: "withdrawal_refund",
	})
	if err != nil {
		return fmt.Errorf("marshal email request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("email service: unexpected status %d", resp.StatusCode)
	}
	return nil
}
