package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the canonical withdrawal lifecycle status.
type Status string

const (
	StatusPending             Status = "PENDING"
	StatusPendingVerification Status = "PENDING_VERIFICATION"
	StatusProcessing          Status = "PROCESSING"
	StatusSucceeded           Status = "SUCCEEDED"
	StatusFailed              Status = "FAILED"
	StatusRefunding           Status = "REFUNDING"
	StatusRefunded            Status = "REFUNDED"
	StatusCanceled            Status = "CANCELED"
)

// IsTerminal reports whether no further lifecycle mutation is permitted.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusRefunded, StatusCanceled:
		return true
	}
	return false
}

// Event drives a withdrawal from one status to the next.
type Event string

const (
	EventProcess        Event = "PROCESS"
	EventSuccess        Event = "SUCCESS"
	EventFail           Event = "FAIL"
	EventCancel         Event = "CANCEL"
	EventRefund         Event = "REFUND"
	EventRefundComplete Event = "REFUND_COMPLETE"
)

// Withdrawal is a user's request to move funds from platform balance to the
// external payout rail.
type Withdrawal struct {
	ID                 uuid.UUID       `json:"id"`
	UserID             string          `json:"user_id"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	Status             Status          `json:"status"`
	ExternalReference  string          `json:"external_reference"`
	TransactionID      *string         `json:"transaction_id,omitempty"`
	HoldID             *uuid.UUID      `json:"hold_id,omitempty"`
	FailureReason      *string         `json:"failure_reason,omitempty"`
	CancellationReason *string         `json:"cancellation_reason,omitempty"`
	WebhookEventID     *string         `json:"webhook_event_id,omitempty"`
	WebhookProcessedAt *time.Time      `json:"webhook_processed_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// StatusUpdate carries the fields persisted together with a status change.
// Nil optional fields leave the stored values untouched.
type StatusUpdate struct {
	Status             Status
	TransactionID      *string
	WebhookEventID     *string
	WebhookProcessedAt *time.Time
	FailureReason      *string
	CancellationReason *string
}

// AuditEntry records one applied transition. Entries are append-only;
// (WithdrawalID, WebhookEventID) is unique and doubles as the webhook
// idempotency key.
type AuditEntry struct {
	ID             int64
	WithdrawalID   uuid.UUID
	WebhookEventID *string
	Action         string
	PreviousStatus Status
	NewStatus      Status
	Metadata       map[string]string
	CreatedAt      time.Time
}

// CorrelationType tags a balance mutation with the reason it happened.
type CorrelationType string

const (
	CorrelationWithdrawalCancel CorrelationType = "withdrawal_cancel"
	CorrelationWithdrawalRefund CorrelationType = "withdrawal_refund"
)

// Correlation ties a balance mutation to the withdrawal that caused it.
type Correlation struct {
	ID   uuid.UUID       `json:"id"`
	Type CorrelationType `json:"type"`
}

// WebhookPayload is the provider's payout notification. Signature is a hex
// HMAC-SHA256 over the payload serialized without the signature field.
type WebhookPayload struct {
	Event     string      `json:"event" validate:"required"`
	Data      WebhookData `json:"data"`
	Timestamp string      `json:"timestamp"`
	EventID   string      `json:"event_id" validate:"required"`
	Signature string      `json:"signature,omitempty"`
}

// WebhookData is the payout outcome reported by the provider.
type WebhookData struct {
	ReferenceID   string          `json:"reference_id" validate:"required"`
	TransactionID string          `json:"transaction_id"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CompletedAt   string          `json:"completed_at,omitempty"`
	FailedAt      string          `json:"failed_at,omitempty"`
}
