package port

import (
	"context"

	"payout/internal/domain"
)

// WebhookOrchestrator applies provider payout webhooks to withdrawals.
type WebhookOrchestrator interface {
	ProcessPayoutWebhook(ctx context.Context, payload *domain.WebhookPayload) error
}

// WithdrawalLifecycle is the synchronous, caller-initiated counterpart to the
// webhook path: cancellation and manual refund.
type WithdrawalLifecycle interface {
	GetWithdrawal(ctx context.Context, id string) (*domain.Withdrawal, error)
	CancelWithdrawal(ctx context.Context, id string, reason string) (*domain.Withdrawal, error)
	RefundWithdrawal(ctx context.Context, id string) (*domain.Withdrawal, error)
}
