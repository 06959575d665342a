package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"payout/internal/domain"
)

// WithdrawalRepository is the persisted view of withdrawals. UpdateStatus is
// compare-and-swap on the status read at validation time and returns
// domain.ErrStatusConflict when the stored status no longer matches.
type WithdrawalRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error)
	GetByExternalReference(ctx context.Context, ref string) (*domain.Withdrawal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from domain.Status, update domain.StatusUpdate) error
}

// AuditLog is the append-only transition record. Append returns
// domain.ErrDuplicateEvent when the (withdrawal, webhook event) pair was
// already recorded; the uniqueness is enforced by storage, not checked here.
type AuditLog interface {
	Exists(ctx context.Context, withdrawalID uuid.UUID, eventID string) (bool, error)
	Append(ctx context.Context, entry *domain.AuditEntry) error
}

// BalanceLedger is the external balance service. Operations are idempotent
// per correlation id; retry policy is the implementation's concern.
type BalanceLedger interface {
	DebitAvailable(ctx context.Context, userID string, amount decimal.Decimal, correlationID uuid.UUID) error
	ReleaseHold(ctx context.Context, userID string, holdID uuid.UUID) error
	InitiateRefund(ctx context.Context, userID string, amount decimal.Decimal, correlationID uuid.UUID) error
	ReleaseBalance(ctx context.Context, userID string, amount decimal.Decimal, currency string, correlation domain.Correlation, reason string) error
}

// Notifier delivers user-facing notifications. Delivery failures never fail
// the operation that triggered them.
type Notifier interface {
	SendWithdrawalRefundEmail(ctx context.Context, userID string, amount decimal.Decimal, currency string) error
}
