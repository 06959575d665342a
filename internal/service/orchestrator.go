package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"payout/internal/domain"
	"payout/internal/port"
)

// Orchestrator is the sole entry point for applying provider payout webhooks
// to a withdrawal. The webhook secret is injected at construction; an empty
// secret makes every authentication attempt fail closed.
type Orchestrator struct {
	withdrawals port.WithdrawalRepository
	audit       port.AuditLog
	ledger      port.BalanceLedger
	secret      string
	logger      *zap.Logger
}

func NewOrchestrator(
	withdrawals port.WithdrawalRepository,
	audit port.AuditLog,
	ledger port.BalanceLedger,
	secret string,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		withdrawals: withdrawals,
		audit:       audit,
		ledger:      ledger,
		secret:      secret,
		logger:      logger,
	}
}

// ProcessPayoutWebhook runs the fixed pipeline: authenticate, resolve the
// withdrawal, drop duplicates, validate the transition, apply side effects,
// audit. No mutation is attempted before the first four phases have passed.
func (o *Orchestrator) ProcessPayoutWebhook(ctx context.Context, payload *domain.WebhookPayload) error {
	// 1. Authenticate.
	if err := payload.VerifySignature(o.secret); err != nil {
		return err
	}

	// 2. Resolve. A transient lookup failure is an internal error, not
	// not-found.
	w, err := o.withdrawals.GetByExternalReference(ctx, payload.Data.ReferenceID)
	if err != nil {
		if errors.Is(err, domain.ErrWithdrawalNotFound) {
			return fmt.Errorf("%w: reference %s", domain.ErrWithdrawalNotFound, payload.Data.ReferenceID)
		}
		return fmt.Errorf("fetch withdrawal by reference: %w", err)
	}

	// 3. Idempotency check. Replays of an already-applied event succeed
	// without touching anything.
	duplicate, err := o.audit.Exists(ctx, w.ID, payload.EventID)
	if err != nil {
		return fmt.Errorf("check duplicate webhook: %w", err)
	}
	if duplicate {
		o.logger.Info("duplicate webhook delivery, skipping",
			zap.String("withdrawal_id", w.ID.String()),
			zap.String("event_id", payload.EventID))
		return nil
	}

	// 4. Translate and validate.
	event, err := domain.MapProviderEvent(payload.Event)
	if err != nil {
		return err
	}
	next, err := domain.NextStatus(w.Status, event)
	if err != nil {
		return err
	}

	// 5. Apply.
	previous := w.Status
	final := next
	switch event {
	case domain.EventSuccess:
		err = o.applySuccess(ctx, w, payload, next)
	case domain.EventFail:
		final, err = o.applyFailure(ctx, w, payload, next)
	}
	if err != nil {
		o.logger.Error("payout webhook processing failed",
			zap.String("withdrawal_id", w.ID.String()),
			zap.String("event_id", payload.EventID),
			zap.String("event", payload.Event),
			zap.Error(err))
		if errors.Is(err, domain.ErrStatusConflict) {
			return &domain.InvalidTransitionError{Status: previous, Event: event}
		}
		return fmt.Errorf("process payout webhook: %w", err)
	}

	// 6. Audit, best-effort: the balance and status mutations are committed.
	o.writeAudit(ctx, w.ID, payload, previous, final)

	o.logger.Info("payout webhook applied",
		zap.String("withdrawal_id", w.ID.String()),
		zap.String("event_id", payload.EventID),
		zap.String("previous_status", string(previous)),
		zap.String("new_status", string(final)))
	return nil
}

// applySuccess persists SUCCEEDED with the provider transaction id, finalizes
// the deduction from available balance and releases the hold if one exists.
func (o *Orchestrator) applySuccess(ctx context.Context, w *domain.Withdrawal, payload *domain.WebhookPayload, next domain.Status) error {
	now := time.Now().UTC()
	update := domain.StatusUpdate{
		Status:             next,
		TransactionID:      optional(payload.Data.TransactionID),
		WebhookEventID:     &payload.EventID,
		WebhookProcessedAt: &now,
	}
	if err := o.withdrawals.UpdateStatus(ctx, w.ID, w.Status, update); err != nil {
		return fmt.Errorf("persist %s: %w", next, err)
	}

	if err := o.ledger.DebitAvailable(ctx, w.UserID, w.Amount, w.ID); err != nil {
		return fmt.Errorf("debit available balance: %w", err)
	}
	if w.HoldID != nil {
		if err := o.ledger.ReleaseHold(ctx, w.UserID, *w.HoldID); err != nil {
			return fmt.Errorf("release hold %s: %w", w.HoldID, err)
		}
	}
	return nil
}

// applyFailure persists FAILED with the failure reason, initiates the refund
// and then moves the stored status onward to REFUNDING. Refund initiation is
// a committing action of its own, distinct from the refund's completion.
func (o *Orchestrator) applyFailure(ctx context.Context, w *domain.Withdrawal, payload *domain.WebhookPayload, next domain.Status) (domain.Status, error) {
	now := time.Now().UTC()
	update := domain.StatusUpdate{
		Status:             next,
		TransactionID:      optional(payload.Data.TransactionID),
		WebhookEventID:     &payload.EventID,
		WebhookProcessedAt: &now,
		FailureReason:      optional(payload.Data.FailureReason),
	}
	if err := o.withdrawals.UpdateStatus(ctx, w.ID, w.Status, update); err != nil {
		return next, fmt.Errorf("persist %s: %w", next, err)
	}

	if err := o.ledger.InitiateRefund(ctx, w.UserID, w.Amount, w.ID); err != nil {
		return next, fmt.Errorf("initiate refund: %w", err)
	}

	refunding, err := domain.NextStatus(next, domain.EventRefund)
	if err != nil {
		return next, err
	}
	if err := o.withdrawals.UpdateStatus(ctx, w.ID, next, domain.StatusUpdate{Status: refunding}); err != nil {
		return next, fmt.Errorf("persist %s: %w", refunding, err)
	}
	return refunding, nil
}

func (o *Orchestrator) writeAudit(ctx context.Context, withdrawalID uuid.UUID, payload *domain.WebhookPayload, previous, next domain.Status) {
	metadata := map[string]string{
		"reference_id":     payload.Data.ReferenceID,
		"webhook_event_id": payload.EventID,
	}
	if payload.Data.TransactionID != "" {
		metadata["transaction_id"] = payload.Data.TransactionID
	}
	if payload.Data.FailureReason != "" {
		metadata["failure_reason"] = payload.Data.FailureReason
	}

	entry := &domain.AuditEntry{
		WithdrawalID:   withdrawalID,
		WebhookEventID: &payload.EventID,
		Action:         payload.Event,
		PreviousStatus: previous,
		NewStatus:      next,
		Metadata:       metadata,
		CreatedAt:      time.Now().UTC(),
	}
	if err := o.audit.Append(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrDuplicateEvent) {
			o.logger.Info("audit entry already recorded",
				zap.String("withdrawal_id", withdrawalID.String()),
				zap.String("event_id", payload.EventID))
			return
		}
		o.logger.Error("audit log write failed",
			zap.String("withdrawal_id", withdrawalID.String()),
			zap.String("event_id", payload.EventID),
			zap.Error(err))
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
