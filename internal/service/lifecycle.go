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

// Lifecycle handles operator- and user-initiated cancellation and refund.
// It shares the state machine and the balance/audit contracts with the
// webhook path but is triggered directly.
type Lifecycle struct {
	withdrawals port.WithdrawalRepository
	audit       port.AuditLog
	ledger      port.BalanceLedger
	notifier    port.Notifier
	logger      *zap.Logger
}

func NewLifecycle(
	withdrawals port.WithdrawalRepository,
	audit port.AuditLog,
	ledger port.BalanceLedger,
	notifier port.Notifier,
	logger *zap.Logger,
) *Lifecycle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lifecycle{
		withdrawals: withdrawals,
		audit:       audit,
		ledger:      ledger,
		notifier:    notifier,
		logger:      logger,
	}
}

// GetWithdrawal returns the withdrawal for a well-formed id.
func (s *Lifecycle) GetWithdrawal(ctx context.Context, id string) (*domain.Withdrawal, error) {
	wid, err := parseWithdrawalID(id)
	if err != nil {
		return nil, err
	}
	return s.withdrawals.GetByID(ctx, wid)
}

// CancelWithdrawal cancels a withdrawal that has not started processing and
// returns the held funds to the user's available balance.
func (s *Lifecycle) CancelWithdrawal(ctx context.Context, id string, reason string) (*domain.Withdrawal, error) {
	correlationID := uuid.New()
	log := s.logger.With(
		zap.String("correlation_id", correlationID.String()),
		zap.String("withdrawal_id", id))
	log.Info("canceling withdrawal")

	w, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.CanCancel(w.Status) {
		return nil, &domain.InvalidTransitionError{Status: w.Status, Event: domain.EventCancel}
	}
	next, err := domain.NextStatus(w.Status, domain.EventCancel)
	if err != nil {
		return nil, err
	}

	ledgerReason := reason
	if ledgerReason == "" {
		ledgerReason = "withdrawal canceled"
	}
	correlation := domain.Correlation{ID: w.ID, Type: domain.CorrelationWithdrawalCancel}
	if err := s.ledger.ReleaseBalance(ctx, w.UserID, w.Amount, w.Currency, correlation, ledgerReason); err != nil {
		log.Error("release balance failed", zap.Error(err))
		return nil, fmt.Errorf("release balance: %w", err)
	}

	update := domain.StatusUpdate{Status: next, CancellationReason: optional(reason)}
	if err := s.withdrawals.UpdateStatus(ctx, w.ID, w.Status, update); err != nil {
		log.Error("persist canceled status failed", zap.Error(err))
		if errors.Is(err, domain.ErrStatusConflict) {
			return nil, &domain.InvalidTransitionError{Status: w.Status, Event: domain.EventCancel}
		}
		return nil, fmt.Errorf("persist canceled status: %w", err)
	}

	s.writeAudit(ctx, w, "CANCEL", next, reason, correlationID)

	updated := *w
	updated.Status = next
	updated.CancellationReason = optional(reason)
	log.Info("withdrawal canceled")
	return &updated, nil
}

// RefundWithdrawal returns the funds of a failed withdrawal to the user's
// available balance and notifies the user.
func (s *Lifecycle) RefundWithdrawal(ctx context.Context, id string) (*domain.Withdrawal, error) {
	correlationID := uuid.New()
	log := s.logger.With(
		zap.String("correlation_id", correlationID.String()),
		zap.String("withdrawal_id", id))
	log.Info("refunding withdrawal")

	w, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.CanRefund(w.Status) {
		return nil, &domain.InvalidTransitionError{Status: w.Status, Event: domain.EventRefundComplete}
	}
	next, err := domain.NextStatus(w.Status, domain.EventRefundComplete)
	if err != nil {
		return nil, err
	}

	correlation := domain.Correlation{ID: w.ID, Type: domain.CorrelationWithdrawalRefund}
	if err := s.ledger.ReleaseBalance(ctx, w.UserID, w.Amount, w.Currency, correlation, "refund of failed withdrawal"); err != nil {
		log.Error("release balance failed", zap.Error(err))
		return nil, fmt.Errorf("release balance: %w", err)
	}

	if err := s.withdrawals.UpdateStatus(ctx, w.ID, w.Status, domain.StatusUpdate{Status: next}); err != nil {
		log.Error("persist refunded status failed", zap.Error(err))
		if errors.Is(err, domain.ErrStatusConflict) {
			return nil, &domain.InvalidTransitionError{Status: w.Status, Event: domain.EventRefundComplete}
		}
		return nil, fmt.Errorf("persist refunded status: %w", err)
	}

	s.writeAudit(ctx, w, "REFUND", next, "", correlationID)

	// The refund is committed; notification is best-effort.
	if s.notifier != nil {
		if err := s.notifier.SendWithdrawalRefundEmail(ctx, w.UserID, w.Amount, w.Currency); err != nil {
			log.Error("refund notification failed", zap.Error(err))
		}
	}

	updated := *w
	updated.Status = next
	log.Info("withdrawal refunded")
	return &updated, nil
}

// fetch resolves a caller-supplied id. An unknown id on the direct path is a
// caller mistake, not an internal condition.
func (s *Lifecycle) fetch(ctx context.Context, id string) (*domain.Withdrawal, error) {
	wid, err := parseWithdrawalID(id)
	if err != nil {
		return nil, err
	}
	w, err := s.withdrawals.GetByID(ctx, wid)
	if err != nil {
		if errors.Is(err, domain.ErrWithdrawalNotFound) {
			return nil, fmt.Errorf("%w: withdrawal %s not found", domain.ErrBadRequest, id)
		}
		return nil, fmt.Errorf("fetch withdrawal: %w", err)
	}
	return w, nil
}

func (s *Lifecycle) writeAudit(ctx context.Context, w *domain.Withdrawal, action string, next domain.Status, reason string, correlationID uuid.UUID) {
	metadata := map[string]string{
		"correlation_id": correlationID.String(),
	}
	if reason != "" {
		metadata["reason"] = reason
	}
	entry := &domain.AuditEntry{
		WithdrawalID:   w.ID,
		Action:         action,
		PreviousStatus: w.Status,
		NewStatus:      next,
		Metadata:       metadata,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Error("audit log write failed",
			zap.String("withdrawal_id", w.ID.String()),
			zap.String("action", action),
			zap.Error(err))
	}
}

func parseWithdrawalID(id string) (uuid.UUID, error) {
	wid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid withdrawal id %q", domain.ErrBadRequest, id)
	}
	return wid, nil
}
