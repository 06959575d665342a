package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"payout/internal/domain"
	"payout/internal/port"
)

type withdrawalRepository struct {
	db *sql.DB
}

func NewWithdrawalRepository(db *sql.DB) port.WithdrawalRepository {
	return &withdrawalRepository{db: db}
}

const withdrawalColumns = `id, user_id, amount, currency, status, external_reference,
	transaction_id, hold_id, failure_reason, cancellation_reason,
	webhook_event_id, webhook_processed_at, created_at, updated_at`

func (r *withdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error) {
	const query = `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1`
	return scanWithdrawal(r.db.QueryRowContext(ctx, query, id))
}

func (r *withdrawalRepository) GetByExternalReference(ctx context.Context, ref string) (*domain.Withdrawal, error) {
	const query = `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE external_reference = $1`
	return scanWithdrawal(r.db.QueryRowContext(ctx, query, ref))
}

// UpdateStatus persists the new status only while the stored status still
// matches the one read at validation time, closing the race between
// concurrent transitions on the same withdrawal.
func (r *withdrawalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from domain.Status, update domain.StatusUpdate) error {
	const query = `UPDATE withdrawals SET
		status = $1,
		transaction_id = COALESCE($2, transaction_id),
		webhook_event_id = COALESCE($3, webhook_event_id),
		webhook_processed_at = COALESCE($4, webhook_processed_at),
		failure_reason = COALESCE($5, failure_reason),
		cancellation_reason = COALESCE($6, cancellation_reason),
		updated_at = $7
	WHERE id = $8 AND status = $9`

	result, err := r.db.ExecContext(ctx, query,
		update.Status,
		update.TransactionID,
		update.WebhookEventID,
		update.WebhookProcessedAt,
		update.FailureReason,
		update.CancellationReason,
		time.Now().UTC(),
		id,
		from,
	)
	if err != nil {
		return fmt.Errorf("update withdrawal status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrStatusConflict
	}
	return nil
}

func scanWithdrawal(row *sql.Row) (*domain.Withdrawal, error) {
	var (
		w                  domain.Withdrawal
		transactionID      sql.NullString
		holdID             uuid.NullUUID
		failureReason      sql.NullString
		cancellationReason sql.NullString
		webhookEventID     sql.NullString
		webhookProcessedAt sql.NullTime
	)

	err := row.Scan(
		&w.ID, &w.UserID, &w.Amount, &w.Currency, &w.Status, &w.ExternalReference,
		&transactionID, &holdID, &failureReason, &cancellationReason,
		&webhookEventID, &webhookProcessedAt, &w.CreatedAt, &w.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrWithdrawalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan withdrawal: %w", err)
	}

	if transactionID.Valid {
		w.TransactionID = &transactionID.String
	}
	if holdID.Valid {
		w.HoldID = &holdID.UUID
	}
	if failureReason.Valid {
		w.FailureReason = &failureReason.String
	}
	if cancellationReason.Valid {
		w.CancellationReason = &cancellationReason.String
	}
	if webhookEventID.Valid {
		w.WebhookEventID = &webhookEventID.String
	}
	if webhookProcessedAt.Valid {
		w.WebhookProcessedAt = &webhookProcessedAt.Time
	}
	return &w, nil
}
