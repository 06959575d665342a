package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"payout/internal/domain"
	"payout/internal/port"
)

var uniqueConstraint pq.ErrorCode = "23505"

type auditLogRepository struct {
	db *sql.DB
}

func NewAuditLogRepository(db *sql.DB) port.AuditLog {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Exists(ctx context.Context, withdrawalID uuid.UUID, eventID string) (bool, error) {
	const query = `SELECT EXISTS (
		SELECT 1 FROM withdrawal_audit_logs
		WHERE withdrawal_id = $1 AND webhook_event_id = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, withdrawalID, eventID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check audit entry: %w", err)
	}
	return exists, nil
}

// Append inserts an audit entry. The unique index on
// (withdrawal_id, webhook_event_id) makes the insert the authoritative
// idempotency gate for concurrent duplicate deliveries.
func (r *auditLogRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}

	const query = `INSERT INTO withdrawal_audit_logs
		(withdrawal_id, webhook_event_id, action, previous_status, new_status, metadata, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.ExecContext(ctx, query,
		entry.WithdrawalID, entry.WebhookEventID, entry.Action,
		entry.PreviousStatus, entry.NewStatus, metadata, entry.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueConstraint {
			return domain.ErrDuplicateEvent
		}
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
