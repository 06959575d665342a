package domain

import (
	"errors"
	"fmt"
)

var (
	ErrWebhookSecretMissing    = errors.New("webhook secret not configured")
	ErrMissingWebhookSignature = errors.New("missing webhook signature")
	ErrInvalidWebhookSignature = errors.New("invalid webhook signature")
	ErrWithdrawalNotFound      = errors.New("withdrawal not found")
	ErrBadRequest              = errors.New("bad request")
	ErrStatusConflict          = errors.New("withdrawal status changed concurrently")
	ErrDuplicateEvent          = errors.New("webhook event already recorded")
)

// InvalidTransitionError reports a (status, event) pair that has no entry in
// the transition table.
type InvalidTransitionError struct {
	Status Status
	Event  Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition from %s on event %s", e.Status, e.Event)
}

// UnknownWebhookEventError reports a provider event name outside the known
// webhook vocabulary.
type UnknownWebhookEventError struct {
	Event string
}

func (e *UnknownWebhookEventError) Error() string {
	return fmt.Sprintf("unknown webhook event %q", e.Event)
}
