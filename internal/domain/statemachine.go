package domain

// transitions is the legal status graph. A missing (status, event) pair means
// the transition is forbidden; terminal statuses have no entries at all.
var transitions = map[Status]map[Event]Status{
	StatusPending: {
		EventProcess: StatusProcessing,
		EventFail:    StatusFailed,
		EventCancel:  StatusCanceled,
	},
	StatusPendingVerification: {
		EventCancel: StatusCanceled,
	},
	StatusProcessing: {
		EventSuccess: StatusSucceeded,
		EventFail:    StatusFailed,
	},
	StatusFailed: {
		EventRefund:         StatusRefunding,
		EventRefundComplete: StatusRefunded,
	},
	StatusRefunding: {
		EventRefundComplete: StatusRefunded,
	},
}

// CanTransition reports whether the transition table has an entry for the
// (status, event) pair.
func CanTransition(status Status, event Event) bool {
	_, ok := transitions[status][event]
	return ok
}

// NextStatus returns the status resulting from applying event to status.
func NextStatus(status Status, event Event) (Status, error) {
	next, ok := transitions[status][event]
	if !ok {
		return "", &InvalidTransitionError{Status: status, Event: event}
	}
	return next, nil
}

// Validate guards a transition before any side effect is attempted.
func Validate(status Status, event Event) error {
	if !CanTransition(status, event) {
		return &InvalidTransitionError{Status: status, Event: event}
	}
	return nil
}

// CanCancel reports whether a direct cancellation is allowed: only before
// processing has started.
func CanCancel(status Status) bool {
	return CanTransition(status, EventCancel)
}

// CanRefund reports whether a direct refund may start. Only failed
// withdrawals qualify; a refund already in flight completes through the
// REFUNDING path instead.
func CanRefund(status Status) bool {
	return status == StatusFailed
}

// Provider webhook event vocabulary.
const (
	ProviderEventPayoutSuccess   = "payout.success"
	ProviderEventPayoutFailed    = "payout.failed"
	ProviderEventPayoutCancelled = "payout.cancelled"
)

// MapProviderEvent translates the provider's webhook event names into the
// internal event vocabulary. Failed and cancelled payouts collapse into FAIL:
// both require the same refund compensation.
func MapProviderEvent(event string) (Event, error) {
	switch event {
	case ProviderEventPayoutSuccess:
		return EventSuccess, nil
	case ProviderEventPayoutFailed, ProviderEventPayoutCancelled:
		return EventFail, nil
	default:
		return "", &UnknownWebhookEventError{Event: event}
	}
}
