package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"payout/internal/domain"
)

type MockOrchestrator struct {
	mock.Mock
}

func (m *MockOrchestrator) ProcessPayoutWebhook(ctx context.Context, payload *domain.WebhookPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

type MockLifecycle struct {
	mock.Mock
}

func (m *MockLifecycle) GetWithdrawal(ctx context.Context, id string) (*domain.Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Withdrawal), args.Error(1)
}

func (m *MockLifecycle) CancelWithdrawal(ctx context.Context, id string, reason string) (*domain.Withdrawal, error) {
	args := m.Called(ctx, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Withdrawal), args.Error(1)
}

func (m *MockLifecycle) RefundWithdrawal(ctx context.Context, id string) (*domain.Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Withdrawal), args.Error(1)
}

func webhookBody(t *testing.T) []byte {
	t.Helper()

	payload := domain.WebhookPayload{
		Event: domain.ProviderEventPayoutSuccess,
		Data: domain.WebhookData{
			ReferenceID: "ref-123",
			Amount:      decimal.RequireFromString("100.50"),
			Currency:    "USD",
		},
		EventID:   "evt-1",
		Signature: "deadbeef",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return body
}

func TestHandlePayoutWebhook_OK(t *testing.T) {
	orchestrator := new(MockOrchestrator)
	lifecycle := new(MockLifecycle)
	router := NewRouter(NewWithdrawalHandler(orchestrator, lifecycle, nil))

	orchestrator.On("ProcessPayoutWebhook", mock.Anything, mock.MatchedBy(func(p *domain.WebhookPayload) bool {
		return p.EventID == "evt-1" && p.Data.ReferenceID == "ref-123"
	})).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payout", bytes.NewReader(webhookBody(t)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	orchestrator.AssertExpectations(t)
}

func TestHandlePayoutWebhook_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"secret missing", domain.ErrWebhookSecretMissing, http.StatusUnauthorized},
		{"missing signature", domain.ErrMissingWebhookSignature, http.StatusUnauthorized},
		{"invalid signature", domain.ErrInvalidWebhookSignature, http.StatusUnauthorized},
		{"not found", domain.ErrWithdrawalNotFound, http.StatusNotFound},
		{"unknown event", &domain.UnknownWebhookEventError{Event: "payout.reversed"}, http.StatusBadRequest},
		{"illegal transition", &domain.InvalidTransitionError{Status: domain.StatusSucceeded, Event: domain.EventSuccess}, http.StatusConflict},
		{"internal", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orchestrator := new(MockOrchestrator)
			router := NewRouter(NewWithdrawalHandler(orchestrator, new(MockLifecycle), nil))

			orchestrator.On("ProcessPayoutWebhook", mock.Anything, mock.Anything).Return(tt.err).Once()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payout", bytes.NewReader(webhookBody(t)))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandlePayoutWebhook_RejectsInvalidPayload(t *testing.T) {
	orchestrator := new(MockOrchestrator)
	router := NewRouter(NewWithdrawalHandler(orchestrator, new(MockLifecycle), nil))

	for _, body := range []string{
		"{not json",
		`{"data":{"reference_id":"ref-123"},"event_id":"evt-1"}`, // no event
		`{"event":"payout.success","data":{},"event_id":"evt-1"}`, // no reference_id
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payout", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
	orchestrator.AssertNotCalled(t, "ProcessPayoutWebhook", mock.Anything, mock.Anything)
}

func TestHandleCancel(t *testing.T) {
	lifecycle := new(MockLifecycle)
	router := NewRouter(NewWithdrawalHandler(new(MockOrchestrator), lifecycle, nil))

	id := uuid.New()
	canceled := &domain.Withdrawal{ID: id, Status: domain.StatusCanceled}

	lifecycle.On("CancelWithdrawal", mock.Anything, id.String(), "fat finger").Return(canceled, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/withdrawals/"+id.String()+"/cancel",
		strings.NewReader(`{"reason":"fat finger"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Withdrawal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.StatusCanceled, got.Status)
	lifecycle.AssertExpectations(t)
}

func TestHandleCancel_BadRequest(t *testing.T) {
	lifecycle := new(MockLifecycle)
	router := NewRouter(NewWithdrawalHandler(new(MockOrchestrator), lifecycle, nil))

	lifecycle.On("CancelWithdrawal", mock.Anything, "nope", "").Return(nil, domain.ErrBadRequest).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/withdrawals/nope/cancel", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRefund_Conflict(t *testing.T) {
	lifecycle := new(MockLifecycle)
	router := NewRouter(NewWithdrawalHandler(new(MockOrchestrator), lifecycle, nil))

	id := uuid.New()
	lifecycle.On("RefundWithdrawal", mock.Anything, id.String()).
		Return(nil, &domain.InvalidTransitionError{Status: domain.StatusRefunded, Event: domain.EventRefundComplete}).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/withdrawals/"+id.String()+"/refund", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleGet(t *testing.T) {
	lifecycle := new(MockLifecycle)
	router := NewRouter(NewWithdrawalHandler(new(MockOrchestrator), lifecycle, nil))

	id := uuid.New()
	lifecycle.On("GetWithdrawal", mock.Anything, id.String()).
		Return(&domain.Withdrawal{ID: id, Status: domain.StatusPending}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/withdrawals/"+id.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
