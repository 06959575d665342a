package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"payout/internal/domain"
)

type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) GetByExternalReference(ctx context.Context, ref string) (*domain.Withdrawal, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from domain.Status, update domain.StatusUpdate) error {
	args := m.Called(ctx, id, from, update)
	return args.Error(0)
}

type MockAuditLog struct {
	mock.Mock
}

func (m *MockAuditLog) Exists(ctx context.Context, withdrawalID uuid.UUID, eventID string) (bool, error) {
	args := m.Called(ctx, withdrawalID, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuditLog) Append(ctx context.Context, entry *domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type MockBalanceLedger struct {
	mock.Mock
}

func (m *MockBalanceLedger) DebitAvailable(ctx context.Context, userID string, amount decimal.Decimal, correlationID uuid.UUID) error {
	args := m.Called(ctx, userID, amount, correlationID)
	return args.Error(0)
}

func (m *MockBalanceLedger) ReleaseHold(ctx context.Context, userID string, holdID uuid.UUID) error {
	args := m.Called(ctx, userID, holdID)
	return args.Error(0)
}

func (m *MockBalanceLedger) InitiateRefund(ctx context.Context, userID string, amount decimal.Decimal, correlationID uuid.UUID) error {
	args := m.Called(ctx, userID, amount, correlationID)
	return args.Error(0)
}

func (m *MockBalanceLedger) ReleaseBalance(ctx context.Context, userID string, amount decimal.Decimal, currency string, correlation domain.Correlation, reason string) error {
	args := m.Called(ctx, userID, amount, currency, correlation, reason)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendWithdrawalRefundEmail(ctx context.Context, userID string, amount decimal.Decimal, currency string) error {
	args := m.Called(ctx, userID, amount, currency)
	return args.Error(0)
}
