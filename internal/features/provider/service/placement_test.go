package service

import (
	"context"
	"errors"
	"testing"

	"dropship-reconciler/internal/features/reconciliation/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderCreator is a mock implementation of OrderCreator
type MockOrderCreator struct {
	mock.Mock
}

func (m *MockOrderCreator) CreateOrder(ctx context.Context, req domain.PlacementRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockLedgerAppender is a mock implementation of ports.LedgerAppender
type MockLedgerAppender struct {
	mock.Mock
}

func (m *MockLedgerAppender) AppendRow(ctx context.Context, row domain.LedgerRow) error {
	return m.Called(ctx, row).Error(0)
}

func validRequest() domain.PlacementRequest {
	return domain.PlacementRequest{
		MarketOrderNum: "20250105-0000216-1",
		Username:       "gpl",
		ServiceNum:     "501",
		ServiceName:    "Followers",
		Link:           "gpl_lesson_official",
		Quantity:       100,
		OrderTime:      "2025-01-05 20:14:18",
	}
}

func TestPlacementService_Place(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		provider := new(MockOrderCreator)
		ledger := new(MockLedgerAppender)
		svc := NewPlacementService(provider, ledger)
		req := validRequest()

		provider.On("CreateOrder", ctx, req).Return("214952", nil).Once()
		ledger.On("AppendRow", ctx, mock.MatchedBy(func(row domain.LedgerRow) bool {
			return row.StoreOrderNum == "214952" &&
				row.MarketOrderNum == req.MarketOrderNum &&
				row.Quantity == "100" &&
				row.OrderLink == "gpl_lesson_official" &&
				row.Status == domain.LedgerStatusOrdered
		})).Return(nil).Once()

		result, err := svc.Place(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, "214952", result.ProviderOrderID)
		provider.AssertExpectations(t)
		ledger.AssertExpectations(t)
	})

	t.Run("Invalid", func(t *testing.T) {
		provider := new(MockOrderCreator)
		svc := NewPlacementService(provider, new(MockLedgerAppender))

		for name, mutate := range map[string]func(*domain.PlacementRequest){
			"NoMarketOrder": func(r *domain.PlacementRequest) { r.MarketOrderNum = " " },
			"NoService":     func(r *domain.PlacementRequest) { r.ServiceNum = "" },
			"NoLink":        func(r *domain.PlacementRequest) { r.Link = "" },
			"ZeroQuantity":  func(r *domain.PlacementRequest) { r.Quantity = 0 },
		} {
			req := validRequest()
			mutate(&req)

			_, err := svc.Place(ctx, req)
			assert.ErrorIs(t, err, ErrInvalidPlacement, name)
		}
		provider.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("ProviderError", func(t *testing.T) {
		provider := new(MockOrderCreator)
		ledger := new(MockLedgerAppender)
		svc := NewPlacementService(provider, ledger)

		provider.On("CreateOrder", ctx, mock.Anything).Return("", domain.ErrProviderRejected).Once()

		result, err := svc.Place(ctx, validRequest())

		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrProviderRejected)
		ledger.AssertNotCalled(t, "AppendRow", mock.Anything, mock.Anything)
	})

	t.Run("LedgerError", func(t *testing.T) {
		provider := new(MockOrderCreator)
		ledger := new(MockLedgerAppender)
		svc := NewPlacementService(provider, ledger)

		provider.On("CreateOrder", ctx, mock.Anything).Return("214953", nil).Once()
		ledger.On("AppendRow", ctx, mock.Anything).Return(errors.New("quota exceeded")).Once()

		result, err := svc.Place(ctx, validRequest())

		require.Error(t, err)
		require.NotNil(t, result)
		assert.Equal(t, "214953", result.ProviderOrderID)
	})
}
