package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"dropship-reconciler/internal/core/logger"
	"dropship-reconciler/internal/features/reconciliation/domain"
	"dropship-reconciler/internal/features/reconciliation/ports"

	"go.uber.org/zap"
)

// ErrInvalidPlacement is returned when a placement request misses a required field.
var ErrInvalidPlacement = errors.New("invalid placement request")

// OrderCreator is the part of the provider API placement needs.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req domain.PlacementRequest) (string, error)
}

// PlacementResult is a placed provider order and the ledger row written for it.
type PlacementResult struct {
	ProviderOrderID string           `json:"provider_order_id"`
	Row             domain.LedgerRow `json:"row"`
}

// PlacementService places provider orders and records them in the ledger.
type PlacementService struct {
	provider OrderCreator
	ledger   ports.LedgerAppender
	logger   *zap.Logger
}

// NewPlacementService creates a new PlacementService.
func NewPlacementService(provider OrderCreator, ledger ports.LedgerAppender) *PlacementService {
	return &PlacementService{
		provider: provider,
		ledger:   ledger,
		logger:   logger.Named("placement"),
	}
}

// Place creates the provider order, then appends its ledger row with the
// "order placed" status. If the append fails the provider order still
// exists, so the result is returned together with the error.
func (s *PlacementService) Place(ctx context.Context, req domain.PlacementRequest) (*PlacementResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	id, err := s.provider.CreateOrder(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider order: %w", err)
	}

	result := &PlacementResult{
		ProviderOrderID: id,
		Row: domain.LedgerRow{
			MarketOrderNum: req.MarketOrderNum,
			StoreOrderNum:  id,
			Username:       req.Username,
			ServiceNum:     req.ServiceNum,
			OrderLink:      req.Link,
			EditLink:       req.EditLink,
			Quantity:       strconv.Itoa(req.Quantity),
			ServiceName:    req.ServiceName,
			OrderTime:      req.OrderTime,
			Status:         domain.LedgerStatusOrdered,
		},
	}

	log := s.logger.With(
		zap.String("market_order_num", req.MarketOrderNum),
		zap.String("store_order_num", id),
	)

	if err := s.ledger.AppendRow(ctx, result.Row); err != nil {
		log.Error("Provider order placed but ledger append failed", zap.Error(err))
		return result, fmt.Errorf("failed to record order %s in ledger: %w", id, err)
	}

	log.Info("Provider order placed")
	return result, nil
}

func validate(req domain.PlacementRequest) error {
	switch {
	case strings.TrimSpace(req.MarketOrderNum) == "":
		return fmt.Errorf("%w: market_order_num is required", ErrInvalidPlacement)
	case strings.TrimSpace(req.ServiceNum) == "":
		return fmt.Errorf("%w: service_num is required", ErrInvalidPlacement)
	case strings.TrimSpace(req.Link) == "":
		return fmt.Errorf("%w: link is required", ErrInvalidPlacement)
	case req.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidPlacement)
	}
	return nil
}
