package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"dropship-reconciler/internal/core/logger"
	"dropship-reconciler/internal/features/provider/service"
	"dropship-reconciler/internal/features/reconciliation/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// BalanceReader reads the provider account balance.
type BalanceReader interface {
	GetBalance(ctx context.Context) (*domain.Balance, error)
}

// StatusReader looks up several provider orders in one request.
type StatusReader interface {
	GetStatuses(ctx context.Context, orderIDs []string) (map[string]domain.ProviderStatus, error)
}

// OrderPlacer places provider orders.
type OrderPlacer interface {
	Place(ctx context.Context, req domain.PlacementRequest) (*service.PlacementResult, error)
}

// ProviderHandler handles HTTP requests against the fulfillment provider.
type ProviderHandler struct {
	balance  BalanceReader
	statuses StatusReader
	placer   OrderPlacer
}

// NewProviderHandler creates a new instance of ProviderHandler.
func NewProviderHandler(balance BalanceReader, statuses StatusReader, placer OrderPlacer) *ProviderHandler {
	return &ProviderHandler{
		balance:  balance,
		statuses: statuses,
		placer:   placer,
	}
}

// GetBalance handles GET /provider/balance.
// @Summary Provider balance
// @Description Returns the fulfillment provider account balance.
// @Tags Provider
// @Produce json
// @Success 200 {object} domain.Balance
// @Failure 502 {object} ErrorResponse
// @Router /provider/balance [get]
func (h *ProviderHandler) GetBalance(c *fiber.Ctx) error {
	rayID := rayID(c)

	balance, err := h.balance.GetBalance(c.UserContext())
	if err != nil {
		logger.Get().Error("Failed to fetch provider balance", zap.String("ray_id", rayID), zap.Error(err))
		return c.Status(http.StatusBadGateway).JSON(ErrorResponse{
			Message: "Provider unavailable",
			RayID:   rayID,
		})
	}

	return c.Status(http.StatusOK).JSON(balance)
}

// GetStatuses handles GET /provider/status.
// @Summary Provider order statuses
// @Description Returns the provider status of each order ID in the comma separated orders query.
// @Tags Provider
// @Produce json
// @Param orders query string true "Comma separated provider order IDs"
// @Success 200 {object} map[string]domain.ProviderStatus
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /provider/status [get]
func (h *ProviderHandler) GetStatuses(c *fiber.Ctx) error {
	rayID := rayID(c)

	var ids []string
	for _, id := range strings.Split(c.Query("orders"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "orders query is required",
			RayID:   rayID,
		})
	}

	statuses, err := h.statuses.GetStatuses(c.UserContext(), ids)
	if err != nil {
		logger.Get().Error("Failed to fetch provider statuses",
			zap.Int("orders", len(ids)),
			zap.String("ray_id", rayID),
			zap.Error(err),
		)
		return c.Status(http.StatusBadGateway).JSON(ErrorResponse{
			Message: "Provider unavailable",
			RayID:   rayID,
		})
	}

	return c.Status(http.StatusOK).JSON(statuses)
}

// PlaceOrder handles POST /provider/orders.
// @Summary Place a provider order
// @Description Creates an order at the provider and appends it to the ledger as order placed.
// @Tags Provider
// @Accept json
// @Produce json
// @Param order body domain.PlacementRequest true "Order details"
// @Success 201 {object} service.PlacementResult
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /provider/orders [post]
func (h *ProviderHandler) PlaceOrder(c *fiber.Ctx) error {
	rayID := rayID(c)

	var req domain.PlacementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Invalid request body",
			RayID:   rayID,
		})
	}

	result, err := h.placer.Place(c.UserContext(), req)
	if err != nil {
		logger.Get().Error("Failed to place provider order",
			zap.String("market_order_num", req.MarketOrderNum),
			zap.String("ray_id", rayID),
			zap.Error(err),
		)

		status := http.StatusInternalServerError
		msg := "Internal Server Error"

		switch {
		case errors.Is(err, service.ErrInvalidPlacement):
			status = http.StatusBadRequest
			msg = err.Error()
		case errors.Is(err, domain.ErrProviderRejected):
			status = http.StatusUnprocessableEntity
			msg = err.Error()
		case errors.Is(err, domain.ErrProviderUnavailable):
			status = http.StatusBadGateway
			msg = "Provider unavailable"
		}

		return c.Status(status).JSON(ErrorResponse{
			Message:         msg,
			RayID:           rayID,
			ProviderOrderID: providerOrderID(result),
		})
	}

	return c.Status(http.StatusCreated).JSON(result)
}

func rayID(c *fiber.Ctx) string {
	id, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return id
}

func providerOrderID(result *service.PlacementResult) string {
	if result == nil {
		return ""
	}
	return result.ProviderOrderID
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
	// ProviderOrderID is set when the provider order exists but the ledger append failed.
	ProviderOrderID string `json:"provider_order_id,omitempty"`
}
