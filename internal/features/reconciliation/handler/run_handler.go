package handler

import (
	"context"
	"errors"
	"net/http"

	"dropship-reconciler/internal/core/logger"
	"dropship-reconciler/internal/features/reconciliation/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RunTrigger starts reconciliation passes. *service.Scheduler satisfies it.
type RunTrigger interface {
	Trigger(ctx context.Context) error
	Busy() bool
}

// ReportReader reads the last run report.
type ReportReader interface {
	Last(ctx context.Context) (*domain.RunReport, error)
}

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RunHandler handles HTTP requests for reconciliation runs.
type RunHandler struct {
	// base outlives requests so triggered runs are not cancelled when the response is sent.
	base    context.Context
	trigger RunTrigger
	reports ReportReader
	store   Pinger
}

// NewRunHandler creates a new instance of RunHandler. store may be nil when
// no Redis is configured.
func NewRunHandler(base context.Context, trigger RunTrigger, reports ReportReader, store Pinger) *RunHandler {
	return &RunHandler{
		base:    base,
		trigger: trigger,
		reports: reports,
		store:   store,
	}
}

// Health handles GET /health.
// @Summary Health check
// @Description Reports whether the service and its run store are reachable.
// @Tags Runs
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *RunHandler) Health(c *fiber.Ctx) error {
	resp := HealthResponse{
		Status:  "ok",
		Running: h.trigger.Busy(),
	}

	if h.store != nil {
		if err := h.store.Ping(c.UserContext()); err != nil {
			logger.Get().Warn("Run store unreachable", zap.String("ray_id", rayID(c)), zap.Error(err))
			resp.Status = "degraded"
			return c.Status(http.StatusServiceUnavailable).JSON(resp)
		}
	}

	return c.Status(http.StatusOK).JSON(resp)
}

// GetLastRun handles GET /runs/last.
// @Summary Last run report
// @Description Returns the report of the most recent reconciliation run.
// @Tags Runs
// @Produce json
// @Success 200 {object} domain.RunReport
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /runs/last [get]
func (h *RunHandler) GetLastRun(c *fiber.Ctx) error {
	rayID := rayID(c)

	report, err := h.reports.Last(c.UserContext())
	if err != nil {
		logger.Get().Error("Failed to read last run report", zap.String("ray_id", rayID), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Message: "Internal Server Error",
			RayID:   rayID,
		})
	}

	if report == nil {
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{
			Message: "No run recorded yet",
			RayID:   rayID,
		})
	}

	return c.Status(http.StatusOK).JSON(report)
}

// TriggerRun handles POST /runs.
// @Summary Trigger a run
// @Description Starts a reconciliation run in the background.
// @Tags Runs
// @Produce json
// @Success 202 {object} TriggerResponse
// @Failure 409 {object} ErrorResponse
// @Router /runs [post]
func (h *RunHandler) TriggerRun(c *fiber.Ctx) error {
	rayID := rayID(c)

	if err := h.trigger.Trigger(h.base); err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			return c.Status(http.StatusConflict).JSON(ErrorResponse{
				Message: "A run is already in progress",
				RayID:   rayID,
			})
		}
		logger.Get().Error("Failed to trigger run", zap.String("ray_id", rayID), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Message: "Internal Server Error",
			RayID:   rayID,
		})
	}

	logger.Get().Info("Run triggered", zap.String("ray_id", rayID))
	return c.Status(http.StatusAccepted).JSON(TriggerResponse{Status: "started"})
}

func rayID(c *fiber.Ctx) string {
	id, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return id
}

// HealthResponse is returned by the health check.
type HealthResponse struct {
	Status string `json:"status"`
	// Running is true while a reconciliation pass is in flight.
	Running bool `json:"running"`
}

// TriggerResponse acknowledges a triggered run.
type TriggerResponse struct {
	Status string `json:"status"`
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}
