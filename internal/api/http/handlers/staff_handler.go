package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	sourceStore   = "store"
	sourceArchive = "archive"
)

// StaffHandler exposes the staff overview endpoints.
type StaffHandler struct {
	tickets *service.TicketService
	archive *service.ArchiveService
	names   NameResolver
	metrics *observability.Metrics
}

// NewStaffHandler constructs handler.
func NewStaffHandler(ticketService *service.TicketService, archive *service.ArchiveService, names NameResolver, metrics *observability.Metrics) *StaffHandler {
	return &StaffHandler{tickets: ticketService, archive: archive, names: names, metrics: metrics}
}

// Dashboard GET /staff/dashboard.
func (h *StaffHandler) Dashboard(c *fiber.Ctx) error {
	staff, err := currentUser(c)
	if err != nil {
		return err
	}
	stats, err := h.tickets.Dashboard(staff)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DashboardResponse{
		Total:           stats.Total,
		Waiting:         stats.Waiting,
		HighPriority:    stats.HighPriority,
		UpdatedThisWeek: stats.UpdatedThisWeek,
		TopUrgent:       ticketSummaries(h.names, stats.TopUrgent),
	}})
}

// Notifications GET /staff/notifications?source=store|archive&limit=N.
func (h *StaffHandler) Notifications(c *fiber.Ctx) error {
	staff, err := currentUser(c)
	if err != nil {
		return err
	}
	var log []domain.Notification
	switch source := c.Query("source", sourceStore); source {
	case sourceStore:
		log, err = h.tickets.Notifications(staff)
	case sourceArchive:
		log, err = h.archive.RecentNotifications(c.UserContext(), staff, c.QueryInt("limit", 0))
	default:
		return apperrors.NewValidationError("unknown notification source", map[string]any{"source": source})
	}
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(log))
	for _, n := range log {
		items = append(items, dto.NewNotificationResponse(n))
	}
	return c.JSON(fiber.Map{"data": items})
}

// RecordNotification POST /staff/notifications.
func (h *StaffHandler) RecordNotification(c *fiber.Ctx) error {
	staff, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.RecordNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	n, err := h.tickets.RecordNotification(c.UserContext(), staff, req.Message, req.TicketID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewNotificationResponse(*n)})
}

// TicketHistory GET /staff/tickets/:id/history.
func (h *StaffHandler) TicketHistory(c *fiber.Ctx) error {
	staff, err := currentUser(c)
	if err != nil {
		return err
	}
	history, err := h.archive.TicketHistory(c.UserContext(), staff, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.StatusEventResponse, 0, len(history))
	for _, e := range history {
		items = append(items, statusEventResponse(e))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Metrics GET /staff/metrics.
func (h *StaffHandler) Metrics(c *fiber.Ctx) error {
	staff, err := currentUser(c)
	if err != nil {
		return err
	}
	m, err := h.tickets.Metrics(staff)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMetricsResponse(m)})
}

// HTTPMetrics GET /staff/http-metrics.
func (h *StaffHandler) HTTPMetrics(c *fiber.Ctx) error {
	snap := h.metrics.Snapshot()
	latency := make(map[string]int64, len(snap.AvgLatency))
	for k, v := range snap.AvgLatency {
		latency[k] = v.Milliseconds()
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"requests":       snap.Requests,
		"errors":         snap.Errors,
		"avg_latency_ms": latency,
	}})
}
