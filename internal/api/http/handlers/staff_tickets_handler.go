package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// StaffTicketsHandler handles staff-only ticket workflow endpoints.
type StaffTicketsHandler struct {
	tickets     *service.TicketService
	assignments *service.AssignmentService
	names       NameResolver
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(ticketService *service.TicketService, assignments *service.AssignmentService, names NameResolver) *StaffTicketsHandler {
	return &StaffTicketsHandler{tickets: ticketService, assignments: assignments, names: names}
}

// AddNote POST /staff/tickets/:id/notes.
func (h *StaffTicketsHandler) AddNote(c *fiber.Ctx) error {
	staff, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	note, err := h.tickets.AddNote(c.UserContext(), staff, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": noteResponse(h.names, *note)})
}

// Assign POST /staff/tickets/:id/assign.
func (h *StaffTicketsHandler) Assign(c *fiber.Ctx) error {
	staff, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	var assignee *domain.UserID
	if req.AssigneeID != nil && strings.TrimSpace(*req.AssigneeID) != "" {
		id := domain.UserID(strings.TrimSpace(*req.AssigneeID))
		assignee = &id
	}
	ticket, err := h.tickets.Assign(c.UserContext(), staff, c.Params("id"), assignee)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(h.names, ticket)})
}

// SelfAssign POST /staff/tickets/:id/self-assign.
func (h *StaffTicketsHandler) SelfAssign(c *fiber.Ctx) error {
	staff, err := currentUser(c)
	if err != nil {
		return err
	}
	ticket, err := h.assignments.SelfAssignTicket(c.UserContext(), staff, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(h.names, ticket)})
}

// AutoAssign POST /staff/tickets/:id/auto-assign.
func (h *StaffTicketsHandler) AutoAssign(c *fiber.Ctx) error {
	staff, err := currentUser(c)
	if err != nil {
		return err
	}
	ticket, err := h.assignments.AutoAssignTicket(c.UserContext(), staff, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(h.names, ticket)})
}

// ChangeStatus POST /staff/tickets/:id/status.
func (h *StaffTicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	staff, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.StatusChangeInput{Note: req.Note, AutoClose: req.AutoClose}
	if strings.TrimSpace(req.Status) != "" {
		input.Status = parseStatus(req.Status)
	}
	if req.Priority != nil {
		p := parsePriority(*req.Priority)
		input.Priority = &p
	}
	if input.Status == "" && input.Priority == nil {
		return apperrors.NewValidationError("status or priority is required", nil)
	}
	ticket, err := h.tickets.ChangeStatus(c.UserContext(), staff, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(h.names, ticket)})
}

// Transitions GET /staff/tickets/:id/transitions.
func (h *StaffTicketsHandler) Transitions(c *fiber.Ctx) error {
	staff, err := currentUser(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetTicket(staff, c.Params("id"))
	if err != nil {
		return err
	}
	next, err := h.tickets.Transitions(staff, ticket.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TransitionsResponse{Current: ticket.Status, Next: next}})
}
