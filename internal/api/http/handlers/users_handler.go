package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// StaffLister lists assignable users.
type StaffLister interface {
	Staff() []domain.User
}

// UsersHandler exposes login and identity endpoints.
type UsersHandler struct {
	auth  *service.AuthService
	staff StaffLister
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, staff StaffLister) *UsersHandler {
	return &UsersHandler{auth: authService, staff: staff}
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(result.User),
			"auth": dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
		},
	})
}

// Me handles GET /me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Staff handles GET /staff/users.
func (h *UsersHandler) Staff(c *fiber.Ctx) error {
	staff := h.staff.Staff()
	items := make([]dto.UserResponse, 0, len(staff))
	for i := range staff {
		items = append(items, dto.NewUserResponse(&staff[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
