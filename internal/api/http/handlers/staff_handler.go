package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/restaurantos/restaurant-service/internal/api/dto"
	"github.com/restaurantos/restaurant-service/internal/auth"
	"github.com/restaurantos/restaurant-service/internal/service"
	apperrors "github.com/restaurantos/restaurant-service/pkg/util/errorutil"
)

// StaffHandler exposes the tenant's account roster.
type StaffHandler struct {
	auth *service.AuthService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(authService *service.AuthService) *StaffHandler {
	return &StaffHandler{auth: authService}
}

// List handles GET /staff.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	users, err := h.auth.ListStaff(c.UserContext(), principal.Identity.RestaurantID)
	if err != nil {
		return mapServiceError(err)
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Create handles POST /staff.
func (h *StaffHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.CreateStaff(c.UserContext(), principal.Identity, service.StaffInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Phone:    req.Phone,
	})
	if err != nil {
		return mapServiceError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}
