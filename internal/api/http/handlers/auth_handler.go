package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/restaurantos/restaurant-service/internal/api/dto"
	"github.com/restaurantos/restaurant-service/internal/auth"
	"github.com/restaurantos/restaurant-service/internal/service"
	apperrors "github.com/restaurantos/restaurant-service/pkg/util/errorutil"
)

// AuthHandler exposes registration, login and token introspection endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.Name == "" || req.Role == "" {
		return apperrors.NewValidationError("email, password, name, and role are required", nil)
	}

	session, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		Role:           req.Role,
		Phone:          req.Phone,
		RestaurantName: req.RestaurantName,
		RestaurantID:   req.RestaurantID,
	})
	if err != nil {
		return mapServiceError(err)
	}

	setAuthCookie(c, session)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": sessionResponse(session)})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password are required", nil)
	}

	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return mapServiceError(err)
	}

	setAuthCookie(c, session)
	return c.JSON(fiber.Map{"data": sessionResponse(session)})
}

// Logout handles POST /auth/logout. Tokens are stateless, so this only clears the cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.ClearCookie(auth.CookieName)
	return c.SendStatus(http.StatusNoContent)
}

// Verify handles GET /auth/verify and returns fresh account data for the token.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	user, err := h.auth.Me(c.UserContext(), principal.Identity)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"user":      dto.NewUserResponse(user),
		"expiresAt": principal.Identity.ExpiresAt,
	}})
}

// Permissions handles GET /auth/me/permissions.
func (h *AuthHandler) Permissions(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.PermissionsResponse{
		Role:        string(principal.Identity.Role),
		Permissions: principal.Permissions.Strings(),
	}})
}

// Navigation handles GET /auth/navigation.
func (h *AuthHandler) Navigation(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": auth.Navigation(principal.Permissions)})
}

func sessionResponse(session *service.Session) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      dto.NewUserResponse(session.User),
	}
}

func setAuthCookie(c *fiber.Ctx, session *service.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
