package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/restaurantos/restaurant-service/internal/domain"
	apperrors "github.com/restaurantos/restaurant-service/pkg/util/errorutil"
)

const (
	principalKey = "auth_principal"
	// CookieName is the cookie checked when no Authorization header is sent.
	CookieName = "auth_token"
)

// Principal represents the authenticated caller.
type Principal struct {
	Identity    domain.Identity
	Permissions PermissionSet
}

// Can reports whether the caller holds any of perms.
func (p *Principal) Can(perms ...Permission) bool {
	return p != nil && p.Permissions.HasAny(perms...)
}

// VerificationRecorder receives the outcome of every token check.
type VerificationRecorder interface {
	RecordTokenVerification(reason string)
}

// AuthMiddleware validates bearer tokens and attaches principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	recorder VerificationRecorder
	logger   *zap.Logger
}

// NewAuthMiddleware constructs middleware. recorder may be nil.
func NewAuthMiddleware(tokens *TokenManager, recorder VerificationRecorder, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, recorder: recorder, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	raw, reason := extractToken(c)
	if reason != ReasonNone {
		m.record(reason)
		return apperrors.NewUnauthorized("authentication required")
	}

	result := m.tokens.Verify(raw)
	m.record(result.Reason)
	if !result.Valid() {
		m.logger.Debug("token rejected",
			zap.String("reason", string(result.Reason)),
			zap.String("path", c.Path()))
		return apperrors.NewUnauthorized("authentication required")
	}

	c.Locals(principalKey, &Principal{
		Identity:    *result.Identity,
		Permissions: Resolve(result.Identity.Role),
	})
	return c.Next()
}

func (m *AuthMiddleware) record(reason FailureReason) {
	if m.recorder == nil {
		return
	}
	if reason == ReasonNone {
		m.recorder.RecordTokenVerification("ok")
		return
	}
	m.recorder.RecordTokenVerification(string(reason))
}

// extractToken prefers the Authorization header over the cookie. A header that
// is not a usable bearer credential is malformed; no credential at all is missing.
func extractToken(c *fiber.Ctx) (string, FailureReason) {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", ReasonMalformed
		}
		token := strings.TrimSpace(parts[1])
		if token == "" {
			return "", ReasonMalformed
		}
		return token, ReasonNone
	}
	if cookie := c.Cookies(CookieName); cookie != "" {
		return cookie, ReasonNone
	}
	return "", ReasonMissing
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
