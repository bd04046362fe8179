package http

import (
	"bytes"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/restaurantos/restaurant-service/internal/api/http/handlers"
	"github.com/restaurantos/restaurant-service/internal/auth"
	"github.com/restaurantos/restaurant-service/internal/config"
	"github.com/restaurantos/restaurant-service/internal/observability"
	"github.com/restaurantos/restaurant-service/internal/repository"
	"github.com/restaurantos/restaurant-service/internal/service"
)

type testEnv struct {
	app    *fiber.App
	tokens *auth.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	tokens, err := auth.NewTokenManager("router-test-key", 0)
	require.NoError(t, err)

	stores := repository.NewMemoryStores()
	authService := service.NewAuthService(config.AuthConfig{BcryptCost: bcrypt.MinCost}, service.AuthDependencies{
		UserRepo:       stores.Users,
		RestaurantRepo: stores.Restaurants,
		TenantRepo:     stores.Tenants,
		Tokens:         tokens,
		Recorder:       metrics,
		Logger:         logger,
	})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger, metrics)})
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("restaurant-service", "test", nil),
		Auth:           handlers.NewAuthHandler(authService),
		Staff:          handlers.NewStaffHandler(authService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, metrics, logger),
		Gatherer:       reg,
	})
	return &testEnv{app: app, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "missing data in %v", body)
	return d
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func (e *testEnv) registerOwner(t *testing.T) (string, map[string]any) {
	t.Helper()
	status, body := e.do(t, nethttp.MethodPost, "/auth/register", "", map[string]any{
		"name":           "Owner",
		"email":          "owner@demo.com",
		"password":       "demo123",
		"role":           "owner",
		"restaurantName": "Bistro",
	})
	require.Equal(t, nethttp.StatusCreated, status, "%v", body)
	d := data(t, body)
	return d["token"].(string), d["user"].(map[string]any)
}

func TestRouter_RegisterLoginVerify(t *testing.T) {
	env := newTestEnv(t)
	token, user := env.registerOwner(t)
	assert.Equal(t, "owner", user["role"])
	assert.Contains(t, user["permissions"], "settings.manage")

	status, body := env.do(t, nethttp.MethodPost, "/auth/login", "", map[string]any{
		"email": "OWNER@demo.com", "password": "demo123",
	})
	require.Equal(t, nethttp.StatusOK, status)
	loginToken := data(t, body)["token"].(string)
	assert.NotEmpty(t, loginToken)

	status, body = env.do(t, nethttp.MethodGet, "/auth/verify", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	verified := data(t, body)["user"].(map[string]any)
	assert.Equal(t, user["id"], verified["id"])
	assert.Equal(t, user["restaurantId"], verified["restaurantId"])
}

func TestRouter_LoginFailures(t *testing.T) {
	env := newTestEnv(t)
	env.registerOwner(t)

	status, body := env.do(t, nethttp.MethodPost, "/auth/login", "", map[string]any{"email": "owner@demo.com", "password": "wrong!"})
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, body = env.do(t, nethttp.MethodPost, "/auth/login", "", map[string]any{"email": "owner@demo.com"})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestRouter_DuplicateRegistration(t *testing.T) {
	env := newTestEnv(t)
	env.registerOwner(t)

	status, body := env.do(t, nethttp.MethodPost, "/auth/register", "", map[string]any{
		"name": "Other", "email": "Owner@demo.com", "password": "demo123", "role": "owner",
	})
	assert.Equal(t, nethttp.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/auth/verify", "/auth/me/permissions", "/auth/navigation", "/staff"} {
		status, body := env.do(t, nethttp.MethodGet, path, "", nil)
		assert.Equal(t, nethttp.StatusUnauthorized, status, path)
		assert.Equal(t, "UNAUTHORIZED", errorCode(body), path)
	}

	status, _ := env.do(t, nethttp.MethodGet, "/auth/verify", "garbage.token.value", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
}

func TestRouter_PermissionsAndNavigation(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerOwner(t)

	status, body := env.do(t, nethttp.MethodGet, "/auth/me/permissions", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	perms := data(t, body)
	assert.Equal(t, "owner", perms["role"])
	assert.Contains(t, perms["permissions"], "staff.manage")

	status, body = env.do(t, nethttp.MethodGet, "/auth/navigation", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	nav, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, nav, 8)
}

func TestRouter_StaffGating(t *testing.T) {
	env := newTestEnv(t)
	ownerToken, owner := env.registerOwner(t)

	status, body := env.do(t, nethttp.MethodPost, "/staff", ownerToken, map[string]any{
		"name": "Kim", "email": "kim@demo.com", "password": "secret1", "role": "kitchen",
	})
	require.Equal(t, nethttp.StatusCreated, status, "%v", body)
	assert.Equal(t, owner["restaurantId"], data(t, body)["restaurantId"])

	status, body = env.do(t, nethttp.MethodGet, "/staff", ownerToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, body["data"], 2)

	status, body = env.do(t, nethttp.MethodPost, "/auth/login", "", map[string]any{"email": "kim@demo.com", "password": "secret1"})
	require.Equal(t, nethttp.StatusOK, status)
	kitchenToken := data(t, body)["token"].(string)

	status, body = env.do(t, nethttp.MethodGet, "/staff", kitchenToken, nil)
	assert.Equal(t, nethttp.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))
}

func TestRouter_ExpiredTokenRejected(t *testing.T) {
	env := newTestEnv(t)
	past, err := auth.NewTokenManager("router-test-key", time.Hour, auth.WithClock(func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}))
	require.NoError(t, err)
	token, _, err := past.Issue(auth.Subject{UserID: "u1", Email: "owner@demo.com", Role: "owner", RestaurantID: "r1"})
	require.NoError(t, err)

	status, body := env.do(t, nethttp.MethodGet, "/auth/me/permissions", token, nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, "authentication required", body["error"].(map[string]any)["message"])
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, nethttp.MethodGet, "/health/live", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = env.do(t, nethttp.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "ready", body["status"])

	env.registerOwner(t)
	resp, err := env.app.Test(httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "restaurant_auth_tokens_issued_total 1")
}

func TestRouter_UnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/nope", "/auth/nope", "/staff/extra"} {
		status, body := env.do(t, nethttp.MethodGet, path, "", nil)
		assert.Equal(t, nethttp.StatusNotFound, status, path)
		assert.Equal(t, "NOT_FOUND", errorCode(body), path)
	}
}

func TestRouter_MetricsSurviveManyErrorPaths(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/scan-0", "/scan-1", "/scan-2", "/auth/nope", "/auth/verify", "/staff"} {
		status, _ := env.do(t, nethttp.MethodGet, path, "", nil)
		require.GreaterOrEqual(t, status, 400, path)
	}

	resp, err := env.app.Test(httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Equal(t, nethttp.StatusOK, resp.StatusCode, string(raw))
	text := string(raw)
	assert.Contains(t, text, `restaurant_http_errors_total{code="NOT_FOUND",method="GET",path="unmatched"} 4`)
	assert.Contains(t, text, `restaurant_http_errors_total{code="UNAUTHORIZED",method="GET",path="/auth/verify"} 1`)
	assert.NotContains(t, text, "scan-")
}
