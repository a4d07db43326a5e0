package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sherryli112/HatGiveMe/internal/auth"
	"github.com/Sherryli112/HatGiveMe/internal/observability"
	apperrors "github.com/Sherryli112/HatGiveMe/pkg/util"
)

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestApp() *fiber.App {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path string) (int, errorEnvelope) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope errorEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

func TestErrorMiddlewareKeepsUnauthorizedStatus(t *testing.T) {
	app := newTestApp()
	app.Get("/admin-only", auth.RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	status, envelope := doRequest(t, app, http.MethodGet, "/admin-only")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, apperrors.CodeUnauthorized, envelope.Error.Code)
}

func TestErrorMiddlewareKeepsForbiddenStatus(t *testing.T) {
	app := newTestApp()
	app.Get("/forbidden", func(c *fiber.Ctx) error {
		return apperrors.NewForbidden("administrator role required")
	})

	status, envelope := doRequest(t, app, http.MethodGet, "/forbidden")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, apperrors.CodeForbidden, envelope.Error.Code)
}

func TestErrorMiddlewareMapsFiberErrors(t *testing.T) {
	app := newTestApp()
	app.Post("/orders", func(c *fiber.Ctx) error {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	})

	status, envelope := doRequest(t, app, http.MethodPost, "/orders")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.CodeValidationFailed, envelope.Error.Code)
	assert.Equal(t, "invalid payload", envelope.Error.Message)
}

func TestErrorMiddlewareRecoversPanics(t *testing.T) {
	app := newTestApp()
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("boom")
	})

	status, envelope := doRequest(t, app, http.MethodGet, "/boom")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, apperrors.CodeInternal, envelope.Error.Code)
}

func TestErrorMiddlewarePassesDomainDetails(t *testing.T) {
	app := newTestApp()
	app.Get("/stock", func(c *fiber.Ctx) error {
		return apperrors.NewInsufficientStock("product-1", 0, 2)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/stock", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperrors.CodeInsufficientStock, body.Error.Code)
	assert.Equal(t, "product-1", body.Error.Details["product_id"])
}
