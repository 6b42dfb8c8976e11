package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"ai-survey-be/internal/constant"
	"ai-survey-be/internal/dto"
	"ai-survey-be/pkg/llm"
	"ai-survey-be/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	calls int32
	reply string
	err   error
}

func (p *stubProvider) Generate(ctx context.Context, prompt string, cfg llm.GenerationConfig) (string, error) {
	atomic.AddInt32(&p.calls, 1)
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

type testLogger struct{}

func (testLogger) Debug(module, message string, details map[string]interface{}) {}
func (testLogger) Info(module, message string, details map[string]interface{})  {}
func (testLogger) Warn(module, message string, details map[string]interface{})  {}
func (testLogger) Error(module, message string, details map[string]interface{}) {}

func (testLogger) Sync() error { return nil }

func newGenerateApp(provider *stubProvider, perMinute int) *fiber.App {
	app := fiber.New()
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), perMinute, 1000)
	ctrl := NewGenerateController(provider, limiter, []string{"http://localhost:8000"}, testLogger{})
	ctrl.RegisterRoutes(app.Group("/api"))
	return app
}

func postGenerate(app *fiber.App, origin string, body interface{}) (*http.Response, []byte) {
	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/api/generate/v1", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	res, _ := app.Test(req, -1)
	raw, _ := io.ReadAll(res.Body)
	return res, raw
}

func TestGenerate_Success(t *testing.T) {
	provider := &stubProvider{reply: "  Quel est votre secteur d'activité ?  "}
	app := newGenerateApp(provider, 100)

	res, raw := postGenerate(app, "http://localhost:8000", dto.GenerateRequest{
		Message:   "Je suis prêt.",
		SessionId: "s1",
	})
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var body dto.GenerateResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Quel est votre secteur d'activité ?", body.Message)
	assert.Equal(t, constant.CategoryDemographics, body.Category)
	assert.NotEmpty(t, body.Timestamp)
	assert.Equal(t, int32(1), atomic.LoadInt32(&provider.calls))
}

func TestGenerate_ForbiddenOrigin(t *testing.T) {
	provider := &stubProvider{reply: "ok"}
	app := newGenerateApp(provider, 100)

	res, raw := postGenerate(app, "http://evil.example.com", dto.GenerateRequest{Message: "Bonjour"})
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)

	var body dto.GenerateErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Forbidden origin", body.Error)
	assert.Zero(t, atomic.LoadInt32(&provider.calls), "blocked requests must not reach the model")
}

func TestGenerate_EmptyMessage(t *testing.T) {
	provider := &stubProvider{reply: "ok"}
	app := newGenerateApp(provider, 100)

	res, _ := postGenerate(app, "http://localhost:8000", dto.GenerateRequest{Message: "   "})
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	assert.Zero(t, atomic.LoadInt32(&provider.calls))
}

func TestGenerate_MessageTooLong(t *testing.T) {
	provider := &stubProvider{reply: "ok"}
	app := newGenerateApp(provider, 100)

	res, _ := postGenerate(app, "http://localhost:8000", dto.GenerateRequest{
		Message: strings.Repeat("x", constant.ProxyMessageLimit+1),
	})
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	assert.Zero(t, atomic.LoadInt32(&provider.calls))
}

func TestGenerate_RateLimited(t *testing.T) {
	provider := &stubProvider{reply: "ok"}
	app := newGenerateApp(provider, 2)

	for i := 0; i < 2; i++ {
		res, _ := postGenerate(app, "http://localhost:8000", dto.GenerateRequest{Message: "Bonjour"})
		require.Equal(t, fiber.StatusOK, res.StatusCode)
	}

	res, raw := postGenerate(app, "http://localhost:8000", dto.GenerateRequest{Message: "Bonjour"})
	assert.Equal(t, fiber.StatusTooManyRequests, res.StatusCode)

	var body dto.GenerateErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Rate limit exceeded", body.Error)
	assert.Equal(t, int32(2), atomic.LoadInt32(&provider.calls))
}

func TestGenerate_UpstreamFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("upstream down")}
	app := newGenerateApp(provider, 100)

	res, raw := postGenerate(app, "http://localhost:8000", dto.GenerateRequest{Message: "Bonjour"})
	assert.Equal(t, fiber.StatusInternalServerError, res.StatusCode)

	var body dto.GenerateErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Generation failed", body.Error)
	assert.Equal(t, constant.MessageGenericError, body.Message)
}

func TestGenerate_Preflight(t *testing.T) {
	provider := &stubProvider{reply: "ok"}
	app := newGenerateApp(provider, 100)

	req := httptest.NewRequest("OPTIONS", "/api/generate/v1", nil)
	req.Header.Set("Origin", "http://localhost:8000")
	res, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNoContent, res.StatusCode)
	assert.Equal(t, "http://localhost:8000", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestGenerate_MethodNotAllowed(t *testing.T) {
	provider := &stubProvider{reply: "ok"}
	app := newGenerateApp(provider, 100)

	for _, method := range []string{"GET", "PUT", "DELETE"} {
		req := httptest.NewRequest(method, "/api/generate/v1", nil)
		res, err := app.Test(req, -1)
		require.NoError(t, err)
		raw, _ := io.ReadAll(res.Body)

		// Even a wrong method gets the endpoint's JSON error shape.
		assert.Equal(t, fiber.StatusMethodNotAllowed, res.StatusCode, method)
		var body dto.GenerateErrorResponse
		require.NoError(t, json.Unmarshal(raw, &body), method)
		assert.Equal(t, "Method not allowed", body.Error, method)
	}
	assert.Zero(t, atomic.LoadInt32(&provider.calls))
}

func TestGenerate_CategoryFallsBackToRequested(t *testing.T) {
	provider := &stubProvider{reply: "Bonjour, on continue ?"}
	app := newGenerateApp(provider, 100)

	res, raw := postGenerate(app, "http://localhost:8000", dto.GenerateRequest{
		Message:  "Bonjour",
		Category: constant.CategoryUsage,
	})
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var body dto.GenerateResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, constant.CategoryUsage, body.Category)
}
