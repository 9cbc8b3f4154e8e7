package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fedelife/expense-extractor/internal/config"
	"fedelife/expense-extractor/internal/container"
	"fedelife/expense-extractor/internal/exchange"
	"fedelife/expense-extractor/internal/llm"
	"fedelife/expense-extractor/internal/logging"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type response struct {
	Status         string            `json:"status"`
	Success        bool              `json:"success"`
	Error          string            `json:"error"`
	Summary        string            `json:"summary"`
	Stage          string            `json:"stage"`
	ModelCount     int               `json:"model_count"`
	HeuristicCount int               `json:"heuristic_count"`
	Expenses       []json.RawMessage `json:"expenses"`
}

func setupTestApp(t *testing.T, model llm.Client) (*fiber.App, *logging.MockLogger) {
	t.Helper()
	logger := logging.NewMockLogger()
	c, err := container.NewContainer(config.Default(),
		container.WithLogger(logger),
		container.WithRateSource(exchange.StaticSource{Rate: decimal.NewFromInt(40)}),
		container.WithModelClient(model),
	)
	require.NoError(t, err)
	return NewApp(c, logger), logger
}

func do(t *testing.T, app *fiber.App, method, path, contentType, body string) (int, response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out response
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return resp.StatusCode, out
}

func TestHealthEndpoint(t *testing.T) {
	app, logger := setupTestApp(t, nil)

	status, out := do(t, app, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", out.Status)
	assert.True(t, logger.HasEntry("INFO", "Handled request"))
}

func TestExtractEndpoint(t *testing.T) {
	body := `{"text": "12 03 24 COMPRA TIENDA INGLESA 1.250,00\n13 03 24 DEB. AUT. UTE 3.450,00",
		"model_response": "{\"success\": true, \"expenses\": [{\"description\": \"Tienda Inglesa\", \"amount\": \"1.250,00\"}]}"}`

	app, _ := setupTestApp(t, nil)
	status, out := do(t, app, http.MethodPost, "/api/extract", fiber.MIMEApplicationJSON, body)

	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, out.Success)
	assert.Equal(t, 1, out.ModelCount)
	assert.Equal(t, 2, out.HeuristicCount)
	assert.Len(t, out.Expenses, 2)
}

func TestExtractEndpoint_UsesModelClient(t *testing.T) {
	mock := &llm.MockClient{Response: `{"success": true, "expenses": [{"description": "Spotify", "amount": 5, "currency": "USD"}]}`}
	app, _ := setupTestApp(t, mock)

	status, out := do(t, app, http.MethodPost, "/api/extract", fiber.MIMEApplicationJSON,
		`{"text": "estado sin movimientos", "use_model": true}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, out.Success)
	assert.Len(t, mock.Calls(), 1)
	require.Len(t, out.Expenses, 1)
	assert.Contains(t, string(out.Expenses[0]), `"currency":"UYU"`)
	assert.Contains(t, string(out.Expenses[0]), `"amount":200.00`)
}

func TestExtractEndpoint_NothingFound(t *testing.T) {
	app, _ := setupTestApp(t, nil)

	status, out := do(t, app, http.MethodPost, "/api/extract", fiber.MIMEApplicationJSON,
		`{"text": "ESTADO DE CUENTA", "model_response": "lo siento"}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "no expenses found")
	assert.NotNil(t, out.Expenses)
	assert.Empty(t, out.Expenses)
}

func TestExtractEndpoint_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty fields", `{"text": "  "}`},
		{"malformed json", `{"text": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := setupTestApp(t, nil)
			status, out := do(t, app, http.MethodPost, "/api/extract", fiber.MIMEApplicationJSON, tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.False(t, out.Success)
			assert.NotEmpty(t, out.Error)
		})
	}
}

func TestRecoverEndpoint(t *testing.T) {
	app, _ := setupTestApp(t, nil)

	status, out := do(t, app, http.MethodPost, "/api/recover", fiber.MIMETextPlain,
		"Sure! ```json\n{'success': True, 'expenses': [{'description': 'UTE', 'amount': 3450,}]}\n```")
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, out.Success)
	assert.Equal(t, "basic-repair", out.Stage)
	assert.Len(t, out.Expenses, 1)

	status, out = do(t, app, http.MethodPost, "/api/recover", fiber.MIMETextPlain, "no json here")
	assert.Equal(t, fiber.StatusOK, status)
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Error)
	assert.NotNil(t, out.Expenses)

	status, out = do(t, app, http.MethodPost, "/api/recover", fiber.MIMETextPlain, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "request body is empty", out.Error)
}
