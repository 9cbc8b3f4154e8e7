// Package api exposes the extraction pipeline over HTTP with fiber.
package api

import (
	"errors"
	"strings"
	"time"

	"fedelife/expense-extractor/internal/jsonrecovery"
	"fedelife/expense-extractor/internal/logging"
	"fedelife/expense-extractor/internal/pipeline"

	"github.com/gofiber/fiber/v2"
)

// DefaultBodyLimit caps request bodies at 10 MiB.
const DefaultBodyLimit = 10 << 20

// Factory builds per-request components. Every request gets its own analyzer, and
// so its own exchange session.
type Factory interface {
	NewAnalyzer() *pipeline.Analyzer
	NewRecoveryParser() *jsonrecovery.Parser
}

// ExtractRequest is the body of POST /api/extract.
type ExtractRequest struct {
	Text          string `json:"text"`
	ModelResponse string `json:"model_response"`
	// UseModel asks the server to call its model client when no response is supplied.
	UseModel bool `json:"use_model"`
}

// ErrorResponse is returned for rejected requests.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Handler holds the HTTP handlers.
type Handler struct {
	factory Factory
	logger  logging.Logger
}

// NewHandler creates a Handler.
func NewHandler(factory Factory, logger logging.Logger) *Handler {
	return &Handler{factory: factory, logger: logging.OrDefault(logger)}
}

// NewApp builds the fiber application with every route registered.
func NewApp(factory Factory, logger logging.Logger) *fiber.App {
	h := NewHandler(factory, logger)
	app := fiber.New(fiber.Config{
		AppName:               "expense-extractor",
		BodyLimit:             DefaultBodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          h.handleError,
	})
	app.Use(h.logRequests)
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/api/health", h.HandleHealth)
	router.Post("/api/extract", h.HandleExtract)
	router.Post("/api/recover", h.HandleRecover)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "engine": "fiber"})
}

// HandleExtract runs a full analysis over the posted statement text and model response.
func (h *Handler) HandleExtract(c *fiber.Ctx) error {
	var req ExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.ModelResponse) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "text or model_response is required")
	}

	analyzer := h.factory.NewAnalyzer()
	var analysis pipeline.Analysis
	if req.UseModel && strings.TrimSpace(req.ModelResponse) == "" {
		analysis = analyzer.AnalyzeWithModel(c.UserContext(), req.Text)
	} else {
		analysis = analyzer.Analyze(c.UserContext(), req.Text, req.ModelResponse)
	}
	return c.JSON(analysis)
}

// HandleRecover runs the recovery cascade over a raw model response body.
func (h *Handler) HandleRecover(c *fiber.Ctx) error {
	body := string(c.Body())
	if strings.TrimSpace(body) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "request body is empty")
	}
	return c.JSON(h.factory.NewRecoveryParser().Parse(body))
}

func (h *Handler) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		h.logger.WithError(err).Error("Request failed",
			logging.F(logging.FieldHTTPPath, c.Path()))
	}
	return c.Status(code).JSON(ErrorResponse{Success: false, Error: err.Error()})
}

func (h *Handler) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
	}
	h.logger.Info("Handled request",
		logging.F(logging.FieldHTTPMethod, c.Method()),
		logging.F(logging.FieldHTTPPath, c.Path()),
		logging.F(logging.FieldHTTPStatus, status),
		logging.F(logging.FieldDuration, time.Since(start).String()))
	return err
}
