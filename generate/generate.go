package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"bedrockproxy"
	"bedrockproxy/bedrock"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key holding the correlation id of a request.
const RequestIDKey = "request_id"

const (
	detailParse = "Failed to parse Bedrock response"
	detailEmpty = "No text content in Bedrock response"
)

// TextGenerator is satisfied by *bedrock.Client.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Handler serves the health and generate routes.
// Metrics may be nil.
type Handler struct {
	Generator TextGenerator
	Metrics   *Metrics
}

// NewHandler returns a Handler calling generator once per request.
func NewHandler(generator TextGenerator, metrics *Metrics) *Handler {
	return &Handler{Generator: generator, Metrics: metrics}
}

// Health always reports ok and never touches the generator.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, bedrockproxy.HealthResponse{Status: "ok"})
}

// Generate answers POST /generate with exactly one model call.
func (h *Handler) Generate(c *gin.Context) {
	log := bedrockproxy.Logger.With("request_id", c.GetString(RequestIDKey))
	start := time.Now()

	var req bedrockproxy.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid generate request", "error", err)
		h.Metrics.observe(OutcomeValidation, start)
		c.JSON(http.StatusUnprocessableEntity, bedrockproxy.ErrorResponse{
			Detail: "Invalid request body: " + err.Error(),
		})
		return
	}

	log.Info("Prompt received", "prompt_bytes", len(*req.Prompt))
	text, err := h.Generator.GenerateText(c.Request.Context(), *req.Prompt)
	if err != nil {
		outcome := Classify(err)
		h.Metrics.observe(outcome, start)
		logFailure(log, outcome, err)
		c.JSON(http.StatusInternalServerError, bedrockproxy.ErrorResponse{Detail: Detail(err)})
		return
	}

	h.Metrics.observe(OutcomeOK, start)
	log.Info("Answer received", "text_bytes", len(text), "duration", time.Since(start))
	c.JSON(http.StatusOK, bedrockproxy.GenerateResponse{Text: text})
}

// Classify names the failure kind of an error returned by the generator.
func Classify(err error) string {
	var provErr *bedrock.ProviderError
	var parseErr *bedrock.ResponseParseError
	switch {
	case errors.As(err, &provErr):
		return OutcomeProvider
	case errors.As(err, &parseErr):
		return OutcomeParse
	case errors.Is(err, bedrock.ErrEmptyGeneration):
		return OutcomeEmpty
	default:
		return OutcomeUnexpected
	}
}

// Detail renders the client facing message for a failed generation.
func Detail(err error) string {
	var provErr *bedrock.ProviderError
	switch Classify(err) {
	case OutcomeProvider:
		errors.As(err, &provErr)
		return fmt.Sprintf("Bedrock invocation failed: %s - %s", provErr.Code, provErr.Message)
	case OutcomeParse:
		return detailParse
	case OutcomeEmpty:
		return detailEmpty
	default:
		return fmt.Sprintf("Generation failed: %v", err)
	}
}

func logFailure(log *slog.Logger, outcome string, err error) {
	var provErr *bedrock.ProviderError
	switch {
	case errors.As(err, &provErr):
		log.Error("Bedrock ClientError", "code", provErr.Code, "message", provErr.Message)
	case outcome == OutcomeParse:
		log.Error("JSON decode error", "error", err)
	case outcome == OutcomeEmpty:
		log.Error("Empty generation", "error", err)
	default:
		log.Error("Unexpected error in generate", "error", err)
	}
}
