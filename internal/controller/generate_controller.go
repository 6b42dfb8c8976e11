package controller

import (
	"strings"
	"time"

	"ai-survey-be/internal/constant"
	"ai-survey-be/internal/dto"
	"ai-survey-be/internal/pkg/logger"
	"ai-survey-be/pkg/llm"
	"ai-survey-be/pkg/ratelimit"
	"ai-survey-be/pkg/survey"

	"github.com/gofiber/fiber/v2"
)

// IGenerateController is the question-generation endpoint. It is the edge of
// the system: it holds the only path to the model credential, enforces its
// own origin allowlist and rate limits, and speaks the generate wire format
// rather than the API envelope.
type IGenerateController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
}

type generateController struct {
	llmProvider    llm.LLMProvider
	limiter        *ratelimit.Limiter
	detector       *survey.Detector
	allowedOrigins map[string]bool
	appLogger      logger.ILogger
}

func NewGenerateController(
	llmProvider llm.LLMProvider,
	limiter *ratelimit.Limiter,
	allowedOrigins []string,
	appLogger logger.ILogger,
) IGenerateController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[strings.TrimSpace(o)] = true
	}
	return &generateController{
		llmProvider:    llmProvider,
		limiter:        limiter,
		detector:       survey.NewDetector(),
		allowedOrigins: origins,
		appLogger:      appLogger,
	}
}

func (c *generateController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/generate/v1")
	h.Use(c.corsMiddleware)
	h.Options("", c.preflight)
	h.Post("", c.rateLimitMiddleware, c.Generate)
	h.All("", c.methodNotAllowed)
}

// corsMiddleware rejects unknown origins outright instead of just omitting
// the CORS headers. Requests without an Origin header (server to server, the
// survey service itself) pass through.
func (c *generateController) corsMiddleware(ctx *fiber.Ctx) error {
	origin := ctx.Get("Origin")
	if origin != "" {
		if !c.allowedOrigins[origin] && !c.allowedOrigins["*"] {
			return ctx.Status(fiber.StatusForbidden).JSON(dto.GenerateErrorResponse{
				Error: "Forbidden origin",
			})
		}
		ctx.Set("Access-Control-Allow-Origin", origin)
		ctx.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		ctx.Set("Access-Control-Allow-Headers", "Content-Type, X-Session-ID")
	}
	return ctx.Next()
}

func (c *generateController) preflight(ctx *fiber.Ctx) error {
	return ctx.SendStatus(fiber.StatusNoContent)
}

// methodNotAllowed keeps the error contract uniform: every failure on this
// endpoint answers JSON, including a wrong HTTP method.
func (c *generateController) methodNotAllowed(ctx *fiber.Ctx) error {
	ctx.Set("Allow", "POST, OPTIONS")
	return ctx.Status(fiber.StatusMethodNotAllowed).JSON(dto.GenerateErrorResponse{
		Error: "Method not allowed",
	})
}

func (c *generateController) rateLimitMiddleware(ctx *fiber.Ctx) error {
	if !c.limiter.Allow(ctx.Context(), ctx.IP()) {
		return ctx.Status(fiber.StatusTooManyRequests).JSON(dto.GenerateErrorResponse{
			Error:   "Rate limit exceeded",
			Message: "Trop de requêtes. Veuillez patienter un moment.",
		})
	}
	return ctx.Next()
}

func (c *generateController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.GenerateErrorResponse{
			Error: "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Message) == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.GenerateErrorResponse{
			Error: "Message is required",
		})
	}
	if len(req.Message) > constant.ProxyMessageLimit {
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.GenerateErrorResponse{
			Error: "Message too long",
		})
	}

	prompt := buildPrompt(&req)
	reply, err := c.llmProvider.Generate(ctx.Context(), prompt, llm.GenerationConfig{
		Temperature:     constant.GeminiTemperature,
		TopK:            constant.GeminiTopK,
		TopP:            constant.GeminiTopP,
		MaxOutputTokens: constant.GeminiMaxOutputTokens,
	})
	if err != nil {
		c.appLogger.Error("generate", "upstream generation failed", map[string]interface{}{
			"session_id": req.SessionId,
			"error":      err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(dto.GenerateErrorResponse{
			Error:   "Generation failed",
			Message: constant.MessageGenericError,
		})
	}

	reply = strings.TrimSpace(reply)
	category := c.detector.Detect(reply)
	if category == "" {
		category = req.Category
	}

	return ctx.JSON(dto.GenerateResponse{
		Message:   reply,
		Category:  category,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// buildPrompt assembles the single-shot prompt: persona, recent exchange
// history, the category to aim for and the incoming message.
func buildPrompt(req *dto.GenerateRequest) string {
	history := req.ConversationHistory
	if strings.TrimSpace(history) == "" {
		history = constant.GeminiEmptyHistoryNote
	}

	var b strings.Builder
	b.WriteString(constant.SurveySystemPrompt)
	b.WriteString("\n\nHistorique de la conversation:\n")
	b.WriteString(history)
	if req.Category != "" {
		if def := constant.CategoryByKey(req.Category); def != nil {
			b.WriteString("\n\nCatégorie à explorer: ")
			b.WriteString(def.Label)
		}
	}
	b.WriteString("\n\nMessage de l'utilisateur: ")
	b.WriteString(req.Message)
	b.WriteString("\n\nPose la prochaine question:")
	return b.String()
}
