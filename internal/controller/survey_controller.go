package controller

import (
	"ai-survey-be/internal/dto"
	"ai-survey-be/internal/pkg/serverutils"
	"ai-survey-be/internal/service"
	"ai-survey-be/internal/service/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISurveyController interface {
	RegisterRoutes(r fiber.Router)
	StartSession(ctx *fiber.Ctx) error
	Answer(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Complete(ctx *fiber.Ctx) error
	Stop(ctx *fiber.Ctx) error
}

type surveyController struct {
	surveyService service.ISurveyService
}

func NewSurveyController(surveyService service.ISurveyService) ISurveyController {
	return &surveyController{
		surveyService: surveyService,
	}
}

func (c *surveyController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/survey/v1")
	h.Post("session", c.StartSession)
	h.Get("session/:id", c.Show)
	h.Post("session/:id/answer", c.Answer)
	h.Post("session/:id/complete", c.Complete)
	h.Post("session/:id/stop", c.Stop)
}

func (c *surveyController) StartSession(ctx *fiber.Ctx) error {
	var req dto.StartSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.surveyService.StartSession(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success start session", res))
}

func (c *surveyController) Answer(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.AnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.surveyService.ProcessAnswer(ctx.Context(), id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process answer", res))
}

func (c *surveyController) Show(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.surveyService.GetSession(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *surveyController) Complete(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.CompleteSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
		if err := serverutils.ValidateRequest(req); err != nil {
			return err
		}
	}

	res, err := c.surveyService.CompleteSession(ctx.Context(), id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success complete session", res))
}

// Stop is the terminal endpoint the UI calls when the conversation broke.
// It always answers 200 with a closing message.
func (c *surveyController) Stop(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.StopSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
		if err := serverutils.ValidateRequest(req); err != nil {
			return err
		}
	}

	res := c.surveyService.EmergencyStop(ctx.Context(), id, req.Reason)
	return ctx.JSON(serverutils.SuccessResponse("Session stopped", res))
}

func sessionIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.ErrSessionNotFound
	}
	return id, nil
}
