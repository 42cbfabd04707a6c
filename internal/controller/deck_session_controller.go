package controller

import (
	"spaced-learning-be/internal/dto"
	"spaced-learning-be/internal/pkg/serverutils"
	"spaced-learning-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDeckSessionController interface {
	RegisterRoutes(r fiber.Router)
	ApplyChanges(ctx *fiber.Ctx) error
}

type deckSessionController struct {
	service service.IDeckSyncService
}

func NewDeckSessionController(service service.IDeckSyncService) IDeckSessionController {
	return &deckSessionController{service: service}
}

func (c *deckSessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/deck/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/session/changes", c.ApplyChanges)
}

func (c *deckSessionController) ApplyChanges(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.DeckChangesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ApplyChanges(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success sync deck session", res))
}
