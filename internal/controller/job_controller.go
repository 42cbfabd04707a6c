package controller

import (
	"spaced-learning-be/internal/pkg/serverutils"
	"spaced-learning-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IJobController interface {
	RegisterRoutes(r fiber.Router)
	GetStatus(ctx *fiber.Ctx) error
}

type jobController struct {
	service service.IJobService
}

func NewJobController(service service.IJobService) IJobController {
	return &jobController{service: service}
}

func (c *jobController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/job/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/:id", c.GetStatus)
}

func (c *jobController) GetStatus(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	jobId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewInvalidError("invalid job id")
	}

	res, err := c.service.GetStatus(ctx.Context(), userId, jobId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get job status", res))
}
