package controller

import (
	"spaced-learning-be/internal/dto"
	"spaced-learning-be/internal/pkg/serverutils"
	"spaced-learning-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISkillTreeController interface {
	RegisterRoutes(r fiber.Router)
	NextNode(ctx *fiber.Ctx) error
	Progress(ctx *fiber.Ctx) error
}

type skillTreeController struct {
	service service.ITraversalService
}

func NewSkillTreeController(service service.ITraversalService) ISkillTreeController {
	return &skillTreeController{service: service}
}

func (c *skillTreeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/tree/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/:goalId/next-node", c.NextNode)
	h.Get("/:goalId/progress", c.Progress)
}

func (c *skillTreeController) NextNode(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	goalId, err := uuid.Parse(ctx.Params("goalId"))
	if err != nil {
		return serverutils.NewInvalidError("invalid goal id")
	}

	outcome, err := c.service.NextNode(ctx.Context(), userId, goalId)
	if err != nil {
		return err
	}

	res := dto.NextNodeResponse{
		TreeComplete:    outcome.TreeComplete,
		AwaitingContent: outcome.AwaitingContent,
	}
	if outcome.Node != nil {
		node := outcome.Node.Node
		mastery := 0.0
		if outcome.Node.TotalInNode > 0 {
			mastery = float64(outcome.Node.CompletedInNode) / float64(outcome.Node.TotalInNode) * 100
		}
		res.Node = &dto.NodeProgressResponse{
			NodeId:          node.Id,
			Title:           node.Title,
			Path:            node.Path,
			Depth:           node.Depth,
			CardCount:       node.CardCount,
			CompletedInNode: outcome.Node.CompletedInNode,
			TotalInNode:     outcome.Node.TotalInNode,
			Mastery:         mastery,
		}
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get next node", res))
}

func (c *skillTreeController) Progress(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	goalId, err := uuid.Parse(ctx.Params("goalId"))
	if err != nil {
		return serverutils.NewInvalidError("invalid goal id")
	}

	res, err := c.service.Progress(ctx.Context(), userId, goalId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get tree progress", res))
}
