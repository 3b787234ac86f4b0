package controller

import (
	"customer-service-be/internal/dto"
	"customer-service-be/internal/pkg/serverutils"
	"customer-service-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
	Handoff(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	ClearHistory(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

// Chat routes are public and answer with bare bodies, not the envelope.
func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("", c.SendMessage)
	h.Post("handoff", c.Handoff)
	h.Get(":sessionId", c.GetHistory)
	h.Delete(":sessionId/history", c.ClearHistory)
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("Invalid request body")
	}

	res, err := c.chatService.SendMessage(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) Handoff(ctx *fiber.Ctx) error {
	var req dto.HandoffRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("Invalid request body")
	}

	res, err := c.chatService.Handoff(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) GetHistory(ctx *fiber.Ctx) error {
	res, err := c.chatService.GetHistory(ctx.UserContext(), ctx.Params("sessionId"))
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) ClearHistory(ctx *fiber.Ctx) error {
	res, err := c.chatService.ClearHistory(ctx.UserContext(), ctx.Params("sessionId"))
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
