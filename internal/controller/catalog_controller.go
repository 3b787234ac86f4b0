package controller

import (
	"customer-service-be/internal/dto"
	"customer-service-be/internal/pkg/serverutils"
	"customer-service-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICatalogController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	Reindex(ctx *fiber.Ctx) error
}

type catalogController struct {
	catalogService service.ICatalogService
	jwtSecret      string
}

func NewCatalogController(catalogService service.ICatalogService, jwtSecret string) ICatalogController {
	return &catalogController{
		catalogService: catalogService,
		jwtSecret:      jwtSecret,
	}
}

func (c *catalogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/catalog/v1")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	h.Get("search", c.Search)
	h.Post("reindex", c.Reindex)
}

func (c *catalogController) Search(ctx *fiber.Ctx) error {
	var req dto.ProductSearchRequest
	if err := ctx.QueryParser(&req); err != nil {
		return serverutils.NewValidationError("Invalid query")
	}

	res, err := c.catalogService.Search(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search products", res))
}

func (c *catalogController) Reindex(ctx *fiber.Ctx) error {
	var req dto.ReindexRequest
	// empty body means the whole catalog
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return serverutils.NewValidationError("Invalid request body")
		}
	}

	res, err := c.catalogService.RequestReindex(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Reindex queued", res))
}
