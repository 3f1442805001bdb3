package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"cicd-analytics-be/internal/dto"
	"cicd-analytics-be/internal/pkg/serverutils"
	"cicd-analytics-be/internal/service"
)

type IQueryController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
	Schema(ctx *fiber.Ctx) error
	MCPStatus(ctx *fiber.Ctx) error
	ClearMCPCache(ctx *fiber.Ctx) error
	DistinctValues(ctx *fiber.Ctx) error
	SampleDocuments(ctx *fiber.Ctx) error
	SessionHistory(ctx *fiber.Ctx) error
}

type queryController struct {
	queryService  service.IQueryService
	schemaService service.ISchemaService
}

func NewQueryController(queryService service.IQueryService, schemaService service.ISchemaService) IQueryController {
	return &queryController{
		queryService:  queryService,
		schemaService: schemaService,
	}
}

func (c *queryController) RegisterRoutes(r fiber.Router) {
	r.Post("query", c.Query)
	r.Get("health", c.Health)
	r.Get("schema", c.Schema)
	r.Get("mcp/status", c.MCPStatus)
	r.Post("mcp/clear-cache", c.ClearMCPCache)
	r.Get("collections/:collection/distinct/:field", c.DistinctValues)
	r.Get("collections/:collection/sample", c.SampleDocuments)
	r.Get("sessions/:id/history", c.SessionHistory)
}

func (c *queryController) Query(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.queryService.HandleQuery(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer query", res))
}

func (c *queryController) Health(ctx *fiber.Ctx) error {
	res, err := c.schemaService.Health(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Service healthy", res))
}

func (c *queryController) Schema(ctx *fiber.Ctx) error {
	res, err := c.schemaService.SchemaInfo(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show schema", res))
}

func (c *queryController) MCPStatus(ctx *fiber.Ctx) error {
	res := c.schemaService.MCPStatus(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Success show discovery status", res))
}

func (c *queryController) ClearMCPCache(ctx *fiber.Ctx) error {
	if err := c.schemaService.ClearMCPCache(); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Discovery cache cleared", nil))
}

func (c *queryController) DistinctValues(ctx *fiber.Ctx) error {
	collection := ctx.Params("collection")
	field := ctx.Params("field")
	limit := parseLimit(ctx.Query("limit"), 100)

	res, err := c.schemaService.DistinctValues(ctx.Context(), collection, field, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show distinct values", res))
}

func (c *queryController) SampleDocuments(ctx *fiber.Ctx) error {
	collection := ctx.Params("collection")
	limit := parseLimit(ctx.Query("limit"), 10)

	res, err := c.schemaService.SampleDocuments(ctx.Context(), collection, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show sample documents", res))
}

func (c *queryController) SessionHistory(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("id")
	res := c.queryService.SessionHistory(sessionID)
	return ctx.JSON(serverutils.SuccessResponse("Success show session history", res))
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
