package service

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"cicd-analytics-be/internal/config"
	"cicd-analytics-be/internal/dto"
	"cicd-analytics-be/pkg/database"
	"cicd-analytics-be/pkg/schema"
)

// ISchemaService backs the operational endpoints: health, schema
// inspection and collection browsing through the discovery server.
type ISchemaService interface {
	Health(ctx context.Context) (*dto.HealthResponse, error)
	SchemaInfo(ctx context.Context) (*dto.SchemaResponse, error)
	MCPStatus(ctx context.Context) *dto.MCPStatusResponse
	ClearMCPCache() error
	DistinctValues(ctx context.Context, collection, field string, limit int) (*dto.DistinctValuesResponse, error)
	SampleDocuments(ctx context.Context, collection string, limit int) (*dto.SampleDocumentsResponse, error)
}

type schemaService struct {
	mongoClient    *mongo.Client
	schemaProvider schema.Provider
	discovery      schema.Discovery // nil when running on the static schema
	cfg            *config.Config
}

func NewSchemaService(
	mongoClient *mongo.Client,
	schemaProvider schema.Provider,
	discovery schema.Discovery,
	cfg *config.Config,
) ISchemaService {
	return &schemaService{
		mongoClient:    mongoClient,
		schemaProvider: schemaProvider,
		discovery:      discovery,
		cfg:            cfg,
	}
}

func (ss *schemaService) Health(ctx context.Context) (*dto.HealthResponse, error) {
	if err := database.Ping(ctx, ss.mongoClient); err != nil {
		return &dto.HealthResponse{
			Status:   "degraded",
			DBStatus: "error: " + err.Error(),
		}, fiber.NewError(fiber.StatusServiceUnavailable, "database connection failed: "+err.Error())
	}
	return &dto.HealthResponse{
		Status:   "ok",
		DBStatus: "connected",
	}, nil
}

func (ss *schemaService) SchemaInfo(ctx context.Context) (*dto.SchemaResponse, error) {
	text, source, err := ss.schemaProvider.Context(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.SchemaResponse{
		Source:     source,
		Collection: ss.cfg.Mongo.Collection,
		Context:    text,
	}, nil
}

func (ss *schemaService) MCPStatus(ctx context.Context) *dto.MCPStatusResponse {
	status := &dto.MCPStatusResponse{
		Enabled:      ss.cfg.MCP.Enabled,
		ServerURL:    ss.cfg.MCP.ServerURL,
		CacheTTLSecs: int(ss.cfg.MCP.CacheTTL.Seconds()),
	}

	if ss.discovery == nil {
		status.Error = "schema discovery disabled, using static schema"
		return status
	}

	collections, err := ss.discovery.ListCollections(ctx)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Collections = collections
	return status
}

func (ss *schemaService) ClearMCPCache() error {
	if ss.discovery == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "schema discovery disabled")
	}
	ss.discovery.ClearCache()
	return nil
}

func (ss *schemaService) DistinctValues(ctx context.Context, collection, field string, limit int) (*dto.DistinctValuesResponse, error) {
	if ss.discovery == nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "schema discovery disabled")
	}

	values, err := ss.discovery.DistinctValues(ctx, collection, field, limit)
	if err != nil {
		return nil, err
	}

	return &dto.DistinctValuesResponse{
		Collection:     collection,
		Field:          field,
		DistinctValues: values,
		Count:          len(values),
		Limit:          limit,
	}, nil
}

func (ss *schemaService) SampleDocuments(ctx context.Context, collection string, limit int) (*dto.SampleDocumentsResponse, error) {
	if ss.discovery == nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "schema discovery disabled")
	}

	samples, err := ss.discovery.SampleDocuments(ctx, collection, limit)
	if err != nil {
		return nil, err
	}

	return &dto.SampleDocumentsResponse{
		Collection: collection,
		Samples:    samples,
		Count:      len(samples),
		Limit:      limit,
	}, nil
}
