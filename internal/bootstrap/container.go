package bootstrap

import (
	"log"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"cicd-analytics-be/internal/config"
	"cicd-analytics-be/internal/controller"
	"cicd-analytics-be/internal/pkg/logger"
	"cicd-analytics-be/internal/repository/memory"
	"cicd-analytics-be/internal/service"
	"cicd-analytics-be/pkg/llm/factory"
	"cicd-analytics-be/pkg/nlquery/executor"
	"cicd-analytics-be/pkg/nlquery/summarizer"
	"cicd-analytics-be/pkg/nlquery/translator"
	"cicd-analytics-be/pkg/schema"
)

type Container struct {
	// Controllers
	QueryController controller.IQueryController

	// Background Services (Exposed for main.go to run)
	AuditService service.IAuditService

	// Exposed for graceful shutdown
	Logger logger.ILogger
}

func NewContainer(mongoClient *mongo.Client, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	domainLogger := log.New(os.Stdout, "[NLQUERY] ", log.LstdFlags)

	db := mongoClient.Database(cfg.Mongo.Database)
	eventCollection := db.Collection(cfg.Mongo.Collection)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. LLM Provider (nil means deterministic fallback mode)
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIKey,
		cfg.Ai.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	if llmProvider == nil {
		log.Printf("[WARN] No LLM credential configured, running in deterministic fallback mode")
	} else {
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}

	// 4. Schema Provider
	var schemaProvider schema.Provider
	var discovery schema.Discovery
	if cfg.MCP.Enabled {
		transport := &mcp.StreamableClientTransport{Endpoint: cfg.MCP.ServerURL}
		mcpProvider := schema.NewMCPProvider(transport, cfg.Mongo.Database, cfg.Mongo.Collection, cfg.MCP.CacheTTL)
		schemaProvider = mcpProvider
		discovery = mcpProvider
		log.Printf("[INFO] Using schema discovery via MCP (%s)", cfg.MCP.ServerURL)
	} else {
		schemaProvider = schema.NewStaticProvider()
		log.Printf("[INFO] Schema discovery disabled, using static schema")
	}

	// 5. Domain Components
	queryTranslator := translator.New(llmProvider, domainLogger)
	pipelineExecutor := executor.New(eventCollection, cfg.Query.ResultLimit, domainLogger)
	resultSummarizer := summarizer.New(llmProvider, cfg.Query.SummarySampleSize, domainLogger)
	historyRepo := memory.NewHistoryRepository(cfg.Query.HistoryTTL)

	// 6. Services
	queryService := service.NewQueryService(
		schemaProvider,
		queryTranslator,
		pipelineExecutor,
		resultSummarizer,
		historyRepo,
		pubSub,
		cfg.App.AuditTopic,
		cfg.MCP.Enabled,
		sysLogger,
	)
	schemaService := service.NewSchemaService(mongoClient, schemaProvider, discovery, cfg)
	auditService := service.NewAuditService(pubSub, cfg.App.AuditTopic, db)

	// 7. Controllers
	queryController := controller.NewQueryController(queryService, schemaService)

	return &Container{
		QueryController: queryController,
		AuditService:    auditService,
		Logger:          sysLogger,
	}
}
