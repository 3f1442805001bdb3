package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"cicd-analytics-be/internal/dto"
	"cicd-analytics-be/internal/pkg/logger"
	"cicd-analytics-be/internal/repository/memory"
	"cicd-analytics-be/pkg/nlquery"
	"cicd-analytics-be/pkg/schema"
	"cicd-analytics-be/pkg/store"
)

// Translator, Executor and Summarizer are the three pipeline steps. They
// are interfaces here so the service can be tested without an LLM or a
// database behind it.
type Translator interface {
	Translate(ctx context.Context, question, schemaContext string, history []store.Turn) (nlquery.Pipeline, string, error)
}

type Executor interface {
	Execute(ctx context.Context, pipeline nlquery.Pipeline) ([]bson.M, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, results []bson.M, question, explanation string) (string, error)
}

// IQueryService handles the conversational analytics flow.
type IQueryService interface {
	HandleQuery(ctx context.Context, request *dto.QueryRequest) (*dto.QueryResponse, error)
	SessionHistory(sessionID string) *dto.SessionHistoryResponse
}

type queryService struct {
	schemaProvider schema.Provider
	translator     Translator
	executor       Executor
	summarizer     Summarizer
	historyRepo    *memory.HistoryRepository
	pubSub         *gochannel.GoChannel
	auditTopic     string
	mcpEnabled     bool
	sysLogger      logger.ILogger
}

func NewQueryService(
	schemaProvider schema.Provider,
	translator Translator,
	executor Executor,
	summarizer Summarizer,
	historyRepo *memory.HistoryRepository,
	pubSub *gochannel.GoChannel,
	auditTopic string,
	mcpEnabled bool,
	sysLogger logger.ILogger,
) IQueryService {
	return &queryService{
		schemaProvider: schemaProvider,
		translator:     translator,
		executor:       executor,
		summarizer:     summarizer,
		historyRepo:    historyRepo,
		pubSub:         pubSub,
		auditTopic:     auditTopic,
		mcpEnabled:     mcpEnabled,
		sysLogger:      sysLogger,
	}
}

// HandleQuery runs the request pipeline: schema context → translate →
// execute → summarize → respond, then records the turn and publishes the
// audit event. Each step fails fast; errors carry their class for the HTTP
// error handler.
func (qs *queryService) HandleQuery(ctx context.Context, request *dto.QueryRequest) (*dto.QueryResponse, error) {
	started := time.Now()

	sessionID := request.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	schemaContext, schemaSource, err := qs.schemaProvider.Context(ctx)
	if err != nil {
		// Discovery trouble must not fail the question.
		qs.sysLogger.Warn("query", "schema context unavailable, using static schema", map[string]interface{}{"error": err.Error()})
		schemaContext, schemaSource = schema.StaticSchemaText(), schema.SourceStatic
	}

	history := qs.historyRepo.History(sessionID)

	pipeline, explanation, err := qs.translator.Translate(ctx, request.Query, schemaContext, history)
	if err != nil {
		return nil, err
	}

	results, err := qs.executor.Execute(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	summary, err := qs.summarizer.Summarize(ctx, results, request.Query, explanation)
	if err != nil {
		return nil, err
	}

	qs.historyRepo.Append(sessionID, store.Turn{
		Query:     request.Query,
		Summary:   summary,
		CreatedAt: time.Now(),
	})

	qs.publishAudit(dto.QueryAnsweredMessage{
		Query:       request.Query,
		SessionID:   sessionID,
		Pipeline:    pipeline,
		ResultCount: len(results),
		DurationMS:  time.Since(started).Milliseconds(),
		Timestamp:   started,
	})

	qs.sysLogger.Info("query", "query answered", map[string]interface{}{
		"session_id":  sessionID,
		"stages":      len(pipeline),
		"results":     len(results),
		"duration_ms": time.Since(started).Milliseconds(),
	})

	return &dto.QueryResponse{
		QueryText:           request.Query,
		SessionID:           sessionID,
		Summary:             summary,
		PipelineExplanation: explanation,
		MongoDBPipeline:     pipeline,
		Results:             results,
		MCPEnabled:          qs.mcpEnabled,
		SchemaSource:        schemaSource,
	}, nil
}

// publishAudit is best effort; a failed publish never fails the request.
func (qs *queryService) publishAudit(event dto.QueryAnsweredMessage) {
	if qs.pubSub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		qs.sysLogger.Warn("query", "failed to marshal audit event", map[string]interface{}{"error": err.Error()})
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := qs.pubSub.Publish(qs.auditTopic, msg); err != nil {
		qs.sysLogger.Warn("query", "failed to publish audit event", map[string]interface{}{"error": err.Error()})
	}
}

func (qs *queryService) SessionHistory(sessionID string) *dto.SessionHistoryResponse {
	turns := qs.historyRepo.History(sessionID)
	entries := make([]dto.SessionTurnEntry, len(turns))
	for i, turn := range turns {
		entries[i] = dto.SessionTurnEntry{
			Query:     turn.Query,
			Summary:   turn.Summary,
			CreatedAt: turn.CreatedAt,
		}
	}
	return &dto.SessionHistoryResponse{
		SessionID: sessionID,
		Turns:     entries,
	}
}
