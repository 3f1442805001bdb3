package executor

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"cicd-analytics-be/internal/apperrors"
	"cicd-analytics-be/pkg/nlquery"
)

// DefaultResultLimit caps the number of documents any pipeline may return.
const DefaultResultLimit = 1000

// Executor runs guarded aggregation pipelines against one collection.
type Executor struct {
	collection  *mongo.Collection
	resultLimit int
	logger      *log.Logger
}

func New(collection *mongo.Collection, resultLimit int, logger *log.Logger) *Executor {
	if resultLimit <= 0 {
		resultLimit = DefaultResultLimit
	}
	return &Executor{
		collection:  collection,
		resultLimit: resultLimit,
		logger:      logger,
	}
}

// Execute guards the pipeline and runs it. Guard rejections and every
// driver fault surface uniformly as ExecutionError; nothing propagates as
// a transport-layer crash.
func (e *Executor) Execute(ctx context.Context, pipeline nlquery.Pipeline) ([]bson.M, error) {
	guarded, err := Guard(pipeline, e.resultLimit)
	if err != nil {
		return nil, apperrors.NewExecutionError(err)
	}

	cursor, err := e.collection.Aggregate(ctx, guarded)
	if err != nil {
		e.logger.Printf("[EXECUTE] aggregation failed: %v", err)
		return nil, apperrors.NewExecutionError(err)
	}
	defer cursor.Close(ctx)

	results := make([]bson.M, 0)
	if err := cursor.All(ctx, &results); err != nil {
		e.logger.Printf("[EXECUTE] cursor drain failed: %v", err)
		return nil, apperrors.NewExecutionError(err)
	}

	e.logger.Printf("[EXECUTE] %d stage(s) returned %d document(s)", len(guarded), len(results))
	return results, nil
}
