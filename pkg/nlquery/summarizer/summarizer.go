package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/v2/bson"

	"cicd-analytics-be/internal/apperrors"
	"cicd-analytics-be/pkg/llm"
	"cicd-analytics-be/pkg/nlquery/prompt"
)

// DefaultSampleSize bounds how many results are serialized into the
// summarization prompt regardless of result-set size.
const DefaultSampleSize = 10

// Summarizer turns a result set into a business-readable summary. With a
// nil provider it emits a deterministic template so the endpoint stays
// exercisable without an LLM credential.
type Summarizer struct {
	provider   llm.LLMProvider
	sampleSize int
	logger     *log.Logger
}

func New(provider llm.LLMProvider, sampleSize int, logger *log.Logger) *Summarizer {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	return &Summarizer{
		provider:   provider,
		sampleSize: sampleSize,
		logger:     logger,
	}
}

func (s *Summarizer) Summarize(ctx context.Context, results []bson.M, question, explanation string) (string, error) {
	sample := results
	if len(sample) > s.sampleSize {
		sample = sample[:s.sampleSize]
	}

	sampleJSON, err := json.Marshal(sample)
	if err != nil {
		return "", apperrors.NewSummarizationError(fmt.Errorf("serialize result sample: %w", err))
	}

	if s.provider == nil {
		return fmt.Sprintf(
			"Fallback summary for %q: %d result(s). %s Sample: %s",
			question, len(results), explanation, string(sampleJSON),
		), nil
	}

	summary, err := s.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: prompt.SummarySystemPrompt},
		{Role: "user", Content: prompt.BuildSummaryPrompt(question, explanation, string(sampleJSON))},
	})
	if err != nil {
		s.logger.Printf("[SUMMARIZE] LLM call failed: %v", err)
		return "", apperrors.NewSummarizationError(err)
	}

	return summary, nil
}
