package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"cicd-analytics-be/internal/apperrors"
	"cicd-analytics-be/pkg/llm"
	"cicd-analytics-be/pkg/nlquery"
	"cicd-analytics-be/pkg/nlquery/prompt"
	"cicd-analytics-be/pkg/store"
)

// llmResponseSchema pins the expected LLM output shape: exactly a stage
// array and an explanation string, nothing else.
const llmResponseSchema = `{
	"type": "object",
	"required": ["pipeline", "explanation"],
	"additionalProperties": false,
	"properties": {
		"pipeline": {
			"type": "array",
			"items": {"type": "object", "minProperties": 1}
		},
		"explanation": {"type": "string"}
	}
}`

// Translator turns natural language questions into aggregation pipelines.
// With a nil provider it answers from the canned fallback table so the
// service stays exercisable without an LLM credential.
type Translator struct {
	provider llm.LLMProvider
	schema   *gojsonschema.Schema
	logger   *log.Logger
}

func New(provider llm.LLMProvider, logger *log.Logger) *Translator {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(llmResponseSchema))
	if err != nil {
		// The schema is a compile-time constant; failing to parse it is a
		// programming error, not a runtime condition.
		panic(fmt.Sprintf("translator: invalid response schema: %v", err))
	}
	return &Translator{
		provider: provider,
		schema:   schema,
		logger:   logger,
	}
}

// Translate produces (pipeline, explanation) for the question, or a
// TranslationError when the LLM call fails or returns an unusable shape.
func (t *Translator) Translate(ctx context.Context, question, schemaContext string, history []store.Turn) (nlquery.Pipeline, string, error) {
	if strings.TrimSpace(question) == "" {
		return nil, "", apperrors.NewTranslationError(fmt.Errorf("question must not be empty"))
	}

	if t.provider == nil {
		pipeline, explanation := fallbackTranslate(question)
		t.logger.Printf("[TRANSLATE] fallback table answered %q", question)
		return pipeline, explanation, nil
	}

	promptText := prompt.NewTranslationBuilder(question, schemaContext, history).Build()

	raw, err := t.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: promptText},
		{Role: "user", Content: fmt.Sprintf("Generate a MongoDB pipeline for: %s", question)},
	}, llm.WithJSONOutput(), llm.WithTemperature(0.1))
	if err != nil {
		return nil, "", apperrors.NewTranslationError(err)
	}

	pipeline, explanation, err := t.parseResponse(raw)
	if err != nil {
		t.logger.Printf("[TRANSLATE] unusable LLM response: %v", err)
		return nil, "", apperrors.NewTranslationError(err)
	}

	t.logger.Printf("[TRANSLATE] generated %d-stage pipeline for %q", len(pipeline), question)
	return pipeline, explanation, nil
}

func (t *Translator) parseResponse(raw string) (nlquery.Pipeline, string, error) {
	result, err := t.schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("response is not valid JSON: %w", err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return nil, "", fmt.Errorf("response does not match expected shape: %s", strings.Join(issues, "; "))
	}

	var parsed struct {
		Pipeline    nlquery.Pipeline `json:"pipeline"`
		Explanation string           `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, "", fmt.Errorf("decode response: %w", err)
	}

	return parsed.Pipeline, parsed.Explanation, nil
}
