package factory

import (
	"fmt"

	"cicd-analytics-be/pkg/llm"
	"cicd-analytics-be/pkg/llm/gemini"
	"cicd-analytics-be/pkg/llm/ollama"
	"cicd-analytics-be/pkg/llm/openai"
)

// NewLLMProvider builds the configured provider. A nil provider with a nil
// error means no credential is configured: callers must run in
// deterministic fallback mode instead of making network calls.
func NewLLMProvider(providerType, modelName, baseURL, openaiKey, geminiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "openai":
		if openaiKey == "" {
			return nil, nil
		}
		return openai.NewOpenAIProvider(openaiKey, modelName), nil
	case "gemini":
		if geminiKey == "" {
			return nil, nil
		}
		return gemini.NewGeminiProvider(geminiKey, modelName), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
