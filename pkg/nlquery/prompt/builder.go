package prompt

import (
	"fmt"
	"strings"

	"cicd-analytics-be/pkg/store"
)

// TranslationBuilder assembles the pipeline-generation prompt from the
// schema context, the conversation so far and the current question.
type TranslationBuilder struct {
	question      string
	schemaContext string
	history       []store.Turn
}

func NewTranslationBuilder(question, schemaContext string, history []store.Turn) *TranslationBuilder {
	return &TranslationBuilder{
		question:      question,
		schemaContext: schemaContext,
		history:       history,
	}
}

func (b *TranslationBuilder) Build() string {
	var prompt strings.Builder

	b.writeTask(&prompt)
	b.writeRules(&prompt)
	b.writeSchemaContext(&prompt)
	b.writeHistory(&prompt)
	b.writeQuestion(&prompt)

	return prompt.String()
}

func (b *TranslationBuilder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task>\n")
	prompt.WriteString("You are a MongoDB query expert with access to the database schema below.\n")
	prompt.WriteString("Translate the user's natural language question into a valid MongoDB aggregation pipeline.\n")
	prompt.WriteString("</task>\n\n")
}

func (b *TranslationBuilder) writeRules(prompt *strings.Builder) {
	prompt.WriteString("<rules>\n")
	prompt.WriteString("1. Output ONLY a JSON object with exactly this structure: {\"pipeline\": [array of stages], \"explanation\": \"brief explanation\"}\n")
	prompt.WriteString("2. Use the ACTUAL field names and values from the schema - do NOT guess or invent field names\n")
	prompt.WriteString("3. When filtering by specific values, use EXACT matches from the listed values\n")
	prompt.WriteString("4. Use only read-only aggregation stages; never $out or $merge\n")
	prompt.WriteString("5. For duration calculations, filter out events where duration_seconds = 0 first\n")
	prompt.WriteString("6. For multi-turn conversations, refine the pipeline based on the history\n")
	prompt.WriteString("</rules>\n\n")
}

func (b *TranslationBuilder) writeSchemaContext(prompt *strings.Builder) {
	prompt.WriteString("<database_context>\n")
	prompt.WriteString(b.schemaContext)
	prompt.WriteString("\n</database_context>\n\n")
}

func (b *TranslationBuilder) writeHistory(prompt *strings.Builder) {
	if len(b.history) == 0 {
		return
	}
	prompt.WriteString("<conversation_history>\n")
	for _, turn := range b.history {
		fmt.Fprintf(prompt, "User: %s\nAssistant: %s\n", turn.Query, turn.Summary)
	}
	prompt.WriteString("</conversation_history>\n\n")
}

func (b *TranslationBuilder) writeQuestion(prompt *strings.Builder) {
	prompt.WriteString("<user_question>\n")
	prompt.WriteString(b.question)
	prompt.WriteString("\n</user_question>\n")
}

// SummarySystemPrompt instructs the model for the summarization call.
const SummarySystemPrompt = "You are a helpful analytics summarizer. " +
	"Provide a concise, business-friendly summary of the query results. " +
	"Output only plain text."

// BuildSummaryPrompt assembles the summarization user prompt from the
// question, the pipeline explanation and the serialized result sample.
func BuildSummaryPrompt(question, explanation, resultsJSON string) string {
	var prompt strings.Builder

	fmt.Fprintf(&prompt, "Given query: %q\n\n", question)
	fmt.Fprintf(&prompt, "Pipeline explanation: %q\n\n", explanation)
	fmt.Fprintf(&prompt, "Results: %s\n", resultsJSON)

	return prompt.String()
}
