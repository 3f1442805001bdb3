package schema

import "context"

// Source tags reported alongside the schema context.
const (
	SourceStatic = "static"
	SourceMCP    = "mcp"
)

// Provider supplies the textual schema context handed to the LLM.
type Provider interface {
	// Context returns the schema description and its source tag.
	Context(ctx context.Context) (text string, source string, err error)
}

// Discovery exposes the introspection operations behind the optional
// collection-browsing endpoints. Only the MCP provider implements it.
type Discovery interface {
	ListCollections(ctx context.Context) ([]string, error)
	DistinctValues(ctx context.Context, collection, field string, limit int) ([]any, error)
	SampleDocuments(ctx context.Context, collection string, limit int) ([]map[string]any, error)
	Indexes(ctx context.Context, collection string) ([]map[string]any, error)
	ClearCache()
}

// staticSchemaText is the hand-written description of the event collection,
// used whenever live discovery is unavailable.
const staticSchemaText = `Collection: cdPipelineEvents

Fields:
- event_type: string (e.g., 'Build Stage Started', 'SAST Security Scan Started')
- event_timestamp: datetime (ISO format)
- user: string (e.g., 'Jane Doe', 'John Smith')
- source: string (e.g., 'GitLab', 'Harness', 'Security Tool')
- duration_seconds: numeric (0 for instantaneous events, >0 for timed operations)
- pipeline_id: string (e.g., 'pipeline-100')
- metadata: object (contains branch, environment, etc.)
`

type StaticProvider struct{}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

func (s *StaticProvider) Context(_ context.Context) (string, string, error) {
	return staticSchemaText, SourceStatic, nil
}

// StaticSchemaText returns the fixed schema description, used by the MCP
// provider as its degraded-mode answer.
func StaticSchemaText() string {
	return staticSchemaText
}
