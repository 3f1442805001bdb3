package schema

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/patrickmn/go-cache"
)

var clientImpl = &mcp.Implementation{Name: "cicd-analytics-be", Version: "1.0.0"}

// MCPProvider discovers the live collection schema through an MCP server
// exposing the database introspection tools (listCollections, getSchema,
// sampleDocuments, getDistinctValues, getIndexes). Tool results are cached
// with a TTL so repeated queries do not hammer the discovery server.
type MCPProvider struct {
	transport  mcp.Transport
	database   string
	collection string
	cache      *cache.Cache

	mu      sync.Mutex
	session *mcp.ClientSession
}

var _ Provider = &MCPProvider{}
var _ Discovery = &MCPProvider{}

func NewMCPProvider(transport mcp.Transport, database, collection string, cacheTTL time.Duration) *MCPProvider {
	return &MCPProvider{
		transport:  transport,
		database:   database,
		collection: collection,
		cache:      cache.New(cacheTTL, 10*time.Minute),
	}
}

// connect lazily establishes the MCP session. The discovery server may
// still be starting when this service boots, so the first tool call
// retries the handshake instead of failing the whole process.
func (p *MCPProvider) connect(ctx context.Context) (*mcp.ClientSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != nil {
		return p.session, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := mcp.NewClient(clientImpl, nil)
	session, err := client.Connect(connectCtx, p.transport, nil)
	if err != nil {
		return nil, fmt.Errorf("mcp connect: %w", err)
	}

	p.session = session
	return session, nil
}

func (p *MCPProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return nil
	}
	err := p.session.Close()
	p.session = nil
	return err
}

func cacheKey(tool string, args map[string]any) string {
	payload, _ := json.Marshal(args)
	return fmt.Sprintf("%s:%x", tool, md5.Sum(payload))
}

// callTool invokes one MCP tool and decodes its JSON text content into out.
// Successful results are cached under the tool+args key.
func (p *MCPProvider) callTool(ctx context.Context, tool string, args map[string]any, out any) error {
	key := cacheKey(tool, args)
	if cached, found := p.cache.Get(key); found {
		return json.Unmarshal(cached.([]byte), out)
	}

	session, err := p.connect(ctx)
	if err != nil {
		return err
	}

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      tool,
		Arguments: args,
	})
	if err != nil {
		return fmt.Errorf("mcp tool %s: %w", tool, err)
	}
	if err := result.GetError(); err != nil {
		return fmt.Errorf("mcp tool %s: %w", tool, err)
	}
	if len(result.Content) == 0 {
		return fmt.Errorf("mcp tool %s: empty result", tool)
	}

	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		return fmt.Errorf("mcp tool %s: expected text content", tool)
	}

	if err := json.Unmarshal([]byte(tc.Text), out); err != nil {
		return fmt.Errorf("mcp tool %s: decode result: %w", tool, err)
	}

	p.cache.Set(key, []byte(tc.Text), cache.DefaultExpiration)
	return nil
}

func (p *MCPProvider) ListCollections(ctx context.Context) ([]string, error) {
	var res struct {
		Collections []string `json:"collections"`
	}
	err := p.callTool(ctx, "listCollections", map[string]any{"database": p.database}, &res)
	if err != nil {
		return nil, err
	}
	return res.Collections, nil
}

func (p *MCPProvider) Schema(ctx context.Context, collection string) (map[string]any, error) {
	var res struct {
		Schema map[string]any `json:"schema"`
	}
	err := p.callTool(ctx, "getSchema", map[string]any{
		"database":   p.database,
		"collection": collection,
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.Schema, nil
}

func (p *MCPProvider) SampleDocuments(ctx context.Context, collection string, limit int) ([]map[string]any, error) {
	if limit > 50 {
		limit = 50
	}
	var res struct {
		Documents []map[string]any `json:"documents"`
	}
	err := p.callTool(ctx, "sampleDocuments", map[string]any{
		"database":   p.database,
		"collection": collection,
		"limit":      limit,
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.Documents, nil
}

func (p *MCPProvider) DistinctValues(ctx context.Context, collection, field string, limit int) ([]any, error) {
	var res struct {
		Values []any `json:"values"`
	}
	err := p.callTool(ctx, "getDistinctValues", map[string]any{
		"database":   p.database,
		"collection": collection,
		"field":      field,
		"limit":      limit,
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.Values, nil
}

func (p *MCPProvider) Indexes(ctx context.Context, collection string) ([]map[string]any, error) {
	var res struct {
		Indexes []map[string]any `json:"indexes"`
	}
	err := p.callTool(ctx, "getIndexes", map[string]any{
		"database":   p.database,
		"collection": collection,
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.Indexes, nil
}

func (p *MCPProvider) ClearCache() {
	p.cache.Flush()
}

// Context assembles the enriched schema description from live metadata:
// field schema, known field values, sample documents and indexes. Any
// discovery failure degrades to the static schema text rather than failing
// the request.
func (p *MCPProvider) Context(ctx context.Context) (string, string, error) {
	fieldSchema, err := p.Schema(ctx, p.collection)
	if err != nil {
		log.Printf("[WARN] schema discovery failed, using static schema: %v", err)
		return StaticSchemaText(), SourceStatic, nil
	}

	samples, _ := p.SampleDocuments(ctx, p.collection, 5)
	eventTypes, _ := p.DistinctValues(ctx, p.collection, "event_type", 50)
	sources, _ := p.DistinctValues(ctx, p.collection, "source", 20)
	users, _ := p.DistinctValues(ctx, p.collection, "user", 20)
	indexes, _ := p.Indexes(ctx, p.collection)

	var b strings.Builder
	fmt.Fprintf(&b, "Collection: %s\n", p.collection)
	b.WriteString("Source: live schema discovery\n\n")

	b.WriteString("=== Field Schema ===\n")
	b.WriteString(jsonBlock(fieldSchema, "Schema unavailable"))

	b.WriteString("\n=== Available Event Types ===\n")
	b.WriteString(joinValues(eventTypes, 20, "No event types found"))

	b.WriteString("\n=== Available Sources ===\n")
	b.WriteString(joinValues(sources, 20, "No sources found"))

	b.WriteString("\n=== Available Users ===\n")
	b.WriteString(joinValues(users, 10, "No users found"))

	b.WriteString("\n=== Sample Documents ===\n")
	b.WriteString(jsonBlock(samples, "No samples available"))

	b.WriteString("\n=== Indexes (for query optimization) ===\n")
	b.WriteString(jsonBlock(indexes, "No indexes found"))

	return b.String(), SourceMCP, nil
}

func jsonBlock(v any, empty string) string {
	if v == nil {
		return empty + "\n"
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil || string(data) == "null" {
		return empty + "\n"
	}
	return string(data) + "\n"
}

func joinValues(values []any, max int, empty string) string {
	if len(values) == 0 {
		return empty + "\n"
	}
	shown := values
	if len(shown) > max {
		shown = shown[:max]
	}
	parts := make([]string, len(shown))
	for i, v := range shown {
		parts[i] = fmt.Sprint(v)
	}
	line := strings.Join(parts, ", ")
	if len(values) > max {
		line += fmt.Sprintf(" (total: %d distinct values)", len(values))
	}
	return line + "\n"
}
