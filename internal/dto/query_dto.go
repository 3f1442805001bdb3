package dto

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"cicd-analytics-be/pkg/nlquery"
)

type QueryRequest struct {
	Query     string `json:"query" validate:"required"`
	SessionID string `json:"session_id,omitempty"`
}

type QueryResponse struct {
	QueryText           string           `json:"query_text"`
	SessionID           string           `json:"session_id"`
	Summary             string           `json:"summary"`
	PipelineExplanation string           `json:"pipeline_explanation"`
	MongoDBPipeline     nlquery.Pipeline `json:"mongodb_pipeline"`
	Results             []bson.M         `json:"results"`
	MCPEnabled          bool             `json:"mcp_enabled"`
	SchemaSource        string           `json:"schema_source"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	DBStatus string `json:"db_status"`
}

type SchemaResponse struct {
	Source     string `json:"source"`
	Collection string `json:"collection"`
	Context    string `json:"context"`
}

type MCPStatusResponse struct {
	Enabled      bool     `json:"enabled"`
	ServerURL    string   `json:"server_url,omitempty"`
	CacheTTLSecs int      `json:"cache_ttl_seconds"`
	Collections  []string `json:"collections,omitempty"`
	Error        string   `json:"error,omitempty"`
}

type DistinctValuesResponse struct {
	Collection     string `json:"collection"`
	Field          string `json:"field"`
	DistinctValues []any  `json:"distinct_values"`
	Count          int    `json:"count"`
	Limit          int    `json:"limit"`
}

type SampleDocumentsResponse struct {
	Collection string           `json:"collection"`
	Samples    []map[string]any `json:"samples"`
	Count      int              `json:"count"`
	Limit      int              `json:"limit"`
}

type SessionHistoryResponse struct {
	SessionID string             `json:"session_id"`
	Turns     []SessionTurnEntry `json:"turns"`
}

type SessionTurnEntry struct {
	Query     string    `json:"query"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
