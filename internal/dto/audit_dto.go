package dto

import (
	"time"

	"cicd-analytics-be/pkg/nlquery"
)

// QueryAnsweredMessage is the audit event published after each successful
// query, consumed in the background and persisted as an immutable record.
type QueryAnsweredMessage struct {
	Query       string           `json:"query"`
	SessionID   string           `json:"session_id"`
	Pipeline    nlquery.Pipeline `json:"pipeline"`
	ResultCount int              `json:"result_count"`
	DurationMS  int64            `json:"duration_ms"`
	Timestamp   time.Time        `json:"timestamp"`
}
