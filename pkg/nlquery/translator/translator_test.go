package translator

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cicd-analytics-be/internal/apperrors"
	"cicd-analytics-be/pkg/llm"
)

// fakeProvider returns a fixed response (or error) for any chat call.
type fakeProvider struct {
	response string
	err      error
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.response, f.err
}

func testLogger() *log.Logger {
	return log.New(os.Stdout, "[TEST] ", log.LstdFlags)
}

func TestTranslateRejectsEmptyQuestion(t *testing.T) {
	tr := New(nil, testLogger())

	_, _, err := tr.Translate(context.Background(), "   ", "", nil)
	require.Error(t, err)

	var terr *apperrors.TranslationError
	assert.True(t, errors.As(err, &terr))
}

func TestTranslateFallbackCannedTable(t *testing.T) {
	tr := New(nil, testLogger())

	tests := []struct {
		name       string
		question   string
		wantStages int
		wantFirst  string
	}{
		{
			name:       "count by event type",
			question:   "Count all events by event type",
			wantStages: 3,
			wantFirst:  "$group",
		},
		{
			name:       "list event types",
			question:   "Please list all event types you have",
			wantStages: 1,
			wantFirst:  "$group",
		},
		{
			name:       "count by source",
			question:   "count events by source please",
			wantStages: 2,
			wantFirst:  "$group",
		},
		{
			name:       "scan started match",
			question:   "Show events with scan started",
			wantStages: 1,
			wantFirst:  "$match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline, explanation, err := tr.Translate(context.Background(), tt.question, "", nil)
			require.NoError(t, err)
			require.Len(t, pipeline, tt.wantStages)
			assert.Contains(t, pipeline[0], tt.wantFirst)
			assert.NotEmpty(t, explanation)
		})
	}
}

func TestTranslateFallbackUnknownQuestion(t *testing.T) {
	tr := New(nil, testLogger())

	pipeline, explanation, err := tr.Translate(context.Background(), "what is the meaning of life", "", nil)
	require.NoError(t, err)
	assert.Empty(t, pipeline)
	assert.NotNil(t, pipeline)
	assert.Contains(t, explanation, "no canned match")
}

func TestTranslateFallbackIsDeterministic(t *testing.T) {
	tr := New(nil, testLogger())

	first, _, err := tr.Translate(context.Background(), "count all events by event type", "", nil)
	require.NoError(t, err)
	second, _, err := tr.Translate(context.Background(), "count all events by event type", "", nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTranslateParsesProviderResponse(t *testing.T) {
	provider := &fakeProvider{
		response: `{"pipeline":[{"$match":{"source":"Jenkins"}},{"$limit":5}],"explanation":"Filters Jenkins events."}`,
	}
	tr := New(provider, testLogger())

	pipeline, explanation, err := tr.Translate(context.Background(), "show jenkins events", "schema", nil)
	require.NoError(t, err)
	require.Len(t, pipeline, 2)
	// encoding/json decodes nested stage arguments as plain maps and
	// numbers as float64; the driver marshals them identically to bson.M.
	assert.Equal(t, map[string]interface{}{"source": "Jenkins"}, pipeline[0]["$match"])
	assert.Equal(t, float64(5), pipeline[1]["$limit"])
	assert.Equal(t, "Filters Jenkins events.", explanation)
}

func TestTranslateRejectsUnusableResponses(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "not JSON", response: "sure, here is your pipeline:"},
		{name: "missing pipeline key", response: `{"explanation":"oops"}`},
		{name: "missing explanation key", response: `{"pipeline":[]}`},
		{name: "extra keys", response: `{"pipeline":[],"explanation":"ok","confidence":0.9}`},
		{name: "pipeline items not objects", response: `{"pipeline":["$match"],"explanation":"ok"}`},
		{name: "empty stage object", response: `{"pipeline":[{}],"explanation":"ok"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(&fakeProvider{response: tt.response}, testLogger())

			_, _, err := tr.Translate(context.Background(), "anything", "", nil)
			require.Error(t, err)

			var terr *apperrors.TranslationError
			assert.True(t, errors.As(err, &terr))
		})
	}
}

func TestTranslateWrapsProviderFailure(t *testing.T) {
	tr := New(&fakeProvider{err: errors.New("connection refused")}, testLogger())

	_, _, err := tr.Translate(context.Background(), "anything", "", nil)
	require.Error(t, err)

	var terr *apperrors.TranslationError
	require.True(t, errors.As(err, &terr))
	assert.Contains(t, terr.Error(), "connection refused")
}
