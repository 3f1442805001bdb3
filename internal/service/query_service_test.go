package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"cicd-analytics-be/internal/apperrors"
	"cicd-analytics-be/internal/dto"
	"cicd-analytics-be/internal/repository/memory"
	"cicd-analytics-be/pkg/nlquery"
	"cicd-analytics-be/pkg/schema"
	"cicd-analytics-be/pkg/store"
)

type fakeTranslator struct {
	pipeline    nlquery.Pipeline
	explanation string
	err         error

	gotQuestion string
	gotSchema   string
	gotHistory  []store.Turn
}

func (f *fakeTranslator) Translate(ctx context.Context, question, schemaContext string, history []store.Turn) (nlquery.Pipeline, string, error) {
	f.gotQuestion = question
	f.gotSchema = schemaContext
	f.gotHistory = history
	return f.pipeline, f.explanation, f.err
}

type fakeExecutor struct {
	results []bson.M
	err     error

	gotPipeline nlquery.Pipeline
}

func (f *fakeExecutor) Execute(ctx context.Context, pipeline nlquery.Pipeline) ([]bson.M, error) {
	f.gotPipeline = pipeline
	return f.results, f.err
}

type fakeSummarizer struct {
	summary string
	err     error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, results []bson.M, question, explanation string) (string, error) {
	return f.summary, f.err
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

type failingSchemaProvider struct{}

func (failingSchemaProvider) Context(ctx context.Context) (string, string, error) {
	return "", "", errors.New("mcp server unreachable")
}

func newTestService(tr Translator, ex Executor, su Summarizer, provider schema.Provider) (IQueryService, *memory.HistoryRepository) {
	repo := memory.NewHistoryRepository(time.Hour)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	if provider == nil {
		provider = schema.NewStaticProvider()
	}
	svc := NewQueryService(provider, tr, ex, su, repo, pubSub, "QUERY_ANSWERED", false, noopLogger{})
	return svc, repo
}

func TestHandleQueryHappyPath(t *testing.T) {
	pipeline := nlquery.Pipeline{{"$limit": 5}}
	results := []bson.M{{"event_type": "Build Stage Started"}}

	tr := &fakeTranslator{pipeline: pipeline, explanation: "limits events"}
	ex := &fakeExecutor{results: results}
	su := &fakeSummarizer{summary: "One build event."}
	svc, _ := newTestService(tr, ex, su, nil)

	resp, err := svc.HandleQuery(context.Background(), &dto.QueryRequest{Query: "show one event"})
	require.NoError(t, err)

	assert.Equal(t, "show one event", resp.QueryText)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "One build event.", resp.Summary)
	assert.Equal(t, "limits events", resp.PipelineExplanation)
	assert.Equal(t, pipeline, resp.MongoDBPipeline)
	assert.Equal(t, results, resp.Results)
	assert.Equal(t, schema.SourceStatic, resp.SchemaSource)
	assert.Equal(t, pipeline, ex.gotPipeline)
}

func TestHandleQueryGeneratesSessionIDWhenMissing(t *testing.T) {
	svc, _ := newTestService(&fakeTranslator{}, &fakeExecutor{}, &fakeSummarizer{}, nil)

	first, err := svc.HandleQuery(context.Background(), &dto.QueryRequest{Query: "q"})
	require.NoError(t, err)
	second, err := svc.HandleQuery(context.Background(), &dto.QueryRequest{Query: "q"})
	require.NoError(t, err)

	assert.NotEmpty(t, first.SessionID)
	assert.NotEqual(t, first.SessionID, second.SessionID)
}

func TestHandleQueryKeepsProvidedSessionID(t *testing.T) {
	svc, _ := newTestService(&fakeTranslator{}, &fakeExecutor{}, &fakeSummarizer{}, nil)

	resp, err := svc.HandleQuery(context.Background(), &dto.QueryRequest{Query: "q", SessionID: "fixed"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", resp.SessionID)
}

func TestHandleQueryThreadsHistoryIntoTranslation(t *testing.T) {
	tr := &fakeTranslator{}
	svc, repo := newTestService(tr, &fakeExecutor{}, &fakeSummarizer{summary: "s"}, nil)

	repo.Append("s1", store.Turn{Query: "earlier question", Summary: "earlier answer"})

	_, err := svc.HandleQuery(context.Background(), &dto.QueryRequest{Query: "follow up", SessionID: "s1"})
	require.NoError(t, err)

	require.Len(t, tr.gotHistory, 1)
	assert.Equal(t, "earlier question", tr.gotHistory[0].Query)
}

func TestHandleQueryRecordsTurnAfterSuccess(t *testing.T) {
	svc, repo := newTestService(&fakeTranslator{}, &fakeExecutor{}, &fakeSummarizer{summary: "the answer"}, nil)

	resp, err := svc.HandleQuery(context.Background(), &dto.QueryRequest{Query: "q", SessionID: "s1"})
	require.NoError(t, err)

	turns := repo.History("s1")
	require.Len(t, turns, 1)
	assert.Equal(t, "q", turns[0].Query)
	assert.Equal(t, resp.Summary, turns[0].Summary)
}

func TestHandleQueryFailureDoesNotRecordTurn(t *testing.T) {
	tests := []struct {
		name string
		tr   Translator
		ex   Executor
		su   Summarizer
	}{
		{
			name: "translation failure",
			tr:   &fakeTranslator{err: apperrors.NewTranslationError(errors.New("bad shape"))},
			ex:   &fakeExecutor{},
			su:   &fakeSummarizer{},
		},
		{
			name: "execution failure",
			tr:   &fakeTranslator{},
			ex:   &fakeExecutor{err: apperrors.NewExecutionError(errors.New("server down"))},
			su:   &fakeSummarizer{},
		},
		{
			name: "summarization failure",
			tr:   &fakeTranslator{},
			ex:   &fakeExecutor{},
			su:   &fakeSummarizer{err: apperrors.NewSummarizationError(errors.New("model overloaded"))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(tt.tr, tt.ex, tt.su, nil)

			_, err := svc.HandleQuery(context.Background(), &dto.QueryRequest{Query: "q", SessionID: "s1"})
			require.Error(t, err)
			assert.Empty(t, repo.History("s1"))
		})
	}
}

func TestHandleQueryErrorsKeepTheirClass(t *testing.T) {
	tr := &fakeTranslator{err: apperrors.NewTranslationError(errors.New("unusable"))}
	svc, _ := newTestService(tr, &fakeExecutor{}, &fakeSummarizer{}, nil)

	_, err := svc.HandleQuery(context.Background(), &dto.QueryRequest{Query: "q"})
	require.Error(t, err)

	var terr *apperrors.TranslationError
	assert.True(t, errors.As(err, &terr))
}

func TestHandleQueryDegradesToStaticSchemaOnDiscoveryFailure(t *testing.T) {
	tr := &fakeTranslator{}
	svc, _ := newTestService(tr, &fakeExecutor{}, &fakeSummarizer{summary: "s"}, failingSchemaProvider{})

	resp, err := svc.HandleQuery(context.Background(), &dto.QueryRequest{Query: "q"})
	require.NoError(t, err)

	assert.Equal(t, schema.SourceStatic, resp.SchemaSource)
	assert.Equal(t, schema.StaticSchemaText(), tr.gotSchema)
}

func TestSessionHistoryResponse(t *testing.T) {
	svc, repo := newTestService(&fakeTranslator{}, &fakeExecutor{}, &fakeSummarizer{}, nil)

	repo.Append("s1", store.Turn{Query: "q1", Summary: "a1", CreatedAt: time.Now()})
	repo.Append("s1", store.Turn{Query: "q2", Summary: "a2", CreatedAt: time.Now()})

	resp := svc.SessionHistory("s1")
	assert.Equal(t, "s1", resp.SessionID)
	require.Len(t, resp.Turns, 2)
	assert.Equal(t, "q1", resp.Turns[0].Query)

	empty := svc.SessionHistory("unknown")
	assert.Empty(t, empty.Turns)
}
