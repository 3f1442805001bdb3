package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"cicd-analytics-be/pkg/nlquery"
)

func TestGuardAllowsReadOnlyPipelines(t *testing.T) {
	tests := []struct {
		name       string
		pipeline   nlquery.Pipeline
		wantStages int
	}{
		{
			name: "unbounded pipeline gets a limit appended",
			pipeline: nlquery.Pipeline{
				{"$match": bson.M{"event_type": "Rollback Initiated"}},
				{"$sort": bson.M{"event_timestamp": -1}},
			},
			wantStages: 3,
		},
		{
			name: "pipeline ending in limit is left alone",
			pipeline: nlquery.Pipeline{
				{"$match": bson.M{"source": "Jenkins"}},
				{"$limit": 5},
			},
			wantStages: 2,
		},
		{
			name: "count bounds the output",
			pipeline: nlquery.Pipeline{
				{"$match": bson.M{"user": "Jane Doe"}},
				{"$count": "total"},
			},
			wantStages: 2,
		},
		{
			name: "sample bounds the output",
			pipeline: nlquery.Pipeline{
				{"$sample": bson.M{"size": 3}},
			},
			wantStages: 1,
		},
		{
			name:       "empty pipeline becomes a bare limit",
			pipeline:   nlquery.Pipeline{},
			wantStages: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guarded, err := Guard(tt.pipeline, DefaultResultLimit)
			require.NoError(t, err)
			assert.Len(t, guarded, tt.wantStages)
		})
	}
}

func TestGuardAppendsCeilingAsFinalStage(t *testing.T) {
	pipeline := nlquery.Pipeline{
		{"$group": bson.M{"_id": "$event_type", "count": bson.M{"$sum": 1}}},
	}

	guarded, err := Guard(pipeline, 250)
	require.NoError(t, err)
	require.Len(t, guarded, 2)
	assert.Equal(t, bson.M{"$limit": 250}, guarded[len(guarded)-1])
}

func TestGuardRejectsWriteAndUnknownStages(t *testing.T) {
	tests := []struct {
		name     string
		pipeline nlquery.Pipeline
	}{
		{
			name: "out stage",
			pipeline: nlquery.Pipeline{
				{"$match": bson.M{}},
				{"$out": "stolenData"},
			},
		},
		{
			name: "merge stage",
			pipeline: nlquery.Pipeline{
				{"$merge": bson.M{"into": "other"}},
			},
		},
		{
			name: "lookup stage",
			pipeline: nlquery.Pipeline{
				{"$lookup": bson.M{"from": "users"}},
			},
		},
		{
			name: "multiple operators in one stage",
			pipeline: nlquery.Pipeline{
				{"$match": bson.M{}, "$limit": 10},
			},
		},
		{
			name: "empty stage",
			pipeline: nlquery.Pipeline{
				{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guarded, err := Guard(tt.pipeline, DefaultResultLimit)
			assert.Error(t, err)
			assert.Nil(t, guarded)
		})
	}
}

func TestGuardDoesNotMutateInput(t *testing.T) {
	pipeline := nlquery.Pipeline{
		{"$match": bson.M{"source": "GitLab"}},
	}

	_, err := Guard(pipeline, DefaultResultLimit)
	require.NoError(t, err)
	assert.Len(t, pipeline, 1)
}
