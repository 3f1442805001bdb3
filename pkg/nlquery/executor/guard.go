package executor

import (
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"cicd-analytics-be/pkg/nlquery"
)

// readOnlyStages is the allow-list of aggregation operators a generated
// pipeline may contain. Anything else — in particular the write stages
// $out and $merge — is rejected before the pipeline touches the database.
var readOnlyStages = map[string]struct{}{
	"$match":       {},
	"$group":       {},
	"$sort":        {},
	"$limit":       {},
	"$skip":        {},
	"$project":     {},
	"$count":       {},
	"$unwind":      {},
	"$addFields":   {},
	"$set":         {},
	"$bucket":      {},
	"$bucketAuto":  {},
	"$sortByCount": {},
	"$sample":      {},
	"$facet":       {},
}

// boundingStages are the operators that already cap the number of emitted
// documents, making the appended $limit unnecessary.
var boundingStages = map[string]struct{}{
	"$limit":  {},
	"$count":  {},
	"$sample": {},
}

// Guard validates a pipeline against the read-only allow-list and ensures
// it ends bounded: when no stage caps the output, {$limit: ceiling} is
// appended as the final stage. The input is never mutated.
func Guard(pipeline nlquery.Pipeline, ceiling int) (nlquery.Pipeline, error) {
	guarded := make(nlquery.Pipeline, 0, len(pipeline)+1)
	bounded := false

	for i, stage := range pipeline {
		if len(stage) != 1 {
			return nil, fmt.Errorf("stage %d must contain exactly one operator, got %d", i, len(stage))
		}
		for op := range stage {
			if _, ok := readOnlyStages[op]; !ok {
				return nil, fmt.Errorf("stage %d uses unsupported operator %q", i, op)
			}
			if _, ok := boundingStages[op]; ok {
				bounded = true
			}
		}
		guarded = append(guarded, stage)
	}

	if !bounded {
		guarded = append(guarded, bson.M{"$limit": ceiling})
	}

	return guarded, nil
}
