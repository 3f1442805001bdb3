package translator

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"cicd-analytics-be/pkg/nlquery"
)

// cannedTranslation is one fixed question→pipeline mapping used when no
// LLM credential is configured. Matching is a case-insensitive substring
// test, first entry wins.
type cannedTranslation struct {
	match       string
	pipeline    nlquery.Pipeline
	explanation string
}

var cannedTranslations = []cannedTranslation{
	{
		match: "count all events by event type",
		pipeline: nlquery.Pipeline{
			{"$group": bson.M{"_id": "$event_type", "count": bson.M{"$sum": 1}}},
			{"$project": bson.M{"event_type": "$_id", "count": 1, "_id": 0}},
			{"$sort": bson.M{"count": -1}},
		},
		explanation: "Fallback translation: groups events by event_type and counts each group.",
	},
	{
		match: "list all event types",
		pipeline: nlquery.Pipeline{
			{"$group": bson.M{"_id": nil, "event_types": bson.M{"$addToSet": "$event_type"}}},
		},
		explanation: "Fallback translation: collects the distinct set of event types.",
	},
	{
		match: "count events by source",
		pipeline: nlquery.Pipeline{
			{"$group": bson.M{"_id": "$source", "count": bson.M{"$sum": 1}}},
			{"$sort": bson.M{"count": -1}},
		},
		explanation: "Fallback translation: groups events by source and counts each group.",
	},
	{
		match: "show events with scan started",
		pipeline: nlquery.Pipeline{
			{"$match": bson.M{"event_type": bson.M{"$regex": "scan started", "$options": "i"}}},
		},
		explanation: "Fallback translation: filters events whose type mentions a started scan.",
	},
}

// fallbackTranslate answers from the canned table. Unknown questions get an
// empty pipeline, which the executor guard turns into a bounded full scan.
func fallbackTranslate(question string) (nlquery.Pipeline, string) {
	lowered := strings.ToLower(question)
	for _, canned := range cannedTranslations {
		if strings.Contains(lowered, canned.match) {
			return canned.pipeline, canned.explanation
		}
	}
	return nlquery.Pipeline{}, "Fallback translation: no canned match for the question, returning a bounded sample of events."
}
