package nlquery

import "go.mongodb.org/mongo-driver/v2/bson"

// Pipeline is an ordered sequence of MongoDB aggregation stages. Each stage
// maps a single operator name ($match, $group, ...) to its arguments.
type Pipeline []bson.M
