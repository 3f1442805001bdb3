package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"cicd-analytics-be/internal/config"
	"cicd-analytics-be/pkg/database"
)

// eventSpec pairs an event type with its typical duration in seconds.
// Instantaneous events carry 0.
type eventSpec struct {
	eventType    string
	baseDuration int
}

var eventSpecs = []eventSpec{
	{"Pull Request Created", 0},
	{"Code Review / Approval", 3600},
	{"SonarQube Code Quality Scan Started", 0},
	{"SonarQube Code Quality Scan Completed", 120},
	{"Build Stage Started", 0},
	{"Unit Tests Completed", 60},
	{"Integration Tests Completed", 300},
	{"Vulnerability Scan Started", 0},
	{"Vulnerability Scan Failed", 0},
	{"SAST Security Scan Started", 0},
	{"SAST Security Scan Completed", 900},
	{"Artifact Published (Container)", 30},
	{"Pre-Prod Deployment Started", 0},
	{"Manual Approval Required", 0},
	{"Manual Approval Denied", 0},
	{"Production Deployment Started", 0},
	{"Production Deployment Finished", 180},
	{"Service Monitoring Started", 0},
	{"Rollback Initiated", 0},
	{"Rollback Finished", 150},
}

var users = []string{"John Smith", "Jane Doe", "SystemUser-CI", "DeveloperX"}
var sources = []string{"GitLab", "Jenkins", "Security Tool", "Harness"}

// generateEvents produces realistic CI/CD events spaced a few minutes
// apart, with durations varied up to ±50% around the base.
func generateEvents(start time.Time, count int) []interface{} {
	events := make([]interface{}, 0, count)

	current := start
	for i := 0; i < count; i++ {
		spec := eventSpecs[rand.Intn(len(eventSpecs))]

		duration := 0
		if spec.baseDuration > 0 {
			variation := rand.Intn(spec.baseDuration+1) - spec.baseDuration/2
			duration = spec.baseDuration + variation
			if duration < 1 {
				duration = 1
			}
		}

		current = current.Add(time.Duration(5+rand.Intn(56)) * time.Minute)

		branch := "feature-branch"
		environment := "dev"
		if strings.Contains(spec.eventType, "Prod") {
			branch = "main"
			environment = "prod"
		}

		events = append(events, bson.M{
			"event_type":       spec.eventType,
			"event_timestamp":  current,
			"user":             users[rand.Intn(len(users))],
			"source":           sources[rand.Intn(len(sources))],
			"duration_seconds": duration,
			"pipeline_id":      fmt.Sprintf("pipeline-%d", 100+rand.Intn(6)),
			"metadata": bson.M{
				"branch":      branch,
				"environment": environment,
			},
		})
	}

	return events
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	cfg := config.Load()

	client, err := database.NewMongoClient(cfg.Mongo.URI)
	if err != nil {
		log.Fatal("Error: Failed to connect to MongoDB: ", err)
	}
	defer client.Disconnect(context.Background())

	ctx := context.Background()
	collection := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)

	// Drop the existing collection for a clean reload
	if err := collection.Drop(ctx); err != nil {
		log.Fatal("Error: Failed to drop collection: ", err)
	}
	log.Printf("Dropped existing collection: %s", cfg.Mongo.Collection)

	start := time.Now().AddDate(0, 0, -7)
	events := generateEvents(start, 100)

	result, err := collection.InsertMany(ctx, events)
	if err != nil {
		log.Fatal("Error: Failed to insert events: ", err)
	}
	log.Printf("Successfully inserted %d documents into %s", len(result.InsertedIDs), cfg.Mongo.Collection)

	// Indices for the common query fields
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "event_type", Value: 1}}},
		{Keys: bson.D{{Key: "event_timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "user", Value: 1}}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Fatal("Error: Failed to create indexes: ", err)
	}
	log.Println("Created indexes on event_type, event_timestamp, user")
}
