package main

import (
	"context"
	"log"

	"cicd-analytics-be/internal/bootstrap"
	"cicd-analytics-be/internal/config"
	"cicd-analytics-be/internal/server"
	"cicd-analytics-be/internal/tracer"
	"cicd-analytics-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	mongoClient, err := database.NewMongoClient(cfg.Mongo.URI)
	if err != nil {
		log.Panicf("Unable to connect to MongoDB: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(mongoClient, cfg)
	defer container.Logger.Sync()

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Audit Consumer...")
		if err := container.AuditService.Consume(context.Background()); err != nil {
			log.Printf("Background Audit Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
