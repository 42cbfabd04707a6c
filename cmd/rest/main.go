package main

import (
	"context"
	"log"

	"spaced-learning-be/internal/bootstrap"
	"spaced-learning-be/internal/config"
	"spaced-learning-be/internal/server"
	"spaced-learning-be/internal/tracer"
	"spaced-learning-be/pkg/database"
)

func main() {
	// 0. Tracing (no-op unless OTEL_ENABLED is set)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load configuration
	cfg := config.Load()

	// 2. Initialize database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap dependencies
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start background workers
	go func() {
		log.Println("Background: starting distractor generator...")
		if err := container.GeneratorService.Consume(context.Background()); err != nil {
			log.Printf("Background generator error: %v", err)
		}
	}()

	// 5. Serve
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
