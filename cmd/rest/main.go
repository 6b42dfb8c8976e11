package main

import (
	"context"
	"log"
	"time"

	"ai-survey-be/internal/bootstrap"
	"ai-survey-be/internal/config"
	"ai-survey-be/internal/server"
	"ai-survey-be/internal/tracer"
	"ai-survey-be/pkg/database"

	"gorm.io/gorm"
)

const (
	dbConnectAttempts = 3
	dbConnectBackoff  = 2 * time.Second
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// 2. Initialize Database, with a few retries so a restarting database
	// does not take the service down with it
	gormDB, err := connectDB(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}

func connectDB(dsn string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error
	for attempt := 1; attempt <= dbConnectAttempts; attempt++ {
		db, err = database.NewGormDBFromDSN(dsn)
		if err == nil {
			return db, nil
		}
		log.Printf("DB connection attempt %d/%d failed: %v", attempt, dbConnectAttempts, err)
		if attempt < dbConnectAttempts {
			time.Sleep(dbConnectBackoff)
		}
	}
	return nil, err
}
