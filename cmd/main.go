package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/cliplab/annotation-backend/internal/db"
	apphttp "github.com/cliplab/annotation-backend/internal/http"
	"github.com/cliplab/annotation-backend/internal/http/handlers"
	"github.com/cliplab/annotation-backend/internal/observability"
	"github.com/cliplab/annotation-backend/internal/platform/envutil"
	"github.com/cliplab/annotation-backend/internal/platform/logger"
	"github.com/cliplab/annotation-backend/internal/platform/mediaprobe"
	"github.com/cliplab/annotation-backend/internal/repos"
	"github.com/cliplab/annotation-backend/internal/services"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "annotation-backend",
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
	})
	if shutdownOTel != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOTel(shutdownCtx)
		}()
	}

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Schema migration failed", "error", err)
	}
	pg := postgresService.DB()

	log.Info("Setting up repos...")
	videoRepo := repos.NewVideoRepo(pg, log)
	queryRepo := repos.NewQueryRepo(pg, log)
	annotationRepo := repos.NewAnnotationRepo(pg, log)

	log.Info("Setting up services...")
	statuses := services.LoadVideoStatusSet()
	prober := mediaprobe.New(log)
	ingestService := services.NewIngestService(pg, log, videoRepo, queryRepo, annotationRepo, prober, statuses)
	videoService := services.NewVideoService(pg, log, videoRepo, queryRepo, annotationRepo, statuses)
	queryService := services.NewQueryService(pg, log, videoRepo, queryRepo, annotationRepo)
	annotationService := services.NewAnnotationService(pg, log, queryRepo, annotationRepo)

	server := apphttp.NewServer(apphttp.RouterConfig{
		Log:               log,
		VideoHandler:      handlers.NewVideoHandler(ingestService, videoService),
		QueryHandler:      handlers.NewQueryHandler(queryService),
		AnnotationHandler: handlers.NewAnnotationHandler(annotationService),
		HealthHandler:     handlers.NewHealthHandler(),
	})

	port := envutil.String("PORT", "5000")
	log.Info("Starting server", "port", port)
	if err := server.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
