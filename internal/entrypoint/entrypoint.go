// Package entrypoint wires the application together and runs the HTTP server.
package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shelfwise/catalog/internal/config"
	"github.com/shelfwise/catalog/internal/database"
	"github.com/shelfwise/catalog/internal/database/authors"
	"github.com/shelfwise/catalog/internal/database/books"
	"github.com/shelfwise/catalog/internal/database/publishers"
	http_controllers "github.com/shelfwise/catalog/internal/http"
	"github.com/shelfwise/catalog/internal/importers"
	"github.com/shelfwise/catalog/internal/metadata"
	"github.com/shelfwise/catalog/internal/scheduler"
	"github.com/shelfwise/catalog/internal/services"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until an interrupt, then shuts down gracefully.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run builds the whole application from configuration and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Catalog v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	authorRepo := authors.NewRepository(db.DB)
	publisherRepo := publishers.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)

	openLibraryClient := metadata.NewOpenLibraryClient(
		cfg.OpenLibrary.BaseURL,
		time.Duration(cfg.OpenLibrary.TimeoutInSeconds)*time.Second,
	)

	authorService := services.NewAuthorService(authorRepo)
	publisherService := services.NewPublisherService(publisherRepo)
	similarMaintainer := services.NewSimilarBooksMaintainer(bookRepo)
	bookService := services.NewBookService(
		bookRepo, authorService, publisherService, similarMaintainer, openLibraryClient)

	pipeline := importers.NewPipeline(authorService, publisherService, bookService)

	var metadataSync *scheduler.MetadataSyncScheduler
	if cfg.MetadataSync.Enabled {
		metadataSync = scheduler.NewMetadataSyncScheduler(bookService, cfg.MetadataSync.Schedule)
		if err := metadataSync.Start(); err != nil {
			log.Fatalf("Failed to start metadata sync scheduler: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:   db,
		Version:    version,
		Authors:    authorService,
		Publishers: publisherService,
		Books:      bookService,
		Importer:   pipeline,
	}
	// Assign only when enabled; a nil *MetadataSyncScheduler stored in the
	// interface field would not compare equal to nil.
	if metadataSync != nil {
		routerCfg.Sync = metadataSync
	}
	router := http_controllers.NewRouter(routerCfg)

	Serve(router, cfg, func(ctx context.Context) {
		if metadataSync != nil {
			metadataSync.Stop()
		}
	})
}
