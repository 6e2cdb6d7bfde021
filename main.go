package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/assetdeck/assetdeck/pkg/api/handler"
	"github.com/assetdeck/assetdeck/pkg/autotag"
	"github.com/assetdeck/assetdeck/pkg/events"
	"github.com/assetdeck/assetdeck/pkg/metadata/repository"
	"github.com/assetdeck/assetdeck/pkg/metrics"
	"github.com/assetdeck/assetdeck/pkg/middleware"
	"github.com/assetdeck/assetdeck/pkg/query"
	"github.com/assetdeck/assetdeck/pkg/search"
	"github.com/assetdeck/assetdeck/pkg/session"
	"github.com/assetdeck/assetdeck/pkg/storage"
	"github.com/assetdeck/assetdeck/pkg/tags"
	"github.com/assetdeck/assetdeck/pkg/thumbnail"
	"github.com/assetdeck/assetdeck/pkg/upload"
	"github.com/assetdeck/assetdeck/pkg/view"
)

func main() {
	config := LoadConfig()
	logger := log.New(os.Stdout, "[AssetDeck] ", log.LstdFlags)

	db, err := repository.NewDB(config.Storage.Database)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	store, err := buildStore(config)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}

	feed := events.NewFeed()
	tracker := upload.NewTracker()
	stats := metrics.NewCollector()
	thumbs := thumbnail.NewGenerator(store, config.Thumbnails.FFmpegPath)

	var webhook upload.Notifier
	if config.AutoTagging.WebhookURL != "" {
		webhook = autotag.NewClient(config.AutoTagging.WebhookURL, db.Files())
		logger.Printf("Auto-tagging webhook enabled")
	}

	pipeline := upload.NewPipeline(store, db.Files(), thumbs, tracker, webhook, feed)

	loader := query.NewLoader(db.Files(), query.DefaultPerPage)
	loader.SetStats(stats)

	api := handler.NewAPI(handler.Deps{
		APIKey:   config.API.Key,
		Store:    store,
		DB:       db,
		Prefs:    session.NewPreferences(db.Preferences()),
		Pipeline: pipeline,
		Tracker:  tracker,
		Loader:   loader,
		Searcher: search.NewService(db.Files(), nil),
		Tags:     tags.NewService(db.Files(), feed),
		Views:    view.NewController(),
		Feed:     feed,
		Stats:    stats,
	})

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging(logger))
	router.Use(middleware.SecurityHeaders())
	if config.API.CORSOrigin != "" {
		router.Use(middleware.CORS(config.API.CORSOrigin))
	}
	router.Use(metrics.Middleware(stats))

	// Local backend serves the stored bytes itself; S3 URLs point at the
	// bucket directly.
	if config.Storage.Backend == "local" {
		router.Static("/files", config.Storage.Path)
	}

	api.RegisterRoutes(router)

	logger.Printf("Starting server on port %s", config.API.Port)
	if err := router.Run(":" + config.API.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func buildStore(config *Config) (storage.ObjectStore, error) {
	if config.Storage.Backend == "s3" {
		return storage.NewS3Store(config.Storage.S3)
	}
	return storage.NewLocalStore(config.Storage.Path, config.Storage.BaseURL)
}
