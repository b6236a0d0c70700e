package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/property-listing/internal/config"     // Internal config loader
	"github.com/iliyamo/property-listing/internal/database"   // MySQL and MongoDB connections
	"github.com/iliyamo/property-listing/internal/geocode"    // Address resolution client
	"github.com/iliyamo/property-listing/internal/handler"    // HTTP handlers
	"github.com/iliyamo/property-listing/internal/middleware" // Redis cache and rate limiting
	"github.com/iliyamo/property-listing/internal/queue"      // Listing event consumer
	"github.com/iliyamo/property-listing/internal/repository" // Data access layer
	"github.com/iliyamo/property-listing/internal/router"     // Route registration
	"github.com/iliyamo/property-listing/internal/storage"    // Photo object storage
)

func main() {
	_ = godotenv.Load() // Load .env if present; real env vars win

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName) // Connect to MySQL (accounts)
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	defer db.Close()

	mdb, err := database.OpenMongo(cfg.MongoURI, cfg.MongoDB) // Connect to MongoDB (listings)
	if err != nil {
		log.Fatalf("mongo: %v", err)
	}

	users := repository.NewUserRepo(db)        // Account store
	tokens := repository.NewTokenRepo(db)      // Refresh token store
	listings := repository.NewListingRepo(mdb) // Listing document store

	geocoder := geocode.NewClient(cfg.GeocoderURL, cfg.GeocoderEnabled) // Address resolution

	var photos *storage.PhotoStore // Photo storage stays nil when unconfigured
	if cfg.MinioEndpoint != "" {
		photos, err = storage.NewPhotoStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioPublicURL, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("photo storage: %v", err)
		}
	}

	authH := handler.NewAuthHandler(cfg, users, tokens)     // Auth endpoints
	propH := handler.NewPropertyHandler(listings, geocoder) // Listing CRUD
	geoH := handler.NewGeocodeHandler(geocoder)             // Manual geocoding
	var photoH *handler.PhotoHandler
	if photos != nil {
		photoH = handler.NewPhotoHandler(photos, listings) // Photo upload
	}

	e := echo.New() // Create Echo instance

	// Cache and rate limiting go on the protected group behind JWTAuth, so
	// their per-user keys see the resolved identity, never "guest".
	var protected []echo.MiddlewareFunc
	rdb := config.NewRedisClient() // Redis for cache and rate limiting
	if rdb != nil {
		protected = append(protected, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)) // Per-user token bucket
		protected = append(protected, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))      // GET response cache
	}

	router.RegisterRoutes(e)                                                       // Health check
	router.RegisterAuth(e, authH, cfg.JWTSecret)                                   // Auth routes
	router.RegisterProperties(e, propH, geoH, photoH, cfg.JWTSecret, protected...) // Listing routes

	go func() { // Listing event consumer; reconnects on broker loss
		if err := queue.StartListingConsumer(); err != nil {
			log.Printf("listing consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
