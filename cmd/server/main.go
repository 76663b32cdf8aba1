package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/live"
	"storefront/internal/store"
	"storefront/internal/store/filestore"
	"storefront/internal/store/mongostore"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set in the environment")
	}

	var stores *store.Stores
	var mongoClient *mongo.Client

	switch cfg.StorageBackend {
	case config.BackendMongo:
		var err error
		mongoClient, err = mongostore.Connect(mongostore.Config{
			URI:      cfg.MongoURI,
			Host:     cfg.MongoHost,
			Port:     cfg.MongoPort,
			User:     cfg.MongoUser,
			Password: cfg.MongoPassword,
			DBName:   cfg.MongoDBName,
			Timeout:  cfg.MongoTimeout,
		})
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer func() {
			log.Println("Disconnecting MongoDB client...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := mongoClient.Disconnect(ctx); err != nil {
				log.Printf("Error disconnecting MongoDB client: %v", err)
			}
		}()
		stores = mongostore.New(mongoClient.Database(cfg.MongoDBName))
	case config.BackendFile:
		var err error
		stores, err = filestore.New(cfg.DataDir)
		if err != nil {
			log.Fatalf("Failed to initialize file storage in %s: %v", cfg.DataDir, err)
		}
	default:
		log.Fatalf("Unknown STORAGE_BACKEND %q (want %q or %q)", cfg.StorageBackend, config.BackendMongo, config.BackendFile)
	}
	log.Printf("Using %s storage backend", cfg.StorageBackend)

	authSvc := auth.NewService(stores.Users, stores.Carts, auth.Config{
		Secret:      cfg.JWTSecret,
		TokenTTL:    cfg.TokenTTL,
		AdminDomain: cfg.AdminEmailDomain,
	})

	feed := live.NewHub(stores.Products)
	go feed.Run()

	router := handlers.NewRouter(stores, authSvc, feed, cfg.CookieSecure)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}

	log.Println("Server exiting")
}
