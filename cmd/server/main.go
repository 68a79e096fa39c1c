package main

import (
	"log"
	"strings"

	"collegease.app/server/internal/bootstrap"
	"collegease.app/server/internal/config"
	"collegease.app/server/internal/server"
	"collegease.app/server/pkg/database"
	"collegease.app/server/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedStaffUser(db); err != nil {
			log.Printf("staff user seed failed: %v", err)
		}
	}

	docStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
	} else {
		log.Println("REDIS_URL not set; session revocation and session events are disabled")
	}

	var meiliClient meilisearch.ServiceManager
	if cfg.MeiliMasterKey != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		meiliClient = meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	} else {
		log.Println("MEILI_MASTER_KEY not set; roster search falls back to the database")
	}

	srv := server.NewServer(cfg, db, redisClient, docStorage, meiliClient)

	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
