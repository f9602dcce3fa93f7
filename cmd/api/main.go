package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"

	"olstudio/internal/config"
	"olstudio/internal/session"
	"olstudio/ui"
)

func main() {
	// .env is optional; real environments set variables directly
	if err := godotenv.Load(); err == nil {
		log.Printf("[Main] Loaded configuration from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] Failed to load configuration: %v", err)
	}

	store := session.NewMemoryStore()
	go sweepSessions(store, cfg.Session.TTL, cfg.Session.CleanupInterval)

	server := ui.NewServer(cfg, store)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("[Main] Server failed: %v", err)
	}
}

// sweepSessions periodically evicts idle sessions so abandoned uploads do
// not pin memory for the life of the process.
func sweepSessions(store *session.MemoryStore, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		if removed := store.CleanupExpired(ttl); removed > 0 {
			log.Printf("[Main] Evicted %d expired sessions", removed)
		}
	}
}
