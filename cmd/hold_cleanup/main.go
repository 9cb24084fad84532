package main

import (
	"log"
	"os"

	"staybook/internal/database"
)

// One-shot reclaim of expired holds, for ops use and external
// schedulers. The API process runs the same sweep in-process via cron.
func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	res := db.Exec(`DELETE FROM holds WHERE expires_at < CURRENT_TIMESTAMP`)
	if res.Error != nil {
		log.Fatalf("cleanup holds failed: %v", res.Error)
	}

	log.Printf("hold cleanup completed: holds=%d", res.RowsAffected)
}
