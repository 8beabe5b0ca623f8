package main

import (
	"context"
	"log"
	"os"

	"tripcart/internal/database"
	"tripcart/internal/pkg/clock"
	"tripcart/internal/repository"
)

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	carts := repository.NewCartRepository(db)
	purged, err := carts.PurgeExpiredGuestCarts(context.Background(), clock.NewSystem().Now())
	if err != nil {
		log.Fatalf("guest cart cleanup failed: %v", err)
	}

	log.Printf("guest cart cleanup completed: carts=%d", purged)
}
