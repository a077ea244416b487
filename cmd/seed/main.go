package main

import (
	"context"
	"flag"
	"log"

	"admin-backend/internal/config"
	"admin-backend/internal/store"
)

func main() {
	email := flag.String("email", "admin@example.com", "email for the initial superadmin user")
	password := flag.String("password", "changeme123", "password for the initial superadmin user")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := store.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Bootstrap(ctx); err != nil {
		log.Fatalf("Failed to bootstrap system tables: %v", err)
	}

	if err := db.Seed(ctx, *email, *password); err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}
	log.Printf("Seeded roles, permissions and superadmin user %s", *email)
}
