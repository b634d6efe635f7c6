// Command seed populates the database with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"commons/internal/config"
	"commons/internal/database"
	"commons/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numCommunities := flag.Int("communities", 8, "Number of communities to create")
	postsPerCommunity := flag.Int("posts", 10, "Number of posts per community")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = seed.Seed(context.Background(), db, seed.Options{
		NumUsers:          *numUsers,
		NumCommunities:    *numCommunities,
		PostsPerCommunity: *postsPerCommunity,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete.")
}
