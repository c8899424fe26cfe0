// Command seed loads the language list and, optionally, demo forum content.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"polyglot/internal/config"
	"polyglot/internal/database"
	"polyglot/internal/seed"
)

func main() {
	demo := flag.Bool("demo", false, "Also create demo users, posts, replies and votes")
	numUsers := flag.Int("users", 10, "Number of demo users")
	numPosts := flag.Int("posts", 40, "Number of demo posts")
	replies := flag.Int("replies", 3, "Maximum replies per demo post")
	votes := flag.Int("votes", 5, "Maximum votes per demo post")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible demo data (0 = random)")
	tokenFor := flag.String("token", "", "Print an identity-provider token for this username and exit")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	if *tokenFor != "" {
		token, err := seed.ExternalToken(ctx, db, cfg.ExternalAuthSecret, cfg.ExternalAuthIssuer, *tokenFor, 24*time.Hour)
		if err != nil {
			log.Fatalf("Token issue failed: %v", err)
		}
		fmt.Println(token)
		return
	}

	added, err := seed.Languages(ctx, db)
	if err != nil {
		log.Fatalf("Language seeding failed: %v", err)
	}
	log.Printf("languages: %d added", added)

	if !*demo {
		return
	}

	stats, err := seed.Demo(ctx, db, seed.DemoOptions{
		Users:          *numUsers,
		Posts:          *numPosts,
		RepliesPerPost: *replies,
		VotesPerPost:   *votes,
		Seed:           *randSeed,
	})
	if err != nil {
		log.Fatalf("Demo seeding failed: %v", err)
	}
	log.Printf("demo: %d users, %d posts, %d replies, %d reactions", stats.Users, stats.Posts, stats.Replies, stats.Reactions)
	log.Printf("demo users sign in with password %q", seed.DemoPassword)
}
