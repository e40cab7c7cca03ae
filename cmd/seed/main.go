// Command main runs the database seeder for Inkwell.
package main

import (
	"context"
	"flag"
	"log"

	"inkwell/internal/bootstrap"
	"inkwell/internal/config"
	"inkwell/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	numPosts := flag.Int("posts", defaults.NumPosts, "Number of posts to create")
	maxFollows := flag.Int("follows", defaults.MaxFollows, "Maximum accounts each user follows")
	maxComments := flag.Int("comments", defaults.MaxComments, "Maximum comments per published post")
	drafts := flag.Float64("drafts", defaults.DraftRatio, "Share of posts left as drafts")
	shouldClean := flag.Bool("clean", defaults.ShouldClean, "Clean database before seeding")
	randomSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 = random)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = rt.Close(context.Background()) }()

	s, err := seed.NewSeeder(rt.DB, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		MaxFollows:  *maxFollows,
		MaxComments: *maxComments,
		DraftRatio:  *drafts,
		ShouldClean: *shouldClean,
		RandomSeed:  *randomSeed,
	})
	if err != nil {
		log.Fatalf("Failed to create seeder: %v", err)
	}

	sum, err := s.Run(context.Background())
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d posts, %d comments, %d replies", sum.Users, sum.Posts, sum.Comments, sum.Replies)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
