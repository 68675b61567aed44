// Command main fills the database with fake users, blogs and comments.
package main

import (
	"context"
	"flag"
	"log"

	"bloglist/internal/bootstrap"
	"bloglist/internal/cache"
	"bloglist/internal/config"
	"bloglist/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	numBlogs := flag.Int("blogs", 40, "Number of blogs to create")
	maxComments := flag.Int("comments", 5, "Maximum comments per blog")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 = random)")
	flag.Parse()

	log.Printf("Seeding %d users, %d blogs, up to %d comments per blog, clean=%v",
		*numUsers, *numBlogs, *maxComments, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	// The root user is created after cleaning, below.
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SkipRootUser: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() { _ = rt.Close(ctx) }()

	opts := seed.Options{
		NumUsers:    *numUsers,
		NumBlogs:    *numBlogs,
		MaxComments: *maxComments,
		ShouldClean: *shouldClean,
		RandSeed:    *randSeed,
	}
	sum, err := seed.NewSeeder(rt.DB, opts).Run(ctx, opts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	if err := bootstrap.EnsureRootUser(ctx, cfg, rt.DB); err != nil {
		log.Fatalf("Root user seeding failed: %v", err)
	}
	if err := cache.New(rt.Redis).Flush(ctx); err != nil {
		log.Printf("Cache flush failed: %v", err)
	}

	log.Printf("Done: %d users, %d blogs, %d comments", sum.Users, sum.Blogs, sum.Comments)
	log.Printf("All generated users have the password: %s", seed.DefaultPassword)
}
