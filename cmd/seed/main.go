// Command seed fills the AuraChat database with demo users, posts and activity.
package main

import (
	"flag"
	"log"
	"strings"

	"aurachat/internal/config"
	"aurachat/internal/database"
	"aurachat/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	follows := flag.Int("follows", 8, "Follows created per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "", "Apply a named preset (Minimal, Standard, MegaPopulated)")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing it")
	fastHash := flag.Bool("fast-hash", false, "Hash the demo password with the minimum bcrypt cost")
	maxDays := flag.Int("days", 90, "Spread post timestamps over this many days")
	list := flag.Bool("list", false, "List presets and exit")
	flag.Parse()

	if *list {
		for _, p := range seed.Presets() {
			log.Printf("%-14s users=%d posts=%d follows=%d  %s", p.Name, p.Users, p.Posts, p.FollowsPerUser, p.Description)
		}
		return
	}

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	if *preset != "" {
		log.Printf("Applying preset: %s (ignoring count flags)\n", *preset)
	} else {
		log.Printf("Target: %d users, %d posts, %d follows/user, clean=%v\n", *numUsers, *numPosts, *follows, *shouldClean)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if strings.EqualFold(cfg.Env, "production") && !*dryRun {
		log.Fatal("❌ Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{DryRun: *dryRun, SkipBcrypt: *fastHash, MaxDays: *maxDays})

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if *preset != "" {
		if err := s.ApplyPreset(*preset); err != nil {
			log.Fatalf("❌ Preset seeding failed: %v", err)
		}
	} else {
		users, err := s.SeedUsers(*numUsers)
		if err != nil {
			log.Fatalf("❌ User seeding failed: %v", err)
		}
		if _, err := s.SeedFollows(users, *follows); err != nil {
			log.Fatalf("❌ Follow seeding failed: %v", err)
		}
		if _, err := s.SeedEngagement(users, *numPosts); err != nil {
			log.Fatalf("❌ Engagement seeding failed: %v", err)
		}
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 All test users have the password: %s", seed.DemoPassword)
}
