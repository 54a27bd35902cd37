// Command seed fills a Warbler database with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"warbler/internal/config"
	"warbler/internal/credentials"
	"warbler/internal/database"
	"warbler/internal/repository"
	"warbler/internal/seed"
	"warbler/internal/service"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of random users to create")
	numMessages := flag.Int("messages", 5, "Messages per random user")
	numFollows := flag.Int("follows", 4, "Follows per random user")
	numLikes := flag.Int("likes", 6, "Likes per random user")
	randSeed := flag.Int64("seed", 0, "Random seed, 0 picks one")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	presetPath := flag.String("preset", "", "YAML preset file (overrides the random flags)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	preset := seed.DefaultPreset()
	if *presetPath != "" {
		log.Printf("Applying preset %s", *presetPath)
		if preset, err = seed.LoadPreset(*presetPath); err != nil {
			log.Fatalf("Failed to load preset: %v", err)
		}
	} else {
		preset.Random = seed.RandomSettings{
			Users:           *numUsers,
			MessagesPerUser: *numMessages,
			FollowsPerUser:  *numFollows,
			LikesPerUser:    *numLikes,
			Seed:            *randSeed,
		}
	}

	store := repository.NewStore(db)
	users := service.NewUserService(store, credentials.NewHasher(cfg.BcryptCost))
	s := seed.NewSeeder(store, users, service.NewMessageService(store))

	ctx := context.Background()
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	res, err := s.Apply(ctx, preset)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d messages, %d follows, %d likes", res.Users, res.Messages, res.Follows, res.Likes)
	log.Printf("Random users have the password: %s", seed.DefaultPassword)
}
