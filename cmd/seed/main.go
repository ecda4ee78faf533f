// Command seed runs the database seeder for Campus.
package main

import (
	"flag"
	"log"

	"campus/internal/config"
	"campus/internal/database"
	"campus/internal/seed"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	numUsers := flag.Int("users", 40, "Number of users to create")
	numModerators := flag.Int("moderators", 4, "Number of scoped moderators to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	commentsPerPost := flag.Int("comments", 4, "Maximum comments per post")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "", "Apply a seed preset: built-in name or YAML file path")
	sqlitePath := flag.String("sqlite", "", "Seed a local SQLite file instead of Postgres")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := connect(cfg, *sqlitePath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	presetName := *preset
	if presetName == "" {
		presetName = cfg.SeedPreset
	}

	if presetName != "" {
		log.Printf("Applying preset: %s (ignoring count flags)\n", presetName)
		if err := seed.SeedWithPreset(db, presetName, *shouldClean); err != nil {
			log.Fatalf("❌ Preset seeding failed: %v", err)
		}
	} else {
		log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)
		err := seed.Seed(db, seed.Options{
			NumUsers:        *numUsers,
			NumModerators:   *numModerators,
			NumPosts:        *numPosts,
			CommentsPerPost: *commentsPerPost,
			PrivateRatio:    0.2,
			MaxDays:         90,
			ShouldClean:     *shouldClean && *sqlitePath == "",
		})
		if err != nil {
			log.Fatalf("❌ Seeding failed: %v", err)
		}
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Println("📧 All seeded users have the password: password123")
}

func connect(cfg *config.Config, sqlitePath string) (*gorm.DB, error) {
	if sqlitePath == "" {
		return database.Connect(cfg)
	}

	db, err := gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
