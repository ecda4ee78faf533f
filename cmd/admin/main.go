// Package main provides operator management utilities for Campus.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"campus/internal/config"
	"campus/internal/database"
	"campus/internal/models"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin promote <user_id>              - Promote user to admin")
		fmt.Println("  go run ./cmd/admin demote <user_id>               - Demote user to regular user")
		fmt.Println("  go run ./cmd/admin assign <user_id> <school_id>   - Make user a moderator scoped to a school")
		fmt.Println("  go run ./cmd/admin unlock <user_id>               - Clear a login lockout")
		fmt.Println("  go run ./cmd/admin list-admins                    - List all admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	command := os.Args[1]

	switch command {
	case "promote":
		requireArgs(3, "promote <user_id>")
		setRole(db, os.Args[2], models.UserRoleAdmin)

	case "demote":
		requireArgs(3, "demote <user_id>")
		setRole(db, os.Args[2], models.UserRoleUser)

	case "assign":
		requireArgs(4, "assign <user_id> <school_id>")
		assignModerator(db, os.Args[2], os.Args[3])

	case "unlock":
		requireArgs(3, "unlock <user_id>")
		unlockAccount(db, os.Args[2])

	case "list-admins":
		listAdmins(db)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func requireArgs(n int, usage string) {
	if len(os.Args) < n {
		fmt.Printf("Usage: go run ./cmd/admin %s\n", usage)
		os.Exit(1)
	}
}

func loadUser(db *gorm.DB, userID string) *models.User {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %s not found\n", userID)
		} else {
			log.Fatalf("Database error: %v", err)
		}
		os.Exit(1)
	}
	return &user
}

func setRole(db *gorm.DB, userID string, role models.UserRole) {
	user := loadUser(db, userID)

	if user.Role == role {
		fmt.Printf("User %s (ID: %d) already has role %s\n", user.Username, user.ID, role)
		return
	}

	user.Role = role
	if err := db.Save(user).Error; err != nil {
		log.Fatalf("Failed to update role: %v", err)
	}

	// a demoted moderator keeps no scope
	if role == models.UserRoleUser {
		if err := db.Where("moderator_id = ?", user.ID).
			Delete(&models.ModeratorAssignment{}).Error; err != nil {
			log.Fatalf("Failed to drop moderator assignment: %v", err)
		}
	}

	fmt.Printf("✅ Set role of %s (ID: %d) to %s\n", user.Username, user.ID, role)
}

func assignModerator(db *gorm.DB, userID, schoolID string) {
	user := loadUser(db, userID)

	sid, err := strconv.ParseUint(schoolID, 10, 32)
	if err != nil {
		log.Fatalf("Invalid school id %q", schoolID)
	}
	var school models.School
	if err := db.First(&school, sid).Error; err != nil {
		log.Fatalf("School with ID %s not found", schoolID)
	}

	if !user.IsModerator() {
		user.Role = models.UserRoleModerator
		if err := db.Save(user).Error; err != nil {
			log.Fatalf("Failed to promote user: %v", err)
		}
	}

	assignment := models.ModeratorAssignment{ModeratorID: user.ID, SchoolID: &school.ID}
	err = db.Where("moderator_id = ?", user.ID).
		Assign(models.ModeratorAssignment{SchoolID: &school.ID}).
		FirstOrCreate(&assignment).Error
	if err != nil {
		log.Fatalf("Failed to save assignment: %v", err)
	}

	fmt.Printf("✅ %s (ID: %d) now moderates %s (ID: %d)\n", user.Username, user.ID, school.Name, school.ID)
}

func unlockAccount(db *gorm.DB, userID string) {
	user := loadUser(db, userID)

	err := db.Model(&models.LoginState{}).
		Where("user_id = ?", user.ID).
		Updates(map[string]interface{}{"failed_attempts": 0, "locked_until": nil}).Error
	if err != nil {
		log.Fatalf("Failed to unlock account: %v", err)
	}

	fmt.Printf("✅ Cleared lockout state for %s (ID: %d)\n", user.Username, user.ID)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("role = ?", models.UserRoleAdmin).Find(&admins).Error; err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found in the system")
		return
	}

	fmt.Println("\n📋 Current Admins:")
	fmt.Println("─────────────────────────────────────")
	for _, admin := range admins {
		fmt.Printf("ID: %d | Username: %s | Email: %s\n", admin.ID, admin.Username, admin.Email)
	}
	fmt.Println("─────────────────────────────────────")
}
