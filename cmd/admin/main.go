// Package main provides account management utilities for AuraChat.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"aurachat/internal/config"
	"aurachat/internal/database"
	"aurachat/internal/models"
	"aurachat/internal/repository"
	"aurachat/internal/service"

	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  admin promote <user_id>                 - Grant admin rights")
	fmt.Println("  admin demote <user_id>                  - Revoke admin rights")
	fmt.Println("  admin list-admins                       - List all admins")
	fmt.Println("  admin activate <username|email>         - Re-enable an account")
	fmt.Println("  admin deactivate <username|email>       - Disable an account (blocks login)")
	fmt.Println("  admin reset-password <user_id> <new>    - Set a new password")
	fmt.Println("  admin list-users [page]                 - List accounts, 50 per page")
	fmt.Println("  admin delete-user <username|email>      - Delete an account and all its content")
}

func main() {
	if len(os.Args) < 2 {
		usage()
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

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	userService := service.NewUserService(users, repository.NewFollowRepository(db), nil, nil)
	authService := service.NewAuthService(users, service.AuthConfig{JWTSecret: cfg.JWTSecret}, nil, nil)

	command := os.Args[1]
	arg := func(i int) string {
		if len(os.Args) <= i {
			usage()
			os.Exit(1)
		}
		return os.Args[i]
	}

	switch command {
	case "promote":
		setAdmin(db, arg(2), true)
	case "demote":
		setAdmin(db, arg(2), false)
	case "list-admins":
		listAdmins(db)
	case "activate", "deactivate":
		user, err := userService.FindByLogin(ctx, arg(2))
		if err != nil {
			log.Fatalf("Lookup failed: %v", err)
		}
		active := command == "activate"
		if _, err := userService.SetActive(ctx, user.ID, active); err != nil {
			log.Fatalf("Failed to update %s: %v", user.Username, err)
		}
		fmt.Printf("✅ %s (ID: %d) active=%t\n", user.Username, user.ID, active)
	case "reset-password":
		id := parseID(arg(2))
		if err := authService.ResetPassword(ctx, id, arg(3)); err != nil {
			log.Fatalf("Failed to reset password: %v", err)
		}
		fmt.Printf("✅ Password reset for user %d\n", id)
	case "list-users":
		page := 1
		if len(os.Args) > 2 {
			page = int(parseID(os.Args[2]))
		}
		users, err := userService.List(ctx, service.Page{Page: page, PerPage: service.MaxPerPage})
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
		if len(users) == 0 {
			fmt.Println("No users on this page")
			return
		}
		for _, u := range users {
			fmt.Printf("ID: %d | Username: %s | Email: %s | active=%t admin=%t | posts=%d followers=%d\n",
				u.ID, u.Username, u.Email, u.IsActive, u.IsAdmin, u.PostsCount, u.FollowersCount)
		}
	case "delete-user":
		user, err := userService.FindByLogin(ctx, arg(2))
		if err != nil {
			log.Fatalf("Lookup failed: %v", err)
		}
		if err := userService.Delete(ctx, user.ID); err != nil {
			log.Fatalf("Failed to delete %s: %v", user.Username, err)
		}
		fmt.Printf("🗑️  Deleted %s (ID: %d) with its posts, comments, likes and follows\n", user.Username, user.ID)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
}

func parseID(raw string) uint {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		fmt.Printf("Invalid user ID %q\n", raw)
		os.Exit(1)
	}
	return uint(id)
}

func setAdmin(db *gorm.DB, rawID string, admin bool) {
	var user models.User
	if err := db.First(&user, parseID(rawID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %s not found\n", rawID)
			os.Exit(1)
		}
		log.Fatalf("Database error: %v", err)
	}

	if user.IsAdmin == admin {
		fmt.Printf("User %s (ID: %d) already has admin=%t\n", user.Username, user.ID, admin)
		return
	}

	if err := db.Model(&user).Update("is_admin", admin).Error; err != nil {
		log.Fatalf("Failed to update user: %v", err)
	}
	fmt.Printf("✅ %s (ID: %d) admin=%t\n", user.Username, user.ID, admin)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("is_admin = ?", true).Find(&admins).Error; err != nil {
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
