package main

import (
	"errors"
	"log"
	"time"

	"github.com/yukikurage/task-colab-api/internal/auth"
	"github.com/yukikurage/task-colab-api/internal/config"
	"github.com/yukikurage/task-colab-api/internal/database"
	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/repository"
	"github.com/yukikurage/task-colab-api/internal/services"
)

// create-admin seeds the admin account from ADMIN_EMAIL, ADMIN_PASSWORD and ADMIN_NAME.
func main() {
	cfg := config.Load()
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(database.GetDB())
	authService := services.NewAuthService(userRepo,
		auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour))

	user, err := authService.CreateUser(cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword, models.RoleAdmin)
	if errors.Is(err, services.ErrEmailTaken) {
		log.Printf("Admin %s already exists", cfg.AdminEmail)
		return
	}
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	log.Printf("Admin %s created with ID %d", user.Email, user.ID)
}
