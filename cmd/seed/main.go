package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/account-service/config"
	"github.com/oksasatya/account-service/internal/container"
	"github.com/oksasatya/account-service/internal/domain/entity"
	repo "github.com/oksasatya/account-service/internal/domain/repository"
	"github.com/oksasatya/account-service/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, closeStore, err := container.OpenUserRepository(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open credential store: %v", err)
	}
	defer closeStore()

	email := "demo@example.com"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	u := &entity.User{
		Name:            "Demo User",
		Email:           email,
		PasswordHash:    hash,
		Gender:          entity.GenderOther,
		DOB:             time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
		Profile:         entity.Profile{Username: "demo_user", Bio: "Seeded account"},
		IsEmailVerified: true,
	}
	err = users.Insert(ctx, u)
	switch {
	case errors.Is(err, repo.ErrDuplicateEmail), errors.Is(err, repo.ErrDuplicateUsername):
		fmt.Printf("demo user already present: email=%s\n", email)
		return
	case err != nil:
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", u.ID, email, u.Profile.Username, password)
}
