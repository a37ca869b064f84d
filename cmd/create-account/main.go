package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mkheight/hostel-backend/internal/config"
	"github.com/mkheight/hostel-backend/internal/database"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	var (
		name     string
		email    string
		password string
		role     string
	)
	flag.StringVar(&name, "name", "", "display name (required for new accounts)")
	flag.StringVar(&email, "email", "", "account email (required)")
	flag.StringVar(&password, "password", "", "password, at least 6 characters (required for new accounts)")
	flag.StringVar(&role, "role", string(models.RoleAdmin), "role: admin, manager, reception, viewer or student")
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		flag.Usage()
		os.Exit(2)
	}
	parsedRole, err := models.ParseRole(role)
	if err != nil {
		logger.Fatal(err)
	}
	if password != "" && len(password) < 6 {
		logger.Fatal("password must be at least 6 characters")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	accounts := database.NewAccountRepository(db)
	existing, err := accounts.GetByEmail(ctx, email)
	if err != nil {
		logger.Fatalf("Failed to look up account: %v", err)
	}

	var hash string
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BcryptCost)
		if err != nil {
			logger.Fatalf("Failed to hash password: %v", err)
		}
		hash = string(h)
	}

	if existing != nil {
		existing.Role = parsedRole
		existing.IsActive = true
		if name != "" {
			existing.Name = name
		}
		if err := accounts.Update(ctx, existing); err != nil {
			logger.Fatalf("Failed to update account: %v", err)
		}
		if hash != "" {
			if err := accounts.UpdatePassword(ctx, existing.ID, hash); err != nil {
				logger.Fatalf("Failed to update password: %v", err)
			}
		}
		fmt.Printf("Updated %s: role=%s, active=true\n", email, parsedRole)
		return
	}

	if name == "" || hash == "" {
		logger.Fatal("-name and -password are required when creating a new account")
	}

	account := &models.Account{
		Name:         name,
		Email:        email,
		PasswordHash: models.NewNullString(hash),
		Role:         parsedRole,
		IsActive:     true,
	}
	if err := accounts.Create(ctx, account); err != nil {
		logger.Fatalf("Failed to create account: %v", err)
	}
	fmt.Printf("Created %s (%s) with id %s\n", email, parsedRole, account.ID)
}
