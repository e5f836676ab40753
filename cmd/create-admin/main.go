package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Asmaa63/Shop-Website-sub001/internal/config"
	"github.com/Asmaa63/Shop-Website-sub001/internal/domain"
	"github.com/Asmaa63/Shop-Website-sub001/internal/repository/postgres"
)

func main() {
	emailFlag := flag.String("email", "", "Admin email address")
	nameFlag := flag.String("name", "", "Admin display name")
	passwordFlag := flag.String("password", "", "Admin password (save it; only the hash is stored)")
	flag.Parse()

	email := strings.TrimSpace(*emailFlag)
	name := strings.TrimSpace(*nameFlag)
	password := *passwordFlag

	if email == "" || name == "" || password == "" {
		fmt.Println("Usage:")
		fmt.Println("  go run cmd/create-admin/main.go --email admin@example.com --name \"Store Admin\" --password \"secret\"")
		os.Exit(1)
	}
	if len(password) < 8 {
		fmt.Fprintf(os.Stderr, "Error: password must be at least 8 characters.\n")
		os.Exit(1)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
		os.Exit(1)
	}

	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		IsAdmin:      true,
	}
	if err := repos.User.Create(context.Background(), user); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create admin user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Admin user created: %s (%s)\n", user.Email, user.ID)
}
