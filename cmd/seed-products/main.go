package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Asmaa63/Shop-Website-sub001/internal/config"
	"github.com/Asmaa63/Shop-Website-sub001/internal/domain"
	"github.com/Asmaa63/Shop-Website-sub001/internal/repository/postgres"
)

type seedProduct struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ImageURL    string `json:"image_url"`
	Stock       int    `json:"stock"`
}

func main() {
	fileFlag := flag.String("file", "seed/products.json", "Path to a JSON array of products")
	flag.Parse()

	data, err := os.ReadFile(*fileFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read seed file: %v\n", err)
		os.Exit(1)
	}

	var seeds []seedProduct
	if err := json.Unmarshal(data, &seeds); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse seed file: %v\n", err)
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
	ctx := context.Background()

	created := 0
	for _, seed := range seeds {
		price, err := decimal.NewFromString(seed.Price)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %q: bad price %q\n", seed.Name, seed.Price)
			continue
		}

		product := &domain.Product{
			Name:        seed.Name,
			Description: seed.Description,
			Price:       price,
			ImageURL:    seed.ImageURL,
			Stock:       seed.Stock,
			IsActive:    true,
		}
		if err := repos.Product.Create(ctx, product); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %q: %v\n", seed.Name, err)
			continue
		}
		created++
	}

	fmt.Printf("Seeded %d/%d products\n", created, len(seeds))
}
