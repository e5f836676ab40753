package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Asmaa63/Shop-Website-sub001/internal/config"
	"github.com/Asmaa63/Shop-Website-sub001/internal/repository/postgres"
)

func main() {
	limitFlag := flag.Int("limit", 50, "Maximum number of orders to list")
	flag.Parse()

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

	orders, err := repos.Order.ListAll(context.Background(), *limitFlag, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list orders: %v\n", err)
		os.Exit(1)
	}

	if len(orders) == 0 {
		fmt.Println("No orders found.")
		return
	}

	for _, order := range orders {
		owner := "guest"
		if order.UserID != nil {
			owner = order.UserID.String()
		}
		fmt.Printf("%s  %-10s  %8s  %-36s  %s  (%d items)\n",
			order.CreatedAt.Format("2006-01-02 15:04"),
			order.Status,
			order.TotalAmount.StringFixed(2),
			owner,
			order.ID,
			len(order.Items),
		)
	}
}
