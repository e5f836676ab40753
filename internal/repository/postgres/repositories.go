package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/Asmaa63/Shop-Website-sub001/internal/repository"
)

// NewRepositories creates all postgres repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		User:         NewUserRepository(db, logger),
		Session:      NewSessionRepository(db, logger),
		Product:      NewProductRepository(db, logger),
		Order:        NewOrderRepository(db, logger),
		WebhookEvent: NewWebhookEventRepository(db, logger),
	}
}
