package catalog

import (
	"database/sql"

	"go.uber.org/zap"

	"storefront/internal/catalog/controller"
	"storefront/internal/catalog/repository"
	"storefront/internal/catalog/service"
)

func NewModule(db *sql.DB, logger *zap.Logger) *controller.Controller {
	categoryRepo := repository.NewMySQLCategoryRepository(db)
	productRepo := repository.NewMySQLProductRepository(db)
	imageRepo := repository.NewMySQLImageRepository(db)

	svc := service.NewCatalogService(categoryRepo, productRepo, imageRepo, logger)
	return controller.NewController(svc, logger)
}
