package cart

import (
	"database/sql"

	"go.uber.org/zap"

	"storefront/internal/cart/controller"
	"storefront/internal/cart/repository"
	"storefront/internal/cart/service"
	catalogrepo "storefront/internal/catalog/repository"
	"storefront/internal/domain"
)

func NewModule(db *sql.DB, policy domain.PricingPolicy, logger *zap.Logger) *controller.Controller {
	cartRepo := repository.NewMySQLCartRepository(db)
	productRepo := catalogrepo.NewMySQLProductRepository(db)
	svc := service.NewCartService(cartRepo, productRepo, policy, logger)
	return controller.NewController(svc, logger)
}
