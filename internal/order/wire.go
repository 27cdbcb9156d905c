package order

import (
	"database/sql"

	"go.uber.org/zap"

	carrierrepo "storefront/internal/carrier/repository"
	cartrepo "storefront/internal/cart/repository"
	catalogrepo "storefront/internal/catalog/repository"
	"storefront/internal/config"
	customerrepo "storefront/internal/customer/repository"
	"storefront/internal/domain"
	"storefront/internal/order/controller"
	orderrepo "storefront/internal/order/repository"
	"storefront/internal/order/service"
	"storefront/internal/order/usecase"
)

func NewModule(db *sql.DB, cfg config.OrderConfig, policy domain.PricingPolicy, logger *zap.Logger) *controller.Controller {
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	detailRepo := orderrepo.NewMySQLOrderDetailRepository(db)
	productRepo := catalogrepo.NewMySQLProductRepository(db)
	cartRepo := cartrepo.NewMySQLCartRepository(db)

	checkoutSvc := service.NewCheckoutService(
		db,
		productRepo,
		orderRepo,
		detailRepo,
		cartRepo,
		policy,
		logger,
		cfg.CheckoutTxTimeout,
	)

	checkout := usecase.NewCheckoutUseCase(
		cartRepo,
		customerrepo.NewMySQLCustomerRepository(db),
		checkoutSvc,
		logger,
		cfg.MaxRetryAttempts,
		usecase.DefaultRetryBackoff,
	)

	orderSvc := service.NewOrderService(
		db,
		orderRepo,
		detailRepo,
		productRepo,
		carrierrepo.NewMySQLCarrierRepository(db),
		logger,
	)

	return controller.NewController(checkout, orderSvc, logger)
}
