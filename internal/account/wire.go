package account

import (
	"database/sql"

	"go.uber.org/zap"

	"storefront/internal/account/controller"
	"storefront/internal/account/repository"
	"storefront/internal/account/service"
	customerrepo "storefront/internal/customer/repository"
	"storefront/internal/infrastructure/auth"
)

// NewService builds the account service; the customer and carrier modules
// provision their accounts through it.
func NewService(db *sql.DB, tokens *auth.TokenIssuer, logger *zap.Logger) *service.AccountService {
	return service.NewAccountService(
		db,
		repository.NewMySQLAccountRepository(db),
		repository.NewMySQLAdminRepository(db),
		customerrepo.NewMySQLCustomerRepository(db),
		tokens,
		logger,
	)
}

func NewModule(svc *service.AccountService, logger *zap.Logger) *controller.Controller {
	return controller.NewController(svc, logger)
}

// NewAccountReader backs the per-request active-account check.
func NewAccountReader(db *sql.DB) *repository.MySQLAccountRepository {
	return repository.NewMySQLAccountRepository(db)
}
