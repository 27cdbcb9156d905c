package customer

import (
	"database/sql"

	"go.uber.org/zap"

	accountservice "storefront/internal/account/service"
	"storefront/internal/customer/controller"
	"storefront/internal/customer/repository"
	"storefront/internal/customer/service"
)

func NewModule(db *sql.DB, accounts *accountservice.AccountService, logger *zap.Logger) *controller.Controller {
	repo := repository.NewMySQLCustomerRepository(db)
	svc := service.NewCustomerService(repo, accounts, logger)
	return controller.NewController(svc, logger)
}
