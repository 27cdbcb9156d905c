package carrier

import (
	"database/sql"

	"go.uber.org/zap"

	accountservice "storefront/internal/account/service"
	"storefront/internal/carrier/controller"
	"storefront/internal/carrier/repository"
	"storefront/internal/carrier/service"
)

func NewModule(db *sql.DB, accounts *accountservice.AccountService, logger *zap.Logger) *controller.Controller {
	repo := repository.NewMySQLCarrierRepository(db)
	svc := service.NewCarrierService(repo, accounts, logger)
	return controller.NewController(svc, logger)
}
