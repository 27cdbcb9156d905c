package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"storefront/internal/account"
	"storefront/internal/carrier"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/customer"
	"storefront/internal/infrastructure/auth"
	"storefront/internal/infrastructure/logger"
	"storefront/internal/infrastructure/mysql"
	"storefront/internal/order"
	"storefront/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	policy, err := cfg.Pricing.Policy()
	if err != nil {
		zapLogger.Fatal("parsing pricing policy", zap.Error(err))
	}

	db, err := mysql.NewConnection(context.Background(), cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	accounts := account.NewService(db, tokens, zapLogger)

	router := server.NewRouter(server.Controllers{
		Account:  account.NewModule(accounts, zapLogger),
		Customer: customer.NewModule(db, accounts, zapLogger),
		Carrier:  carrier.NewModule(db, accounts, zapLogger),
		Catalog:  catalog.NewModule(db, zapLogger),
		Cart:     cart.NewModule(db, policy, zapLogger),
		Order:    order.NewModule(db, cfg.Order, policy, zapLogger),
	}, tokens, account.NewAccountReader(db), db, zapLogger)

	srv := server.New(cfg.Server, router, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		zapLogger.Fatal("server error", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
