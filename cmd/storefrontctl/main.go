package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/infrastructure/logger"
	"storefront/internal/infrastructure/mysql"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "storefrontctl",
	Short:         "Storefront administration CLI",
	Long:          "storefrontctl prepares a storefront database: schema migration, fixture seeding and admin bootstrap.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a JSON config file")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(adminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type env struct {
	cfg    *config.Config
	db     *sql.DB
	logger *zap.Logger
}

func (e *env) Close() {
	_ = e.logger.Sync()
	_ = e.db.Close()
}

// boot loads config and opens the database connection.
func boot(ctx context.Context) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	db, err := mysql.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, db: db, logger: zapLogger}, nil
}
