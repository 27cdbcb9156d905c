package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/account"
	carrierrepo "storefront/internal/carrier/repository"
	carrierservice "storefront/internal/carrier/service"
	catalogrepo "storefront/internal/catalog/repository"
	catalogservice "storefront/internal/catalog/service"
	"storefront/internal/commons"
	"storefront/internal/infrastructure/auth"
	"storefront/internal/infrastructure/mysql"
)

// storefrontctl migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the storefront schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		if err := mysql.Migrate(cmd.Context(), e.db); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "applied %d schema statements\n", len(mysql.Statements()))
		return nil
	},
}

var seedFile string

// storefrontctl seed --file catalog.yaml
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load categories, products, carriers and the first admin from a YAML fixture",
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, err := commons.LoadSeed(seedFile)
		if err != nil {
			return err
		}

		e, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		tokens := auth.NewTokenIssuer(e.cfg.Auth.JWTSecret, e.cfg.Auth.TokenTTL)
		accounts := account.NewService(e.db, tokens, e.logger)
		catalog := catalogservice.NewCatalogService(
			catalogrepo.NewMySQLCategoryRepository(e.db),
			catalogrepo.NewMySQLProductRepository(e.db),
			catalogrepo.NewMySQLImageRepository(e.db),
			e.logger,
		)
		carriers := carrierservice.NewCarrierService(carrierrepo.NewMySQLCarrierRepository(e.db), accounts, e.logger)

		report, err := commons.NewSeeder(catalog, carriers, accounts, e.logger).Apply(cmd.Context(), seed)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d categories, %d products, %d carriers, %d admins (%d skipped)\n",
			report.Categories, report.Products, report.Carriers, report.Admins, report.Skipped)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "catalog.yaml", "YAML fixture to load")
}
