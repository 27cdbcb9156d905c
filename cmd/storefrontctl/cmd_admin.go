package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/account"
	accountservice "storefront/internal/account/service"
	"storefront/internal/domain"
	"storefront/internal/infrastructure/auth"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var (
	adminUsername string
	adminPassword string
	adminName     string
	adminEmail    string
)

// storefrontctl admin create --username --password --name
var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		tokens := auth.NewTokenIssuer(e.cfg.Auth.JWTSecret, e.cfg.Auth.TokenTTL)
		accounts := account.NewService(e.db, tokens, e.logger)

		admin, err := accounts.CreateAdmin(cmd.Context(),
			accountservice.Credentials{Username: adminUsername, Password: adminPassword},
			domain.Admin{FullName: adminName, Email: adminEmail},
		)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (id %d)\n", admin.Username, admin.ID)
		return nil
	},
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminUsername, "username", "", "login name")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "initial password")
	adminCreateCmd.Flags().StringVar(&adminName, "name", "", "full name")
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "contact email")
	_ = adminCreateCmd.MarkFlagRequired("username")
	_ = adminCreateCmd.MarkFlagRequired("password")
	_ = adminCreateCmd.MarkFlagRequired("name")

	adminCmd.AddCommand(adminCreateCmd)
}
