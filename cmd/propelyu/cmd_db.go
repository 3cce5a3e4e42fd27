package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/propelyu/pkg/database"
)

var adminName, adminEmail, adminPassword string

// propelyu db:indexes
var dbIndexesCmd = &cobra.Command{
	Use:   "db:indexes",
	Short: "Create the MongoDB indexes the application relies on",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Connect(cmd.Context()); err != nil {
			return err
		}
		defer database.Disconnect(cmd.Context()) //nolint:errcheck

		if err := database.EnsureIndexes(cmd.Context(), database.DB); err != nil {
			return err
		}
		for col, idx := range database.Indexes() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d index(es) ensured\n", col, len(idx))
		}
		return nil
	},
}

// propelyu user:create-admin
var createAdminCmd = &cobra.Command{
	Use:   "user:create-admin",
	Short: "Create an admin account (admins cannot self-register)",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer shutdown(k)

		u, err := k.Users.CreateAdmin(cmd.Context(), adminName, adminEmail, adminPassword)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Admin %s created with id %s\n", u.Email, u.ID.Hex())
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "admin", "Username")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Email address")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Password (8+ chars, upper, lower, digit, special)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}
