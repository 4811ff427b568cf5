package main

import (
	"fmt"
	"time"

	"github.com/geocoder89/sharpexec/internal/config"
	"github.com/geocoder89/sharpexec/internal/db"
	"github.com/geocoder89/sharpexec/internal/repo/postgres"
	"github.com/spf13/cobra"
)

func seedAdminCmd() *cobra.Command {
	var (
		email   string
		name    string
		role    string
		migrate bool
	)

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the admin user if it does not exist",
		Long: `Create the admin user from ADMIN_EMAIL / ADMIN_PASSWORD (or flags).
An existing user with the same email is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if email != "" {
				cfg.AdminEmail = email
			}
			if name != "" {
				cfg.AdminName = name
			}
			if role != "" {
				cfg.AdminRole = role
			}

			if cfg.AdminPassword == "" {
				pw, err := promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), "Admin password: ")
				if err != nil {
					return err
				}
				cfg.AdminPassword = pw
			}

			ctx, cancel := config.WithTimeout(30 * time.Second)
			defer cancel()

			pool, err := db.NewPool(ctx, cfg.DBURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if migrate {
				if err := db.Migrate(ctx, pool); err != nil {
					return err
				}
			}

			created, err := db.EnsureAdminUser(ctx, postgres.NewUsersRepo(pool, nil), cfg)
			if err != nil {
				return err
			}

			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", cfg.AdminEmail, cfg.AdminRole)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", cfg.AdminEmail)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email (default $ADMIN_EMAIL)")
	cmd.Flags().StringVar(&name, "name", "", "display name (default $ADMIN_NAME)")
	cmd.Flags().StringVar(&role, "role", "", "ADMIN or EDITOR (default $ADMIN_ROLE)")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply migrations first")

	return cmd
}
