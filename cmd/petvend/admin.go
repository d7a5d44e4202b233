package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/petvend/site/internal/auth"
	"github.com/petvend/site/internal/storage/sqlite"
)

var (
	adminEmail string
	adminName  string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts for the lead dashboard",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	Long: `Creates an admin account in the configured database. The password is read
from ADMIN_PASSWORD.

Example:
  DB_PATH=data/petvend.db ADMIN_PASSWORD=... petvend admin create --email ops@petvend.example`,
	RunE: runAdminCreate,
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "admin email")
	adminCreateCmd.Flags().StringVar(&adminName, "name", "Admin", "display name")
	_ = adminCreateCmd.MarkFlagRequired("email")

	adminCmd.AddCommand(adminCreateCmd)
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	if cfg.Database.Path == "" {
		return errors.New("no database configured; set DB_PATH or database.path")
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		return errors.New("ADMIN_PASSWORD is not set")
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	user, err := auth.NewPasswordAuthenticator(store).Register(cmd.Context(), adminEmail, adminName, password)
	if err != nil {
		return err
	}
	logger.Info("Admin created", "user_id", user.ID, "email", user.Email)
	cmd.Printf("Created admin %s (%s)\n", user.Email, user.ID)
	return nil
}
