package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/jsfrau/telegram-stickers-bot/config"
	"github.com/jsfrau/telegram-stickers-bot/internal/app"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/repository/postgres"
	"github.com/jsfrau/telegram-stickers-bot/internal/infrastructure/database"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sticker-bot",
		Short:         "Telegram bot that turns photos and videos into sticker packs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newAdminCommand())

	return rootCmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	fx.New(app.CreateApp()).Run()
	return nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadDatabase()
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := database.RunMigrations(db, cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage bot administrators",
	}

	cmd.AddCommand(newAdminSetCommand("grant", "Grant admin rights to a user", true))
	cmd.AddCommand(newAdminSetCommand("revoke", "Revoke admin rights from a user", false))

	return cmd
}

func newAdminSetCommand(use, short string, admin bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user_id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}

			db, err := openDB(config.LoadDatabase())
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := postgres.NewStore(db).SetAdmin(cmd.Context(), userID, admin); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %d: admin=%t\n", userID, admin)
			return nil
		},
	}
}

func openDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	return database.NewPostgresDB(cfg)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
