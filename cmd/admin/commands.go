package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yigit/altklausuren/internal/app/models"
	"github.com/yigit/altklausuren/internal/app/repositories"
	"github.com/yigit/altklausuren/internal/config"
	"github.com/yigit/altklausuren/internal/db"
	"github.com/yigit/altklausuren/internal/pkg/auth"
	"github.com/yigit/altklausuren/internal/pkg/logger"
)

var errPasswordRequired = errors.New("--password is required")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Manage the upload account of the exam archive",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCreateCmd(), newHashCmd())
	return root
}

func newCreateCmd() *cobra.Command {
	var (
		configPath string
		username   string
		password   string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create or replace the admin user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return errPasswordRequired
			}
			if strings.TrimSpace(username) == "" {
				return errors.New("--username must not be empty")
			}

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			logger.Configure(logger.Config{
				Level:  logger.ParseLevel(cfg.Logging.Level),
				Pretty: true,
				Output: cmd.ErrOrStderr(),
			})

			return createAdmin(cmd.Context(), cfg, username, password)
		},
	}

	defaultConfig := filepath.Join("configs", "config.yaml")
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		defaultConfig = p
	}
	cmd.Flags().StringVar(&configPath, "config", defaultConfig, "path to the YAML configuration")
	cmd.Flags().StringVarP(&username, "username", "u", "admin", "login name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "plain-text password")
	return cmd
}

func newHashCmd() *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Print a bcrypt hash and a matching INSERT statement",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return errPasswordRequired
			}
			return printHash(cmd.OutOrStdout(), auth.NewBcryptHasher(auth.BcryptCost), username, password)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "admin", "login name used in the SQL statement")
	cmd.Flags().StringVarP(&password, "password", "p", "", "plain-text password")
	return cmd
}

func printHash(w io.Writer, hasher auth.PasswordHasher, username, password string) error {
	hash, err := hasher.Hash(password)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Hash: %s\n\n", hash)
	fmt.Fprintln(w, "SQL:")
	fmt.Fprintf(w, "INSERT INTO users (username, password_hash) VALUES ('%s', '%s') ON CONFLICT (username) DO NOTHING;\n",
		strings.ReplaceAll(username, "'", "''"), hash)
	return nil
}

func createAdmin(ctx context.Context, cfg *config.Config, username, password string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Ping(ctx); err != nil {
		return err
	}
	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(); err != nil {
			return err
		}
	}

	hash, err := auth.NewBcryptHasher(auth.BcryptCost).Hash(password)
	if err != nil {
		return err
	}

	repos := repositories.NewRepositories(database.Pool)
	err = repos.Transactor.WithinTransaction(ctx, func(ctx context.Context, tx repositories.TxRepositories) error {
		deleted, err := tx.Users.DeleteByUsername(ctx, username)
		if err != nil {
			return err
		}
		if deleted {
			logger.Info().Str("username", username).Msg("Existing user removed")
		}
		_, err = tx.Users.Create(ctx, &models.User{Username: username, PasswordHash: hash})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to store admin user: %w", err)
	}

	user, err := repos.UserRepository.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to verify admin user: %w", err)
	}

	logger.Info().
		Int64("id", user.ID).
		Str("username", user.Username).
		Int("hashLength", len(user.PasswordHash)).
		Msg("Admin user created")
	return nil
}
