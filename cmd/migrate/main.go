// cmd/migrate/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gurkanbulca/taskboard/internal/config"
	"github.com/gurkanbulca/taskboard/internal/database"
	"github.com/gurkanbulca/taskboard/internal/repository"
	"github.com/gurkanbulca/taskboard/internal/service"
	"github.com/gurkanbulca/taskboard/pkg/auth"
)

func main() {
	var (
		configPath string
		seed       bool
	)

	rootCmd := &cobra.Command{
		Use:   "taskboard-migrate",
		Short: "Create or update the task board schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, seed)
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", "", "optional config file (yaml, json or toml)")
	rootCmd.Flags().BoolVar(&seed, "seed", false, "load demo users, categories, tags and tasks")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, seed bool) error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Open(database.Config{
		Driver:   cfg.Database.Driver,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
		Path:     cfg.Database.Path,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Println("Running database migrations...")
	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Println("Migrations completed successfully")

	if !seed {
		return nil
	}

	services := service.NewServices(
		repository.NewStore(db),
		auth.NewPasswordManager(),
		auth.NewTokenManager(
			cfg.JWT.AccessSecret,
			cfg.JWT.RefreshSecret,
			cfg.JWT.AccessTokenDuration,
			cfg.JWT.RefreshTokenDuration,
		),
		cfg.Server.Environment,
	)
	if err := services.Seed(ctx); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	log.Println("Seed data loaded")
	return nil
}
