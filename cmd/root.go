package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"plmsync.GO/config"
	"plmsync.GO/core/lock"
	entity "plmsync.GO/model/entity"
	settingsRepo "plmsync.GO/model/repository/settings"
	"plmsync.GO/service/erpsync"
)

var rootCmd = &cobra.Command{
	Use:   "plmsync",
	Short: "PLM to ERP product sync",
}

// Execute applies registered commands and runs the CLI.
func Execute() {
	Apply()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDB connects and migrates the database for a command.
func openDB() (*gorm.DB, error) {
	config.LoadAppConfig()
	config.InitRedis(context.Background())
	db, err := config.NewDB()
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := config.Migrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}

func settingsFor(db *gorm.DB) *settingsRepo.SettingsRepository {
	return settingsRepo.NewSettingsRepository(db, lock.New(config.RedisClient))
}

// newEngine loads the stored configuration and builds an engine for it.
func newEngine(ctx context.Context) (*erpsync.Engine, entity.Configuration, error) {
	db, err := openDB()
	if err != nil {
		return nil, entity.Configuration{}, err
	}
	cfg, err := settingsFor(db).Get(ctx)
	if err != nil {
		return nil, entity.Configuration{}, fmt.Errorf("load configuration: %w", err)
	}
	return erpsync.Build(db, cfg, config.LoadAppConfig()), cfg, nil
}
