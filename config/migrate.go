package config

import (
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	entity "plmsync.GO/model/entity"
	"plmsync.GO/model/entity/plm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Models lists every table the connector owns.
func Models() []interface{} {
	return []interface{}{&entity.Configuration{}, &entity.SyncRule{}, &plm.SourceItem{}}
}

// Migrate brings the schema up to date. MySQL runs the versioned SQL
// migrations; SQLite (local runs and tests) uses gorm AutoMigrate.
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() != "mysql" {
		return db.AutoMigrate(Models()...)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}
	driver, err := migratemysql.WithInstance(sqlDB, &migratemysql.Config{})
	if err != nil {
		return fmt.Errorf("migrations driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "mysql", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	v, _, _ := m.Version()
	log.Printf("Schema at migration version %d", v)
	return nil
}
