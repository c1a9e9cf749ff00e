package database

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/yukikurage/crm-api/internal/config"
	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// activeUniqueIndexes enforce uniqueness among non-archived rows at the storage layer.
var activeUniqueIndexes = []struct {
	table   string
	name    string
	columns string
}{
	{"users", "ux_users_username_active", "username"},
	{"users", "ux_users_email_active", "email"},
	{"customers", "ux_customers_email_active", "email"},
	{"products", "ux_products_name_active", "name"},
}

// Models lists every table managed by AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&models.Role{},
		&models.User{},
		&models.Customer{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	}
}

// Migrate brings the schema up to date. Postgres uses the versioned goose
// migrations; MySQL and SQLite use AutoMigrate.
func Migrate(ctx context.Context, db *gorm.DB, driver string) error {
	log := zerolog.Ctx(ctx)
	log.Info().Str("driver", driver).Msg("running database migrations")

	switch driver {
	case config.DriverPostgres:
		if err := runGoose(ctx, db); err != nil {
			return err
		}
	default:
		if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		if err := AddActiveUniqueIndexes(ctx, db, driver); err != nil {
			return fmt.Errorf("failed to add indexes: %w", err)
		}
	}

	log.Info().Msg("database migrations completed")
	return nil
}

func runGoose(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql pool: %w", err)
	}
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// AddActiveUniqueIndexes creates the partial unique indexes on drivers that
// support them. MySQL has no partial indexes, so there the application
// pre-check is the only guard and concurrent creates can race.
func AddActiveUniqueIndexes(ctx context.Context, db *gorm.DB, driver string) error {
	log := zerolog.Ctx(ctx)

	if driver == config.DriverMySQL {
		log.Warn().Msg("mysql cannot enforce uniqueness among active rows; relying on application checks")
		return nil
	}

	for _, idx := range activeUniqueIndexes {
		sql := fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s) WHERE archived = false",
			idx.name, idx.table, idx.columns)
		if err := db.WithContext(ctx).Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
		log.Debug().Str("index", idx.name).Str("table", idx.table).Msg("ensured active unique index")
	}
	return nil
}
