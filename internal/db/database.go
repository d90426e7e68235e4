package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bookforge/bookforge-backend/internal/domain"
	"github.com/bookforge/bookforge-backend/internal/platform/envutil"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
)

type Service struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

// New opens the configured database. Postgres is the production driver;
// DB_DRIVER=sqlite serves local development and CI.
func New(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "Database")

	driver := strings.ToLower(envutil.String("DB_DRIVER", "postgres"))

	var (
		gdb *gorm.DB
		err error
	)
	switch driver {
	case "sqlite":
		path := envutil.String("SQLITE_PATH", "bookforge.db")
		gdb, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	case "postgres":
		dsn := PostgresDSN()
		gdb, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
		})
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if driver == "postgres" {
		if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
			return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
		}
	}

	return &Service{db: gdb, driver: driver, log: serviceLog}, nil
}

// PostgresDSN assembles the connection string from environment variables.
func PostgresDSN() string {
	host := envutil.String("POSTGRES_HOST", "localhost")
	port := envutil.String("POSTGRES_PORT", "5432")
	user := envutil.String("POSTGRES_USER", "postgres")
	password := envutil.String("POSTGRES_PASSWORD", "")
	name := envutil.String("POSTGRES_NAME", "bookforge")
	sslmode := envutil.String("POSTGRES_SSLMODE", "disable")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, name, sslmode)
}

// AutoMigrateAll keeps gorm models in sync for drivers where the SQL
// migrations do not run (sqlite). On postgres the migrations own the schema
// and this is a no-op safety net for additive columns.
func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...", "driver", s.driver)
	return s.db.AutoMigrate(
		&domain.User{},
		&domain.FormSubmission{},
		&domain.BillingCustomer{},
		&domain.BillingSubscription{},
		&domain.BillingOrder{},
		&domain.AICallLog{},
	)
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Driver() string { return s.driver }
