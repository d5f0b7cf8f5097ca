package database

import (
	"hatchery-backend/internal/application/catalog"
	"hatchery-backend/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN (hosted Postgres pooler URL).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers (e.g. PgBouncer).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{TranslateError: true})
}

// Models lists every table the service owns.
func Models() []any {
	return append([]any{&domain.HatchCycle{}, &domain.HatchCycleEvent{}}, catalog.Models()...)
}

// AutoMigrate creates or widens the tables for local and test databases.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
