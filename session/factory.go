package session

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hupe1980/turnstream/core"
)

// Supported storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// NewStore creates a session store for driver. dsn is a file path for
// sqlite and a connection string for postgres; it is ignored for memory.
func NewStore(driver, dsn string) (core.SessionStore, error) {
	switch driver {
	case "", DriverMemory:
		return NewInMemoryStore(), nil
	case DriverSQLite:
		return open(sqlite.Open(dsn))
	case DriverPostgres:
		return open(postgres.Open(dsn))
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}
}

func open(dialector gorm.Dialector) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session database: %w", err)
	}
	return NewGormStore(db)
}
