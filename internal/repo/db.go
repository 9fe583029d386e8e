// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping for SQLite (pure
// Go driver) and Postgres, schema migrations, reference-data seeding and the
// scoped transaction helper used by multi-statement writes.
package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-content-studio/internal/config"
	"github.com/tbourn/go-content-studio/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates a unique constraint rejected the write.
var ErrDuplicate = errors.New("duplicate")

// Open connects to the store selected by cfg.Driver and installs the
// OpenTelemetry tracing plugin so every statement becomes a span.
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.URL), gormConfig())
	case "sqlite", "":
		db, err = OpenSQLite(cfg.Path)
	default:
		return nil, errors.New("repo: unsupported driver " + cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := db.Use(tracing.NewPlugin()); err != nil {
		return nil, err
	}
	tunePool(db, cfg.MaxOpenConns)
	return db, nil
}

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if the parent directory is missing; sqlite reports it as "out of memory (14)".
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(sqliteDSN(path)), gormConfig())
	if err != nil {
		return nil, err
	}
	tunePool(db, 10)
	return db, nil
}

// sqlitePragmas are applied by the driver to every new connection, so each
// connection in the pool enforces foreign keys.
var sqlitePragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	var b strings.Builder
	b.WriteString(path)
	for _, p := range sqlitePragmas {
		b.WriteString(sep + "_pragma=" + p)
		sep = "&"
	}
	return b.String()
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

func tunePool(db *gorm.DB, maxOpen int) {
	if maxOpen <= 0 {
		maxOpen = 10
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(maxOpen)
		sqlDB.SetMaxIdleConns(maxOpen)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
}

// AutoMigrate creates or updates every table the application uses.
// Order matters: referenced tables come first.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.ContentType{},
		&domain.ChatSession{},
		&domain.ChatMessage{},
		&domain.GeneratedContent{},
		&domain.UserPreferences{},
		&domain.Idempotency{},
	)
}

// SeedContentTypes inserts the canonical content types. Existing names are
// left untouched, so the call is idempotent.
func SeedContentTypes(ctx context.Context, db *gorm.DB) error {
	kinds := domain.ContentKinds()
	rows := make([]domain.ContentType, 0, len(kinds))
	for _, k := range kinds {
		rows = append(rows, domain.ContentType{Name: string(k.Kind), Description: k.Description})
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&rows).Error
}

// Execute runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back when it returns an error or panics.
func Execute(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// isDuplicate recognises unique violations across drivers. glebarez/sqlite
// sometimes reports them as plain text even with TranslateError set.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key value")
}
