package repo

import (
	"context"
	"fmt"
	"strings"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-content-studio/internal/domain"
)

// newTestDB opens a private in-memory database with foreign keys enforced.
// With migrate=true the full schema is created and content types are seeded.
func newTestDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if migrate {
		if err := AutoMigrate(db); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
		if err := SeedContentTypes(context.Background(), db); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return db
}

func mustUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	u, err := CreateUser(context.Background(), db, email, "hash", "salt", nil)
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return u
}

func mustType(t *testing.T, db *gorm.DB, kind domain.ContentKind) *domain.ContentType {
	t.Helper()
	ct, err := GetContentTypeByName(context.Background(), db, string(kind))
	if err != nil {
		t.Fatalf("GetContentTypeByName(%s): %v", kind, err)
	}
	return ct
}
