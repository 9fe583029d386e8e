package domain

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&User{}, &ContentType{}, &ChatSession{}, &ChatMessage{},
		&GeneratedContent{}, &UserPreferences{}, &Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		User{}.TableName():             "users",
		ContentType{}.TableName():      "content_types",
		ChatSession{}.TableName():      "chat_sessions",
		ChatMessage{}.TableName():      "chat_messages",
		GeneratedContent{}.TableName(): "generated_content",
		UserPreferences{}.TableName():  "user_preferences",
		Idempotency{}.TableName():      "idempotency",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestMigrations_IndexesAndReadOnlyColumns(t *testing.T) {
	db := newDomainDB(t)
	m := db.Migrator()

	for _, idx := range []struct {
		model any
		name  string
	}{
		{&User{}, "ux_users_email"},
		{&ContentType{}, "ux_content_types_name"},
		{&ChatSession{}, "idx_user_sessions"},
		{&ChatMessage{}, "idx_session_msgs"},
		{&GeneratedContent{}, "idx_user_content"},
		{&Idempotency{}, "ux_user_scope_key"},
	} {
		if !m.HasIndex(idx.model, idx.name) {
			t.Fatalf("expected index %s on %T", idx.name, idx.model)
		}
	}
	if m.HasColumn(&ChatSession{}, "content_type_name") {
		t.Fatalf("content_type_name must not be migrated on chat_sessions")
	}
	if m.HasColumn(&GeneratedContent{}, "content_type_name") {
		t.Fatalf("content_type_name must not be migrated on generated_content")
	}
}

func TestConstraints_UniqueEmail_RoleCheck_Cascades(t *testing.T) {
	db := newDomainDB(t)
	now := time.Now().UTC()

	u := &User{ID: "u1", Email: "a@b.co", PasswordHash: "h", Salt: "s"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if err := db.Create(&User{ID: "u2", Email: "a@b.co", PasswordHash: "h", Salt: "s"}).Error; err == nil {
		t.Fatalf("expected unique violation on duplicate email")
	}

	ct := &ContentType{Name: "Blog Post"}
	if err := db.Create(ct).Error; err != nil {
		t.Fatalf("insert content type: %v", err)
	}
	s := &ChatSession{ID: "s1", UserID: "u1", Title: "T", ContentTypeID: &ct.ID, CreatedAt: now, UpdatedAt: now}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("insert session: %v", err)
	}
	if err := db.Create(&ChatMessage{ID: "m1", SessionID: "s1", Role: "system", Content: "x"}).Error; err == nil {
		t.Fatalf("expected role check constraint to reject 'system'")
	}
	if err := db.Create(&ChatMessage{ID: "m2", SessionID: "s1", Role: RoleUser, Content: "hi"}).Error; err != nil {
		t.Fatalf("insert message: %v", err)
	}
	if err := db.Create(&ChatMessage{ID: "m3", SessionID: "missing", Role: RoleUser, Content: "hi"}).Error; err == nil {
		t.Fatalf("expected FK violation for unknown session")
	}

	sid := "s1"
	gc := &GeneratedContent{ID: "g1", UserID: "u1", SessionID: &sid, ContentTypeID: ct.ID, Prompt: "p", GeneratedText: "t"}
	if err := db.Create(gc).Error; err != nil {
		t.Fatalf("insert content: %v", err)
	}
	var fav GeneratedContent
	if err := db.First(&fav, "id = ?", "g1").Error; err != nil || fav.IsFavorite {
		t.Fatalf("is_favorite should default to false: %+v err=%v", fav, err)
	}

	// Removing the session cascades messages and detaches content.
	if err := db.Delete(&ChatSession{}, "id = ?", "s1").Error; err != nil {
		t.Fatalf("delete session: %v", err)
	}
	var cnt int64
	db.Model(&ChatMessage{}).Where("session_id = ?", "s1").Count(&cnt)
	if cnt != 0 {
		t.Fatalf("messages should cascade-delete, got %d", cnt)
	}
	var after GeneratedContent
	if err := db.First(&after, "id = ?", "g1").Error; err != nil {
		t.Fatalf("content should survive session delete: %v", err)
	}
	if after.SessionID != nil {
		t.Fatalf("session_id should be set null, got %v", *after.SessionID)
	}
}

func TestUserPreferences_Defaults(t *testing.T) {
	db := newDomainDB(t)
	if err := db.Create(&User{ID: "u1", Email: "p@q.io", PasswordHash: "h", Salt: "s"}).Error; err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if err := db.Create(&UserPreferences{UserID: "u1"}).Error; err != nil {
		t.Fatalf("insert prefs: %v", err)
	}
	var p UserPreferences
	if err := db.First(&p, "user_id = ?", "u1").Error; err != nil {
		t.Fatalf("load prefs: %v", err)
	}
	if p.DefaultTone != ToneProfessional || p.DefaultLength != LengthMedium || p.Theme != ThemeLight {
		t.Fatalf("unexpected column defaults: %+v", p)
	}
}
