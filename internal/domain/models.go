// Package domain defines the persistence models of the content studio:
// users, content types, chat sessions and their messages, generated content
// and per-user preferences. The types are mapped with GORM and shared by the
// repository, service and transport layers.
package domain

import "time"

// User is a registered account. Accounts are never hard-deleted.
//
// Fields:
//   - Email: unique, stored lower-cased and trimmed.
//   - PasswordHash / Salt: hex PBKDF2 digest and the salt that produced it.
//   - DisplayName / ProfilePictureURL: optional profile data.
type User struct {
	ID                string    `json:"id"                            gorm:"type:char(36);primaryKey"`
	Email             string    `json:"email"                         gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash      string    `json:"-"                             gorm:"type:varchar(128);not null"`
	Salt              string    `json:"-"                             gorm:"type:varchar(128);not null"`
	DisplayName       *string   `json:"display_name,omitempty"        gorm:"type:varchar(255)"`
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty" gorm:"type:text"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// ContentType is static reference data naming a generation format.
type ContentType struct {
	ID          uint   `json:"id"          gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name"        gorm:"type:varchar(100);not null;uniqueIndex:ux_content_types_name"`
	Description string `json:"description" gorm:"type:text"`
}

// TableName returns the database table name for ContentType.
func (ContentType) TableName() string { return "content_types" }

// ChatSession groups the messages of one conversation. UpdatedAt moves
// forward whenever a message is added so lists can show recent activity first.
type ChatSession struct {
	ID            string    `json:"id"              gorm:"type:char(36);primaryKey"`
	UserID        string    `json:"user_id"         gorm:"type:char(36);not null;index:idx_user_sessions,priority:1"`
	Title         string    `json:"title"           gorm:"type:varchar(255);not null;default:'New chat'"`
	ContentTypeID *uint     `json:"content_type_id" gorm:"index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"      gorm:"index:idx_user_sessions,priority:2"`

	// ContentTypeName is filled by joined list queries only.
	ContentTypeName string `json:"content_type_name,omitempty" gorm:"->;-:migration"`

	User        User         `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	ContentType *ContentType `json:"-" gorm:"foreignKey:ContentTypeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for ChatSession.
func (ChatSession) TableName() string { return "chat_sessions" }

// ChatMessage is one append-only turn within a session.
type ChatMessage struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	SessionID string    `json:"session_id" gorm:"type:char(36);not null;index:idx_session_msgs,priority:1"`
	Role      Role      `json:"role"       gorm:"type:varchar(16);not null;check:role IN ('user','assistant')"`
	Content   string    `json:"content"    gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_session_msgs,priority:2"`

	Session ChatSession `json:"-" gorm:"foreignKey:SessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_messages" }

// GeneratedContent is the record of one successful generation.
type GeneratedContent struct {
	ID               string    `json:"id"                gorm:"type:char(36);primaryKey"`
	UserID           string    `json:"user_id"           gorm:"type:char(36);not null;index:idx_user_content,priority:1"`
	SessionID        *string   `json:"session_id"        gorm:"type:char(36);index"`
	ContentTypeID    uint      `json:"content_type_id"   gorm:"not null;index"`
	Prompt           string    `json:"prompt"            gorm:"type:text;not null"`
	GeneratedText    string    `json:"generated_text"    gorm:"type:text;not null"`
	Tone             Tone      `json:"tone"              gorm:"type:varchar(32)"`
	LengthPreference Length    `json:"length_preference" gorm:"type:varchar(32)"`
	IsFavorite       bool      `json:"is_favorite"       gorm:"not null;default:false"`
	CreatedAt        time.Time `json:"created_at"        gorm:"index:idx_user_content,priority:2"`

	ContentTypeName string `json:"content_type_name,omitempty" gorm:"->;-:migration"`

	User        User         `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Session     *ChatSession `json:"-" gorm:"foreignKey:SessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	ContentType ContentType  `json:"-" gorm:"foreignKey:ContentTypeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for GeneratedContent.
func (GeneratedContent) TableName() string { return "generated_content" }

// UserPreferences holds at most one row per user.
type UserPreferences struct {
	UserID        string    `json:"user_id"        gorm:"type:char(36);primaryKey"`
	DefaultTone   Tone      `json:"default_tone"   gorm:"type:varchar(32);not null;default:'professional'"`
	DefaultLength Length    `json:"default_length" gorm:"type:varchar(32);not null;default:'medium'"`
	Theme         Theme     `json:"theme"          gorm:"type:varchar(16);not null;default:'light'"`
	UpdatedAt     time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for UserPreferences.
func (UserPreferences) TableName() string { return "user_preferences" }

// SessionContext is the identity and active conversation carried by one
// request. An empty ConversationID means "start a new session".
type SessionContext struct {
	UserID         string
	ConversationID string
}
