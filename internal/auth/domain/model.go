// Package domain contains core types for the auth boundary.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// User is a registered account. Koperasi ownership and membership are
// separate relations keyed by user ID.
type User struct {
	ID           snowflake.ID      `gorm:"primaryKey"`
	Email        string            `gorm:"column:email;type:text;not null;uniqueIndex"`
	DisplayName  string            `gorm:"column:display_name;type:text"`
	PasswordHash *string           `gorm:"type:text"`
	IsActive     bool              `gorm:"column:is_active;not null;default:true"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (User) TableName() string { return "users" }

// Session is a persisted login session. Only the sha256 hash of the
// bearer token is stored.
type Session struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	UserID           snowflake.ID `gorm:"column:user_id;not null;index"`
	SessionTokenHash string       `gorm:"column:session_token_hash;type:text;not null;uniqueIndex"`
	UserAgent        string       `gorm:"column:user_agent;type:text"`
	IPAddress        string       `gorm:"column:ip_address;type:text"`
	ExpiresAt        time.Time    `gorm:"column:expires_at;not null;index"`
	RevokedAt        *time.Time   `gorm:"column:revoked_at"`
	CreatedAt        time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	LastSeenAt       time.Time    `gorm:"column:last_seen_at;not null;default:CURRENT_TIMESTAMP"`
}

func (Session) TableName() string { return "sessions" }

var (
	ErrInvalidSession = errors.New("invalid_session")
	ErrSessionExpired = errors.New("session_expired")
	ErrSessionRevoked = errors.New("session_revoked")
	ErrUserNotFound   = errors.New("user_not_found")
	ErrUserInactive   = errors.New("user_inactive")
)
