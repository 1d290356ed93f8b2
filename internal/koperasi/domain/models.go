package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Koperasi struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"size:255;not null" json:"name"`
	Slug        string            `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description string            `gorm:"type:text" json:"description"`
	IsActive    bool              `gorm:"not null;default:true" json:"is_active"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (Koperasi) TableName() string {
	return "koperasi"
}

// Owner links a user to a koperasi they administer. A koperasi can have
// several owners and a user can own several koperasi.
type Owner struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	KoperasiID snowflake.ID `gorm:"index:idx_koperasi_owner,unique;not null" json:"koperasi_id"`
	UserID     snowflake.ID `gorm:"index:idx_koperasi_owner,unique;index;not null" json:"user_id"`
	IsActive   bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (Owner) TableName() string {
	return "koperasi_owners"
}
