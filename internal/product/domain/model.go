package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Product is a koperasi-owned catalog item. BasePrice is in minor
// currency units; the pricing engine treats the product as read-only.
type Product struct {
	ID          snowflake.ID      `json:"id" gorm:"primaryKey"`
	KoperasiID  snowflake.ID      `json:"koperasi_id" gorm:"column:koperasi_id;not null;uniqueIndex:ux_products_koperasi_code,priority:1"`
	Code        string            `json:"code" gorm:"type:text;not null;uniqueIndex:ux_products_koperasi_code,priority:2"`
	Name        string            `json:"name" gorm:"type:text;not null"`
	Category    string            `json:"category" gorm:"type:text"`
	Description *string           `json:"description,omitempty" gorm:"type:text"`
	BasePrice   int64             `json:"base_price" gorm:"column:base_price;not null"`
	Stock       int64             `json:"stock" gorm:"not null;default:0"`
	Active      bool              `json:"active" gorm:"not null;default:true"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }
