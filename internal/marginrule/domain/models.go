// Package domain contains models and contracts for koperasi margin rules.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sentrakoop/sentra/internal/tier"
)

// RuleType selects how a rule's value is applied to a base price.
type RuleType string

const (
	// TypeFlat subtracts the value in minor currency units.
	TypeFlat RuleType = "FLAT"
	// TypePercent subtracts value percent of the base price.
	TypePercent RuleType = "PERCENT"
)

// Valid reports whether the type is one of the closed set.
func (t RuleType) Valid() bool {
	return t == TypeFlat || t == TypePercent
}

// MarginRule is a koperasi-authored discount applied to one tier.
// For pricing, the active rule with the latest effective_from <= asOf
// wins per (koperasi, tier); ties break by latest creation.
type MarginRule struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	KoperasiID    snowflake.ID `gorm:"column:koperasi_id;not null;index:ix_margin_rules_koperasi_tier,priority:1" json:"koperasi_id"`
	Tier          tier.Tier    `gorm:"type:text;not null;index:ix_margin_rules_koperasi_tier,priority:2" json:"tier"`
	Type          RuleType     `gorm:"type:text;not null" json:"type"`
	Value         float64      `gorm:"not null" json:"value"`
	IsActive      bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	EffectiveFrom time.Time    `gorm:"column:effective_from;not null" json:"effective_from"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (MarginRule) TableName() string { return "margin_rules" }

// Reduction returns the rule's normalized price reduction as a fraction
// of the reference base price. PERCENT rules normalize directly; FLAT
// rules divide by the reference price so mixed-type rule sets compare
// on the same basis.
func (r MarginRule) Reduction(referenceBasePrice int64) float64 {
	if referenceBasePrice <= 0 {
		return 0
	}
	switch r.Type {
	case TypePercent:
		return r.Value / 100
	case TypeFlat:
		return r.Value / float64(referenceBasePrice)
	default:
		return 0
	}
}
