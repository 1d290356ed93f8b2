// Package domain contains persistence models for the membership service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the lifecycle state of a membership application.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusActive   Status = "ACTIVE"
	StatusRejected Status = "REJECTED"
)

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool {
	return s == StatusActive || s == StatusRejected
}

// Kind is the membership class being applied for.
type Kind string

const (
	KindMember      Kind = "MEMBER"
	KindMemberUsaha Kind = "MEMBER_USAHA"
)

// Valid reports whether the kind is one of the closed set.
func (k Kind) Valid() bool {
	return k == KindMember || k == KindMemberUsaha
}

// Decision is the owner's verdict on a pending application.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// Application is a user's request to join a koperasi at a given kind.
// ACTIVE and REJECTED are terminal; re-application creates a new record.
type Application struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	Code       string       `gorm:"type:text;not null;uniqueIndex:ux_membership_applications_code" json:"code"`
	UserID     snowflake.ID `gorm:"column:user_id;not null;index:ix_membership_applications_user" json:"user_id"`
	KoperasiID snowflake.ID `gorm:"column:koperasi_id;not null;index:ix_membership_applications_koperasi" json:"koperasi_id"`
	Kind       Kind         `gorm:"type:text;not null" json:"kind"`
	Status     Status       `gorm:"type:text;not null" json:"status"`
	DecidedBy  *snowflake.ID `gorm:"column:decided_by" json:"decided_by,omitempty"`
	DecidedAt  *time.Time   `gorm:"column:decided_at" json:"decided_at,omitempty"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Application) TableName() string { return "membership_applications" }
