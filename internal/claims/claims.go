// Package claims holds the authenticated caller's identity and
// membership facts. It is pure data: the auth boundary builds it once
// per request and every core function receives it explicitly.
package claims

import (
	"github.com/bwmarrin/snowflake"
)

// MembershipStatus mirrors the application lifecycle as seen by the
// tier resolver. It is deliberately a separate type from the workflow
// package's status: claims is a leaf that nothing may depend back on.
type MembershipStatus string

const (
	StatusPending  MembershipStatus = "PENDING"
	StatusActive   MembershipStatus = "ACTIVE"
	StatusRejected MembershipStatus = "REJECTED"
)

// MembershipKind is the membership class. Empty for plain members.
type MembershipKind string

const (
	KindMember      MembershipKind = "MEMBER"
	KindMemberUsaha MembershipKind = "MEMBER_USAHA"
)

// Ownership records that the user owns a koperasi.
type Ownership struct {
	KoperasiID snowflake.ID `json:"koperasi_id"`
	IsActive   bool         `json:"is_active"`
}

// Membership records the user's standing in a koperasi as seen by the
// tier resolver. Kind is empty for plain members.
type Membership struct {
	KoperasiID snowflake.ID     `json:"koperasi_id"`
	Status     MembershipStatus `json:"status"`
	Kind       MembershipKind   `json:"kind,omitempty"`
}

// Claims is a snapshot of who the caller is. Ownership and membership
// are independent relations: owning a koperasi does not make the owner
// a member for pricing purposes.
type Claims struct {
	UserID        snowflake.ID `json:"user_id"`
	Email         string       `json:"email"`
	OwnedKoperasi []Ownership  `json:"owned_koperasi"`
	Memberships   []Membership `json:"memberships"`
}
