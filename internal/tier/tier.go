// Package tier resolves a caller's effective commercial tier within a
// koperasi. Resolution is a pure function over a claims snapshot: no
// I/O, no caching, never an error.
package tier

// Tier is the pricing/privilege class a user holds toward a koperasi.
type Tier string

const (
	// TierUmum is the public (non-member) tier.
	TierUmum Tier = "UMUM"
	// TierMember is the regular member tier.
	TierMember Tier = "MEMBER"
	// TierMemberUsaha is the business member tier.
	TierMemberUsaha Tier = "MEMBER_USAHA"
)

// All lists the tiers from least to most privileged.
func All() []Tier {
	return []Tier{TierUmum, TierMember, TierMemberUsaha}
}

// Valid reports whether t is one of the closed set.
func (t Tier) Valid() bool {
	switch t {
	case TierUmum, TierMember, TierMemberUsaha:
		return true
	default:
		return false
	}
}

// Rank orders tiers by privilege: UMUM < MEMBER < MEMBER_USAHA.
func (t Tier) Rank() int {
	switch t {
	case TierMember:
		return 1
	case TierMemberUsaha:
		return 2
	default:
		return 0
	}
}
