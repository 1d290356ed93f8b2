package tier

import (
	"github.com/bwmarrin/snowflake"
	"github.com/sentrakoop/sentra/internal/claims"
)

// Resolve returns the effective tier for the caller against the given
// koperasi. Anonymous callers, unknown koperasi IDs, and users without
// an ACTIVE membership all resolve to UMUM: pricing fails open to the
// least-privileged tier, never to a cheaper one.
func Resolve(c *claims.Claims, koperasiID snowflake.ID) Tier {
	if c == nil || koperasiID == 0 {
		return TierUmum
	}

	for _, m := range c.Memberships {
		if m.KoperasiID != koperasiID || m.Status != claims.StatusActive {
			continue
		}
		if m.Kind == claims.KindMemberUsaha {
			return TierMemberUsaha
		}
		return TierMember
	}

	return TierUmum
}

// IsOwner reports whether the caller actively owns the koperasi.
// Ownership is independent of membership and never changes the tier
// returned by Resolve; it gates owner-only operations.
func IsOwner(c *claims.Claims, koperasiID snowflake.ID) bool {
	if c == nil || koperasiID == 0 {
		return false
	}

	for _, o := range c.OwnedKoperasi {
		if o.KoperasiID == koperasiID && o.IsActive {
			return true
		}
	}

	return false
}
