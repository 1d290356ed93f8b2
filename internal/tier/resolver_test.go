package tier

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/sentrakoop/sentra/internal/claims"
	"github.com/stretchr/testify/assert"
)

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatal(err)
	}
	return node
}

func TestResolveAnonymous(t *testing.T) {
	node := mustNode(t)
	assert.Equal(t, TierUmum, Resolve(nil, node.Generate()))
}

func TestResolveInvalidKoperasiID(t *testing.T) {
	node := mustNode(t)
	c := &claims.Claims{
		UserID: node.Generate(),
		Memberships: []claims.Membership{
			{KoperasiID: node.Generate(), Status: claims.StatusActive},
		},
	}
	assert.Equal(t, TierUmum, Resolve(c, 0))
}

func TestResolveMembershipStates(t *testing.T) {
	node := mustNode(t)
	koperasiID := node.Generate()
	other := node.Generate()

	tests := []struct {
		name        string
		memberships []claims.Membership
		want        Tier
	}{
		{
			name: "no membership for koperasi",
			memberships: []claims.Membership{
				{KoperasiID: other, Status: claims.StatusActive},
			},
			want: TierUmum,
		},
		{
			name: "pending membership",
			memberships: []claims.Membership{
				{KoperasiID: koperasiID, Status: claims.StatusPending, Kind: claims.KindMemberUsaha},
			},
			want: TierUmum,
		},
		{
			name: "rejected membership",
			memberships: []claims.Membership{
				{KoperasiID: koperasiID, Status: claims.StatusRejected},
			},
			want: TierUmum,
		},
		{
			name: "active member",
			memberships: []claims.Membership{
				{KoperasiID: koperasiID, Status: claims.StatusActive, Kind: claims.KindMember},
			},
			want: TierMember,
		},
		{
			name: "active member without kind",
			memberships: []claims.Membership{
				{KoperasiID: koperasiID, Status: claims.StatusActive},
			},
			want: TierMember,
		},
		{
			name: "active business member",
			memberships: []claims.Membership{
				{KoperasiID: koperasiID, Status: claims.StatusActive, Kind: claims.KindMemberUsaha},
			},
			want: TierMemberUsaha,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := &claims.Claims{UserID: node.Generate(), Memberships: tc.memberships}
			got := Resolve(c, koperasiID)
			assert.Equal(t, tc.want, got)
			assert.True(t, got.Valid())

			// identical snapshot, identical result
			assert.Equal(t, got, Resolve(c, koperasiID))
		})
	}
}

func TestIsOwnerIndependentOfMembership(t *testing.T) {
	node := mustNode(t)
	koperasiID := node.Generate()

	c := &claims.Claims{
		UserID: node.Generate(),
		OwnedKoperasi: []claims.Ownership{
			{KoperasiID: koperasiID, IsActive: true},
		},
	}

	assert.True(t, IsOwner(c, koperasiID))
	// ownership alone never grants a pricing tier
	assert.Equal(t, TierUmum, Resolve(c, koperasiID))
}

func TestIsOwnerInactive(t *testing.T) {
	node := mustNode(t)
	koperasiID := node.Generate()

	c := &claims.Claims{
		UserID: node.Generate(),
		OwnedKoperasi: []claims.Ownership{
			{KoperasiID: koperasiID, IsActive: false},
		},
	}

	assert.False(t, IsOwner(c, koperasiID))
	assert.False(t, IsOwner(nil, koperasiID))
	assert.False(t, IsOwner(c, 0))
}

func TestRankOrdering(t *testing.T) {
	assert.Less(t, TierUmum.Rank(), TierMember.Rank())
	assert.Less(t, TierMember.Rank(), TierMemberUsaha.Rank())
}
