package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/sentrakoop/sentra/internal/catalog/domain"
	"github.com/sentrakoop/sentra/internal/claims"
	"github.com/sentrakoop/sentra/internal/clock"
	"github.com/sentrakoop/sentra/internal/config"
	koperasidomain "github.com/sentrakoop/sentra/internal/koperasi/domain"
	koperasirepo "github.com/sentrakoop/sentra/internal/koperasi/repository"
	koperasiservice "github.com/sentrakoop/sentra/internal/koperasi/service"
	marginruledomain "github.com/sentrakoop/sentra/internal/marginrule/domain"
	marginrulerepo "github.com/sentrakoop/sentra/internal/marginrule/repository"
	marginruleservice "github.com/sentrakoop/sentra/internal/marginrule/service"
	membershipdomain "github.com/sentrakoop/sentra/internal/membership/domain"
	membershiprepo "github.com/sentrakoop/sentra/internal/membership/repository"
	membershipservice "github.com/sentrakoop/sentra/internal/membership/service"
	productdomain "github.com/sentrakoop/sentra/internal/product/domain"
	productrepo "github.com/sentrakoop/sentra/internal/product/repository"
	productservice "github.com/sentrakoop/sentra/internal/product/service"
	"github.com/sentrakoop/sentra/internal/tier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fixture wires the real services against one in-memory database so
// the storefront path can be driven end to end.
type fixture struct {
	catalog     catalogdomain.Service
	koperasi    koperasidomain.Service
	products    productdomain.Service
	rules       marginruledomain.Service
	memberships membershipdomain.Service
	clock       *clock.FakeClock
	node        *snowflake.Node
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&koperasidomain.Koperasi{},
		&koperasidomain.Owner{},
		&productdomain.Product{},
		&marginruledomain.MarginRule{},
		&membershipdomain.Application{},
	))

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	kopRepo := koperasirepo.Provide()
	prodRepo := productrepo.Provide()
	ruleRepo := marginrulerepo.Provide()

	prodSvc := productservice.New(productservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake, Repo: prodRepo,
	})
	ruleSvc := marginruleservice.New(marginruleservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake,
		Cfg:      config.Config{ReferenceBasePrice: 100_000},
		Repo:     ruleRepo,
		RefPrice: prodSvc,
	})
	memberSvc := membershipservice.New(membershipservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake, Repo: membershiprepo.Provide(),
	})
	kopSvc := koperasiservice.New(koperasiservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake, Repo: kopRepo,
	})

	catalogSvc := New(Params{
		DB: db, Log: log, Clock: fake,
		ProductRepo:  prodRepo,
		KoperasiRepo: kopRepo,
		Rules:        ruleSvc,
	})

	return &fixture{
		catalog:     catalogSvc,
		koperasi:    kopSvc,
		products:    prodSvc,
		rules:       ruleSvc,
		memberships: memberSvc,
		clock:       fake,
		node:        node,
	}
}

// memberClaims mirrors what the auth boundary builds for a logged-in
// user: their ownerships plus their active memberships.
func (f *fixture) memberClaims(t *testing.T, userID snowflake.ID) *claims.Claims {
	t.Helper()

	ctx := context.Background()
	ownerships, err := f.koperasi.OwnershipsByUser(ctx, userID)
	require.NoError(t, err)

	apps, err := f.memberships.ActiveByUser(ctx, userID)
	require.NoError(t, err)

	memberships := make([]claims.Membership, 0, len(apps))
	for _, app := range apps {
		memberships = append(memberships, claims.Membership{
			KoperasiID: app.KoperasiID,
			Status:     claims.MembershipStatus(app.Status),
			Kind:       claims.MembershipKind(app.Kind),
		})
	}

	return &claims.Claims{
		UserID:        userID,
		OwnedKoperasi: ownerships,
		Memberships:   memberships,
	}
}

func TestStorefrontEndToEnd(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	ownerID := f.node.Generate()
	ownerClaims := &claims.Claims{UserID: ownerID}

	kop, err := f.koperasi.Create(ctx, ownerClaims, koperasidomain.CreateRequest{Name: "Koperasi Warga Sejahtera"})
	require.NoError(t, err)
	ownerClaims = f.memberClaims(t, ownerID)

	product, err := f.products.Create(ctx, ownerClaims, productdomain.CreateRequest{
		KoperasiID: kop.ID,
		Code:       "BRS-001",
		Name:       "Beras Premium 5kg",
		BasePrice:  50_000,
		Stock:      100,
	})
	require.NoError(t, err)

	// 10% off for members, 20% off for member-usaha
	_, err = f.rules.Create(ctx, ownerClaims, marginruledomain.CreateRequest{
		KoperasiID: kop.ID,
		Tier:       tier.TierMember,
		Type:       marginruledomain.TypePercent,
		Value:      10,
	})
	require.NoError(t, err)
	_, err = f.rules.Create(ctx, ownerClaims, marginruledomain.CreateRequest{
		KoperasiID: kop.ID,
		Tier:       tier.TierMemberUsaha,
		Type:       marginruledomain.TypePercent,
		Value:      20,
	})
	require.NoError(t, err)

	// anonymous shopper pays base price
	anon, err := f.catalog.Browse(ctx, nil, catalogdomain.BrowseRequest{KoperasiID: kop.ID})
	require.NoError(t, err)
	assert.Equal(t, tier.TierUmum, anon.Tier)
	require.Len(t, anon.Items, 1)
	assert.Equal(t, int64(50_000), anon.Items[0].FinalPrice)

	// applicant is still UMUM while the application is pending
	shopperID := f.node.Generate()
	app, err := f.memberships.Apply(ctx, &claims.Claims{UserID: shopperID}, membershipdomain.ApplyRequest{
		KoperasiID: kop.ID,
		Kind:       membershipdomain.KindMember,
	})
	require.NoError(t, err)

	pending, err := f.catalog.Browse(ctx, f.memberClaims(t, shopperID), catalogdomain.BrowseRequest{KoperasiID: kop.ID})
	require.NoError(t, err)
	assert.Equal(t, tier.TierUmum, pending.Tier)
	assert.Equal(t, int64(50_000), pending.Items[0].FinalPrice)

	// approval flips the shopper to MEMBER pricing
	_, err = f.memberships.Decide(ctx, ownerClaims, membershipdomain.DecideRequest{
		ID:       app.ID,
		Decision: membershipdomain.DecisionApprove,
	})
	require.NoError(t, err)

	member, err := f.catalog.Browse(ctx, f.memberClaims(t, shopperID), catalogdomain.BrowseRequest{KoperasiID: kop.ID})
	require.NoError(t, err)
	assert.Equal(t, tier.TierMember, member.Tier)
	assert.Equal(t, int64(45_000), member.Items[0].FinalPrice)
	assert.Equal(t, product.ID, member.Items[0].ProductID)

	// owning the koperasi does not change the owner's shopping tier
	asOwner, err := f.catalog.Browse(ctx, ownerClaims, catalogdomain.BrowseRequest{KoperasiID: kop.ID})
	require.NoError(t, err)
	assert.Equal(t, tier.TierUmum, asOwner.Tier)
	assert.Equal(t, int64(50_000), asOwner.Items[0].FinalPrice)
}

func TestBrowseUnknownKoperasi(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	_, err := f.catalog.Browse(ctx, nil, catalogdomain.BrowseRequest{KoperasiID: "nonsense"})
	assert.ErrorIs(t, err, catalogdomain.ErrInvalidKoperasi)

	_, err = f.catalog.Browse(ctx, nil, catalogdomain.BrowseRequest{KoperasiID: f.node.Generate().String()})
	assert.ErrorIs(t, err, catalogdomain.ErrNotFound)
}

func TestBrowseHidesArchivedProducts(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	ownerID := f.node.Generate()
	kop, err := f.koperasi.Create(ctx, &claims.Claims{UserID: ownerID}, koperasidomain.CreateRequest{Name: "Koperasi Niaga"})
	require.NoError(t, err)
	ownerClaims := f.memberClaims(t, ownerID)

	kept, err := f.products.Create(ctx, ownerClaims, productdomain.CreateRequest{
		KoperasiID: kop.ID, Code: "A", Name: "Tersedia", BasePrice: 10_000,
	})
	require.NoError(t, err)
	gone, err := f.products.Create(ctx, ownerClaims, productdomain.CreateRequest{
		KoperasiID: kop.ID, Code: "B", Name: "Diarsipkan", BasePrice: 20_000,
	})
	require.NoError(t, err)
	_, err = f.products.Archive(ctx, ownerClaims, kop.ID, gone.ID)
	require.NoError(t, err)

	resp, err := f.catalog.Browse(ctx, nil, catalogdomain.BrowseRequest{KoperasiID: kop.ID})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, kept.ID, resp.Items[0].ProductID)
}

func TestPriceMatrixOwnerOnly(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	ownerID := f.node.Generate()
	kop, err := f.koperasi.Create(ctx, &claims.Claims{UserID: ownerID}, koperasidomain.CreateRequest{Name: "Koperasi Karya"})
	require.NoError(t, err)
	ownerClaims := f.memberClaims(t, ownerID)

	_, err = f.products.Create(ctx, ownerClaims, productdomain.CreateRequest{
		KoperasiID: kop.ID, Code: "A", Name: "Produk", BasePrice: 10_000,
	})
	require.NoError(t, err)
	_, err = f.rules.Create(ctx, ownerClaims, marginruledomain.CreateRequest{
		KoperasiID: kop.ID, Tier: tier.TierMemberUsaha, Type: marginruledomain.TypeFlat, Value: 1_500,
	})
	require.NoError(t, err)

	_, err = f.catalog.PriceMatrix(ctx, &claims.Claims{UserID: f.node.Generate()}, kop.ID)
	assert.ErrorIs(t, err, catalogdomain.ErrForbidden)

	matrix, err := f.catalog.PriceMatrix(ctx, ownerClaims, kop.ID)
	require.NoError(t, err)
	assert.Equal(t, "Koperasi Karya", matrix.KoperasiName)
	require.Len(t, matrix.Rows, 1)

	row := matrix.Rows[0]
	assert.Equal(t, int64(10_000), row.Prices[tier.TierUmum])
	assert.Equal(t, int64(10_000), row.Prices[tier.TierMember])
	assert.Equal(t, int64(8_500), row.Prices[tier.TierMemberUsaha])
}
