package authorization

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	koperasidomain "github.com/sentrakoop/sentra/internal/koperasi/domain"
	membershipdomain "github.com/sentrakoop/sentra/internal/membership/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAuthz(t *testing.T) (Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&koperasidomain.Owner{},
		&membershipdomain.Application{},
	))

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)

	svc := NewService(Params{DB: db, Log: zap.NewNop(), Enforcer: enforcer})
	return svc, db, node
}

func userActor(id snowflake.ID) string {
	return "user:" + id.String()
}

func TestAuthorizeOwnerCapabilities(t *testing.T) {
	svc, db, node := setupAuthz(t)
	ctx := context.Background()

	koperasiID := node.Generate()
	ownerID := node.Generate()
	require.NoError(t, db.Create(&koperasidomain.Owner{
		ID: node.Generate(), KoperasiID: koperasiID, UserID: ownerID, IsActive: true,
	}).Error)

	for _, tc := range []struct{ object, action string }{
		{ObjectMarginRule, ActionMarginRuleCreate},
		{ObjectMembership, ActionMembershipDecide},
		{ObjectProduct, ActionProductArchive},
		{ObjectCatalog, ActionCatalogExport},
	} {
		assert.NoError(t, svc.Authorize(ctx, userActor(ownerID), koperasiID.String(), tc.object, tc.action))
	}
}

func TestAuthorizeMemberCapabilities(t *testing.T) {
	svc, db, node := setupAuthz(t)
	ctx := context.Background()

	koperasiID := node.Generate()
	memberID := node.Generate()
	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&membershipdomain.Application{
		ID:         node.Generate(),
		Code:       "01JC0000000000000000000000",
		UserID:     memberID,
		KoperasiID: koperasiID,
		Kind:       membershipdomain.KindMember,
		Status:     membershipdomain.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}).Error)

	assert.NoError(t, svc.Authorize(ctx, userActor(memberID), koperasiID.String(), ObjectCatalog, ActionCatalogView))
	assert.NoError(t, svc.Authorize(ctx, userActor(memberID), koperasiID.String(), ObjectMembership, ActionMembershipView))

	err := svc.Authorize(ctx, userActor(memberID), koperasiID.String(), ObjectMarginRule, ActionMarginRuleCreate)
	assert.ErrorIs(t, err, ErrForbidden)
	err = svc.Authorize(ctx, userActor(memberID), koperasiID.String(), ObjectMembership, ActionMembershipDecide)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorizeStrangerIsUmum(t *testing.T) {
	svc, _, node := setupAuthz(t)
	ctx := context.Background()

	koperasiID := node.Generate()
	strangerID := node.Generate()

	assert.NoError(t, svc.Authorize(ctx, userActor(strangerID), koperasiID.String(), ObjectCatalog, ActionCatalogView))
	assert.NoError(t, svc.Authorize(ctx, userActor(strangerID), koperasiID.String(), ObjectMembership, ActionMembershipApply))

	err := svc.Authorize(ctx, userActor(strangerID), koperasiID.String(), ObjectProduct, ActionProductCreate)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorizeRoleFollowsRelations(t *testing.T) {
	svc, db, node := setupAuthz(t)
	ctx := context.Background()

	koperasiID := node.Generate()
	userID := node.Generate()

	err := svc.Authorize(ctx, userActor(userID), koperasiID.String(), ObjectMarginRule, ActionMarginRuleCreate)
	assert.ErrorIs(t, err, ErrForbidden)

	// promotion to owner takes effect on the next check
	require.NoError(t, db.Create(&koperasidomain.Owner{
		ID: node.Generate(), KoperasiID: koperasiID, UserID: userID, IsActive: true,
	}).Error)
	assert.NoError(t, svc.Authorize(ctx, userActor(userID), koperasiID.String(), ObjectMarginRule, ActionMarginRuleCreate))
}

func TestAuthorizeValidation(t *testing.T) {
	svc, _, node := setupAuthz(t)
	ctx := context.Background()
	koperasiID := node.Generate().String()

	assert.ErrorIs(t, svc.Authorize(ctx, "", koperasiID, ObjectCatalog, ActionCatalogView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, "service:worker", koperasiID, ObjectCatalog, ActionCatalogView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, "user:abc", koperasiID, ObjectCatalog, ActionCatalogView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, userActor(node.Generate()), "", ObjectCatalog, ActionCatalogView), ErrInvalidKoperasi)
	assert.ErrorIs(t, svc.Authorize(ctx, userActor(node.Generate()), koperasiID, "", ActionCatalogView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, userActor(node.Generate()), koperasiID, ObjectCatalog, ""), ErrInvalidAction)
}
