package seed

import (
	"testing"

	"github.com/glebarez/sqlite"
	authdomain "github.com/sentrakoop/sentra/internal/auth/domain"
	"github.com/sentrakoop/sentra/internal/auth/password"
	"github.com/sentrakoop/sentra/internal/config"
	koperasidomain "github.com/sentrakoop/sentra/internal/koperasi/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&authdomain.User{},
		&koperasidomain.Koperasi{},
		&koperasidomain.Owner{},
	))
	return db
}

func bootstrapConfig() config.Config {
	return config.Config{
		Bootstrap: config.BootstrapConfig{
			EnsureDefaultKoperasiAndOwner: true,
			AdminEmail:                    "admin@sentrakoop.id",
			AdminPassword:                 "sentra-admin",
		},
	}
}

func TestEnsureDefaultKoperasiAndAdmin(t *testing.T) {
	db := setupDB(t)
	cfg := bootstrapConfig()

	require.NoError(t, EnsureDefaultKoperasiAndAdmin(db, cfg))

	var k koperasidomain.Koperasi
	require.NoError(t, db.Where("slug = ?", "koperasi-sentra").First(&k).Error)
	assert.True(t, k.IsActive)

	var user authdomain.User
	require.NoError(t, db.Where("email = ?", "admin@sentrakoop.id").First(&user).Error)
	require.NotNil(t, user.PasswordHash)
	assert.True(t, password.Verify("sentra-admin", *user.PasswordHash))

	var owner koperasidomain.Owner
	require.NoError(t, db.Where("koperasi_id = ? AND user_id = ?", k.ID, user.ID).First(&owner).Error)
	assert.True(t, owner.IsActive)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := setupDB(t)
	cfg := bootstrapConfig()

	require.NoError(t, EnsureDefaultKoperasiAndAdmin(db, cfg))
	require.NoError(t, EnsureDefaultKoperasiAndAdmin(db, cfg))

	var koperasiCount, userCount, ownerCount int64
	require.NoError(t, db.Model(&koperasidomain.Koperasi{}).Count(&koperasiCount).Error)
	require.NoError(t, db.Model(&authdomain.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&koperasidomain.Owner{}).Count(&ownerCount).Error)

	assert.Equal(t, int64(1), koperasiCount)
	assert.Equal(t, int64(1), userCount)
	assert.Equal(t, int64(1), ownerCount)
}

func TestEnsureDefaultKoperasiWithFixedID(t *testing.T) {
	db := setupDB(t)

	require.NoError(t, EnsureDefaultKoperasi(db, 424242))

	var k koperasidomain.Koperasi
	require.NoError(t, db.Where("slug = ?", "koperasi-sentra").First(&k).Error)
	assert.EqualValues(t, 424242, k.ID)
}
