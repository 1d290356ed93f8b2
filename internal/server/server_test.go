package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	authdomain "github.com/sentrakoop/sentra/internal/auth/domain"
	authrepo "github.com/sentrakoop/sentra/internal/auth/repository"
	authservice "github.com/sentrakoop/sentra/internal/auth/service"
	"github.com/sentrakoop/sentra/internal/authorization"
	catalogservice "github.com/sentrakoop/sentra/internal/catalog/service"
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
	obsmetrics "github.com/sentrakoop/sentra/internal/observability/metrics"
	productdomain "github.com/sentrakoop/sentra/internal/product/domain"
	productrepo "github.com/sentrakoop/sentra/internal/product/repository"
	productservice "github.com/sentrakoop/sentra/internal/product/service"
	"github.com/sentrakoop/sentra/internal/providers/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	server *Server
	db     *gorm.DB
	node   *snowflake.Node
	clock  *clock.FakeClock
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&koperasidomain.Koperasi{},
		&koperasidomain.Owner{},
		&membershipdomain.Application{},
		&marginruledomain.MarginRule{},
		&productdomain.Product{},
	))

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	kopRepo := koperasirepo.Provide()
	prodRepo := productrepo.Provide()

	prodSvc := productservice.New(productservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake, Repo: prodRepo,
	})
	ruleSvc := marginruleservice.New(marginruleservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake,
		Cfg:      config.Config{ReferenceBasePrice: 100_000},
		Repo:     marginrulerepo.Provide(),
		RefPrice: prodSvc,
	})
	memberSvc := membershipservice.New(membershipservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake, Repo: membershiprepo.Provide(),
	})
	kopSvc := koperasiservice.New(koperasiservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake, Repo: kopRepo,
	})
	catalogSvc := catalogservice.New(catalogservice.Params{
		DB: db, Log: log, Clock: fake,
		ProductRepo:  prodRepo,
		KoperasiRepo: kopRepo,
		Rules:        ruleSvc,
	})
	authSvc := authservice.New(authservice.Params{
		DB: db, Log: log, Clock: fake,
		Repo:        authrepo.Provide(),
		Sessions:    authrepo.ProvideSessions(),
		Ownerships:  kopSvc,
		Memberships: memberSvc,
	})

	enforcer, err := authorization.NewEnforcer(db)
	require.NoError(t, err)
	authzSvc := authorization.NewService(authorization.Params{
		DB: db, Log: log, Enforcer: enforcer,
	})

	metrics := obsmetrics.New()
	engine := NewEngine(log, metrics)
	srv := NewServer(ServerParams{
		Gin:           engine,
		Cfg:           config.Config{Environment: "test"},
		Authsvc:       authSvc,
		AuthzSvc:      authzSvc,
		KoperasiSvc:   kopSvc,
		MembershipSvc: memberSvc,
		MarginRuleSvc: ruleSvc,
		ProductSvc:    prodSvc,
		CatalogSvc:    catalogSvc,
		PDFProvider:   pdf.New(),
		Metrics:       metrics,
	})
	registerRoutes(srv)

	return &testEnv{server: srv, db: db, node: node, clock: fake}
}

// createLogin persists a user with a live session and returns the raw
// bearer token a client would present.
func (e *testEnv) createLogin(t *testing.T, email string) (snowflake.ID, string) {
	t.Helper()

	userID := e.node.Generate()
	require.NoError(t, e.db.Create(&authdomain.User{
		ID:       userID,
		Email:    email,
		IsActive: true,
	}).Error)

	token := fmt.Sprintf("tok-%s", userID)
	require.NoError(t, e.db.Create(&authdomain.Session{
		ID:               e.node.Generate(),
		UserID:           userID,
		SessionTokenHash: authservice.HashToken(token),
		ExpiresAt:        e.clock.Now().Add(24 * time.Hour),
		CreatedAt:        e.clock.Now(),
		LastSeenAt:       e.clock.Now(),
	}).Error)

	return userID, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.server.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Data
}

func TestHealth(t *testing.T) {
	env := setupEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestStorefrontFlow(t *testing.T) {
	env := setupEnv(t)

	_, ownerToken := env.createLogin(t, "owner@sentra.test")
	_, memberToken := env.createLogin(t, "anggota@sentra.test")

	// Owner opens a koperasi.
	rec := env.do(t, http.MethodPost, "/api/koperasi", ownerToken, gin.H{
		"name": "Koperasi Maju Bersama",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	kopID := decodeData(t, rec)["id"].(string)

	// Stocks the shelf and prices the tiers.
	rec = env.do(t, http.MethodPost, "/api/admin/koperasi/"+kopID+"/products", ownerToken, gin.H{
		"code":       "BRS-001",
		"name":       "Beras Premium 5kg",
		"base_price": 50_000,
		"stock":      100,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/admin/koperasi/"+kopID+"/margin_rules", ownerToken, gin.H{
		"tier":  "MEMBER",
		"type":  "PERCENT",
		"value": 10,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Anonymous shopper sees the public price.
	rec = env.do(t, http.MethodGet, "/api/koperasi/"+kopID+"/catalog", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, "UMUM", data["tier"])
	items := data["items"].([]any)
	require.Len(t, items, 1)
	assert.EqualValues(t, 50_000, items[0].(map[string]any)["final_price"])

	// Shopper applies for membership; still priced as UMUM until approved.
	rec = env.do(t, http.MethodPost, "/api/koperasi/"+kopID+"/memberships", memberToken, gin.H{
		"kind": "MEMBER",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	applicationID := decodeData(t, rec)["id"].(string)

	rec = env.do(t, http.MethodGet, "/api/koperasi/"+kopID+"/catalog", memberToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "UMUM", decodeData(t, rec)["tier"])

	// A second application while the first is pending conflicts.
	rec = env.do(t, http.MethodPost, "/api/koperasi/"+kopID+"/memberships", memberToken, gin.H{
		"kind": "MEMBER",
	})
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	// Owner reviews the queue before deciding.
	rec = env.do(t, http.MethodGet, "/api/admin/koperasi/"+kopID+"/memberships?status=pending&page_size=1", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data = decodeData(t, rec)
	require.Len(t, data["applications"].([]any), 1)
	assert.Equal(t, false, data["page_info"].(map[string]any)["has_more"])

	// Owner approves; the member price takes effect on the next request.
	rec = env.do(t, http.MethodPost, "/api/admin/koperasi/"+kopID+"/memberships/"+applicationID+"/decide", ownerToken, gin.H{
		"decision": "APPROVE",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ACTIVE", decodeData(t, rec)["status"])

	rec = env.do(t, http.MethodGet, "/api/koperasi/"+kopID+"/catalog", memberToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeData(t, rec)
	assert.Equal(t, "MEMBER", data["tier"])
	items = data["items"].([]any)
	require.Len(t, items, 1)
	assert.EqualValues(t, 45_000, items[0].(map[string]any)["final_price"])

	// The applicant can see their own history.
	rec = env.do(t, http.MethodGet, "/api/me/memberships", memberToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutesRequireOwnerRole(t *testing.T) {
	env := setupEnv(t)

	_, ownerToken := env.createLogin(t, "owner@sentra.test")
	_, strangerToken := env.createLogin(t, "tamu@sentra.test")

	rec := env.do(t, http.MethodPost, "/api/koperasi", ownerToken, gin.H{"name": "Koperasi Sejahtera"})
	require.Equal(t, http.StatusOK, rec.Code)
	kopID := decodeData(t, rec)["id"].(string)

	// No token at all.
	rec = env.do(t, http.MethodGet, "/api/admin/koperasi/"+kopID+"/margin_rules", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Logged in, but not this koperasi's owner.
	rec = env.do(t, http.MethodPost, "/api/admin/koperasi/"+kopID+"/margin_rules", strangerToken, gin.H{
		"tier": "MEMBER", "type": "FLAT", "value": 1000,
	})
	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/admin/koperasi/"+kopID+"/memberships", strangerToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestValidationAndConflictMapping(t *testing.T) {
	env := setupEnv(t)

	_, ownerToken := env.createLogin(t, "owner@sentra.test")

	rec := env.do(t, http.MethodPost, "/api/koperasi", ownerToken, gin.H{"name": "Koperasi Makmur"})
	require.Equal(t, http.StatusOK, rec.Code)
	kopID := decodeData(t, rec)["id"].(string)

	// Empty name is a field-level validation error.
	rec = env.do(t, http.MethodPost, "/api/koperasi", ownerToken, gin.H{"name": "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_name")

	// Same name again conflicts on the slug.
	rec = env.do(t, http.MethodPost, "/api/koperasi", ownerToken, gin.H{"name": "Koperasi Makmur"})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Margin rule below the privilege ladder is rejected with both tiers named.
	rec = env.do(t, http.MethodPost, "/api/admin/koperasi/"+kopID+"/margin_rules", ownerToken, gin.H{
		"tier": "MEMBER_USAHA", "type": "PERCENT", "value": 5,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/admin/koperasi/"+kopID+"/margin_rules", ownerToken, gin.H{
		"tier": "MEMBER", "type": "PERCENT", "value": 10,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "hierarchy_violation")
	assert.Contains(t, rec.Body.String(), "MEMBER_USAHA")

	// Unknown koperasi in the public catalog is a 404.
	rec = env.do(t, http.MethodGet, "/api/koperasi/123456789/catalog", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Garbage token on an optional-auth route is still rejected.
	rec = env.do(t, http.MethodGet, "/api/koperasi/"+kopID+"/catalog", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPriceListExport(t *testing.T) {
	env := setupEnv(t)

	_, ownerToken := env.createLogin(t, "owner@sentra.test")

	rec := env.do(t, http.MethodPost, "/api/koperasi", ownerToken, gin.H{"name": "Koperasi Tani"})
	require.Equal(t, http.StatusOK, rec.Code)
	kopID := decodeData(t, rec)["id"].(string)

	rec = env.do(t, http.MethodPost, "/api/admin/koperasi/"+kopID+"/products", ownerToken, gin.H{
		"code": "GULA-01", "name": "Gula Pasir 1kg", "base_price": 18_000, "stock": 40,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/admin/koperasi/"+kopID+"/catalog/matrix", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	require.Len(t, data["rows"].([]any), 1)

	rec = env.do(t, http.MethodGet, "/api/admin/koperasi/"+kopID+"/catalog/export", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}
