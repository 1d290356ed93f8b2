package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sentrakoop/sentra/internal/auth"
	authdomain "github.com/sentrakoop/sentra/internal/auth/domain"
	"github.com/sentrakoop/sentra/internal/authorization"
	"github.com/sentrakoop/sentra/internal/catalog"
	catalogdomain "github.com/sentrakoop/sentra/internal/catalog/domain"
	"github.com/sentrakoop/sentra/internal/config"
	"github.com/sentrakoop/sentra/internal/koperasi"
	koperasidomain "github.com/sentrakoop/sentra/internal/koperasi/domain"
	"github.com/sentrakoop/sentra/internal/marginrule"
	marginruledomain "github.com/sentrakoop/sentra/internal/marginrule/domain"
	"github.com/sentrakoop/sentra/internal/membership"
	membershipdomain "github.com/sentrakoop/sentra/internal/membership/domain"
	obsmetrics "github.com/sentrakoop/sentra/internal/observability/metrics"
	obstracing "github.com/sentrakoop/sentra/internal/observability/tracing"
	"github.com/sentrakoop/sentra/internal/product"
	productdomain "github.com/sentrakoop/sentra/internal/product/domain"
	"github.com/sentrakoop/sentra/internal/providers/pdf"
	"github.com/sentrakoop/sentra/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	authorization.Module,
	auth.Module,
	koperasi.Module,
	membership.Module,
	marginrule.Module,
	product.Module,
	catalog.Module,
	ratelimit.Module,
	pdf.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogging(log))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", httpMetrics.Handler())

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	authsvc       authdomain.Service
	authzSvc      authorization.Service
	koperasiSvc   koperasidomain.Service
	membershipSvc membershipdomain.Service
	marginRuleSvc marginruledomain.Service
	productSvc    productdomain.Service
	catalogSvc    catalogdomain.Service
	pdfProvider   pdf.Provider
	applyLimiter  *ratelimit.ApplyLimiter
	metrics       *obsmetrics.HTTPMetrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Authsvc       authdomain.Service
	AuthzSvc      authorization.Service
	KoperasiSvc   koperasidomain.Service
	MembershipSvc membershipdomain.Service
	MarginRuleSvc marginruledomain.Service
	ProductSvc    productdomain.Service
	CatalogSvc    catalogdomain.Service
	PDFProvider   pdf.Provider
	ApplyLimiter  *ratelimit.ApplyLimiter `optional:"true"`
	Metrics       *obsmetrics.HTTPMetrics
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		authsvc:       p.Authsvc,
		authzSvc:      p.AuthzSvc,
		koperasiSvc:   p.KoperasiSvc,
		membershipSvc: p.MembershipSvc,
		marginRuleSvc: p.MarginRuleSvc,
		productSvc:    p.ProductSvc,
		catalogSvc:    p.CatalogSvc,
		pdfProvider:   p.PDFProvider,
		applyLimiter:  p.ApplyLimiter,
		metrics:       p.Metrics,
	}
}

func registerRoutes(s *Server) {
	s.registerPublicRoutes()
	s.registerMemberRoutes()
	s.registerAdminRoutes()
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerPublicRoutes() {
	api := s.engine.Group("/api")

	api.GET("/koperasi", s.ListKoperasi)
	api.GET("/koperasi/:id", s.GetKoperasi)
	api.GET("/koperasi/:id/catalog", s.OptionalAuth(), s.BrowseCatalog)
}

func (s *Server) registerMemberRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	api.POST("/koperasi", s.CreateKoperasi)
	api.POST("/koperasi/:id/memberships", s.ApplyRateLimit(), s.ApplyMembership)
	api.GET("/me/memberships", s.ListMyMemberships)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin/koperasi/:id", s.AuthRequired())

	admin.PATCH("", s.UpdateKoperasi)

	// -------- Margin rules --------
	admin.GET("/margin_rules",
		s.authorizeKoperasiAction(authorization.ObjectMarginRule, authorization.ActionMarginRuleView), s.ListMarginRules)
	admin.POST("/margin_rules",
		s.authorizeKoperasiAction(authorization.ObjectMarginRule, authorization.ActionMarginRuleCreate), s.CreateMarginRule)
	admin.PATCH("/margin_rules/:ruleId",
		s.authorizeKoperasiAction(authorization.ObjectMarginRule, authorization.ActionMarginRuleUpdate), s.UpdateMarginRule)

	// -------- Membership applications --------
	admin.GET("/memberships",
		s.authorizeKoperasiAction(authorization.ObjectMembership, authorization.ActionMembershipDecide), s.ListKoperasiMemberships)
	admin.POST("/memberships/:applicationId/decide",
		s.authorizeKoperasiAction(authorization.ObjectMembership, authorization.ActionMembershipDecide), s.DecideMembership)

	// -------- Products --------
	admin.GET("/products",
		s.authorizeKoperasiAction(authorization.ObjectProduct, authorization.ActionProductView), s.ListProducts)
	admin.POST("/products",
		s.authorizeKoperasiAction(authorization.ObjectProduct, authorization.ActionProductCreate), s.CreateProduct)
	admin.GET("/products/:productId",
		s.authorizeKoperasiAction(authorization.ObjectProduct, authorization.ActionProductView), s.GetProduct)
	admin.PATCH("/products/:productId",
		s.authorizeKoperasiAction(authorization.ObjectProduct, authorization.ActionProductUpdate), s.UpdateProduct)
	admin.POST("/products/:productId/archive",
		s.authorizeKoperasiAction(authorization.ObjectProduct, authorization.ActionProductArchive), s.ArchiveProduct)

	// -------- Price matrix --------
	admin.GET("/catalog/matrix",
		s.authorizeKoperasiAction(authorization.ObjectCatalog, authorization.ActionCatalogExport), s.PriceMatrix)
	admin.GET("/catalog/export",
		s.authorizeKoperasiAction(authorization.ObjectCatalog, authorization.ActionCatalogExport), s.ExportPriceList)
}
