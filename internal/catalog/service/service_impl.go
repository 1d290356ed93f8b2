package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/sentrakoop/sentra/internal/catalog/domain"
	"github.com/sentrakoop/sentra/internal/claims"
	"github.com/sentrakoop/sentra/internal/clock"
	koperasidomain "github.com/sentrakoop/sentra/internal/koperasi/domain"
	marginruledomain "github.com/sentrakoop/sentra/internal/marginrule/domain"
	"github.com/sentrakoop/sentra/internal/pricing"
	productdomain "github.com/sentrakoop/sentra/internal/product/domain"
	"github.com/sentrakoop/sentra/internal/tier"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	ProductRepo  productdomain.Repository
	KoperasiRepo koperasidomain.Repository
	Rules        marginruledomain.Service
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	productRepo  productdomain.Repository
	koperasiRepo koperasidomain.Repository
	rules        marginruledomain.Service
}

func New(p Params) catalogdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("catalog.service"),
		clock:        p.Clock,
		productRepo:  p.ProductRepo,
		koperasiRepo: p.KoperasiRepo,
		rules:        p.Rules,
	}
}

// Browse prices the catalog for whoever is asking. Anonymous callers
// and holders of pending or rejected applications see UMUM prices.
func (s *Service) Browse(ctx context.Context, actor *claims.Claims, req catalogdomain.BrowseRequest) (*catalogdomain.BrowseResponse, error) {
	koperasiID, k, err := s.findKoperasi(ctx, req.KoperasiID)
	if err != nil {
		return nil, err
	}
	if k == nil || !k.IsActive {
		return nil, catalogdomain.ErrNotFound
	}

	resolved := tier.Resolve(actor, koperasiID)
	asOf := s.clock.Now()

	products, err := s.listActive(ctx, koperasiID, req)
	if err != nil {
		return nil, err
	}

	priced, err := pricing.ComputeCatalogPrices(ctx, products, resolved, s.rules.GetActiveRule, koperasiID, asOf)
	if err != nil {
		return nil, err
	}

	items := make([]catalogdomain.Entry, 0, len(priced))
	for _, p := range priced {
		items = append(items, catalogdomain.Entry{
			ProductID:  p.Product.ID.String(),
			Code:       p.Product.Code,
			Name:       p.Product.Name,
			Category:   p.Product.Category,
			BasePrice:  p.Product.BasePrice,
			FinalPrice: p.FinalPrice,
			Stock:      p.Product.Stock,
		})
	}

	return &catalogdomain.BrowseResponse{
		KoperasiID: koperasiID.String(),
		Tier:       resolved,
		AsOf:       asOf,
		Items:      items,
	}, nil
}

func (s *Service) PriceMatrix(ctx context.Context, actor *claims.Claims, koperasiID string) (*catalogdomain.Matrix, error) {
	id, k, err := s.findKoperasi(ctx, koperasiID)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, catalogdomain.ErrNotFound
	}
	if !tier.IsOwner(actor, id) {
		return nil, catalogdomain.ErrForbidden
	}

	asOf := s.clock.Now()
	products, err := s.listActive(ctx, id, catalogdomain.BrowseRequest{})
	if err != nil {
		return nil, err
	}

	rulesByTier := make(map[tier.Tier]*marginruledomain.MarginRule, 3)
	for _, t := range tier.All() {
		rule, err := s.rules.GetActiveRule(ctx, id, t, asOf)
		if err != nil {
			return nil, err
		}
		rulesByTier[t] = rule
	}

	rows := make([]catalogdomain.MatrixRow, 0, len(products))
	for _, p := range products {
		prices := make(map[tier.Tier]int64, 3)
		for _, t := range tier.All() {
			prices[t] = pricing.ComputeFinalPrice(p.BasePrice, rulesByTier[t])
		}
		rows = append(rows, catalogdomain.MatrixRow{
			ProductID: p.ID.String(),
			Code:      p.Code,
			Name:      p.Name,
			BasePrice: p.BasePrice,
			Prices:    prices,
		})
	}

	return &catalogdomain.Matrix{
		KoperasiID:   id.String(),
		KoperasiName: k.Name,
		AsOf:         asOf,
		Rows:         rows,
	}, nil
}

func (s *Service) findKoperasi(ctx context.Context, raw string) (snowflake.ID, *koperasidomain.Koperasi, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, nil, catalogdomain.ErrInvalidKoperasi
	}
	k, err := s.koperasiRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return 0, nil, err
	}
	return id, k, nil
}

func (s *Service) listActive(ctx context.Context, koperasiID snowflake.ID, req catalogdomain.BrowseRequest) ([]productdomain.Product, error) {
	active := true
	return s.productRepo.List(ctx, s.db, koperasiID, productdomain.ListRequest{
		Name:     req.Name,
		Category: req.Category,
		Active:   &active,
		SortBy:   req.SortBy,
		OrderBy:  req.OrderBy,
	})
}
