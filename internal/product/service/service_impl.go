package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/sentrakoop/sentra/internal/claims"
	"github.com/sentrakoop/sentra/internal/clock"
	"github.com/sentrakoop/sentra/internal/product/domain"
	"github.com/sentrakoop/sentra/internal/tier"
	"github.com/sentrakoop/sentra/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) *Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("product.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, actor *claims.Claims, req domain.CreateRequest) (*domain.Response, error) {
	koperasiID, err := snowflake.ParseString(strings.TrimSpace(req.KoperasiID))
	if err != nil || koperasiID == 0 {
		return nil, domain.ErrInvalidKoperasi
	}
	if !tier.IsOwner(actor, koperasiID) {
		return nil, domain.ErrForbidden
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, domain.ErrInvalidCode
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.BasePrice <= 0 {
		return nil, domain.ErrInvalidBasePrice
	}
	if req.Stock < 0 {
		return nil, domain.ErrInvalidStock
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now()
	product := &domain.Product{
		ID:          s.genID.Generate(),
		KoperasiID:  koperasiID,
		Code:        code,
		Name:        name,
		Category:    strings.TrimSpace(req.Category),
		Description: req.Description,
		BasePrice:   req.BasePrice,
		Stock:       req.Stock,
		Active:      active,
		Metadata:    req.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, s.db, product); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, err
	}

	s.log.Info("product created",
		zap.String("koperasi_id", koperasiID.String()),
		zap.String("product_id", product.ID.String()),
		zap.String("code", product.Code),
	)

	resp := toResponse(product)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	koperasiID, err := snowflake.ParseString(strings.TrimSpace(req.KoperasiID))
	if err != nil || koperasiID == 0 {
		return nil, domain.ErrInvalidKoperasi
	}

	products, err := s.repo.List(ctx, s.db, koperasiID, req)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(products))
	for i := range products {
		resp = append(resp, toResponse(&products[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, koperasiID, id string) (*domain.Response, error) {
	kid, err := snowflake.ParseString(strings.TrimSpace(koperasiID))
	if err != nil || kid == 0 {
		return nil, domain.ErrInvalidKoperasi
	}
	pid, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	product, err := s.repo.FindByID(ctx, s.db, kid, pid)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(product)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, actor *claims.Claims, req domain.UpdateRequest) (*domain.Response, error) {
	koperasiID, err := snowflake.ParseString(strings.TrimSpace(req.KoperasiID))
	if err != nil || koperasiID == 0 {
		return nil, domain.ErrInvalidKoperasi
	}
	if !tier.IsOwner(actor, koperasiID) {
		return nil, domain.ErrForbidden
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	product, err := s.repo.FindByID(ctx, s.db, koperasiID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		product.Name = name
	}
	if req.Category != nil {
		product.Category = strings.TrimSpace(*req.Category)
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.BasePrice != nil {
		if *req.BasePrice <= 0 {
			return nil, domain.ErrInvalidBasePrice
		}
		product.BasePrice = *req.BasePrice
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, domain.ErrInvalidStock
		}
		product.Stock = *req.Stock
	}
	if req.Active != nil {
		product.Active = *req.Active
	}
	if req.Metadata != nil {
		product.Metadata = req.Metadata
	}
	product.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, product); err != nil {
		return nil, err
	}

	resp := toResponse(product)
	return &resp, nil
}

// Archive deactivates a product so it drops out of the public catalog
// without losing its history.
func (s *Service) Archive(ctx context.Context, actor *claims.Claims, koperasiID, id string) (*domain.Response, error) {
	inactive := false
	return s.Update(ctx, actor, domain.UpdateRequest{
		ID:         id,
		KoperasiID: koperasiID,
		Active:     &inactive,
	})
}

// ReferenceBasePrice reports the catalog's average active base price,
// used to compare FLAT and PERCENT margin rules on a common basis.
func (s *Service) ReferenceBasePrice(ctx context.Context, koperasiID snowflake.ID) (int64, error) {
	return s.repo.AverageBasePrice(ctx, s.db, koperasiID)
}

func toResponse(product *domain.Product) domain.Response {
	return domain.Response{
		ID:          product.ID.String(),
		KoperasiID:  product.KoperasiID.String(),
		Code:        product.Code,
		Name:        product.Name,
		Category:    product.Category,
		Description: product.Description,
		BasePrice:   product.BasePrice,
		Stock:       product.Stock,
		Active:      product.Active,
		Metadata:    product.Metadata,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}
