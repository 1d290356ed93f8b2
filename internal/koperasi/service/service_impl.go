package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/sentrakoop/sentra/internal/claims"
	"github.com/sentrakoop/sentra/internal/clock"
	"github.com/sentrakoop/sentra/internal/koperasi/domain"
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

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("koperasi.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Create registers a koperasi and records the creator as its first
// owner in the same transaction.
func (s *Service) Create(ctx context.Context, actor *claims.Claims, req domain.CreateRequest) (*domain.Response, error) {
	if actor == nil || actor.UserID == 0 {
		return nil, domain.ErrUnauthorized
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	k := &domain.Koperasi{
		ID:          s.genID.Generate(),
		Name:        name,
		Slug:        slug.Make(name),
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
		Metadata:    req.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, k); err != nil {
			return err
		}
		return s.repo.AddOwner(ctx, tx, &domain.Owner{
			ID:         s.genID.Generate(),
			KoperasiID: k.ID,
			UserID:     actor.UserID,
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugConflict
		}
		return nil, err
	}

	s.log.Info("koperasi created",
		zap.String("koperasi_id", k.ID.String()),
		zap.String("slug", k.Slug),
		zap.String("owner_id", actor.UserID.String()),
	)

	resp := toResponse(k)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	koperasiID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || koperasiID == 0 {
		return nil, domain.ErrInvalidID
	}

	k, err := s.repo.FindByID(ctx, s.db, koperasiID)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(k)
	return &resp, nil
}

func (s *Service) GetBySlug(ctx context.Context, slugValue string) (*domain.Response, error) {
	slugValue = strings.TrimSpace(slugValue)
	if slugValue == "" {
		return nil, domain.ErrInvalidID
	}

	k, err := s.repo.FindBySlug(ctx, s.db, slugValue)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(k)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, actor *claims.Claims, req domain.UpdateRequest) (*domain.Response, error) {
	koperasiID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || koperasiID == 0 {
		return nil, domain.ErrInvalidID
	}
	if !tier.IsOwner(actor, koperasiID) {
		return nil, domain.ErrForbidden
	}

	k, err := s.repo.FindByID(ctx, s.db, koperasiID)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		k.Name = name
	}
	if req.Description != nil {
		k.Description = strings.TrimSpace(*req.Description)
	}
	if req.IsActive != nil {
		k.IsActive = *req.IsActive
	}
	if req.Metadata != nil {
		k.Metadata = req.Metadata
	}
	k.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, k); err != nil {
		return nil, err
	}

	resp := toResponse(k)
	return &resp, nil
}

func (s *Service) OwnershipsByUser(ctx context.Context, userID snowflake.ID) ([]claims.Ownership, error) {
	owners, err := s.repo.ListOwnersByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	facts := make([]claims.Ownership, 0, len(owners))
	for _, o := range owners {
		facts = append(facts, claims.Ownership{
			KoperasiID: o.KoperasiID,
			IsActive:   o.IsActive,
		})
	}
	return facts, nil
}

func toResponse(k *domain.Koperasi) domain.Response {
	return domain.Response{
		ID:          k.ID.String(),
		Name:        k.Name,
		Slug:        k.Slug,
		Description: k.Description,
		IsActive:    k.IsActive,
		Metadata:    k.Metadata,
		CreatedAt:   k.CreatedAt,
		UpdatedAt:   k.UpdatedAt,
	}
}
