package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/sentrakoop/sentra/internal/claims"
	"github.com/sentrakoop/sentra/internal/clock"
	"github.com/sentrakoop/sentra/internal/membership/domain"
	"github.com/sentrakoop/sentra/internal/tier"
	"github.com/sentrakoop/sentra/pkg/db/pagination"
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
		log:   p.Log.Named("membership.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Apply(ctx context.Context, actor *claims.Claims, req domain.ApplyRequest) (*domain.Response, error) {
	if actor == nil || actor.UserID == 0 {
		return nil, domain.ErrUnauthorized
	}

	koperasiID, err := snowflake.ParseString(strings.TrimSpace(req.KoperasiID))
	if err != nil || koperasiID == 0 {
		return nil, domain.ErrInvalidKoperasi
	}
	if !req.Kind.Valid() {
		return nil, domain.ErrInvalidKind
	}

	pending, err := s.repo.HasPending(ctx, s.db, actor.UserID, koperasiID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, domain.ErrDuplicateApplication
	}

	now := s.clock.Now()
	app := &domain.Application{
		ID:         s.genID.Generate(),
		Code:       ulid.Make().String(),
		UserID:     actor.UserID,
		KoperasiID: koperasiID,
		Kind:       req.Kind,
		Status:     domain.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, s.db, app); err != nil {
		return nil, err
	}

	s.log.Info("membership application submitted",
		zap.String("application_id", app.ID.String()),
		zap.String("koperasi_id", koperasiID.String()),
		zap.String("kind", string(app.Kind)),
	)

	resp := toResponse(app)
	return &resp, nil
}

// Decide resolves a pending application. Only an active owner of the
// target koperasi may decide, and only once: the guarded transition in
// the repository makes concurrent decisions race to a single winner.
func (s *Service) Decide(ctx context.Context, actor *claims.Claims, req domain.DecideRequest) (*domain.Response, error) {
	if actor == nil || actor.UserID == 0 {
		return nil, domain.ErrUnauthorized
	}

	appID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var to domain.Status
	switch req.Decision {
	case domain.DecisionApprove:
		to = domain.StatusActive
	case domain.DecisionReject:
		to = domain.StatusRejected
	default:
		return nil, domain.ErrInvalidDecision
	}

	app, err := s.repo.FindByID(ctx, s.db, appID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, domain.ErrNotFound
	}

	if !tier.IsOwner(actor, app.KoperasiID) {
		return nil, domain.ErrForbidden
	}
	if app.Status != domain.StatusPending {
		return nil, domain.ErrInvalidTransition
	}

	decidedAt := s.clock.Now()
	rows, err := s.repo.Transition(ctx, s.db, app.ID, domain.StatusPending, to, actor.UserID, decidedAt)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// lost the race against another decision
		return nil, domain.ErrInvalidTransition
	}

	app.Status = to
	app.DecidedBy = &actor.UserID
	app.DecidedAt = &decidedAt
	app.UpdatedAt = decidedAt

	s.log.Info("membership application decided",
		zap.String("application_id", app.ID.String()),
		zap.String("koperasi_id", app.KoperasiID.String()),
		zap.String("status", string(to)),
		zap.String("decided_by", actor.UserID.String()),
	)

	resp := toResponse(app)
	return &resp, nil
}

func (s *Service) ListByUser(ctx context.Context, actor *claims.Claims) ([]domain.Response, error) {
	if actor == nil || actor.UserID == 0 {
		return nil, domain.ErrUnauthorized
	}

	apps, err := s.repo.ListByUser(ctx, s.db, actor.UserID)
	if err != nil {
		return nil, err
	}
	return toResponses(apps), nil
}

func (s *Service) ListByKoperasi(ctx context.Context, actor *claims.Claims, req domain.ListByKoperasiRequest) (*domain.ListResponse, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.KoperasiID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidKoperasi
	}
	if !tier.IsOwner(actor, id) {
		return nil, domain.ErrForbidden
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 250 {
		pageSize = 250
	}

	items, err := s.repo.ListByKoperasi(ctx, s.db, id, req.Status, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(app *domain.Application) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        app.ID.String(),
			CreatedAt: app.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	resp := &domain.ListResponse{
		Applications: make([]domain.Response, 0, len(items)),
		PageInfo:     *pageInfo,
	}
	for _, app := range items {
		resp.Applications = append(resp.Applications, toResponse(app))
	}
	return resp, nil
}

func (s *Service) ActiveByUser(ctx context.Context, userID snowflake.ID) ([]domain.Application, error) {
	if userID == 0 {
		return nil, nil
	}
	return s.repo.ListActiveByUser(ctx, s.db, userID)
}

func toResponse(app *domain.Application) domain.Response {
	resp := domain.Response{
		ID:         app.ID.String(),
		Code:       app.Code,
		UserID:     app.UserID.String(),
		KoperasiID: app.KoperasiID.String(),
		Kind:       app.Kind,
		Status:     app.Status,
		DecidedAt:  app.DecidedAt,
		CreatedAt:  app.CreatedAt,
	}
	if app.DecidedBy != nil {
		decidedBy := app.DecidedBy.String()
		resp.DecidedBy = &decidedBy
	}
	return resp
}

func toResponses(apps []domain.Application) []domain.Response {
	resp := make([]domain.Response, 0, len(apps))
	for i := range apps {
		resp = append(resp, toResponse(&apps[i]))
	}
	return resp
}
