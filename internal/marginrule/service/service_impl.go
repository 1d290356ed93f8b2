package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sentrakoop/sentra/internal/claims"
	"github.com/sentrakoop/sentra/internal/clock"
	"github.com/sentrakoop/sentra/internal/config"
	"github.com/sentrakoop/sentra/internal/marginrule/domain"
	"github.com/sentrakoop/sentra/internal/tier"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReferencePriceSource supplies the base price used to compare FLAT and
// PERCENT rules on a normalized basis. Implemented by the product
// module as the koperasi's catalog average.
type ReferencePriceSource interface {
	ReferenceBasePrice(ctx context.Context, koperasiID snowflake.ID) (int64, error)
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Cfg      config.Config
	Repo     domain.Repository
	RefPrice ReferencePriceSource `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	cfg      config.Config
	repo     domain.Repository
	refPrice ReferencePriceSource
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("marginrule.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		cfg:      p.Cfg,
		repo:     p.Repo,
		refPrice: p.RefPrice,
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
	if !req.Tier.Valid() {
		return nil, domain.ErrInvalidTier
	}
	if !req.Type.Valid() {
		return nil, domain.ErrInvalidType
	}
	if err := validateValue(req.Type, req.Value); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	effectiveFrom := now
	if req.EffectiveFrom != nil {
		effectiveFrom = req.EffectiveFrom.UTC()
	}

	rule := &domain.MarginRule{
		ID:            s.genID.Generate(),
		KoperasiID:    koperasiID,
		Tier:          req.Tier,
		Type:          req.Type,
		Value:         req.Value,
		IsActive:      true,
		EffectiveFrom: effectiveFrom,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.checkHierarchy(ctx, rule); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, s.db, rule); err != nil {
		return nil, err
	}

	s.log.Info("margin rule created",
		zap.String("koperasi_id", koperasiID.String()),
		zap.String("tier", string(rule.Tier)),
		zap.String("type", string(rule.Type)),
		zap.Float64("value", rule.Value),
	)

	resp := toResponse(rule)
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

	ruleID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	rule, err := s.repo.FindByID(ctx, s.db, koperasiID, ruleID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, domain.ErrNotFound
	}

	if req.Value != nil {
		if err := validateValue(rule.Type, *req.Value); err != nil {
			return nil, err
		}
		rule.Value = *req.Value
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	rule.UpdatedAt = s.clock.Now()

	// Deactivation can only widen prices back toward base, never
	// undercut a higher tier, so only active rules need the check.
	if rule.IsActive {
		if err := s.checkHierarchy(ctx, rule); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, s.db, rule); err != nil {
		return nil, err
	}

	resp := toResponse(rule)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, actor *claims.Claims, koperasiID string) ([]domain.Response, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(koperasiID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidKoperasi
	}
	if !tier.IsOwner(actor, id) {
		return nil, domain.ErrForbidden
	}

	rules, err := s.repo.ListByKoperasi(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(rules))
	for i := range rules {
		resp = append(resp, toResponse(&rules[i]))
	}
	return resp, nil
}

// GetActiveRule is the read path used for pricing. It performs no
// ownership check and must tolerate rule sets written before the
// hierarchy invariant existed.
func (s *Service) GetActiveRule(ctx context.Context, koperasiID snowflake.ID, t tier.Tier, asOf time.Time) (*domain.MarginRule, error) {
	if koperasiID == 0 || !t.Valid() {
		return nil, nil
	}
	return s.repo.FindActive(ctx, s.db, koperasiID, t, asOf)
}

// checkHierarchy verifies that with the candidate rule in place, the
// normalized reduction never shrinks as privilege grows. The rule set
// in force changes at each effective_from, so the invariant is checked
// at the candidate's effective time and again at every later
// activation among the koperasi's active rules; a backdated rule may
// not sneak under a future-dated one. Tiers without a rule at a given
// instant are skipped: a missing rule means "price at base" and
// blocking the first rule of a koperasi would make the invariant
// unsatisfiable.
func (s *Service) checkHierarchy(ctx context.Context, candidate *domain.MarginRule) error {
	refPrice := s.referenceBasePrice(ctx, candidate.KoperasiID)

	existing, err := s.repo.ListByKoperasi(ctx, s.db, candidate.KoperasiID)
	if err != nil {
		return err
	}

	rules := make([]*domain.MarginRule, 0, len(existing)+1)
	for i := range existing {
		r := &existing[i]
		// On updates the candidate replaces its stored version.
		if r.ID == candidate.ID || !r.IsActive {
			continue
		}
		rules = append(rules, r)
	}
	rules = append(rules, candidate)

	instants := []time.Time{candidate.EffectiveFrom}
	for _, r := range rules {
		if r.EffectiveFrom.After(candidate.EffectiveFrom) {
			instants = append(instants, r.EffectiveFrom)
		}
	}

	for _, at := range instants {
		if err := checkHierarchyAt(rules, refPrice, at); err != nil {
			return err
		}
	}
	return nil
}

// checkHierarchyAt evaluates the invariant against the rule set in
// force at one instant.
func checkHierarchyAt(rules []*domain.MarginRule, refPrice int64, at time.Time) error {
	type tierRule struct {
		t    tier.Tier
		rule *domain.MarginRule
	}

	ordered := make([]tierRule, 0, 3)
	for _, t := range tier.All() {
		if rule := winningRule(rules, t, at); rule != nil {
			ordered = append(ordered, tierRule{t: t, rule: rule})
		}
	}

	for i := 1; i < len(ordered); i++ {
		lower, upper := ordered[i-1], ordered[i]
		lowerReduction := lower.rule.Reduction(refPrice)
		upperReduction := upper.rule.Reduction(refPrice)
		if lowerReduction > upperReduction {
			return &domain.HierarchyViolationError{
				Tier:           lower.t,
				Reduction:      lowerReduction,
				UpperTier:      upper.t,
				UpperReduction: upperReduction,
			}
		}
	}

	return nil
}

// winningRule mirrors the repository's FindActive ordering: latest
// effective_from at or before the instant wins, ties go to the newest
// rule.
func winningRule(rules []*domain.MarginRule, t tier.Tier, at time.Time) *domain.MarginRule {
	var winner *domain.MarginRule
	for _, r := range rules {
		if r.Tier != t || r.EffectiveFrom.After(at) {
			continue
		}
		if winner == nil ||
			r.EffectiveFrom.After(winner.EffectiveFrom) ||
			(r.EffectiveFrom.Equal(winner.EffectiveFrom) && r.CreatedAt.After(winner.CreatedAt)) {
			winner = r
		}
	}
	return winner
}

func (s *Service) referenceBasePrice(ctx context.Context, koperasiID snowflake.ID) int64 {
	if s.refPrice != nil {
		avg, err := s.refPrice.ReferenceBasePrice(ctx, koperasiID)
		if err != nil {
			s.log.Warn("reference base price lookup failed, using sentinel",
				zap.String("koperasi_id", koperasiID.String()), zap.Error(err))
		} else if avg > 0 {
			return avg
		}
	}
	return s.cfg.ReferenceBasePrice
}

func validateValue(ruleType domain.RuleType, value float64) error {
	if value < 0 {
		return domain.ErrInvalidValue
	}
	if ruleType == domain.TypePercent && value > 100 {
		return domain.ErrInvalidValue
	}
	return nil
}

func toResponse(rule *domain.MarginRule) domain.Response {
	return domain.Response{
		ID:            rule.ID.String(),
		KoperasiID:    rule.KoperasiID.String(),
		Tier:          rule.Tier,
		Type:          rule.Type,
		Value:         rule.Value,
		IsActive:      rule.IsActive,
		EffectiveFrom: rule.EffectiveFrom,
		CreatedAt:     rule.CreatedAt,
		UpdatedAt:     rule.UpdatedAt,
	}
}
