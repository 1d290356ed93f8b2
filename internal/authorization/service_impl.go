// Package authorization enforces koperasi-scoped capabilities with
// casbin. It layers on top of the explicit ownership checks inside the
// services; a request must pass both.
package authorization

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectMarginRule = "margin_rule"
	ObjectMembership = "membership"
	ObjectProduct    = "product"
	ObjectCatalog    = "catalog"
)

const (
	ActionCatalogView   = "catalog.view"
	ActionCatalogExport = "catalog.export"

	ActionMarginRuleView   = "margin_rule.view"
	ActionMarginRuleCreate = "margin_rule.create"
	ActionMarginRuleUpdate = "margin_rule.update"

	ActionMembershipView   = "membership.view"
	ActionMembershipApply  = "membership.apply"
	ActionMembershipDecide = "membership.decide"

	ActionProductView    = "product.view"
	ActionProductCreate  = "product.create"
	ActionProductUpdate  = "product.update"
	ActionProductArchive = "product.archive"
)

const (
	roleOwner  = "role:owner"
	roleMember = "role:member"
	roleUmum   = "role:umum"
)

var (
	ErrInvalidActor    = errors.New("invalid_actor")
	ErrInvalidKoperasi = errors.New("invalid_koperasi")
	ErrInvalidObject   = errors.New("invalid_object")
	ErrInvalidAction   = errors.New("invalid_action")
	ErrForbidden       = errors.New("forbidden")
)

type Service interface {
	Authorize(ctx context.Context, actor string, koperasiID string, object string, action string) error
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, koperasiID string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	koperasiID = strings.TrimSpace(koperasiID)
	if koperasiID == "" {
		return ErrInvalidKoperasi
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, err := s.resolveActor(ctx, actor, koperasiID)
	if err != nil {
		return err
	}

	scope := fmt.Sprintf("koperasi:%s", koperasiID)
	if err := s.ensureGrouping(subject, roleName, scope); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, scope, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("subject", subject),
			zap.String("koperasi_id", koperasiID),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string, koperasiID string) (string, string, error) {
	if !strings.HasPrefix(actor, "user:") {
		return "", "", ErrInvalidActor
	}

	userIDRaw := strings.TrimPrefix(actor, "user:")
	userID, err := snowflake.ParseString(userIDRaw)
	if err != nil || userID == 0 {
		return "", "", ErrInvalidActor
	}
	parsedKoperasiID, err := snowflake.ParseString(koperasiID)
	if err != nil || parsedKoperasiID == 0 {
		return "", "", ErrInvalidKoperasi
	}

	role, err := s.roleForUser(ctx, parsedKoperasiID, userID)
	if err != nil {
		return "", "", err
	}
	return actor, role, nil
}

// roleForUser derives the actor's role in a koperasi from the same
// relations the claims builder reads: owners first, then active
// memberships, everyone else is umum.
func (s *ServiceImpl) roleForUser(ctx context.Context, koperasiID snowflake.ID, userID snowflake.ID) (string, error) {
	var ownerCount int64
	if err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM koperasi_owners
		 WHERE koperasi_id = ? AND user_id = ? AND is_active = ?`,
		koperasiID, userID, true,
	).Scan(&ownerCount).Error; err != nil {
		return "", err
	}
	if ownerCount > 0 {
		return roleOwner, nil
	}

	var memberCount int64
	if err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM membership_applications
		 WHERE koperasi_id = ? AND user_id = ? AND status = ?`,
		koperasiID, userID, "ACTIVE",
	).Scan(&memberCount).Error; err != nil {
		return "", err
	}
	if memberCount > 0 {
		return roleMember, nil
	}

	return roleUmum, nil
}

func (s *ServiceImpl) ensureGrouping(subject string, roleName string, scope string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", scope)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, scope)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, scope)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{roleUmum, ObjectCatalog, ActionCatalogView},
		{roleUmum, ObjectMembership, ActionMembershipApply},

		{roleMember, ObjectCatalog, ActionCatalogView},
		{roleMember, ObjectMembership, ActionMembershipApply},
		{roleMember, ObjectMembership, ActionMembershipView},

		{roleOwner, ObjectCatalog, ActionCatalogView},
		{roleOwner, ObjectCatalog, ActionCatalogExport},
		{roleOwner, ObjectMarginRule, ActionMarginRuleView},
		{roleOwner, ObjectMarginRule, ActionMarginRuleCreate},
		{roleOwner, ObjectMarginRule, ActionMarginRuleUpdate},
		{roleOwner, ObjectMembership, ActionMembershipApply},
		{roleOwner, ObjectMembership, ActionMembershipView},
		{roleOwner, ObjectMembership, ActionMembershipDecide},
		{roleOwner, ObjectProduct, ActionProductView},
		{roleOwner, ObjectProduct, ActionProductCreate},
		{roleOwner, ObjectProduct, ActionProductUpdate},
		{roleOwner, ObjectProduct, ActionProductArchive},
	}

	for _, p := range policies {
		has, err := enforcer.HasPolicy(p[0], p[1], p[2])
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return err
		}
	}
	return nil
}

var Module = fx.Module("authorization.service",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)
