package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/sentrakoop/sentra/internal/auth/domain"
	"github.com/sentrakoop/sentra/internal/claims"
	"github.com/sentrakoop/sentra/internal/clock"
	membershipdomain "github.com/sentrakoop/sentra/internal/membership/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OwnershipSource supplies the caller's koperasi ownerships. The
// koperasi service implements it.
type OwnershipSource interface {
	OwnershipsByUser(ctx context.Context, userID snowflake.ID) ([]claims.Ownership, error)
}

// MembershipSource supplies the caller's active memberships. The
// membership service implements it.
type MembershipSource interface {
	ActiveByUser(ctx context.Context, userID snowflake.ID) ([]membershipdomain.Application, error)
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Repo        domain.Repository
	Sessions    domain.SessionRepository
	Ownerships  OwnershipSource
	Memberships MembershipSource
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	repo        domain.Repository
	sessions    domain.SessionRepository
	ownerships  OwnershipSource
	memberships MembershipSource
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("auth.service"),
		clock:       p.Clock,
		repo:        p.Repo,
		sessions:    p.Sessions,
		ownerships:  p.Ownerships,
		memberships: p.Memberships,
	}
}

// Authenticate resolves a bearer token to a fresh claims snapshot:
// token hash -> session -> user, then the ownership and membership
// facts as of now. Decisions made after the snapshot is built are not
// reflected until the next request.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*claims.Claims, error) {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return nil, domain.ErrInvalidSession
	}

	session, err := s.sessions.FindByTokenHash(ctx, s.db, HashToken(token))
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrInvalidSession
	}

	now := s.clock.Now()
	if session.RevokedAt != nil {
		return nil, domain.ErrSessionRevoked
	}
	if now.After(session.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}

	user, err := s.repo.FindUserByID(ctx, s.db, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	if err := s.sessions.UpdateLastSeen(ctx, s.db, session.ID, now); err != nil {
		return nil, err
	}

	return s.buildClaims(ctx, user)
}

func (s *Service) buildClaims(ctx context.Context, user *domain.User) (*claims.Claims, error) {
	ownerships, err := s.ownerships.OwnershipsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	apps, err := s.memberships.ActiveByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	memberships := make([]claims.Membership, 0, len(apps))
	for _, app := range apps {
		memberships = append(memberships, claims.Membership{
			KoperasiID: app.KoperasiID,
			Status:     claims.MembershipStatus(app.Status),
			Kind:       claims.MembershipKind(app.Kind),
		})
	}

	return &claims.Claims{
		UserID:        user.ID,
		Email:         user.Email,
		OwnedKoperasi: ownerships,
		Memberships:   memberships,
	}, nil
}

// HashToken derives the stored lookup key from a raw bearer token.
func HashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
