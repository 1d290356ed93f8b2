package domain

import (
	"context"

	"github.com/sentrakoop/sentra/internal/claims"
)

// Service validates bearer tokens and produces the caller's claims
// snapshot. Session issuance lives outside this service; the seeded
// admin and the test suite create sessions through the repository.
type Service interface {
	Authenticate(ctx context.Context, rawToken string) (*claims.Claims, error)
}
