package domain

import (
	"errors"
	"fmt"

	"github.com/sentrakoop/sentra/internal/tier"
)

var (
	ErrInvalidKoperasi      = errors.New("invalid_koperasi")
	ErrInvalidTier          = errors.New("invalid_tier")
	ErrInvalidType          = errors.New("invalid_type")
	ErrInvalidValue         = errors.New("invalid_value")
	ErrInvalidEffectiveFrom = errors.New("invalid_effective_from")
	ErrInvalidID            = errors.New("invalid_id")
	ErrNotFound             = errors.New("not_found")
	ErrForbidden            = errors.New("forbidden")

	// ErrHierarchyViolation is the sentinel wrapped by HierarchyViolationError.
	ErrHierarchyViolation = errors.New("hierarchy_violation")
)

// HierarchyViolationError reports a write that would price a
// more-privileged tier above a less-privileged one: the normalized
// reduction for a lower tier may never exceed the reduction for a tier
// above it.
type HierarchyViolationError struct {
	// Tier is the less-privileged tier whose reduction is too large.
	Tier      tier.Tier
	Reduction float64
	// UpperTier is the more-privileged tier being undercut.
	UpperTier      tier.Tier
	UpperReduction float64
}

func (e *HierarchyViolationError) Error() string {
	return fmt.Sprintf("margin hierarchy violated: %s reduction %.4f exceeds %s reduction %.4f",
		e.Tier, e.Reduction, e.UpperTier, e.UpperReduction)
}

func (e *HierarchyViolationError) Unwrap() error {
	return ErrHierarchyViolation
}
