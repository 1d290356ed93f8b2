// Package pricing turns base prices into tier prices. Everything here
// is a pure function of its inputs plus the rule lookup the caller
// supplies; prices are int64 minor currency units and rounding is
// half-up, so results are deterministic.
package pricing

import (
	"context"
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
	marginruledomain "github.com/sentrakoop/sentra/internal/marginrule/domain"
	productdomain "github.com/sentrakoop/sentra/internal/product/domain"
	"github.com/sentrakoop/sentra/internal/tier"
)

// RuleLookup resolves the winning margin rule for a (koperasi, tier)
// pair as of a point in time. A nil rule with nil error means "no
// discount".
type RuleLookup func(ctx context.Context, koperasiID snowflake.ID, t tier.Tier, asOf time.Time) (*marginruledomain.MarginRule, error)

// PricedProduct is a catalog entry with its tier price attached. The
// source product is embedded unmodified.
type PricedProduct struct {
	Product     productdomain.Product `json:"product"`
	FinalPrice  int64                 `json:"final_price"`
	DisplayTier tier.Tier             `json:"display_tier"`
}

// ComputeFinalPrice applies a margin rule to a base price. A nil rule
// returns the base price unchanged; results never go below zero.
func ComputeFinalPrice(basePrice int64, rule *marginruledomain.MarginRule) int64 {
	if rule == nil {
		return basePrice
	}

	switch rule.Type {
	case marginruledomain.TypeFlat:
		final := basePrice - roundHalfUp(rule.Value)
		if final < 0 {
			return 0
		}
		return final
	case marginruledomain.TypePercent:
		final := roundHalfUp(float64(basePrice) * (1 - rule.Value/100))
		if final < 0 {
			return 0
		}
		return final
	default:
		return basePrice
	}
}

// ComputeCatalogPrices maps ComputeFinalPrice over a product list for
// one resolved tier. The input slice is never mutated; the single rule
// lookup per call keeps the result consistent across the page.
func ComputeCatalogPrices(ctx context.Context, products []productdomain.Product, t tier.Tier, lookup RuleLookup, koperasiID snowflake.ID, asOf time.Time) ([]PricedProduct, error) {
	var rule *marginruledomain.MarginRule
	if lookup != nil {
		var err error
		rule, err = lookup(ctx, koperasiID, t, asOf)
		if err != nil {
			return nil, err
		}
	}

	priced := make([]PricedProduct, 0, len(products))
	for _, p := range products {
		priced = append(priced, PricedProduct{
			Product:     p,
			FinalPrice:  ComputeFinalPrice(p.BasePrice, rule),
			DisplayTier: t,
		})
	}

	return priced, nil
}

// roundHalfUp rounds to the nearest minor currency unit, halves up.
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
