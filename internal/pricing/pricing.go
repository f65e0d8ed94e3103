// Package pricing derives the monetary summary of a cart. Compute is pure:
// it never mutates the cart and identical inputs always yield identical
// snapshots. All arithmetic is decimal to avoid float drift across repeated
// recomputation.
package pricing

import (
	"strings"

	"github.com/ecomcore/storefront/internal/cart"
	"github.com/ecomcore/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Config struct {
	// Orders strictly above this subtotal ship for free.
	FreeShippingOver decimal.Decimal
	ShippingFee      decimal.Decimal
	TaxRate          decimal.Decimal

	// The one recognized coupon code, matched case-insensitively.
	// Any other code yields zero discount without error.
	CouponCode string
	CouponRate decimal.Decimal

	// Currency used for an empty cart; otherwise the first line decides.
	DefaultCurrency currency.Unit
}

func DefaultConfig() Config {
	return Config{
		FreeShippingOver: decimal.NewFromInt(50),
		ShippingFee:      decimal.RequireFromString("5.99"),
		TaxRate:          decimal.RequireFromString("0.07"),
		CouponCode:       "WELCOME10",
		CouponRate:       decimal.RequireFromString("0.10"),
		DefaultCurrency:  currency.USD,
	}
}

// Snapshot is derived, never stored: total = subtotal + shipping + tax - discount.
type Snapshot struct {
	Subtotal    domain.Money
	ShippingFee domain.Money
	Tax         domain.Money
	Discount    domain.Money
	Total       domain.Money
}

// Compute prices the given lines under the config. No rounding is applied;
// presentation rounding is the caller's concern.
func Compute(cfg Config, lines []cart.Line, couponCode string) Snapshot {
	unit := cfg.DefaultCurrency
	if len(lines) > 0 {
		unit = lines[0].UnitPrice.Currency
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Amount.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	shipping := cfg.ShippingFee
	if subtotal.GreaterThan(cfg.FreeShippingOver) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(cfg.TaxRate)

	discount := decimal.Zero
	if strings.EqualFold(couponCode, cfg.CouponCode) {
		discount = subtotal.Mul(cfg.CouponRate)
	}

	total := subtotal.Add(shipping).Add(tax).Sub(discount)

	return Snapshot{
		Subtotal:    domain.Money{Amount: subtotal, Currency: unit},
		ShippingFee: domain.Money{Amount: shipping, Currency: unit},
		Tax:         domain.Money{Amount: tax, Currency: unit},
		Discount:    domain.Money{Amount: discount, Currency: unit},
		Total:       domain.Money{Amount: total, Currency: unit},
	}
}
