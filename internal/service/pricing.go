package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

type Pricing struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		FreeShippingThreshold: decimal.NewFromInt(100),
		ShippingFee:           decimal.NewFromInt(10),
		TaxRate:               decimal.RequireFromString("0.10"),
	}
}

type Quote struct {
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

// Quote prices a subtotal: shipping is free at or above the threshold and tax
// is rounded to cents.
func (p Pricing) Quote(subtotal decimal.Decimal) Quote {
	fee := p.ShippingFee
	if subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		fee = decimal.Zero
	}
	tax := subtotal.Mul(p.TaxRate).Round(2)
	return Quote{
		Subtotal:    subtotal.Round(2),
		ShippingFee: fee.Round(2),
		Tax:         tax,
		Total:       subtotal.Add(fee).Add(tax).Round(2),
	}
}

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderNumber returns ORD-<unix ms>-<9 upper-case base36 characters>.
func NewOrderNumber(now time.Time) (string, error) {
	suffix := make([]byte, 9)
	limit := big.NewInt(int64(len(base36)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("order number: %w", err)
		}
		suffix[i] = base36[n.Int64()]
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix), nil
}
