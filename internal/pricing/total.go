// Package pricing считает итог HT avenant в десятичной арифметике.
package pricing

import (
	"github.com/shopspring/decimal"

	"chantierplus/internal/apperr"
	"chantierplus/internal/models"
)

// Inputs — ценовые поля запроса; nil означает «не передано».
type Inputs struct {
	Mode       models.PricingMode
	Price      *decimal.Decimal
	Hours      *decimal.Decimal
	HourlyRate *decimal.Decimal
}

// Total: FORFAIT → price; REGIE → hours × hourly_rate. Поля другого режима игнорируются.
func Total(in Inputs) (decimal.Decimal, error) {
	switch in.Mode {
	case models.ModeForfait:
		if in.Price == nil {
			return decimal.Zero, apperr.Validation("price is required for FORFAIT")
		}
		if in.Price.IsNegative() {
			return decimal.Zero, apperr.Validation("price must not be negative")
		}
		return *in.Price, nil
	case models.ModeRegie:
		if in.Hours == nil || in.HourlyRate == nil {
			return decimal.Zero, apperr.Validation("hours and hourly_rate are required for REGIE")
		}
		if in.Hours.IsNegative() || in.HourlyRate.IsNegative() {
			return decimal.Zero, apperr.Validation("hours and hourly_rate must not be negative")
		}
		return in.Hours.Mul(*in.HourlyRate), nil
	default:
		return decimal.Zero, apperr.Validation("type must be FORFAIT or REGIE, got %q", in.Mode)
	}
}

// Nullable — значение для сохранения в nullable-колонку.
func Nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
