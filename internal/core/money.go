package core

import (
	"strings"

	"github.com/shopspring/decimal"

	ierr "liquidity/internal/errors"
)

// ParseAmount parses a positive decimal amount. Both dot (12.34) and comma (12,34)
// separators are accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, validationError("amount is required", nil)
	}
	s = strings.ReplaceAll(s, ",", ".")
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, validationError("invalid amount", map[string]any{"amount": s})
	}
	if !amount.IsPositive() {
		return decimal.Zero, ierr.NewError("amount must be greater than zero").
			WithHint("amount must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	return amount, nil
}
