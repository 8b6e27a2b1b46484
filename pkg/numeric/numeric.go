package numeric

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"procurement-backend/pkg/apperror"
)

// ToDecimal parses a monetary or quantity scalar. It rejects empty input
// and the non-finite spellings float formatting can produce (NaN, Inf),
// which decimal.NewFromString would otherwise also reject but with a less
// useful error.
func ToDecimal(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("%w: empty number", apperror.ErrValidation)
	}
	switch strings.ToLower(strings.TrimLeft(trimmed, "+-")) {
	case "nan", "inf", "infinity":
		return decimal.Zero, fmt.Errorf("%w: non-finite number %q", apperror.ErrValidation, raw)
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid number %q", apperror.ErrValidation, raw)
	}
	return d, nil
}

// ToDecimalOrZero parses raw, defaulting empty input to zero. Malformed
// non-empty input still errors.
func ToDecimalOrZero(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	return ToDecimal(raw)
}

// ToDecimalOrNil parses raw into a *decimal.Decimal, mapping empty input
// to nil for optional monetary fields.
func ToDecimalOrNil(raw string) (*decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := ToDecimal(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// RequirePositive validates d > 0.
func RequirePositive(d decimal.Decimal, field string) error {
	if d.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %s must be positive", apperror.ErrValidation, field)
	}
	return nil
}

// RequireNonNegative validates d >= 0.
func RequireNonNegative(d decimal.Decimal, field string) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", apperror.ErrValidation, field)
	}
	return nil
}
