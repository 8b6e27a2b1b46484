package numeric

import (
	"testing"

	"procurement-backend/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestToDecimal(t *testing.T) {
	d, err := ToDecimal(" 12.3400 ")
	require.NoError(t, err)
	require.True(t, d.Equal(decimal.NewFromFloat(12.34)))

	d, err = ToDecimal("-0.5")
	require.NoError(t, err)
	require.True(t, d.Equal(decimal.NewFromFloat(-0.5)))

	for _, raw := range []string{"", "   ", "NaN", "nan", "+Inf", "-Infinity", "abc", "1.2.3"} {
		_, err := ToDecimal(raw)
		require.ErrorIs(t, err, apperror.ErrValidation, "input %q", raw)
	}
}

func TestToDecimalOrZero(t *testing.T) {
	d, err := ToDecimalOrZero("")
	require.NoError(t, err)
	require.True(t, d.IsZero())

	d, err = ToDecimalOrZero("7")
	require.NoError(t, err)
	require.True(t, d.Equal(decimal.NewFromInt(7)))

	_, err = ToDecimalOrZero("seven")
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestToDecimalOrNil(t *testing.T) {
	d, err := ToDecimalOrNil("  ")
	require.NoError(t, err)
	require.Nil(t, d)

	d, err = ToDecimalOrNil("3.5")
	require.NoError(t, err)
	require.NotNil(t, d)
	require.True(t, d.Equal(decimal.NewFromFloat(3.5)))
}

func TestRequirePositive(t *testing.T) {
	require.NoError(t, RequirePositive(decimal.NewFromInt(1), "quantity"))
	require.ErrorIs(t, RequirePositive(decimal.Zero, "quantity"), apperror.ErrValidation)
	require.ErrorIs(t, RequirePositive(decimal.NewFromInt(-1), "quantity"), apperror.ErrValidation)
}

func TestRequireNonNegative(t *testing.T) {
	require.NoError(t, RequireNonNegative(decimal.Zero, "tax_amount"))
	require.NoError(t, RequireNonNegative(decimal.NewFromInt(2), "tax_amount"))
	require.ErrorIs(t, RequireNonNegative(decimal.NewFromInt(-1), "tax_amount"), apperror.ErrValidation)
}
