package base

import (
	"errors"
	"testing"

	"alipaygw/internal/provider"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePartnerID(t *testing.T) {
	assert.NoError(t, ValidatePartnerID("2088000000000001"))

	for _, pid := range []string{"", "208800000000000", "20880000000000011", "2088x00000000001", "２088000000000001"} {
		err := ValidatePartnerID(pid)
		require.Error(t, err, pid)

		var perr *provider.ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, provider.ErrInvalidPartner, perr.Code)
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("seller@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("Seller <seller@example.com>"))
}

func TestValidateSecret(t *testing.T) {
	assert.NoError(t, ValidateSecret("k"))
	assert.Error(t, ValidateSecret(""))
	assert.Error(t, ValidateSecret("   "))
}

func TestAmountValidator(t *testing.T) {
	v := NewAmountValidator("CNY", decimal.RequireFromString("0.01"), decimal.RequireFromString("1000"))

	assert.NoError(t, v.ValidateAmount(decimal.RequireFromString("0.01")))
	assert.NoError(t, v.ValidateAmount(decimal.RequireFromString("1000")))
	assert.Error(t, v.ValidateAmount(decimal.Zero))
	assert.Error(t, v.ValidateAmount(decimal.RequireFromString("-5")))
	assert.Error(t, v.ValidateAmount(decimal.RequireFromString("0.001")))
	assert.Error(t, v.ValidateAmount(decimal.RequireFromString("1000.01")))

	uncapped := NewAmountValidator("CNY", decimal.Zero, decimal.Zero)
	assert.NoError(t, uncapped.ValidateAmount(decimal.RequireFromString("99999999")))
}

func TestFormatAndParseAmount(t *testing.T) {
	assert.Equal(t, "10.50", FormatAmount(decimal.RequireFromString("10.5")))
	assert.Equal(t, "10.46", FormatAmount(decimal.RequireFromString("10.455")))
	assert.Equal(t, "3.00", FormatAmount(decimal.NewFromInt(3)))

	amt, err := ParseAmount(" 1,234.50 ")
	require.NoError(t, err)
	assert.True(t, amt.Equal(decimal.RequireFromString("1234.5")))

	_, err = ParseAmount("abc")
	assert.Error(t, err)
}
