package base

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"alipaygw/internal/provider"

	"github.com/shopspring/decimal"
)

var partnerPattern = regexp.MustCompile(`^[0-9]{16}$`)

// ValidatePartnerID checks a gateway partner identifier: exactly 16 digits.
func ValidatePartnerID(pid string) error {
	if !partnerPattern.MatchString(pid) {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidPartner,
			Message: "partner id must be exactly 16 digits",
		}
	}
	return nil
}

// ValidateEmail checks that email is a bare, well-formed address.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidEmail,
			Message: "seller email must be a valid email address",
		}
	}
	return nil
}

// ValidateSecret checks that a signing key is present.
func ValidateSecret(key string) error {
	if strings.TrimSpace(key) == "" {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidKey,
			Message: "key must not be empty",
		}
	}
	return nil
}

// AmountValidator validates payment amounts
type AmountValidator struct {
	minAmount decimal.Decimal
	maxAmount decimal.Decimal
	currency  string
}

// NewAmountValidator creates an amount validator with limits. A zero max means no cap.
func NewAmountValidator(currency string, minAmount, maxAmount decimal.Decimal) *AmountValidator {
	return &AmountValidator{
		minAmount: minAmount,
		maxAmount: maxAmount,
		currency:  currency,
	}
}

// ValidateAmount validates payment amount
func (v *AmountValidator) ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidAmount,
			Message: "amount must be greater than zero",
		}
	}

	if amount.LessThan(v.minAmount) {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidAmount,
			Message: fmt.Sprintf("amount must be at least %s %s", v.minAmount.StringFixed(2), v.currency),
		}
	}

	if v.maxAmount.IsPositive() && amount.GreaterThan(v.maxAmount) {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidAmount,
			Message: fmt.Sprintf("amount must not exceed %s %s", v.maxAmount.StringFixed(2), v.currency),
		}
	}

	return nil
}

// FormatAmount renders an amount rounded to two decimals, e.g. "10.50".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// ParseAmount parses amount from string
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(amountStr, ",", ""))
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount format: %s", amountStr)
	}
	return amount, nil
}
