package provider

import (
	"context"

	"github.com/shopspring/decimal"
)

// Provider is the surface every payment gateway exposes to the billing platform.
// Gateways that cannot settle, void or refund still implement those methods and
// return ErrUnsupported.
type Provider interface {
	Name() string
	Version() string
	Currencies() []string
	SupportedOperations() []OperationType
	RequiredCredentialFields() []CredentialField

	Capture(ctx context.Context, referenceID, transactionID string, amount decimal.Decimal) error
	Void(ctx context.Context, referenceID, transactionID, notes string) error
	Refund(ctx context.Context, referenceID, transactionID string, amount decimal.Decimal, notes string) error
}
