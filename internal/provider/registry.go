package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Registry manages all payment providers
type Registry struct {
	providers map[ProviderType]Provider
	mu        sync.RWMutex
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[ProviderType]Provider),
	}
}

// RegisterProvider adds a provider to the registry
func (r *Registry) RegisterProvider(providerType ProviderType, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[providerType] = provider
	log.Info().
		Str("provider", string(providerType)).
		Str("name", provider.Name()).
		Str("version", provider.Version()).
		Strs("operations", operationTypesToStrings(provider.SupportedOperations())).
		Msg("registered payment provider")
}

// GetProvider returns a provider by type
func (r *Registry) GetProvider(providerType ProviderType) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, ok := r.providers[providerType]
	if !ok {
		return nil, &ProviderError{
			Code:    ErrProviderNotFound,
			Message: fmt.Sprintf("provider %s not registered", providerType),
		}
	}
	return provider, nil
}

// ListProviders returns all registered provider types
func (r *Registry) ListProviders() []ProviderType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var types []ProviderType
	for t := range r.providers {
		types = append(types, t)
	}
	return types
}

// GetProviderInfo returns detailed information about a provider
func (r *Registry) GetProviderInfo(providerType ProviderType) (*ProviderInfo, error) {
	provider, err := r.GetProvider(providerType)
	if err != nil {
		return nil, err
	}
	return infoFor(providerType, provider), nil
}

// GetAllProviderInfo returns information about all registered providers
func (r *Registry) GetAllProviderInfo() []*ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var infos []*ProviderInfo
	for providerType, provider := range r.providers {
		infos = append(infos, infoFor(providerType, provider))
	}
	return infos
}

// Capture settles a previously authorized payment through the provider.
func (r *Registry) Capture(ctx context.Context, providerType ProviderType, referenceID, transactionID string, amount decimal.Decimal) error {
	provider, err := r.GetProvider(providerType)
	if err != nil {
		return err
	}
	if !r.supportsOperation(provider, OpCapture) {
		return Unsupported(provider.Name(), OpCapture)
	}
	return provider.Capture(ctx, referenceID, transactionID, amount)
}

// Void cancels a payment through the provider.
func (r *Registry) Void(ctx context.Context, providerType ProviderType, referenceID, transactionID, notes string) error {
	provider, err := r.GetProvider(providerType)
	if err != nil {
		return err
	}
	if !r.supportsOperation(provider, OpVoid) {
		return Unsupported(provider.Name(), OpVoid)
	}
	return provider.Void(ctx, referenceID, transactionID, notes)
}

// Refund returns funds through the provider.
func (r *Registry) Refund(ctx context.Context, providerType ProviderType, referenceID, transactionID string, amount decimal.Decimal, notes string) error {
	provider, err := r.GetProvider(providerType)
	if err != nil {
		return err
	}
	if !r.supportsOperation(provider, OpRefund) {
		return Unsupported(provider.Name(), OpRefund)
	}
	return provider.Refund(ctx, referenceID, transactionID, amount, notes)
}

// Helper types and functions

// ProviderInfo contains metadata about a provider
type ProviderInfo struct {
	Type                ProviderType      `json:"type"`
	Name                string            `json:"name"`
	Version             string            `json:"version"`
	Currencies          []string          `json:"currencies"`
	SupportedOperations []OperationType   `json:"supported_operations"`
	RequiredCredentials []CredentialField `json:"required_credentials"`
}

func infoFor(providerType ProviderType, provider Provider) *ProviderInfo {
	return &ProviderInfo{
		Type:                providerType,
		Name:                provider.Name(),
		Version:             provider.Version(),
		Currencies:          provider.Currencies(),
		SupportedOperations: provider.SupportedOperations(),
		RequiredCredentials: provider.RequiredCredentialFields(),
	}
}

// supportsOperation checks if a provider supports a specific operation
func (r *Registry) supportsOperation(provider Provider, operation OperationType) bool {
	for _, op := range provider.SupportedOperations() {
		if op == operation {
			return true
		}
	}
	return false
}

// operationTypesToStrings converts operation types to strings for logging
func operationTypesToStrings(ops []OperationType) []string {
	var strs []string
	for _, op := range ops {
		strs = append(strs, string(op))
	}
	return strs
}
