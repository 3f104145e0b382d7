package provider

import "fmt"

// Provider identification
type ProviderType string

const (
	ProviderAlipay ProviderType = "alipay_direct"
)

// Operation types that providers can support
type OperationType string

const (
	OpProcess OperationType = "process"
	OpNotify  OperationType = "notify"
	OpReturn  OperationType = "return"
	OpCapture OperationType = "capture"
	OpVoid    OperationType = "void"
	OpRefund  OperationType = "refund"
)

// Credential field definitions for provider setup
type CredentialField struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"` // text, password, email
	Required    bool   `json:"required"`
	Encrypted   bool   `json:"encrypted,omitempty"`
}

// Common error type
type ProviderError struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	ProviderErr string `json:"provider_error,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.ProviderErr != "" {
		return e.Message + ": " + e.ProviderErr
	}
	return e.Message
}

// Is matches any ProviderError carrying the same code, so callers can use
// errors.Is(err, provider.ErrUnsupported).
func (e *ProviderError) Is(target error) bool {
	t, ok := target.(*ProviderError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Error codes
const (
	ErrInvalidPartner        = "invalid_partner"
	ErrInvalidEmail          = "invalid_email"
	ErrInvalidKey            = "invalid_key"
	ErrInvalidAmount         = "invalid_amount"
	ErrInvalidClient         = "invalid_client"
	ErrOperationNotSupported = "operation_not_supported"
	ErrProviderNotFound      = "provider_not_found"
	ErrProviderTimeout       = "provider_timeout"
	ErrUnknownError          = "unknown_error"
)

// ErrUnsupported is the fixed error for operations a gateway never performs.
var ErrUnsupported = &ProviderError{
	Code:    ErrOperationNotSupported,
	Message: "operation not supported by this gateway",
}

// Unsupported returns ErrUnsupported annotated with the gateway and operation.
func Unsupported(gateway string, op OperationType) error {
	return &ProviderError{
		Code:        ErrOperationNotSupported,
		Message:     ErrUnsupported.Message,
		ProviderErr: fmt.Sprintf("%s does not support %s", gateway, op),
	}
}
