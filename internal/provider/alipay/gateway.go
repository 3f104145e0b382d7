package alipay

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"alipaygw/internal/config"
	"alipaygw/internal/provider"
	"alipaygw/internal/provider/base"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	directPayService = "create_direct_pay_by_user"
	inputCharset     = "utf-8"
	paymentTypeGoods = "1"
)

var _ provider.Provider = (*Gateway)(nil)

// Gateway is the Alipay direct-pay provider.
type Gateway struct {
	app       config.AppCfg
	creds     config.AlipayCfg
	resolver  *Resolver
	validator *base.AmountValidator
	now       func() time.Time
}

// New wires a Gateway with the remote notify checker.
func New(cfg config.Cfg, store TransactionStore, audit AuditLog) *Gateway {
	checker := NewRemoteNotifyChecker(cfg.Alipay)
	return NewGateway(cfg, NewResolver(cfg.Alipay.Key, checker, store, audit))
}

// NewGateway builds a Gateway around an existing resolver.
func NewGateway(cfg config.Cfg, resolver *Resolver) *Gateway {
	return &Gateway{
		app:       cfg.App,
		creds:     cfg.Alipay,
		resolver:  resolver,
		validator: base.NewAmountValidator(Currency, decimal.NewFromFloat(0.01), decimal.Zero),
		now:       time.Now,
	}
}

func (g *Gateway) Name() string {
	return "Alipay"
}

func (g *Gateway) Version() string {
	return "1.0.0"
}

func (g *Gateway) Currencies() []string {
	return []string{Currency}
}

// SupportedOperations lists what the gateway does; capture, void and refund are
// not among them.
func (g *Gateway) SupportedOperations() []provider.OperationType {
	return []provider.OperationType{
		provider.OpProcess,
		provider.OpNotify,
		provider.OpReturn,
	}
}

func (g *Gateway) RequiredCredentialFields() []provider.CredentialField {
	return []provider.CredentialField{
		{
			Name:        "pid",
			DisplayName: "Partner ID",
			Type:        "text",
			Required:    true,
		},
		{
			Name:        "email",
			DisplayName: "Seller Email",
			Type:        "email",
			Required:    true,
		},
		{
			Name:        "key",
			DisplayName: "Security Key",
			Type:        "password",
			Required:    true,
			Encrypted:   true,
		},
	}
}

// ProcessRequest is what the billing side supplies to start a payment.
type ProcessRequest struct {
	ClientID    string              `json:"client_id"`
	Amount      decimal.Decimal     `json:"amount"`
	Invoices    []InvoiceAllocation `json:"invoices,omitempty"`
	Description string              `json:"description"`
	ReturnURL   string              `json:"return_url"`
}

// BuildProcess assembles and signs the submission fields for a payment.
func (g *Gateway) BuildProcess(req ProcessRequest) (*ProcessForm, error) {
	if strings.TrimSpace(req.ClientID) == "" {
		return nil, &provider.ProviderError{
			Code:    provider.ErrInvalidClient,
			Message: "client id is required",
		}
	}
	if err := g.validator.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}

	fields := FieldSet{
		KeyService:      directPayService,
		KeyPartner:      g.creds.PartnerID,
		KeyInputCharset: inputCharset,
		KeyNotifyURL:    g.notifyURL(req.ClientID),
		KeyReturnURL:    req.ReturnURL,
		KeyOutTradeNo:   fmt.Sprintf("%s-%d", req.ClientID, g.now().Unix()),
		KeySubject:      strings.ReplaceAll(req.Description, " ", ""),
		KeyPaymentType:  paymentTypeGoods,
		KeySellerEmail:  g.creds.SellerEmail,
		KeyTotalFee:     base.FormatAmount(req.Amount),
	}
	if len(req.Invoices) > 0 {
		fields[KeyBody] = EncodeInvoices(req.Invoices)
	}

	signed := Sign(fields, g.creds.Key)

	log.Info().
		Str("client_id", req.ClientID).
		Str("out_trade_no", signed.Get(KeyOutTradeNo)).
		Str("total_fee", signed.Get(KeyTotalFee)).
		Msg("built alipay payment request")

	return &ProcessForm{PostTo: g.creds.GatewayURL, Fields: signed}, nil
}

// notifyURL carries the client id out of band; it is not part of the signed set
// the gateway sends back.
func (g *Gateway) notifyURL(clientID string) string {
	return fmt.Sprintf("%s/%s/alipay/?client_id=%s",
		g.app.CallbackBaseURL, g.app.CompanyID, url.QueryEscape(clientID))
}

// Validate resolves an asynchronous notification.
func (g *Gateway) Validate(ctx context.Context, in Inbound) (Resolution, error) {
	return g.resolver.Notification(ctx, in)
}

// Success resolves a browser redirect.
func (g *Gateway) Success(ctx context.Context, in Inbound) (Resolution, error) {
	return g.resolver.Return(ctx, in)
}

func (g *Gateway) Capture(ctx context.Context, referenceID, transactionID string, amount decimal.Decimal) error {
	return provider.Unsupported(g.Name(), provider.OpCapture)
}

func (g *Gateway) Void(ctx context.Context, referenceID, transactionID, notes string) error {
	return provider.Unsupported(g.Name(), provider.OpVoid)
}

func (g *Gateway) Refund(ctx context.Context, referenceID, transactionID string, amount decimal.Decimal, notes string) error {
	return provider.Unsupported(g.Name(), provider.OpRefund)
}
