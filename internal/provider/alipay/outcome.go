package alipay

import (
	"alipaygw/internal/core"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Currency is the only currency the gateway settles in.
const Currency = "CNY"

const tradeFinished = "TRADE_FINISHED"

// TransactionOutcome is the normalized record handed back to the billing side.
type TransactionOutcome struct {
	ClientID      string                 `json:"client_id"`
	Amount        decimal.Decimal        `json:"amount"`
	Currency      string                 `json:"currency"`
	Invoices      []InvoiceAllocation    `json:"invoices"`
	Status        core.TransactionStatus `json:"status"`
	TransactionID string                 `json:"transaction_id"`
	ReferenceID   string                 `json:"reference_id,omitempty"`
}

func outcomeFrom(fields FieldSet, clientID string, status core.TransactionStatus) *TransactionOutcome {
	return &TransactionOutcome{
		ClientID:      clientID,
		Amount:        parsePrice(fields.Get(KeyPrice)),
		Currency:      Currency,
		Invoices:      DecodeInvoices(fields.Get(KeyBody)),
		Status:        status,
		TransactionID: fields.Get(KeyTradeNo),
		ReferenceID:   fields.Get(KeyOutTradeNo),
	}
}

// parsePrice is lenient: the price was already covered by a valid signature.
func parsePrice(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Warn().Str("price", s).Err(err).Msg("unparsable price in signed payload")
		return decimal.Zero
	}
	return d
}
