package alipay

import "strings"

const (
	invoiceSep = "|"
	amountSep  = "="
)

// InvoiceAllocation is the share of a payment applied to one invoice.
type InvoiceAllocation struct {
	ID     string `json:"id"`
	Amount string `json:"amount"`
}

// EncodeInvoices serializes allocations as "id=amount|id=amount".
// IDs must not contain "|" or "=".
func EncodeInvoices(invoices []InvoiceAllocation) string {
	parts := make([]string, len(invoices))
	for i, inv := range invoices {
		parts[i] = inv.ID + amountSep + inv.Amount
	}
	return strings.Join(parts, invoiceSep)
}

// DecodeInvoices parses the body field. Entries without "=" are skipped; only the
// first "=" separates id from amount.
func DecodeInvoices(s string) []InvoiceAllocation {
	var out []InvoiceAllocation
	for _, entry := range strings.Split(s, invoiceSep) {
		id, amount, ok := strings.Cut(entry, amountSep)
		if !ok {
			continue
		}
		out = append(out, InvoiceAllocation{ID: id, Amount: amount})
	}
	return out
}
