package alipay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceCodec(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		in := []InvoiceAllocation{
			{ID: "10", Amount: "5.00"},
			{ID: "11", Amount: "2.50"},
		}
		encoded := EncodeInvoices(in)
		assert.Equal(t, "10=5.00|11=2.50", encoded)
		assert.Equal(t, in, DecodeInvoices(encoded))
	})

	t.Run("SkipsEntriesWithoutSeparator", func(t *testing.T) {
		assert.Equal(t,
			[]InvoiceAllocation{{ID: "20", Amount: "3.00"}},
			DecodeInvoices("badentry|20=3.00"))
	})

	t.Run("SplitsOnFirstEquals", func(t *testing.T) {
		assert.Equal(t,
			[]InvoiceAllocation{{ID: "7", Amount: "1=2"}},
			DecodeInvoices("7=1=2"))
	})

	t.Run("EmptyInput", func(t *testing.T) {
		assert.Empty(t, DecodeInvoices(""))
		assert.Equal(t, "", EncodeInvoices(nil))
	})

	t.Run("EmptyPieces", func(t *testing.T) {
		assert.Equal(t,
			[]InvoiceAllocation{{ID: "", Amount: ""}, {ID: "3", Amount: "1.00"}},
			DecodeInvoices("=||3=1.00|"))
	})
}
