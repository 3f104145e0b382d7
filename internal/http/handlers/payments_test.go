package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"alipaygw/internal/config"
	"alipaygw/internal/provider"
	"alipaygw/internal/provider/alipay"
	"alipaygw/internal/store/postgres"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGateway() *alipay.Gateway {
	return alipay.NewGateway(config.Cfg{
		App: config.AppCfg{CallbackBaseURL: "https://billing.example.com/callback", CompanyID: "1"},
		Alipay: config.AlipayCfg{
			PartnerID:   "2088000000000001",
			SellerEmail: "seller@example.com",
			Key:         "secret",
			GatewayURL:  config.DefaultGatewayURL,
		},
	}, nil)
}

func TestCreatePayment(t *testing.T) {
	body := `{"client_id":"42","amount":"10.5","description":"Invoice 10","invoices":[{"id":"10","amount":"10.50"}]}`

	t.Run("JSON", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body))
		CreatePayment(testGateway())(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var out processResp
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Equal(t, config.DefaultGatewayURL, out.PostTo)
		assert.Equal(t, "10.50", out.Fields.Get(alipay.KeyTotalFee))
		assert.Equal(t, "10=10.50", out.Fields.Get(alipay.KeyBody))
		assert.Equal(t, "Invoice10", out.Fields.Get(alipay.KeySubject))
		assert.NotEmpty(t, out.Fields.Get(alipay.KeySign))
		assert.True(t, strings.HasPrefix(out.RedirectURL, config.DefaultGatewayURL+"?"))
	})

	t.Run("HTML", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments?format=html", strings.NewReader(body))
		CreatePayment(testGateway())(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "Pay with Alipay")
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(`{"client_id":"42","amount":"0"}`))
		CreatePayment(testGateway())(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), provider.ErrInvalidAmount)
	})

	t.Run("BadJSON", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(`{`))
		CreatePayment(testGateway())(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPaymentOperation_Unsupported(t *testing.T) {
	reg := provider.NewRegistry()
	reg.RegisterProvider(provider.ProviderAlipay, testGateway())

	for _, op := range []provider.OperationType{provider.OpCapture, provider.OpVoid, provider.OpRefund} {
		t.Run(string(op), func(t *testing.T) {
			r := chi.NewRouter()
			r.Post("/payments/{txnID}/"+string(op), PaymentOperation(reg, op))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/payments/T1/"+string(op), strings.NewReader(`{"amount":"1.00"}`))
			r.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusNotImplemented, rec.Code)
			var out map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
			assert.Equal(t, provider.ErrOperationNotSupported, out["code"])
		})
	}
}

func TestPaymentOperation_UnknownProvider(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/T1/void", nil)
	PaymentOperation(provider.NewRegistry(), provider.OpVoid)(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakeLister struct {
	rows          []postgres.TransactionRow
	err           error
	limit, offset int
}

func (f *fakeLister) ListTransactions(ctx context.Context, limit, offset int) ([]postgres.TransactionRow, error) {
	f.limit, f.offset = limit, offset
	return f.rows, f.err
}

func TestListTransactions(t *testing.T) {
	t.Run("Paging", func(t *testing.T) {
		l := &fakeLister{rows: []postgres.TransactionRow{{ID: 1, TransactionID: "T1"}}}
		rec := httptest.NewRecorder()
		ListTransactions(l)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transactions?limit=10&offset=20", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 10, l.limit)
		assert.Equal(t, 20, l.offset)
		assert.Contains(t, rec.Body.String(), `"transactionId":"T1"`)
	})

	t.Run("LimitClamped", func(t *testing.T) {
		l := &fakeLister{}
		rec := httptest.NewRecorder()
		ListTransactions(l)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transactions?limit=5000&offset=-1", nil))

		assert.Equal(t, 50, l.limit)
		assert.Equal(t, 0, l.offset)
	})

	t.Run("DBError", func(t *testing.T) {
		l := &fakeLister{err: errors.New("db down")}
		rec := httptest.NewRecorder()
		ListTransactions(l)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
