package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"alipaygw/internal/provider"
	"alipaygw/internal/provider/alipay"
	"alipaygw/internal/store/postgres"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ProcessBuilder builds signed submissions to the gateway.
type ProcessBuilder interface {
	BuildProcess(req alipay.ProcessRequest) (*alipay.ProcessForm, error)
}

// TransactionLister reads recorded transactions.
type TransactionLister interface {
	ListTransactions(ctx context.Context, limit, offset int) ([]postgres.TransactionRow, error)
}

type processResp struct {
	PostTo      string          `json:"post_to"`
	Fields      alipay.FieldSet `json:"fields"`
	RedirectURL string          `json:"redirect_url"`
}

// CreatePayment returns the signed form as JSON, or as an auto-submitting page
// with ?format=html.
func CreatePayment(builder ProcessBuilder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in alipay.ProcessRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		form, err := builder.BuildProcess(in)
		if err != nil {
			writeProviderError(w, err)
			return
		}

		if r.URL.Query().Get("format") == "html" {
			page, err := form.HTML()
			if err != nil {
				http.Error(w, "render failed", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(page))
			return
		}

		writeJSON(w, http.StatusOK, processResp{
			PostTo:      form.PostTo,
			Fields:      form.Fields,
			RedirectURL: form.RedirectURL(),
		})
	}
}

type operationReq struct {
	ReferenceID string          `json:"reference_id"`
	Amount      decimal.Decimal `json:"amount"`
	Notes       string          `json:"notes"`
}

// PaymentOperation routes capture, void and refund through the registry.
func PaymentOperation(reg *provider.Registry, op provider.OperationType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txnID := chi.URLParam(r, "txnID")

		var in operationReq
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				http.Error(w, "bad json", http.StatusBadRequest)
				return
			}
		}

		var err error
		switch op {
		case provider.OpCapture:
			err = reg.Capture(r.Context(), provider.ProviderAlipay, in.ReferenceID, txnID, in.Amount)
		case provider.OpVoid:
			err = reg.Void(r.Context(), provider.ProviderAlipay, in.ReferenceID, txnID, in.Notes)
		case provider.OpRefund:
			err = reg.Refund(r.Context(), provider.ProviderAlipay, in.ReferenceID, txnID, in.Amount, in.Notes)
		default:
			err = provider.Unsupported("Alipay", op)
		}
		if err != nil {
			log.Info().Err(err).Str("transaction_id", txnID).Str("operation", string(op)).Msg("payment operation refused")
			writeProviderError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func ListTransactions(lister TransactionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		offset := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
				limit = n
			}
		}
		if v := r.URL.Query().Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}
		rows, err := lister.ListTransactions(r.Context(), limit, offset)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": rows})
	}
}

func ListProviders(reg *provider.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": reg.GetAllProviderInfo()})
	}
}

func writeProviderError(w http.ResponseWriter, err error) {
	var perr *provider.ProviderError
	if !errors.As(err, &perr) {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	status := http.StatusBadRequest
	switch perr.Code {
	case provider.ErrOperationNotSupported:
		status = http.StatusNotImplemented
	case provider.ErrProviderNotFound:
		status = http.StatusNotFound
	}
	writeJSON(w, status, perr)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
