package handlers

import (
	"context"
	"errors"
	"net/http"

	middlewarex "alipaygw/internal/http/middleware"
	"alipaygw/internal/provider/alipay"
	"alipaygw/internal/services/payment"

	"github.com/rs/zerolog/log"
)

// Acknowledgement bodies the gateway understands.
const (
	ackSuccess = "success"
	ackFail    = "fail"
)

// Resolver is the inbound half of the Alipay gateway.
type Resolver interface {
	Validate(ctx context.Context, in alipay.Inbound) (alipay.Resolution, error)
	Success(ctx context.Context, in alipay.Inbound) (alipay.Resolution, error)
}

// Applier records resolved outcomes.
type Applier interface {
	Apply(ctx context.Context, res alipay.Resolution) error
}

// AlipayNotify handles the server-to-server notification. "success" is written
// for every authentic message; anything else makes the gateway redeliver.
func AlipayNotify(gw Resolver, svc Applier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, ackFail, http.StatusBadRequest)
			return
		}
		companyID, _ := middlewarex.CompanyID(r.Context())

		res, err := gw.Validate(r.Context(), alipay.Inbound{
			URI:    r.URL.RequestURI(),
			Fields: alipay.FromValues(r.Form),
		})
		if err != nil {
			log.Error().Err(err).Str("company_id", companyID).Msg("alipay notification lookup failed")
			http.Error(w, "lookup failed", http.StatusInternalServerError)
			return
		}
		if !res.Authentic() {
			writeText(w, http.StatusBadRequest, ackFail)
			return
		}

		if err := svc.Apply(r.Context(), res); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, payment.ErrInFlight) {
				status = http.StatusServiceUnavailable
			}
			log.Error().Err(err).Str("company_id", companyID).Msg("alipay notification not recorded")
			http.Error(w, "record failed", status)
			return
		}

		writeText(w, http.StatusOK, ackSuccess)
	}
}

type returnResp struct {
	Status        string                     `json:"status"`
	TransactionID string                     `json:"transaction_id,omitempty"`
	ClientID      string                     `json:"client_id,omitempty"`
	Amount        string                     `json:"amount,omitempty"`
	Currency      string                     `json:"currency,omitempty"`
	Invoices      []alipay.InvoiceAllocation `json:"invoices,omitempty"`
}

// AlipayReturn handles the customer's browser coming back from the gateway.
func AlipayReturn(gw Resolver, svc Applier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := gw.Success(r.Context(), alipay.Inbound{
			URI:    r.URL.RequestURI(),
			Fields: alipay.FromValues(r.URL.Query()),
		})
		if err != nil {
			log.Error().Err(err).Msg("alipay return lookup failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
			return
		}
		if res.Outcome == nil {
			writeJSON(w, http.StatusBadRequest, returnResp{Status: string(alipay.VerdictRejected)})
			return
		}

		// A trade held by the notification path still displays its status.
		if err := svc.Apply(r.Context(), res); err != nil && !errors.Is(err, payment.ErrInFlight) {
			log.Error().Err(err).Msg("alipay return not recorded")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "record failed"})
			return
		}

		o := res.Outcome
		writeJSON(w, http.StatusOK, returnResp{
			Status:        string(o.Status),
			TransactionID: o.TransactionID,
			ClientID:      o.ClientID,
			Amount:        o.Amount.StringFixed(2),
			Currency:      o.Currency,
			Invoices:      o.Invoices,
		})
	}
}
