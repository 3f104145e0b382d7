package httpx

import (
	"encoding/json"
	"net/http"

	"alipaygw/internal/config"
	"alipaygw/internal/http/handlers"
	middlewarex "alipaygw/internal/http/middleware"
	"alipaygw/internal/provider"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// Gateway is the Alipay provider as the router sees it.
type Gateway interface {
	handlers.Resolver
	handlers.ProcessBuilder
}

// RouterDependencies holds all dependencies for the HTTP router
type RouterDependencies struct {
	Config           config.Cfg
	Gateway          Gateway
	Payments         handlers.Applier
	Transactions     handlers.TransactionLister
	ProviderRegistry *provider.Registry
}

func NewRouter(deps RouterDependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "ok",
			"gateway": string(provider.ProviderAlipay),
		})
	})

	var limiter *rate.Limiter
	if rps := deps.Config.App.CallbackRPS; rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 2*rps)
	}

	// Gateway callbacks (public, validated by signature and notify_verify)
	r.Route("/callback/{companyID}", func(r chi.Router) {
		r.Use(middlewarex.RateLimit(limiter))
		r.Use(middlewarex.Company(deps.Config.App.CompanyID))
		r.Post("/alipay/", handlers.AlipayNotify(deps.Gateway, deps.Payments))
	})
	r.Route("/return/{companyID}", func(r chi.Router) {
		r.Use(middlewarex.RateLimit(limiter))
		r.Use(middlewarex.Company(deps.Config.App.CompanyID))
		r.Get("/alipay/", handlers.AlipayReturn(deps.Gateway, deps.Payments))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarex.AdminAuth(deps.Config.Sec.AdminToken))

		r.Post("/payments", handlers.CreatePayment(deps.Gateway))
		r.Get("/transactions", handlers.ListTransactions(deps.Transactions))

		if deps.ProviderRegistry != nil {
			r.Get("/providers", handlers.ListProviders(deps.ProviderRegistry))
			r.Post("/payments/{txnID}/capture", handlers.PaymentOperation(deps.ProviderRegistry, provider.OpCapture))
			r.Post("/payments/{txnID}/void", handlers.PaymentOperation(deps.ProviderRegistry, provider.OpVoid))
			r.Post("/payments/{txnID}/refund", handlers.PaymentOperation(deps.ProviderRegistry, provider.OpRefund))
		}
	})

	return r
}
