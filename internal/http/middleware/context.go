package middlewarex

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ctxKey string

const (
	ctxCompanyID ctxKey = "company_id"
)

func WithCompanyID(ctx context.Context, companyID string) context.Context {
	return context.WithValue(ctx, ctxCompanyID, companyID)
}

func CompanyID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxCompanyID).(string)
	return v, ok
}

// Company rejects gateway callbacks addressed to another company and stores
// the id on the request context.
func Company(companyID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if chi.URLParam(r, "companyID") != companyID {
				http.Error(w, "unknown company", http.StatusNotFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCompanyID(r.Context(), companyID)))
		})
	}
}
