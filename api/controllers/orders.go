package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kofiasare/sewshop-backend/api/responses"
	"github.com/kofiasare/sewshop-backend/internal/orders"
	"github.com/kofiasare/sewshop-backend/pkg/logger"
)

// OrderConfirmation returns the read model the thank-you page renders from.
func OrderConfirmation(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		confirmation, err := svc.Confirmation(r.Context(), chi.URLParam(r, "orderNumber"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, confirmation)
	}
}
