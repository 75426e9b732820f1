package controllers

import (
	"net/http"
	"strings"

	"github.com/kofiasare/sewshop-backend/api/responses"
	"github.com/kofiasare/sewshop-backend/internal/payments"
	"github.com/kofiasare/sewshop-backend/pkg/logger"
)

type callbackResponse struct {
	OrderNumber     string `json:"order_number"`
	Paid            bool   `json:"paid"`
	GatewayResponse string `json:"gateway_response,omitempty"`
}

// PaymentCallback handles the redirect back from the payment popup. Paystack
// sends the reference as both "reference" and "trxref"; either is accepted.
func PaymentCallback(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reference := strings.TrimSpace(r.URL.Query().Get("reference"))
		if reference == "" {
			reference = strings.TrimSpace(r.URL.Query().Get("trxref"))
		}

		result, err := svc.HandleCallback(r.Context(), reference)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, callbackResponse{
			OrderNumber:     result.OrderNumber,
			Paid:            result.Paid,
			GatewayResponse: result.GatewayResponse,
		})
	}
}
