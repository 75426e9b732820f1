package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/kofiasare/sewshop-backend/api/middleware"
	"github.com/kofiasare/sewshop-backend/api/responses"
	"github.com/kofiasare/sewshop-backend/api/validators"
	"github.com/kofiasare/sewshop-backend/internal/checkout"
	"github.com/kofiasare/sewshop-backend/pkg/enums"
	"github.com/kofiasare/sewshop-backend/pkg/logger"
	"github.com/kofiasare/sewshop-backend/pkg/types"
)

type checkoutRequest struct {
	PaymentMethod         string         `json:"payment_method"`
	Email                 string         `json:"email"`
	ShippingAddress       types.Address  `json:"shipping_address"`
	BillingSameAsShipping bool           `json:"billing_same_as_shipping"`
	BillingAddress        *types.Address `json:"billing_address"`
	CustomerNotes         *string        `json:"customer_notes"`
	SaveAddresses         bool           `json:"save_addresses"`
}

type checkoutResponse struct {
	OrderNumber      string               `json:"order_number"`
	Status           string               `json:"status"`
	PaymentStatus    string               `json:"payment_status"`
	PaymentReference string               `json:"payment_reference"`
	Currency         string               `json:"currency"`
	TotalAmount      decimal.Decimal      `json:"total_amount"`
	Payment          *checkoutPaymentView `json:"payment,omitempty"`
}

type checkoutPaymentView struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// CheckoutSubmit places an order from the client's active cart. Field-level
// problems come back as a 422 keyed by field; the deeper rules (lock,
// reference reuse, method branching) live in the checkout service.
func CheckoutSubmit(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token := middleware.CartTokenFromContext(r.Context())
		result, err := svc.Submit(r.Context(), token, checkout.SubmitInput{
			PaymentMethod:         enums.PaymentMethod(req.PaymentMethod),
			Email:                 req.Email,
			ShippingAddress:       req.ShippingAddress,
			BillingSameAsShipping: req.BillingSameAsShipping,
			BillingAddress:        req.BillingAddress,
			CustomerNotes:         req.CustomerNotes,
			SaveAddresses:         req.SaveAddresses,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := checkoutResponse{
			OrderNumber:      result.Order.OrderNumber,
			Status:           string(result.Order.Status),
			PaymentStatus:    string(result.Order.PaymentStatus),
			PaymentReference: result.Order.PaymentReference,
			Currency:         string(result.Order.Currency),
			TotalAmount:      result.Order.TotalAmount,
		}
		if result.Payment != nil {
			out.Payment = &checkoutPaymentView{
				AuthorizationURL: result.Payment.AuthorizationURL,
				AccessCode:       result.Payment.AccessCode,
				Reference:        result.Payment.Reference,
			}
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, out)
	}
}
