package checkout

import (
	"strings"

	pkgerrors "github.com/kofiasare/sewshop-backend/pkg/errors"
	"github.com/kofiasare/sewshop-backend/pkg/types"
)

// validateSubmit enforces the required checkout fields and returns a
// field-keyed message map on failure, shaped for the 422 envelope.
func validateSubmit(input SubmitInput) error {
	fields := map[string]string{}

	if !input.PaymentMethod.IsValid() {
		fields["payment_method"] = "must be one of paystack, bank_transfer, cash_on_delivery"
	}
	collectAddressErrors(fields, "shipping_address", input.ShippingAddress)

	if !input.BillingSameAsShipping {
		if input.BillingAddress == nil || input.BillingAddress.IsZero() {
			fields["billing_address"] = "is required when not same as shipping"
		} else {
			collectAddressErrors(fields, "billing_address", *input.BillingAddress)
		}
	}

	if input.PaymentMethod.SupportsInline() {
		if input.Email == "" {
			fields["email"] = "is required for card payments"
		} else if !strings.Contains(input.Email, "@") {
			fields["email"] = "must be a valid email address"
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "checkout submission is invalid").
		WithDetails(fields)
}

func collectAddressErrors(fields map[string]string, prefix string, address types.Address) {
	required := []struct {
		key   string
		value string
	}{
		{"first_name", address.FirstName},
		{"last_name", address.LastName},
		{"phone", address.Phone},
		{"line1", address.Line1},
		{"city", address.City},
		{"state", address.State},
		{"country", address.Country},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			fields[prefix+"."+field.key] = "is required"
		}
	}
}
