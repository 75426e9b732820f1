package checkout

import (
	"testing"

	"github.com/kofiasare/sewshop-backend/pkg/enums"
	pkgerrors "github.com/kofiasare/sewshop-backend/pkg/errors"
	"github.com/kofiasare/sewshop-backend/pkg/types"
)

func completeAddress() types.Address {
	return types.Address{
		FirstName: "Ama",
		LastName:  "Mensah",
		Phone:     "+2348012345678",
		Line1:     "12 Allen Avenue",
		City:      "Ikeja",
		State:     "Lagos",
		Country:   "NG",
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field map details, got %T", typed.Details())
	}
	return fields
}

func TestValidateSubmitCollectsMissingFields(t *testing.T) {
	t.Parallel()

	err := validateSubmit(SubmitInput{
		PaymentMethod:         enums.PaymentMethod("wire"),
		ShippingAddress:       types.Address{FirstName: "Ama"},
		BillingSameAsShipping: true,
	})

	fields := fieldErrors(t, err)
	for _, key := range []string{
		"payment_method",
		"shipping_address.last_name",
		"shipping_address.phone",
		"shipping_address.line1",
		"shipping_address.city",
		"shipping_address.state",
		"shipping_address.country",
	} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("expected error for %q, got %v", key, fields)
		}
	}
	if _, ok := fields["shipping_address.first_name"]; ok {
		t.Fatal("first name was provided and must not error")
	}
}

func TestValidateSubmitBillingRequiredWhenNotSame(t *testing.T) {
	t.Parallel()

	input := SubmitInput{
		PaymentMethod:   enums.PaymentMethodBankTransfer,
		ShippingAddress: completeAddress(),
	}
	fields := fieldErrors(t, validateSubmit(input))
	if _, ok := fields["billing_address"]; !ok {
		t.Fatalf("expected billing_address error, got %v", fields)
	}

	input.BillingSameAsShipping = true
	if err := validateSubmit(input); err != nil {
		t.Fatalf("expected valid submission, got %v", err)
	}
}

func TestValidateSubmitInlineRequiresEmail(t *testing.T) {
	t.Parallel()

	input := SubmitInput{
		PaymentMethod:         enums.PaymentMethodPaystack,
		ShippingAddress:       completeAddress(),
		BillingSameAsShipping: true,
	}
	fields := fieldErrors(t, validateSubmit(input))
	if _, ok := fields["email"]; !ok {
		t.Fatalf("expected email error, got %v", fields)
	}

	input.Email = "ama@example.com"
	if err := validateSubmit(input); err != nil {
		t.Fatalf("expected valid submission, got %v", err)
	}

	// Offline methods do not need an email at all.
	offline := SubmitInput{
		PaymentMethod:         enums.PaymentMethodCashOnDelivery,
		ShippingAddress:       completeAddress(),
		BillingSameAsShipping: true,
	}
	if err := validateSubmit(offline); err != nil {
		t.Fatalf("expected valid offline submission, got %v", err)
	}
}
