package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kofiasare/sewshop-backend/api/middleware"
	"github.com/kofiasare/sewshop-backend/internal/checkout"
	"github.com/kofiasare/sewshop-backend/internal/orders"
	"github.com/kofiasare/sewshop-backend/internal/payments"
	"github.com/kofiasare/sewshop-backend/pkg/db/models"
	"github.com/kofiasare/sewshop-backend/pkg/enums"
	"github.com/kofiasare/sewshop-backend/pkg/config"
	pkgerrors "github.com/kofiasare/sewshop-backend/pkg/errors"
	"github.com/kofiasare/sewshop-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

type stubCheckoutService struct {
	result   *checkout.Result
	err      error
	gotToken string
	gotInput checkout.SubmitInput
}

func (s *stubCheckoutService) Submit(_ context.Context, token string, input checkout.SubmitInput) (*checkout.Result, error) {
	s.gotToken = token
	s.gotInput = input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubOrderService struct {
	dto *orders.ConfirmationDTO
	err error
}

func (s *stubOrderService) Confirmation(context.Context, string) (*orders.ConfirmationDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.dto, nil
}

type stubPaymentService struct {
	result       *payments.SettlementResult
	err          error
	gotReference string
}

func (s *stubPaymentService) HandleCallback(_ context.Context, reference string) (*payments.SettlementResult, error) {
	s.gotReference = reference
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubPaymentService) HandleWebhook(context.Context, []byte, string) error {
	return s.err
}

func placedOrder() *models.Order {
	return &models.Order{
		OrderNumber:      "ORD-1756598400000-A1B2",
		Status:           enums.OrderStatusPending,
		PaymentMethod:    enums.PaymentMethodPaystack,
		PaymentStatus:    enums.PaymentStatusPending,
		PaymentReference: "SEWSHOP-XYZ-R4ND0M",
		Currency:         enums.CurrencyNGN,
		TotalAmount:      decimal.RequireFromString("6875.00"),
	}
}

func TestCheckoutSubmitInlineResponse(t *testing.T) {
	t.Parallel()

	svc := &stubCheckoutService{result: &checkout.Result{
		Order: placedOrder(),
		Payment: &checkout.PaymentIntent{
			AuthorizationURL: "https://checkout.paystack.com/abc",
			AccessCode:       "abc",
			Reference:        "SEWSHOP-XYZ-R4ND0M",
		},
	}}

	r := chi.NewRouter()
	r.Use(middleware.CartToken())
	r.Post("/api/v1/checkout", CheckoutSubmit(svc, testLogger()))

	body := `{
		"payment_method": "paystack",
		"email": "ama@example.com",
		"shipping_address": {
			"first_name": "Ama", "last_name": "Mensah", "phone": "08030000000",
			"line1": "12 Allen Ave", "city": "Ikeja", "state": "Lagos", "country": "NG"
		},
		"billing_same_as_shipping": true,
		"save_addresses": true
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if svc.gotInput.PaymentMethod != enums.PaymentMethodPaystack {
		t.Fatalf("payment method = %q", svc.gotInput.PaymentMethod)
	}
	if svc.gotToken == "" {
		t.Fatal("cart token did not reach the service")
	}
	if !svc.gotInput.SaveAddresses {
		t.Fatal("save_addresses flag did not reach the service")
	}

	var envelope struct {
		Data checkoutResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Payment == nil || envelope.Data.Payment.AuthorizationURL == "" {
		t.Fatalf("inline checkout must return a payment intent: %+v", envelope.Data)
	}
	if envelope.Data.Payment.Reference != envelope.Data.PaymentReference {
		t.Fatal("intent reference must match the order's payment reference")
	}
}

func TestCheckoutSubmitValidationDetailsPassThrough(t *testing.T) {
	t.Parallel()

	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{"shipping_address.city": "is required"})}

	r := chi.NewRouter()
	r.Use(middleware.CartToken())
	r.Post("/api/v1/checkout", CheckoutSubmit(svc, testLogger()))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"payment_method":"paystack"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var envelope struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error.Details["shipping_address.city"] != "is required" {
		t.Fatalf("details = %v", envelope.Error.Details)
	}
}

func TestPaymentCallbackAcceptsTrxref(t *testing.T) {
	t.Parallel()

	svc := &stubPaymentService{result: &payments.SettlementResult{
		OrderNumber:     "ORD-1",
		Paid:            true,
		GatewayResponse: "Successful",
	}}

	r := chi.NewRouter()
	r.Get("/api/v1/payments/callback", PaymentCallback(svc, testLogger()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/callback?trxref=SEWSHOP-REF-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if svc.gotReference != "SEWSHOP-REF-1" {
		t.Fatalf("reference = %q, want trxref fallback", svc.gotReference)
	}
}

func TestPaymentCallbackPrefersReferenceParam(t *testing.T) {
	t.Parallel()

	svc := &stubPaymentService{result: &payments.SettlementResult{OrderNumber: "ORD-1", Paid: true}}

	r := chi.NewRouter()
	r.Get("/api/v1/payments/callback", PaymentCallback(svc, testLogger()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/callback?reference=REF-A&trxref=REF-B", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if svc.gotReference != "REF-A" {
		t.Fatalf("reference = %q, want REF-A", svc.gotReference)
	}
}

func TestOrderConfirmationNotFound(t *testing.T) {
	t.Parallel()

	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}

	r := chi.NewRouter()
	r.Get("/api/v1/orders/{orderNumber}", OrderConfirmation(svc, testLogger()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/ORD-MISSING", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHealthReadyReportsSkippedDependencies(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	handler := HealthReady(cfg, testLogger(), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["db"] != "skipped" || envelope.Data["redis"] != "skipped" {
		t.Fatalf("checks = %v, want skipped", envelope.Data)
	}
}
