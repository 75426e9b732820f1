package webhooks

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kofiasare/sewshop-backend/internal/payments"
	pkgerrors "github.com/kofiasare/sewshop-backend/pkg/errors"
	"github.com/kofiasare/sewshop-backend/pkg/logger"
	"github.com/kofiasare/sewshop-backend/pkg/paystack"
)

type stubPaymentService struct {
	err          error
	gotBody      []byte
	gotSignature string
}

func (s *stubPaymentService) HandleCallback(context.Context, string) (*payments.SettlementResult, error) {
	return nil, nil
}

func (s *stubPaymentService) HandleWebhook(_ context.Context, body []byte, signature string) error {
	s.gotBody = body
	s.gotSignature = signature
	return s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestPaystackWebhookAcknowledged(t *testing.T) {
	t.Parallel()

	svc := &stubPaymentService{}
	handler := Paystack(svc, testLogger())

	body := `{"event":"charge.success","data":{"reference":"SEWSHOP-REF-1"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/paystack", strings.NewReader(body))
	req.Header.Set(paystack.SignatureHeader(), "sig")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if string(svc.gotBody) != body {
		t.Fatalf("service body = %q", svc.gotBody)
	}
	if svc.gotSignature != "sig" {
		t.Fatalf("service signature = %q", svc.gotSignature)
	}
}

func TestPaystackWebhookRejectsBadSignature(t *testing.T) {
	t.Parallel()

	svc := &stubPaymentService{err: pkgerrors.New(pkgerrors.CodeForbidden, "invalid webhook signature")}
	handler := Paystack(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/paystack", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
