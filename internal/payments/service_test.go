package payments

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kofiasare/sewshop-backend/internal/cart"
	"github.com/kofiasare/sewshop-backend/internal/orders"
	"github.com/kofiasare/sewshop-backend/pkg/db/models"
	"github.com/kofiasare/sewshop-backend/pkg/enums"
	pkgerrors "github.com/kofiasare/sewshop-backend/pkg/errors"
	"github.com/kofiasare/sewshop-backend/pkg/logger"
	"github.com/kofiasare/sewshop-backend/pkg/paystack"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubGateway struct {
	verify    *paystack.VerifyResult
	verifyErr error
	validSig  bool
	verified  []string
}

func (g *stubGateway) Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error) {
	g.verified = append(g.verified, reference)
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.verify, nil
}

func (g *stubGateway) ValidateWebhookSignature(body []byte, signature string) bool {
	return g.validSig
}

type stubOrderRepo struct {
	order *models.Order
}

func (r *stubOrderRepo) WithTx(tx *gorm.DB) orders.OrderRepository { return r }

func (r *stubOrderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	r.order = order
	return order, nil
}

func (r *stubOrderRepo) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	if r.order == nil || r.order.OrderNumber != orderNumber {
		return nil, gorm.ErrRecordNotFound
	}
	return r.order, nil
}

func (r *stubOrderRepo) FindByPaymentReference(ctx context.Context, reference string) (*models.Order, error) {
	if r.order == nil || r.order.PaymentReference != reference {
		return nil, gorm.ErrRecordNotFound
	}
	return r.order, nil
}

func (r *stubOrderRepo) ReplaceSnapshot(ctx context.Context, order *models.Order) (*models.Order, error) {
	if r.order == nil || r.order.ID != order.ID || r.order.PaymentStatus == enums.PaymentStatusPaid {
		return nil, gorm.ErrRecordNotFound
	}
	r.order = order
	return order, nil
}

func (r *stubOrderRepo) MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) error {
	if r.order != nil && r.order.ID == orderID && r.order.PaymentStatus != enums.PaymentStatusPaid {
		r.order.PaymentStatus = enums.PaymentStatusPaid
		r.order.Status = enums.OrderStatusProcessing
		r.order.PaidAt = &paidAt
	}
	return nil
}

type stubCartRepo struct {
	record *models.CartRecord
}

func (r *stubCartRepo) WithTx(tx *gorm.DB) cart.CartRepository { return r }

func (r *stubCartRepo) Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	r.record = record
	return record, nil
}

func (r *stubCartRepo) Update(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	r.record = record
	return record, nil
}

func (r *stubCartRepo) FindActiveByToken(ctx context.Context, clientToken string) (*models.CartRecord, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCartRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.CartRecord, error) {
	if r.record == nil || r.record.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return r.record, nil
}

func (r *stubCartRepo) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	return nil, nil
}

func (r *stubCartRepo) FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCartRepo) CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	return item, nil
}

func (r *stubCartRepo) UpdateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	return item, nil
}

func (r *stubCartRepo) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	return nil
}

func (r *stubCartRepo) NextPosition(ctx context.Context, cartID uuid.UUID) (int, error) {
	return 0, nil
}

func (r *stubCartRepo) SetCheckoutReference(ctx context.Context, cartID uuid.UUID, reference string) error {
	return nil
}

func (r *stubCartRepo) MarkConverted(ctx context.Context, cartID uuid.UUID, at time.Time) error {
	if r.record != nil && r.record.ID == cartID {
		r.record.Status = enums.CartStatusConverted
		r.record.ConvertedAt = &at
	}
	return nil
}

func pendingOrder(cartID uuid.UUID) *models.Order {
	return &models.Order{
		ID:               uuid.New(),
		OrderNumber:      "ORD-TEST-0001",
		CartID:           &cartID,
		Status:           enums.OrderStatusPending,
		PaymentMethod:    enums.PaymentMethodPaystack,
		PaymentStatus:    enums.PaymentStatusPending,
		PaymentReference: "SEWSHOP-ABC123",
		Currency:         enums.CurrencyNGN,
		TotalAmount:      dec("6875.00"),
	}
}

func newTestService(t *testing.T, orderRepo *stubOrderRepo, carts *stubCartRepo, gw *stubGateway) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(orderRepo, carts, stubTxRunner{}, gw, nil, logg)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return svc
}

func TestHandleCallbackSettles(t *testing.T) {
	t.Parallel()

	cartID := uuid.New()
	orderRepo := &stubOrderRepo{order: pendingOrder(cartID)}
	carts := &stubCartRepo{record: &models.CartRecord{ID: cartID, Status: enums.CartStatusActive}}
	gw := &stubGateway{verify: &paystack.VerifyResult{
		Reference:   "SEWSHOP-ABC123",
		Status:      "success",
		AmountMinor: 687500,
	}}
	svc := newTestService(t, orderRepo, carts, gw)

	result, err := svc.HandleCallback(context.Background(), "SEWSHOP-ABC123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Paid || result.OrderNumber != "ORD-TEST-0001" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if orderRepo.order.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected paid order, got %s", orderRepo.order.PaymentStatus)
	}
	if carts.record.Status != enums.CartStatusConverted {
		t.Fatalf("expected converted cart, got %s", carts.record.Status)
	}
}

func TestHandleCallbackFailedVerificationLeavesState(t *testing.T) {
	t.Parallel()

	cartID := uuid.New()
	orderRepo := &stubOrderRepo{order: pendingOrder(cartID)}
	carts := &stubCartRepo{record: &models.CartRecord{ID: cartID, Status: enums.CartStatusActive}}
	gw := &stubGateway{verify: &paystack.VerifyResult{
		Reference:       "SEWSHOP-ABC123",
		Status:          "abandoned",
		GatewayResponse: "The transaction was not completed",
	}}
	svc := newTestService(t, orderRepo, carts, gw)

	result, err := svc.HandleCallback(context.Background(), "SEWSHOP-ABC123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Paid {
		t.Fatal("abandoned transaction must not settle")
	}
	if orderRepo.order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("order must stay pending, got %s", orderRepo.order.PaymentStatus)
	}
	if carts.record.Status != enums.CartStatusActive {
		t.Fatal("cart must stay active after a failed verification")
	}
}

func TestHandleCallbackReplayedIsIdempotent(t *testing.T) {
	t.Parallel()

	cartID := uuid.New()
	order := pendingOrder(cartID)
	order.PaymentStatus = enums.PaymentStatusPaid
	orderRepo := &stubOrderRepo{order: order}
	gw := &stubGateway{}
	svc := newTestService(t, orderRepo, &stubCartRepo{}, gw)

	result, err := svc.HandleCallback(context.Background(), "SEWSHOP-ABC123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Paid {
		t.Fatal("expected replayed callback to report paid")
	}
	if len(gw.verified) != 0 {
		t.Fatal("replayed callback must not hit the provider")
	}
}

func TestHandleCallbackAmountMismatch(t *testing.T) {
	t.Parallel()

	orderRepo := &stubOrderRepo{order: pendingOrder(uuid.New())}
	gw := &stubGateway{verify: &paystack.VerifyResult{
		Reference:   "SEWSHOP-ABC123",
		Status:      "success",
		AmountMinor: 100,
	}}
	svc := newTestService(t, orderRepo, &stubCartRepo{}, gw)

	_, err := svc.HandleCallback(context.Background(), "SEWSHOP-ABC123")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodePayment {
		t.Fatalf("expected payment error, got %v", err)
	}
	if orderRepo.order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatal("mismatched amount must not settle")
	}
}

func TestHandleCallbackUnknownReference(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubOrderRepo{}, &stubCartRepo{}, &stubGateway{})

	_, err := svc.HandleCallback(context.Background(), "UNKNOWN")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func webhookBody(t *testing.T, event, reference string, amount int64) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"event": event,
		"data": map[string]any{
			"reference": reference,
			"status":    "success",
			"amount":    amount,
		},
	})
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	return body
}

func TestHandleWebhookSettles(t *testing.T) {
	t.Parallel()

	cartID := uuid.New()
	orderRepo := &stubOrderRepo{order: pendingOrder(cartID)}
	carts := &stubCartRepo{record: &models.CartRecord{ID: cartID, Status: enums.CartStatusActive}}
	svc := newTestService(t, orderRepo, carts, &stubGateway{validSig: true})

	err := svc.HandleWebhook(context.Background(), webhookBody(t, "charge.success", "SEWSHOP-ABC123", 687500), "sig")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orderRepo.order.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected paid order, got %s", orderRepo.order.PaymentStatus)
	}
	if carts.record.Status != enums.CartStatusConverted {
		t.Fatal("expected converted cart")
	}
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	t.Parallel()

	orderRepo := &stubOrderRepo{order: pendingOrder(uuid.New())}
	svc := newTestService(t, orderRepo, &stubCartRepo{}, &stubGateway{validSig: false})

	err := svc.HandleWebhook(context.Background(), webhookBody(t, "charge.success", "SEWSHOP-ABC123", 687500), "bad")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if orderRepo.order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatal("unsigned webhook must not settle")
	}
}

func TestHandleWebhookIgnoresOtherEvents(t *testing.T) {
	t.Parallel()

	orderRepo := &stubOrderRepo{order: pendingOrder(uuid.New())}
	svc := newTestService(t, orderRepo, &stubCartRepo{}, &stubGateway{validSig: true})

	err := svc.HandleWebhook(context.Background(), webhookBody(t, "transfer.success", "SEWSHOP-ABC123", 687500), "sig")
	if err != nil {
		t.Fatalf("expected ignored event, got %v", err)
	}
	if orderRepo.order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatal("unrelated events must not settle")
	}
}

func TestHandleWebhookUnknownReferenceAcknowledged(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubOrderRepo{}, &stubCartRepo{}, &stubGateway{validSig: true})

	if err := svc.HandleWebhook(context.Background(), webhookBody(t, "charge.success", "UNKNOWN", 100), "sig"); err != nil {
		t.Fatalf("expected acknowledgement, got %v", err)
	}
}
