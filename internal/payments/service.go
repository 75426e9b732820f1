package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kofiasare/sewshop-backend/internal/cart"
	"github.com/kofiasare/sewshop-backend/internal/orders"
	"github.com/kofiasare/sewshop-backend/pkg/db/models"
	"github.com/kofiasare/sewshop-backend/pkg/enums"
	pkgerrors "github.com/kofiasare/sewshop-backend/pkg/errors"
	"github.com/kofiasare/sewshop-backend/pkg/logger"
	"github.com/kofiasare/sewshop-backend/pkg/metrics"
	"github.com/kofiasare/sewshop-backend/pkg/paystack"
)

const (
	sourceCallback = "callback"
	sourceWebhook  = "webhook"

	outcomeSuccess  = "success"
	outcomeFailed   = "failed"
	outcomeReplayed = "replayed"

	eventChargeSuccess = "charge.success"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// gateway is the provider surface settlement needs. Implemented by
// pkg/paystack.
type gateway interface {
	Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error)
	ValidateWebhookSignature(body []byte, signature string) bool
}

// Service settles inline payments from the redirect callback and the signed
// webhook. The webhook is the authoritative path; both are idempotent.
type Service interface {
	HandleCallback(ctx context.Context, reference string) (*SettlementResult, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

// SettlementResult is what the callback page renders from.
type SettlementResult struct {
	OrderNumber     string
	Paid            bool
	GatewayResponse string
}

type service struct {
	orders  orders.OrderRepository
	carts   cart.CartRepository
	tx      txRunner
	gateway gateway
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the payment settlement service.
func NewService(
	orderRepo orders.OrderRepository,
	carts cart.CartRepository,
	tx txRunner,
	gw gateway,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (Service, error) {
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gw == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		orders:  orderRepo,
		carts:   carts,
		tx:      tx,
		gateway: gw,
		metrics: checkoutMetrics,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// HandleCallback verifies the transaction the customer was redirected back
// with and settles the order on success. A failed or abandoned transaction
// changes nothing: the cart stays active and the order stays pending, so the
// customer can retry under the same reference.
func (s *service) HandleCallback(ctx context.Context, reference string) (*SettlementResult, error) {
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required").
			WithDetails(map[string]string{"reference": "is required"})
	}
	ctx = s.logg.WithPaymentReference(ctx, reference)

	order, err := s.orders.FindByPaymentReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no order for this payment reference")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load order")
	}

	if order.PaymentStatus == enums.PaymentStatusPaid {
		s.metrics.IncSettlement(sourceCallback, outcomeReplayed)
		return &SettlementResult{OrderNumber: order.OrderNumber, Paid: true}, nil
	}

	verification, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !verification.Succeeded() {
		s.metrics.IncSettlement(sourceCallback, outcomeFailed)
		s.logg.Warn(ctx, "callback verification did not succeed")
		return &SettlementResult{
			OrderNumber:     order.OrderNumber,
			Paid:            false,
			GatewayResponse: verification.GatewayResponse,
		}, nil
	}
	if verification.AmountMinor != minorUnits(order.TotalAmount) {
		s.metrics.IncSettlement(sourceCallback, outcomeFailed)
		return nil, pkgerrors.New(pkgerrors.CodePayment, "settled amount does not match the order")
	}

	paidAt := s.now()
	if verification.PaidAt != nil {
		paidAt = *verification.PaidAt
	}
	if err := s.settle(ctx, order, paidAt); err != nil {
		return nil, err
	}
	s.metrics.IncSettlement(sourceCallback, outcomeSuccess)
	return &SettlementResult{OrderNumber: order.OrderNumber, Paid: true}, nil
}

type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string     `json:"reference"`
		Status    string     `json:"status"`
		Amount    int64      `json:"amount"`
		PaidAt    *time.Time `json:"paid_at"`
	} `json:"data"`
}

// HandleWebhook settles from the provider's signed event stream. Signature
// failures are rejected outright; events other than charge.success are
// acknowledged and ignored.
func (s *service) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.gateway.ValidateWebhookSignature(body, signature) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "invalid webhook signature")
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed webhook payload")
	}
	if event.Event != eventChargeSuccess {
		return nil
	}
	if event.Data.Reference == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "webhook event has no reference")
	}
	ctx = s.logg.WithPaymentReference(ctx, event.Data.Reference)

	order, err := s.orders.FindByPaymentReference(ctx, event.Data.Reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Not our transaction; acknowledge so the provider stops retrying.
			s.logg.Warn(ctx, "webhook for unknown payment reference")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load order")
	}

	if order.PaymentStatus == enums.PaymentStatusPaid {
		s.metrics.IncSettlement(sourceWebhook, outcomeReplayed)
		return nil
	}
	if event.Data.Amount != minorUnits(order.TotalAmount) {
		s.metrics.IncSettlement(sourceWebhook, outcomeFailed)
		return pkgerrors.New(pkgerrors.CodePayment, "settled amount does not match the order")
	}

	paidAt := s.now()
	if event.Data.PaidAt != nil {
		paidAt = *event.Data.PaidAt
	}
	if err := s.settle(ctx, order, paidAt); err != nil {
		return err
	}
	s.metrics.IncSettlement(sourceWebhook, outcomeSuccess)
	return nil
}

// settle marks the order paid and converts its cart in one transaction.
func (s *service) settle(ctx context.Context, order *models.Order, paidAt time.Time) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).MarkPaid(ctx, order.ID, paidAt); err != nil {
			return err
		}
		if order.CartID != nil {
			if err := s.carts.WithTx(tx).MarkConverted(ctx, *order.CartID, paidAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to settle payment")
	}
	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)
	s.logg.Info(ctx, "payment settled")
	return nil
}

func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
