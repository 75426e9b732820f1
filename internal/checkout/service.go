package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kofiasare/sewshop-backend/internal/cart"
	"github.com/kofiasare/sewshop-backend/internal/orders"
	"github.com/kofiasare/sewshop-backend/internal/pricing"
	"github.com/kofiasare/sewshop-backend/internal/sellable"
	"github.com/kofiasare/sewshop-backend/pkg/config"
	"github.com/kofiasare/sewshop-backend/pkg/db/models"
	"github.com/kofiasare/sewshop-backend/pkg/enums"
	pkgerrors "github.com/kofiasare/sewshop-backend/pkg/errors"
	"github.com/kofiasare/sewshop-backend/pkg/logger"
	"github.com/kofiasare/sewshop-backend/pkg/metrics"
	"github.com/kofiasare/sewshop-backend/pkg/paystack"
	"github.com/kofiasare/sewshop-backend/pkg/types"
)

const (
	lockScope = "checkout"
	lockTTL   = 30 * time.Second

	outcomePlaced        = "placed"
	outcomeInitialized   = "initialized"
	outcomeProviderError = "provider_error"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// locker is the per-cart submission latch. Implemented by pkg/redis.
type locker interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	LockKey(scope, id string) string
}

// PaymentProvider opens inline transactions. Implemented by pkg/paystack.
type PaymentProvider interface {
	Initialize(ctx context.Context, input paystack.InitializeInput) (*paystack.InitializeResult, error)
}

// Service turns an active cart into an order.
type Service interface {
	Submit(ctx context.Context, clientToken string, input SubmitInput) (*Result, error)
}

// SubmitInput is the checkout form payload after decoding.
type SubmitInput struct {
	PaymentMethod         enums.PaymentMethod
	Email                 string
	ShippingAddress       types.Address
	BillingSameAsShipping bool
	BillingAddress        *types.Address
	CustomerNotes         *string
	// SaveAddresses is the customer's opt-in to reuse the submitted
	// addresses later; it is persisted with the order.
	SaveAddresses bool
}

// PaymentIntent is the inline-popup handle returned for gateway methods.
type PaymentIntent struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// Result is the checkout outcome: the order, plus the payment intent when
// the method completes through the provider popup.
type Result struct {
	Order   *models.Order
	Payment *PaymentIntent
}

type service struct {
	carts    cart.CartRepository
	orders   orders.OrderRepository
	tx       txRunner
	locks    locker
	provider PaymentProvider
	tax      pricing.TaxCalculator
	shipping pricing.ShippingCalculator
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
	shop     config.ShopConfig
	callback string
	now      func() time.Time
}

// NewService builds the checkout service. The provider may be nil when the
// gateway is not configured; inline submissions then fail cleanly.
func NewService(
	carts cart.CartRepository,
	orderRepo orders.OrderRepository,
	tx txRunner,
	locks locker,
	provider PaymentProvider,
	tax pricing.TaxCalculator,
	shipping pricing.ShippingCalculator,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
	shop config.ShopConfig,
	callbackURL string,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if locks == nil {
		return nil, fmt.Errorf("lock store required")
	}
	if tax == nil || shipping == nil {
		return nil, fmt.Errorf("pricing calculators required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		carts:    carts,
		orders:   orderRepo,
		tx:       tx,
		locks:    locks,
		provider: provider,
		tax:      tax,
		shipping: shipping,
		metrics:  checkoutMetrics,
		logg:     logg,
		shop:     shop,
		callback: callbackURL,
		now:      time.Now,
	}, nil
}

// Submit validates the form, locks the cart against double submission, and
// places the order. Inline methods get a provider transaction and leave the
// cart untouched until settlement; offline methods convert the cart here.
func (s *service) Submit(ctx context.Context, clientToken string, input SubmitInput) (*Result, error) {
	started := s.now()
	if err := validateSubmit(input); err != nil {
		return nil, err
	}
	if clientToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart token is required").
			WithDetails(map[string]string{"cart_token": "is required"})
	}

	record, err := s.carts.FindActiveByToken(ctx, clientToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty").
				WithDetails(map[string]string{"cart": "is empty"})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load cart")
	}
	if len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty").
			WithDetails(map[string]string{"cart": "is empty"})
	}

	ctx = s.logg.WithCartID(ctx, record.ID.String())

	lockKey := s.locks.LockKey(lockScope, record.ID.String())
	acquired, err := s.locks.SetNX(ctx, lockKey, "1", lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to acquire checkout lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout is already in progress for this cart")
	}
	defer func() {
		if err := s.locks.Del(context.WithoutCancel(ctx), lockKey); err != nil {
			s.logg.Warn(ctx, "failed to release checkout lock")
		}
	}()

	reference, err := s.ensureReference(ctx, record)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithPaymentReference(ctx, reference)

	// Retries and cancelled popups land here with the same reference.
	if existing, err := s.orders.FindByPaymentReference(ctx, reference); err == nil {
		return s.resumeExisting(ctx, existing, record, input)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to check for existing order")
	}

	// Totals shown before submission are advisory; the fold here is what the
	// order is priced at.
	summary := cart.Fold(record.Items, s.tax, s.shipping)
	order, err := s.buildOrder(record, summary, input, reference)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if input.PaymentMethod.SupportsInline() {
		intent, err := s.initializeInline(ctx, input, order)
		if err != nil {
			s.metrics.IncOrder(input.PaymentMethod.String(), outcomeProviderError)
			return nil, err
		}
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			created, err := s.orders.WithTx(tx).Create(ctx, order)
			if err != nil {
				return err
			}
			result.Order = created
			return nil
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create order")
		}
		result.Payment = intent
		s.metrics.IncOrder(input.PaymentMethod.String(), outcomeInitialized)
	} else {
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			created, err := s.orders.WithTx(tx).Create(ctx, order)
			if err != nil {
				return err
			}
			if err := s.carts.WithTx(tx).MarkConverted(ctx, record.ID, s.now()); err != nil {
				return err
			}
			result.Order = created
			return nil
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to place order")
		}
		s.metrics.IncOrder(input.PaymentMethod.String(), outcomePlaced)
	}

	ctx = s.logg.WithOrderNumber(ctx, result.Order.OrderNumber)
	s.logg.Info(ctx, "order placed")
	s.metrics.ObserveDuration(input.PaymentMethod.String(), s.now().Sub(started))
	return result, nil
}

// ensureReference returns the cart's stable payment reference, minting and
// persisting one on first submission.
func (s *service) ensureReference(ctx context.Context, record *models.CartRecord) (string, error) {
	if record.CheckoutReference != nil && *record.CheckoutReference != "" {
		return *record.CheckoutReference, nil
	}
	reference := GenerateReference(s.shop.Slug, s.now())
	if err := s.carts.SetCheckoutReference(ctx, record.ID, reference); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to persist payment reference")
	}
	// Re-read in case a concurrent submission won the write.
	fresh, err := s.carts.FindByID(ctx, record.ID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to reload cart")
	}
	if fresh.CheckoutReference != nil && *fresh.CheckoutReference != "" {
		return *fresh.CheckoutReference, nil
	}
	return reference, nil
}

// resumeExisting handles a re-submission for a reference that already has an
// order: settled orders are returned as-is, pending inline orders get a
// fresh provider transaction under the same reference. The cart stays
// editable while a popup is pending, so the draft is re-folded against the
// current lines before the provider is asked for a new amount.
func (s *service) resumeExisting(ctx context.Context, order *models.Order, record *models.CartRecord, input SubmitInput) (*Result, error) {
	result := &Result{Order: order}
	if order.PaymentStatus == enums.PaymentStatusPaid || !order.PaymentMethod.SupportsInline() {
		return result, nil
	}

	summary := cart.Fold(record.Items, s.tax, s.shipping)
	if snapshotStale(order, record, summary) {
		repriced, err := s.repriceDraft(ctx, order, record, summary, input)
		if err != nil {
			return nil, err
		}
		order = repriced
		result.Order = repriced
	}

	intent, err := s.initializeInline(ctx, input, order)
	if err != nil {
		s.metrics.IncOrder(order.PaymentMethod.String(), outcomeProviderError)
		return nil, err
	}
	result.Payment = intent
	s.metrics.IncOrder(order.PaymentMethod.String(), outcomeInitialized)
	return result, nil
}

func (s *service) initializeInline(ctx context.Context, input SubmitInput, order *models.Order) (*PaymentIntent, error) {
	if s.provider == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "online payments are not configured")
	}
	init, err := s.provider.Initialize(ctx, paystack.InitializeInput{
		Email:       input.Email,
		AmountMinor: minorUnits(order.TotalAmount),
		Reference:   order.PaymentReference,
		Currency:    order.Currency.String(),
		CallbackURL: s.callback,
	})
	if err != nil {
		return nil, err
	}
	return &PaymentIntent{
		AuthorizationURL: init.AuthorizationURL,
		AccessCode:       init.AccessCode,
		Reference:        init.Reference,
	}, nil
}

func (s *service) buildOrder(record *models.CartRecord, summary cart.Summary, input SubmitInput, reference string) (*models.Order, error) {
	shipping, err := input.ShippingAddress.Encode()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to encode shipping address")
	}

	cartID := record.ID
	order := &models.Order{
		OrderNumber:      GenerateOrderNumber(s.now()),
		CartID:           &cartID,
		Status:           enums.OrderStatusPending,
		PaymentMethod:    input.PaymentMethod,
		PaymentStatus:    enums.PaymentStatusPending,
		PaymentReference: reference,
		Currency:         record.Currency,
		Subtotal:         summary.Subtotal,
		TaxAmount:        summary.Tax,
		ShippingCost:     summary.ShippingFee,
		TotalAmount:      summary.Total,
		ShippingAddress:  shipping,
		CustomerNotes:    input.CustomerNotes,
		SaveAddresses:    input.SaveAddresses,
	}

	if !input.BillingSameAsShipping && input.BillingAddress != nil {
		billing, err := input.BillingAddress.Encode()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to encode billing address")
		}
		order.BillingAddress = &billing
	}

	order.Items = snapshotItems(record)
	return order, nil
}

// repriceDraft rewrites an unpaid inline draft so its amounts and item
// snapshots match the cart as it stands now. The order number and payment
// reference never change.
func (s *service) repriceDraft(ctx context.Context, order *models.Order, record *models.CartRecord, summary cart.Summary, input SubmitInput) (*models.Order, error) {
	shipping, err := input.ShippingAddress.Encode()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to encode shipping address")
	}

	order.Subtotal = summary.Subtotal
	order.TaxAmount = summary.Tax
	order.ShippingCost = summary.ShippingFee
	order.TotalAmount = summary.Total
	order.ShippingAddress = shipping
	order.CustomerNotes = input.CustomerNotes
	order.SaveAddresses = input.SaveAddresses
	order.BillingAddress = nil
	if !input.BillingSameAsShipping && input.BillingAddress != nil {
		billing, err := input.BillingAddress.Encode()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to encode billing address")
		}
		order.BillingAddress = &billing
	}
	order.Items = snapshotItems(record)

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		out, err := s.orders.WithTx(tx).ReplaceSnapshot(ctx, order)
		if err != nil {
			return err
		}
		updated = out
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to reprice pending order")
	}
	s.logg.Info(ctx, "pending order repriced to current cart")
	return updated, nil
}

// snapshotStale reports whether the cart has drifted from the pending
// order's snapshot: changed totals, or any line whose identity, quantity, or
// priced subtotal no longer matches. Both sides are held in position order.
func snapshotStale(order *models.Order, record *models.CartRecord, summary cart.Summary) bool {
	if !order.TotalAmount.Equal(summary.Total) || !order.Subtotal.Equal(summary.Subtotal) {
		return true
	}
	if len(order.Items) != len(record.Items) {
		return true
	}
	for i, item := range record.Items {
		snap := order.Items[i]
		if snap.SellableID == nil || *snap.SellableID != item.SellableID {
			return true
		}
		if snap.Quantity != item.Quantity {
			return true
		}
		if !snap.Subtotal.Equal(cart.ComputeSubtotal(item)) {
			return true
		}
	}
	return false
}

func snapshotItems(record *models.CartRecord) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(record.Items))
	for _, item := range record.Items {
		ref := sellable.Resolve(item)
		sellableID := item.SellableID
		items = append(items, models.OrderItem{
			SellableKind:   ref.Kind,
			SellableID:     &sellableID,
			Name:           ref.Name,
			VariantLabel:   ref.VariantLabel,
			SKU:            ref.SKU,
			ImageURL:       ref.ImageURL,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			Subtotal:       cart.ComputeSubtotal(item),
			PackagingName:  item.PackagingName,
			MaterialOption: item.MaterialOption,
			SelectedAddons: item.SelectedAddons,
			Position:       item.Position,
		})
	}
	return items
}

// minorUnits converts a decimal amount to the provider's integer minor units
// (kobo for NGN).
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
