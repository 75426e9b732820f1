package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kofiasare/sewshop-backend/api/middleware"
	cartsvc "github.com/kofiasare/sewshop-backend/internal/cart"
	"github.com/kofiasare/sewshop-backend/internal/catalog"
	"github.com/kofiasare/sewshop-backend/internal/checkout"
	"github.com/kofiasare/sewshop-backend/internal/orders"
	"github.com/kofiasare/sewshop-backend/internal/payments"
	"github.com/kofiasare/sewshop-backend/pkg/config"
	"github.com/kofiasare/sewshop-backend/pkg/db/models"
	"github.com/kofiasare/sewshop-backend/pkg/enums"
	"github.com/kofiasare/sewshop-backend/pkg/logger"
	"github.com/kofiasare/sewshop-backend/pkg/pagination"
)

type stubCatalog struct{}

func (stubCatalog) Products(context.Context, pagination.Params) (*catalog.ProductPage, error) {
	return &catalog.ProductPage{Products: []models.Product{}}, nil
}

func (stubCatalog) Services(context.Context, pagination.Params) (*catalog.ServicePage, error) {
	return &catalog.ServicePage{Services: []models.Service{}}, nil
}

func (stubCatalog) ProductDetail(context.Context, string) (*models.Product, error) {
	return &models.Product{Name: "Kaftan", Slug: "kaftan"}, nil
}

func (stubCatalog) ServiceDetail(context.Context, string) (*models.Service, error) {
	return &models.Service{Name: "Bespoke Sewing", Slug: "bespoke-sewing"}, nil
}

type stubCart struct{}

func (stubCart) GetCart(context.Context, string) (*models.CartRecord, error) {
	return emptyCart(), nil
}

func (stubCart) AddProductItem(context.Context, string, cartsvc.AddProductItemInput) (*cartsvc.MutationResult, error) {
	return &cartsvc.MutationResult{Cart: emptyCart()}, nil
}

func (stubCart) AddServiceItem(context.Context, string, cartsvc.AddServiceItemInput) (*cartsvc.MutationResult, error) {
	return &cartsvc.MutationResult{Cart: emptyCart()}, nil
}

func (stubCart) UpdateItemQuantity(context.Context, string, uuid.UUID, int) (*cartsvc.MutationResult, error) {
	return &cartsvc.MutationResult{Cart: emptyCart()}, nil
}

func (stubCart) SetItemAddon(context.Context, string, uuid.UUID, cartsvc.SetAddonInput) (*cartsvc.MutationResult, error) {
	return &cartsvc.MutationResult{Cart: emptyCart()}, nil
}

func (stubCart) RemoveItem(context.Context, string, uuid.UUID) (*cartsvc.MutationResult, error) {
	return &cartsvc.MutationResult{Cart: emptyCart()}, nil
}

type stubCheckout struct{}

func (stubCheckout) Submit(context.Context, string, checkout.SubmitInput) (*checkout.Result, error) {
	return &checkout.Result{Order: &models.Order{
		OrderNumber:   "ORD-1",
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		Currency:      enums.CurrencyNGN,
		TotalAmount:   decimal.Zero,
	}}, nil
}

type stubOrders struct{}

func (stubOrders) Confirmation(context.Context, string) (*orders.ConfirmationDTO, error) {
	return &orders.ConfirmationDTO{OrderNumber: "ORD-1"}, nil
}

type stubPayments struct{}

func (stubPayments) HandleCallback(context.Context, string) (*payments.SettlementResult, error) {
	return &payments.SettlementResult{OrderNumber: "ORD-1", Paid: true}, nil
}

func (stubPayments) HandleWebhook(context.Context, []byte, string) error {
	return nil
}

func emptyCart() *models.CartRecord {
	return &models.CartRecord{
		ID:       uuid.New(),
		Status:   enums.CartStatusActive,
		Currency: enums.CurrencyNGN,
	}
}

func newTestRouter() http.Handler {
	return NewRouter(Deps{
		Config: &config.Config{App: config.AppConfig{Env: "test"}},
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),

		Catalog:  stubCatalog{},
		Cart:     stubCart{},
		Checkout: stubCheckout{},
		Orders:   stubOrders{},
		Payments: stubPayments{},
	})
}

func TestRouterRoutes(t *testing.T) {
	t.Parallel()

	router := newTestRouter()

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"health live", http.MethodGet, "/health/live", "", http.StatusOK},
		{"health ready skips nil deps", http.MethodGet, "/health/ready", "", http.StatusOK},
		{"products", http.MethodGet, "/api/v1/products", "", http.StatusOK},
		{"product detail", http.MethodGet, "/api/v1/products/kaftan", "", http.StatusOK},
		{"services", http.MethodGet, "/api/v1/services", "", http.StatusOK},
		{"service detail", http.MethodGet, "/api/v1/services/bespoke-sewing", "", http.StatusOK},
		{"cart fetch", http.MethodGet, "/api/v1/cart", "", http.StatusOK},
		{"order confirmation", http.MethodGet, "/api/v1/orders/ORD-1", "", http.StatusOK},
		{"payment callback", http.MethodGet, "/api/v1/payments/callback?trxref=REF-1", "", http.StatusOK},
		{"paystack webhook", http.MethodPost, "/api/v1/webhooks/paystack", "{}", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/v1/nope", "", http.StatusNotFound},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			req := httptest.NewRequest(tc.method, tc.path, body)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("%s %s = %d, want %d: %s", tc.method, tc.path, rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestRouterCartRoutesMintToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get(middleware.CartTokenHeader) == "" {
		t.Fatal("cart routes must mint a token")
	}
}

func TestRouterMetricsOnlyWithRegistry(t *testing.T) {
	t.Parallel()

	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("metrics without a registry = %d, want 404", rec.Code)
	}
}
