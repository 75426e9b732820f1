package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kofiasare/sewshop-backend/pkg/db/models"
	"github.com/kofiasare/sewshop-backend/pkg/enums"
	"github.com/kofiasare/sewshop-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  cart_id TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  payment_reference TEXT NOT NULL UNIQUE,
  currency TEXT NOT NULL DEFAULT 'NGN',
  subtotal TEXT NOT NULL,
  tax_amount TEXT NOT NULL,
  shipping_cost TEXT NOT NULL,
  total_amount TEXT NOT NULL,
  shipping_address TEXT NOT NULL,
  billing_address TEXT,
  customer_notes TEXT,
  save_addresses INTEGER NOT NULL DEFAULT 0,
  paid_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	itemsTable := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  sellable_kind TEXT NOT NULL,
  sellable_id TEXT,
  name TEXT NOT NULL,
  variant_label TEXT,
  sku TEXT,
  image_url TEXT,
  quantity INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  subtotal TEXT NOT NULL,
  packaging_name TEXT,
  material_option TEXT,
  selected_addons TEXT,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(itemsTable).Error)
	return db
}

func fixtureOrder(t *testing.T) *models.Order {
	t.Helper()

	address, err := types.Address{
		FirstName: "Ama",
		LastName:  "Mensah",
		Phone:     "+2348012345678",
		Line1:     "12 Allen Avenue",
		City:      "Ikeja",
		State:     "Lagos",
		Country:   "NG",
	}.Encode()
	require.NoError(t, err)

	sellableID := uuid.New()
	return &models.Order{
		ID:               uuid.New(),
		OrderNumber:      "ORD-TEST-0001",
		Status:           enums.OrderStatusPending,
		PaymentMethod:    enums.PaymentMethodPaystack,
		PaymentStatus:    enums.PaymentStatusPending,
		PaymentReference: "SEWSHOP-ABC123",
		Currency:         enums.CurrencyNGN,
		Subtotal:         decimal.RequireFromString("20000.00"),
		TaxAmount:        decimal.RequireFromString("1500.00"),
		ShippingCost:     decimal.RequireFromString("1500.00"),
		TotalAmount:      decimal.RequireFromString("23000.00"),
		ShippingAddress:  address,
		Items: []models.OrderItem{
			{
				ID:           uuid.New(),
				SellableKind: enums.SellableKindProduct,
				SellableID:   &sellableID,
				Name:         "Kaftan",
				Quantity:     2,
				UnitPrice:    decimal.RequireFromString("2500.00"),
				Subtotal:     decimal.RequireFromString("5000.00"),
				Position:     0,
			},
			{
				ID:           uuid.New(),
				SellableKind: enums.SellableKindService,
				Name:         "Bespoke sewing",
				Quantity:     1,
				UnitPrice:    decimal.RequireFromString("12000.00"),
				Subtotal:     decimal.RequireFromString("15000.00"),
				SelectedAddons: types.SelectedAddons{
					{AddonID: uuid.New(), Name: "Express", Quantity: 1, UnitPrice: decimal.RequireFromString("3000.00")},
				},
				Position: 1,
			},
		},
	}
}

func TestRepositoryCreateAndFindByOrderNumber(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, fixtureOrder(t))
	require.NoError(t, err)

	found, err := repo.FindByOrderNumber(ctx, created.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	require.Len(t, found.Items, 2)
	assert.Equal(t, "Kaftan", found.Items[0].Name)
	assert.Equal(t, "Bespoke sewing", found.Items[1].Name)
	assert.True(t, found.Subtotal.Equal(decimal.RequireFromString("20000.00")))
	require.Len(t, found.Items[1].SelectedAddons, 1)
	assert.Equal(t, "Express", found.Items[1].SelectedAddons[0].Name)
}

func TestRepositoryFindByPaymentReference(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, fixtureOrder(t))
	require.NoError(t, err)

	found, err := repo.FindByPaymentReference(ctx, created.PaymentReference)
	require.NoError(t, err)
	assert.Equal(t, created.OrderNumber, found.OrderNumber)

	_, err = repo.FindByPaymentReference(ctx, "UNKNOWN-REF")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryMarkPaidIsIdempotent(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, fixtureOrder(t))
	require.NoError(t, err)

	firstPaidAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkPaid(ctx, created.ID, firstPaidAt))

	found, err := repo.FindByOrderNumber(ctx, created.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, found.PaymentStatus)
	assert.Equal(t, enums.OrderStatusProcessing, found.Status)
	require.NotNil(t, found.PaidAt)

	// A replayed settlement must not move paid_at.
	require.NoError(t, repo.MarkPaid(ctx, created.ID, firstPaidAt.Add(2*time.Hour)))
	again, err := repo.FindByOrderNumber(ctx, created.OrderNumber)
	require.NoError(t, err)
	assert.True(t, again.PaidAt.Equal(*found.PaidAt))
}

func TestRepositoryReplaceSnapshotRewritesDraft(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, fixtureOrder(t))
	require.NoError(t, err)

	sellableID := uuid.New()
	created.Subtotal = decimal.RequireFromString("12500.00")
	created.TaxAmount = decimal.RequireFromString("937.50")
	created.TotalAmount = decimal.RequireFromString("14937.50")
	created.SaveAddresses = true
	created.Items = []models.OrderItem{
		{
			ID:           uuid.New(),
			SellableKind: enums.SellableKindProduct,
			SellableID:   &sellableID,
			Name:         "Kaftan",
			Quantity:     5,
			UnitPrice:    decimal.RequireFromString("2500.00"),
			Subtotal:     decimal.RequireFromString("12500.00"),
			Position:     0,
		},
	}

	_, err = repo.ReplaceSnapshot(ctx, created)
	require.NoError(t, err)

	found, err := repo.FindByOrderNumber(ctx, created.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.True(t, found.TotalAmount.Equal(decimal.RequireFromString("14937.50")))
	assert.True(t, found.SaveAddresses)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 5, found.Items[0].Quantity)
}

func TestRepositoryReplaceSnapshotRefusesPaidOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, fixtureOrder(t))
	require.NoError(t, err)
	require.NoError(t, repo.MarkPaid(ctx, created.ID, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)))

	_, err = repo.ReplaceSnapshot(ctx, created)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	found, err := repo.FindByOrderNumber(ctx, created.OrderNumber)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
}

func TestConfirmationDecodesAddress(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	created, err := repo.Create(ctx, fixtureOrder(t))
	require.NoError(t, err)

	dto, err := svc.Confirmation(ctx, created.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, created.OrderNumber, dto.OrderNumber)
	assert.Equal(t, "Ama", dto.ShippingAddress.FirstName)
	assert.Equal(t, "Ikeja", dto.ShippingAddress.City)
	require.Len(t, dto.Items, 2)
	assert.Equal(t, enums.SellableKindService, dto.Items[1].SellableKind)
	assert.True(t, dto.TotalAmount.Equal(created.TotalAmount))
}
