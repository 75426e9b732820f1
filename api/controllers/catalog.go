package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kofiasare/sewshop-backend/api/responses"
	"github.com/kofiasare/sewshop-backend/api/validators"
	"github.com/kofiasare/sewshop-backend/internal/catalog"
	"github.com/kofiasare/sewshop-backend/pkg/db/models"
	"github.com/kofiasare/sewshop-backend/pkg/logger"
	"github.com/kofiasare/sewshop-backend/pkg/pagination"
)

type productListItem struct {
	ID            uuid.UUID            `json:"id"`
	Name          string               `json:"name"`
	Slug          string               `json:"slug"`
	Description   *string              `json:"description,omitempty"`
	FeaturedImage *string              `json:"featured_image,omitempty"`
	Variants      []productVariantView `json:"variants"`
}

type productVariantView struct {
	ID             uuid.UUID       `json:"id"`
	SKU            string          `json:"sku"`
	Label          *string         `json:"label,omitempty"`
	Price          decimal.Decimal `json:"price"`
	TrackInventory bool            `json:"track_inventory"`
	AvailableStock int             `json:"available_stock"`
	ImageURL       *string         `json:"image_url,omitempty"`
}

type productDetailView struct {
	productListItem
	GalleryImages  []string            `json:"gallery_images"`
	PackagingTypes []packagingTypeView `json:"packaging_types"`
}

type packagingTypeView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
}

type serviceListItem struct {
	ID                 uuid.UUID            `json:"id"`
	Name               string               `json:"name"`
	Slug               string               `json:"slug"`
	Description        *string              `json:"description,omitempty"`
	FeaturedImage      *string              `json:"featured_image,omitempty"`
	HasMaterialOptions bool                 `json:"has_material_options"`
	Variants           []serviceVariantView `json:"variants"`
}

type serviceVariantView struct {
	ID                       uuid.UUID        `json:"id"`
	Label                    string           `json:"label"`
	BasePrice                decimal.Decimal  `json:"base_price"`
	CustomerMaterialsPrice   *decimal.Decimal `json:"customer_materials_price,omitempty"`
	ShopMaterialsPrice       *decimal.Decimal `json:"shop_materials_price,omitempty"`
	EstimatedDurationMinutes *int             `json:"estimated_duration_minutes,omitempty"`
	ImageURL                 *string          `json:"image_url,omitempty"`
}

type serviceDetailView struct {
	serviceListItem
	Addons []serviceAddonView `json:"addons"`
}

type serviceAddonView struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	MaxQuantity *int            `json:"max_quantity,omitempty"`
}

type listEnvelope[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor,omitempty"`
}

// CatalogProducts lists active products for the storefront grid.
func CatalogProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.Products(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := listEnvelope[productListItem]{NextCursor: page.NextCursor, Items: make([]productListItem, 0, len(page.Products))}
		for i := range page.Products {
			out.Items = append(out.Items, newProductListItem(&page.Products[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// CatalogProductDetail returns one product with variants and packaging.
func CatalogProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := svc.ProductDetail(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail := productDetailView{
			productListItem: newProductListItem(product),
			GalleryImages:   product.GalleryImages,
			PackagingTypes:  make([]packagingTypeView, 0, len(product.PackagingTypes)),
		}
		if detail.GalleryImages == nil {
			detail.GalleryImages = []string{}
		}
		for _, packaging := range product.PackagingTypes {
			detail.PackagingTypes = append(detail.PackagingTypes, packagingTypeView{
				ID:          packaging.ID,
				Name:        packaging.Name,
				Description: packaging.Description,
			})
		}
		responses.WriteSuccess(w, detail)
	}
}

// CatalogServices lists active services.
func CatalogServices(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.Services(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := listEnvelope[serviceListItem]{NextCursor: page.NextCursor, Items: make([]serviceListItem, 0, len(page.Services))}
		for i := range page.Services {
			out.Items = append(out.Items, newServiceListItem(&page.Services[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// CatalogServiceDetail returns one service with variants and add-ons.
func CatalogServiceDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		service, err := svc.ServiceDetail(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail := serviceDetailView{
			serviceListItem: newServiceListItem(service),
			Addons:          make([]serviceAddonView, 0, len(service.Addons)),
		}
		for _, addon := range service.Addons {
			detail.Addons = append(detail.Addons, serviceAddonView{
				ID:          addon.ID,
				Name:        addon.Name,
				UnitPrice:   addon.UnitPrice,
				MaxQuantity: addon.MaxQuantity,
			})
		}
		responses.WriteSuccess(w, detail)
	}
}

func newProductListItem(product *models.Product) productListItem {
	item := productListItem{
		ID:            product.ID,
		Name:          product.Name,
		Slug:          product.Slug,
		Description:   product.Description,
		FeaturedImage: product.FeaturedImage,
		Variants:      make([]productVariantView, 0, len(product.Variants)),
	}
	for _, variant := range product.Variants {
		item.Variants = append(item.Variants, productVariantView{
			ID:             variant.ID,
			SKU:            variant.SKU,
			Label:          variant.Label,
			Price:          variant.Price,
			TrackInventory: variant.TrackInventory,
			AvailableStock: variant.AvailableStock,
			ImageURL:       variant.ImageURL,
		})
	}
	return item
}

func newServiceListItem(service *models.Service) serviceListItem {
	item := serviceListItem{
		ID:                 service.ID,
		Name:               service.Name,
		Slug:               service.Slug,
		Description:        service.Description,
		FeaturedImage:      service.FeaturedImage,
		HasMaterialOptions: service.HasMaterialOptions,
		Variants:           make([]serviceVariantView, 0, len(service.Variants)),
	}
	for _, variant := range service.Variants {
		item.Variants = append(item.Variants, serviceVariantView{
			ID:                       variant.ID,
			Label:                    variant.Label,
			BasePrice:                variant.BasePrice,
			CustomerMaterialsPrice:   variant.CustomerMaterialsPrice,
			ShopMaterialsPrice:       variant.ShopMaterialsPrice,
			EstimatedDurationMinutes: variant.EstimatedDurationMinutes,
			ImageURL:                 variant.ImageURL,
		})
	}
	return item
}
