package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vancetran/medisupply-backend/pkg/cache"
	"github.com/vancetran/medisupply-backend/pkg/db/models"
	pkgerrors "github.com/vancetran/medisupply-backend/pkg/errors"
	"github.com/vancetran/medisupply-backend/pkg/pagination"
)

const (
	tagProducts      = "products"
	productDetailTTL = 5 * time.Minute
)

// Service exposes product catalog operations with an advisory read-through
// cache on product detail.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListProducts(ctx context.Context, params pagination.Params, filters Filters) ([]models.Product, int64, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	AddVariant(ctx context.Context, productID uuid.UUID, input VariantInput) (*models.ProductVariant, error)
	UpdateVariant(ctx context.Context, id uuid.UUID, input UpdateVariantInput) (*models.ProductVariant, error)
	DeleteVariant(ctx context.Context, id uuid.UUID) error
	AddImage(ctx context.Context, productID uuid.UUID, input ImageInput) (*models.ProductImage, error)
	DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error
	SetAttributes(ctx context.Context, productID uuid.UUID, attrs []AttributeInput) error
}

// CreateProductInput carries a new product, optionally with initial variants.
type CreateProductInput struct {
	SKU         string
	Name        string
	Slug        string
	Description *string
	Brand       *string
	CategoryID  *uuid.UUID
	IsFeatured  bool
	Variants    []VariantInput
}

// UpdateProductInput carries partial product updates; nil fields are untouched.
type UpdateProductInput struct {
	Name        *string
	Slug        *string
	Description *string
	Brand       *string
	CategoryID  *uuid.UUID
	IsActive    *bool
	IsFeatured  *bool
}

// VariantInput carries a new product variant.
type VariantInput struct {
	SKU               string
	Name              string
	Barcode           *string
	Price             decimal.Decimal
	CostPrice         *decimal.Decimal
	LowStockThreshold int
}

// UpdateVariantInput carries partial variant updates; nil fields are untouched.
type UpdateVariantInput struct {
	Name              *string
	Barcode           *string
	Price             *decimal.Decimal
	CostPrice         *decimal.Decimal
	LowStockThreshold *int
	IsActive          *bool
}

// ImageInput carries a new product image reference.
type ImageInput struct {
	URL          string
	AltText      *string
	DisplayOrder int
	IsPrimary    bool
}

// AttributeInput is one name/value attribute pair.
type AttributeInput struct {
	Name  string
	Value string
}

type service struct {
	repo  Repository
	cache cache.Store
}

// NewService builds the catalog service. The cache may be nil for paths that
// do not need it (tests).
func NewService(repo Repository, cacheStore cache.Store) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo, cache: cacheStore}, nil
}

func productTag(id uuid.UUID) string {
	return "product:" + id.String()
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if strings.TrimSpace(input.SKU) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product sku required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if strings.TrimSpace(input.Slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug required")
	}

	product := &models.Product{
		SKU:         strings.TrimSpace(input.SKU),
		Name:        strings.TrimSpace(input.Name),
		Slug:        strings.TrimSpace(input.Slug),
		Description: input.Description,
		Brand:       input.Brand,
		CategoryID:  input.CategoryID,
		IsActive:    true,
		IsFeatured:  input.IsFeatured,
	}
	for _, v := range input.Variants {
		variant, err := buildVariant(v)
		if err != nil {
			return nil, err
		}
		product.Variants = append(product.Variants, *variant)
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	s.invalidate(ctx, created.ID)
	return created, nil
}

// GetProduct serves product detail through the cache. A hit is decoded
// directly; a decode failure falls through to the database.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	cacheKey := "product:" + id.String()
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, cacheKey); ok {
			var cached models.Product
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(product); err == nil {
			s.cache.Set(ctx, cacheKey, string(encoded), productDetailTTL, tagProducts, productTag(id))
		}
	}
	return product, nil
}

func (s *service) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug required")
	}
	product, err := s.repo.FindProductBySlug(ctx, slug)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, params pagination.Params, filters Filters) ([]models.Product, int64, error) {
	rows, total, err := s.repo.ListProducts(ctx, params, filters)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, total, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Slug != nil {
		updates["slug"] = strings.TrimSpace(*input.Slug)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Brand != nil {
		updates["brand"] = *input.Brand
	}
	if input.CategoryID != nil {
		updates["category_id"] = *input.CategoryID
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.IsFeatured != nil {
		updates["is_featured"] = *input.IsFeatured
	}
	if len(updates) == 0 {
		return s.GetProduct(ctx, id)
	}

	if err := s.repo.UpdateProduct(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	s.invalidate(ctx, id)
	return s.GetProduct(ctx, id)
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *service) AddVariant(ctx context.Context, productID uuid.UUID, input VariantInput) (*models.ProductVariant, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	variant, err := buildVariant(input)
	if err != nil {
		return nil, err
	}
	variant.ProductID = productID

	created, err := s.repo.CreateVariant(ctx, variant)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create variant")
	}
	s.invalidate(ctx, productID)
	return created, nil
}

func (s *service) UpdateVariant(ctx context.Context, id uuid.UUID, input UpdateVariantInput) (*models.ProductVariant, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id required")
	}

	variant, err := s.repo.FindVariantByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Barcode != nil {
		updates["barcode"] = *input.Barcode
	}
	if input.Price != nil {
		if input.Price.LessThanOrEqual(decimal.Zero) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant price must be positive")
		}
		updates["price"] = *input.Price
	}
	if input.CostPrice != nil {
		updates["cost_price"] = *input.CostPrice
	}
	if input.LowStockThreshold != nil {
		updates["low_stock_threshold"] = *input.LowStockThreshold
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return variant, nil
	}

	if err := s.repo.UpdateVariant(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update variant")
	}
	s.invalidate(ctx, variant.ProductID)
	return s.repo.FindVariantByID(ctx, id)
}

func (s *service) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "variant id required")
	}
	variant, err := s.repo.FindVariantByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	if err := s.repo.DeleteVariant(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete variant")
	}
	s.invalidate(ctx, variant.ProductID)
	return nil
}

func (s *service) AddImage(ctx context.Context, productID uuid.UUID, input ImageInput) (*models.ProductImage, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if strings.TrimSpace(input.URL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image url required")
	}

	image := &models.ProductImage{
		ProductID:    productID,
		URL:          strings.TrimSpace(input.URL),
		AltText:      input.AltText,
		DisplayOrder: input.DisplayOrder,
		IsPrimary:    input.IsPrimary,
	}
	created, err := s.repo.CreateImage(ctx, image)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create image")
	}
	s.invalidate(ctx, productID)
	return created, nil
}

func (s *service) DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error {
	if imageID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "image id required")
	}
	if err := s.repo.DeleteImage(ctx, imageID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete image")
	}
	s.invalidate(ctx, productID)
	return nil
}

func (s *service) SetAttributes(ctx context.Context, productID uuid.UUID, attrs []AttributeInput) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	rows := make([]models.ProductAttribute, 0, len(attrs))
	for _, attr := range attrs {
		if strings.TrimSpace(attr.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "attribute name required")
		}
		rows = append(rows, models.ProductAttribute{
			ProductID: productID,
			Name:      strings.TrimSpace(attr.Name),
			Value:     attr.Value,
		})
	}
	if err := s.repo.ReplaceAttributes(ctx, productID, rows); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace attributes")
	}
	s.invalidate(ctx, productID)
	return nil
}

func (s *service) invalidate(ctx context.Context, productID uuid.UUID) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidateByTags(ctx, tagProducts, productTag(productID))
}

func buildVariant(input VariantInput) (*models.ProductVariant, error) {
	if strings.TrimSpace(input.SKU) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant sku required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant name required")
	}
	if input.Price.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant price must be positive")
	}

	threshold := input.LowStockThreshold
	if threshold <= 0 {
		threshold = 10
	}
	return &models.ProductVariant{
		SKU:               strings.TrimSpace(input.SKU),
		Name:              strings.TrimSpace(input.Name),
		Barcode:           input.Barcode,
		Price:             input.Price,
		CostPrice:         input.CostPrice,
		LowStockThreshold: threshold,
		IsActive:          true,
	}, nil
}
