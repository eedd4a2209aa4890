package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/counterline/counterline/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	InsertProduct(ctx context.Context, p Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (Product, error)
	UpdateProduct(ctx context.Context, p Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, req ListProductsRequest) ([]Product, error)
	InsertCategory(ctx context.Context, c Category) error
	ListCategories(ctx context.Context) ([]Category, error)
	InsertSupplier(ctx context.Context, s Supplier) error
	ListSuppliers(ctx context.Context) ([]Supplier, error)
}

// Service owns catalog maintenance. Stock quantity is read-only here.
type Service struct {
	repo            RepositoryPort
	defaultCurrency string
}

// NewService builds Service.
func NewService(repo RepositoryPort, defaultCurrency string) *Service {
	return &Service{repo: repo, defaultCurrency: defaultCurrency}
}

// CreateProduct registers a new product with its opening quantity.
func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (Product, error) {
	if req.CostPrice.IsNegative() || req.SellingPrice.IsNegative() {
		return Product{}, shared.Validationf("catalog: prices must not be negative")
	}
	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	trackStock := true
	if req.TrackStock != nil {
		trackStock = *req.TrackStock
	}
	product := Product{
		ID:            uuid.New(),
		Name:          req.Name,
		SKU:           req.SKU,
		Barcode:       req.Barcode,
		CategoryID:    req.CategoryID,
		SupplierID:    req.SupplierID,
		CostPrice:     req.CostPrice,
		SellingPrice:  req.SellingPrice,
		Currency:      currency,
		Quantity:      req.Quantity,
		TrackStock:    trackStock,
		MinStockLevel: req.MinStockLevel,
		IsActive:      true,
	}
	if err := s.repo.InsertProduct(ctx, product); err != nil {
		return Product{}, err
	}
	return s.repo.GetProduct(ctx, product.ID)
}

// UpdateProduct applies partial updates to everything except quantity.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Barcode != nil {
		product.Barcode = req.Barcode
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.SupplierID != nil {
		product.SupplierID = req.SupplierID
	}
	if req.CostPrice != nil {
		if req.CostPrice.IsNegative() {
			return Product{}, shared.Validationf("catalog: cost price must not be negative")
		}
		product.CostPrice = *req.CostPrice
	}
	if req.SellingPrice != nil {
		if req.SellingPrice.IsNegative() {
			return Product{}, shared.Validationf("catalog: selling price must not be negative")
		}
		product.SellingPrice = *req.SellingPrice
	}
	if req.MinStockLevel != nil {
		product.MinStockLevel = *req.MinStockLevel
	}
	if req.TrackStock != nil {
		product.TrackStock = *req.TrackStock
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return Product{}, err
	}
	return s.repo.GetProduct(ctx, id)
}

// GetProduct fetches one product.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// DeleteProduct removes a product entirely.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteProduct(ctx, id)
}

// ListProducts returns a filtered product page.
func (s *Service) ListProducts(ctx context.Context, req ListProductsRequest) ([]Product, error) {
	return s.repo.ListProducts(ctx, req)
}

// CreateCategory registers a new category.
func (s *Service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (Category, error) {
	category := Category{ID: uuid.New(), Name: req.Name, Slug: req.Slug}
	if err := s.repo.InsertCategory(ctx, category); err != nil {
		return Category{}, err
	}
	return category, nil
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

// CreateSupplier registers a new supplier.
func (s *Service) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (Supplier, error) {
	supplier := Supplier{ID: uuid.New(), Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address}
	if err := s.repo.InsertSupplier(ctx, supplier); err != nil {
		return Supplier{}, err
	}
	return supplier, nil
}

// ListSuppliers returns all suppliers.
func (s *Service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}
