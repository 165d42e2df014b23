package service

import (
	"context"
	"time"

	"minimart/internal/domain"
	"minimart/internal/repository"

	"github.com/google/uuid"
)

// ProductInput carries the fields for creating a product. Price is the
// inbound decimal amount; it is converted to integer cents on entry and
// never stored as a float.
type ProductInput struct {
	Name          string
	Description   string
	Price         float64
	Quantity      int
	CategoryID    *uuid.UUID
	ImageFilename string
}

// ProductUpdate carries optional replacement fields; nil means keep the
// existing value.
type ProductUpdate struct {
	Name          *string
	Description   *string
	Price         *float64
	Quantity      *int
	CategoryID    *uuid.UUID
	ImageFilename *string
}

// ProductService defines the interface for product business logic
type ProductService interface {
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, update ProductUpdate) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// Create adds a new product after validating its category reference
func (s *productService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	product := &domain.Product{
		ID:            uuid.New(),
		Name:          input.Name,
		Description:   input.Description,
		PriceCents:    domain.Cents(input.Price),
		Quantity:      input.Quantity,
		CategoryID:    input.CategoryID,
		ImageFilename: input.ImageFilename,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Update modifies the provided fields of an existing product. Changing the
// price only affects future invoices; historical item prices are snapshots.
func (s *productService) Update(ctx context.Context, id uuid.UUID, update ProductUpdate) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		product.Name = *update.Name
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.Price != nil {
		product.PriceCents = domain.Cents(*update.Price)
	}
	if update.Quantity != nil {
		product.Quantity = *update.Quantity
	}
	if update.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *update.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = update.CategoryID
	}
	if update.ImageFilename != nil {
		product.ImageFilename = *update.ImageFilename
	}
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Delete removes a product and returns the deleted record so the caller can
// clean up its stored image
func (s *productService) Delete(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return nil, err
	}

	return product, nil
}

// Get retrieves a single product
func (s *productService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// List retrieves products with optional category filtering, pagination, and sorting
func (s *productService) List(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	return s.productRepo.List(ctx, categoryID, page, pageSize, sortBy, sortOrder)
}

// Search searches products by name or description
func (s *productService) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	return s.productRepo.Search(ctx, query, page, pageSize)
}
