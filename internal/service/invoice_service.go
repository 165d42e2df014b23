package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"minimart/internal/domain"
	"minimart/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrNoLineItems     = errors.New("at least one line item is required")
	ErrInvalidQuantity = errors.New("line item quantity must be a positive integer")
)

// UnknownProductError reports which product reference failed to resolve
// while pricing an invoice.
type UnknownProductError struct {
	ProductID uuid.UUID
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("invalid product reference: %s", e.ProductID)
}

// LineRequest is one requested invoice line: a product reference and a quantity
type LineRequest struct {
	ProductID uuid.UUID
	Quantity  int
}

// CustomerInfo is the free-text customer block on an invoice
type CustomerInfo struct {
	Name    string
	Phone   string
	Address string
}

// InvoiceService prices line requests against the current catalog and
// persists invoice aggregates. Pricing uses integer cents throughout; the
// unit price written to an item is a snapshot that later catalog changes
// never touch.
type InvoiceService interface {
	Create(ctx context.Context, customer CustomerInfo, createdBy *uuid.UUID, lines []LineRequest) (*domain.Invoice, error)
	Update(ctx context.Context, id uuid.UUID, customer CustomerInfo, lines []LineRequest) (*domain.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context) ([]*domain.Invoice, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	productRepo repository.ProductRepository
}

// NewInvoiceService creates a new instance of InvoiceService
func NewInvoiceService(invoiceRepo repository.InvoiceRepository, productRepo repository.ProductRepository) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
	}
}

// Create prices the requested lines and persists the invoice with its items
// as one atomic unit. Validation and pricing happen before any write, so a
// rejected request leaves nothing behind.
func (s *invoiceService) Create(ctx context.Context, customer CustomerInfo, createdBy *uuid.UUID, lines []LineRequest) (*domain.Invoice, error) {
	invoice := &domain.Invoice{
		ID:              uuid.New(),
		CustomerName:    customer.Name,
		CustomerPhone:   customer.Phone,
		CustomerAddress: customer.Address,
		CreatedBy:       createdBy,
		CreatedAt:       time.Now(),
	}

	if err := s.priceLines(ctx, invoice, lines); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to persist invoice: %w", err)
	}

	return invoice, nil
}

// Update re-prices the invoice from the new line requests. The entire item
// set is replaced; the total is recomputed from the full new set rather than
// adjusted incrementally.
func (s *invoiceService) Update(ctx context.Context, id uuid.UUID, customer CustomerInfo, lines []LineRequest) (*domain.Invoice, error) {
	existing, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	invoice := &domain.Invoice{
		ID:              existing.ID,
		CustomerName:    customer.Name,
		CustomerPhone:   customer.Phone,
		CustomerAddress: customer.Address,
		CreatedBy:       existing.CreatedBy,
		CreatedAt:       existing.CreatedAt,
	}

	if err := s.priceLines(ctx, invoice, lines); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to persist invoice update: %w", err)
	}

	return invoice, nil
}

// Delete removes the invoice and its items
func (s *invoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.invoiceRepo.Delete(ctx, id)
}

// Get retrieves a single invoice with its items
func (s *invoiceService) Get(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, id)
}

// List retrieves all invoices with their items
func (s *invoiceService) List(ctx context.Context) ([]*domain.Invoice, error) {
	return s.invoiceRepo.List(ctx)
}

// priceLines resolves every requested product, snapshots its current price,
// and fills in the invoice's items and total. Subtotals are computed in
// integer cents; no floating point is involved.
func (s *invoiceService) priceLines(ctx context.Context, invoice *domain.Invoice, lines []LineRequest) error {
	if len(lines) == 0 {
		return ErrNoLineItems
	}

	var totalCents int64
	items := make([]*domain.InvoiceItem, 0, len(lines))

	for _, line := range lines {
		if line.Quantity <= 0 {
			return ErrInvalidQuantity
		}

		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return &UnknownProductError{ProductID: line.ProductID}
			}
			return fmt.Errorf("failed to resolve product: %w", err)
		}

		subtotalCents := product.PriceCents * int64(line.Quantity)
		totalCents += subtotalCents

		items = append(items, &domain.InvoiceItem{
			ID:             uuid.New(),
			InvoiceID:      invoice.ID,
			ProductID:      product.ID,
			Quantity:       line.Quantity,
			UnitPriceCents: product.PriceCents,
			SubtotalCents:  subtotalCents,
			ProductName:    product.Name,
		})
	}

	invoice.Items = items
	invoice.TotalCents = totalCents
	return nil
}
