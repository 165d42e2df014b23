package repository

import (
	"context"
	"testing"
	"time"

	"minimart/internal/domain"

	"github.com/google/uuid"
)

func TestSaleRowsJoinResolvesNamesWithFallbacks(t *testing.T) {
	ctx := context.Background()
	userRepo := NewUserRepository(testDB)
	categoryRepo := NewCategoryRepository(testDB)
	productRepo := NewProductRepository(testDB)
	invoiceRepo := NewInvoiceRepository(testDB)
	reportRepo := NewReportRepository(testDB)

	seller := &domain.User{
		ID:           uuid.New(),
		Username:     "seller-" + uuid.NewString()[:8],
		Email:        uuid.NewString()[:8] + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}
	if err := userRepo.Create(ctx, seller); err != nil {
		t.Fatalf("user create failed: %v", err)
	}

	category := &domain.Category{
		ID:        uuid.New(),
		Name:      "report-cat-" + uuid.NewString()[:8],
		CreatedAt: time.Now(),
	}
	if err := categoryRepo.Create(ctx, category); err != nil {
		t.Fatalf("category create failed: %v", err)
	}

	categorized := &domain.Product{
		ID:         uuid.New(),
		Name:       "categorized-" + uuid.NewString()[:8],
		PriceCents: 300,
		CategoryID: &category.ID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	uncategorized := &domain.Product{
		ID:         uuid.New(),
		Name:       "uncategorized-" + uuid.NewString()[:8],
		PriceCents: 200,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	for _, product := range []*domain.Product{categorized, uncategorized} {
		if err := productRepo.Create(ctx, product); err != nil {
			t.Fatalf("product create failed: %v", err)
		}
	}

	attributed := &domain.Invoice{
		ID:           uuid.New(),
		CustomerName: "Customer A",
		CreatedBy:    &seller.ID,
		TotalCents:   600,
		CreatedAt:    time.Now(),
		Items: []*domain.InvoiceItem{{
			ID: uuid.New(), ProductID: categorized.ID,
			Quantity: 2, UnitPriceCents: 300, SubtotalCents: 600,
		}},
	}
	attributed.Items[0].InvoiceID = attributed.ID

	anonymous := &domain.Invoice{
		ID:           uuid.New(),
		CustomerName: "Customer B",
		TotalCents:   200,
		CreatedAt:    time.Now(),
		Items: []*domain.InvoiceItem{{
			ID: uuid.New(), ProductID: uncategorized.ID,
			Quantity: 1, UnitPriceCents: 200, SubtotalCents: 200,
		}},
	}
	anonymous.Items[0].InvoiceID = anonymous.ID

	for _, invoice := range []*domain.Invoice{attributed, anonymous} {
		if err := invoiceRepo.Create(ctx, invoice); err != nil {
			t.Fatalf("invoice create failed: %v", err)
		}
	}

	t.Cleanup(func() {
		_ = invoiceRepo.Delete(context.Background(), attributed.ID)
		_ = invoiceRepo.Delete(context.Background(), anonymous.ID)
		_, _ = testDB.Exec("DELETE FROM products WHERE id IN ($1, $2)", categorized.ID, uncategorized.ID)
		_, _ = testDB.Exec("DELETE FROM categories WHERE id = $1", category.ID)
		_, _ = testDB.Exec("DELETE FROM users WHERE id = $1", seller.ID)
	})

	rows, err := reportRepo.SaleRowsInRange(ctx, nil, nil)
	if err != nil {
		t.Fatalf("SaleRowsInRange failed: %v", err)
	}

	byProduct := make(map[string]*domain.SaleRow)
	for _, row := range rows {
		byProduct[row.ProductName] = row
	}

	withCategory, ok := byProduct[categorized.Name]
	if !ok {
		t.Fatal("categorized sale row missing")
	}
	if withCategory.CategoryName != category.Name {
		t.Errorf("category name %q, expected %q", withCategory.CategoryName, category.Name)
	}
	if withCategory.SoldBy != seller.Username {
		t.Errorf("sold by %q, expected %q", withCategory.SoldBy, seller.Username)
	}
	if withCategory.SubtotalCents != 600 {
		t.Errorf("subtotal %d, expected 600", withCategory.SubtotalCents)
	}

	withoutRefs, ok := byProduct[uncategorized.Name]
	if !ok {
		t.Fatal("uncategorized sale row missing")
	}
	if withoutRefs.CategoryName != "" {
		t.Errorf("missing category should read as empty, got %q", withoutRefs.CategoryName)
	}
	if withoutRefs.SoldBy != "" {
		t.Errorf("missing user should read as empty, got %q", withoutRefs.SoldBy)
	}
}

func TestInvoicesInRangeBoundsAreHalfOpen(t *testing.T) {
	ctx := context.Background()
	invoiceRepo := NewInvoiceRepository(testDB)
	reportRepo := NewReportRepository(testDB)

	inside := &domain.Invoice{
		ID:           uuid.New(),
		CustomerName: "Inside",
		TotalCents:   100,
		CreatedAt:    time.Date(2020, 6, 15, 12, 0, 0, 0, time.UTC),
	}
	outside := &domain.Invoice{
		ID:           uuid.New(),
		CustomerName: "Outside",
		TotalCents:   100,
		CreatedAt:    time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC),
	}

	// Headers only; items are not needed for this query
	for _, invoice := range []*domain.Invoice{inside, outside} {
		_, err := testDB.Exec(
			"INSERT INTO invoices (id, customer_name, total_cents, created_at) VALUES ($1, $2, $3, $4)",
			invoice.ID, invoice.CustomerName, invoice.TotalCents, invoice.CreatedAt,
		)
		if err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}
	t.Cleanup(func() {
		_ = invoiceRepo.Delete(context.Background(), inside.ID)
		_ = invoiceRepo.Delete(context.Background(), outside.ID)
	})

	start := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC)

	invoices, err := reportRepo.InvoicesInRange(ctx, &start, &end)
	if err != nil {
		t.Fatalf("InvoicesInRange failed: %v", err)
	}

	var foundInside, foundOutside bool
	for _, invoice := range invoices {
		if invoice.ID == inside.ID {
			foundInside = true
		}
		if invoice.ID == outside.ID {
			foundOutside = true
		}
	}

	if !foundInside {
		t.Error("invoice inside the range was not returned")
	}
	if foundOutside {
		t.Error("invoice at the exclusive end bound must not be returned")
	}
}
