package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"minimart/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
)

// InvoiceRepository persists Invoice + InvoiceItem aggregates. Every write
// spans the header and all items in a single transaction: a failed write
// must never leave a partially-priced invoice behind.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	Update(ctx context.Context, invoice *domain.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context) ([]*domain.Invoice, error)
}

type invoiceRepository struct {
	db *sql.DB
}

// NewInvoiceRepository creates a new instance of InvoiceRepository
func NewInvoiceRepository(db *sql.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// Create inserts the invoice header and all its items atomically
func (r *invoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO invoices (id, customer_name, customer_phone, customer_address, created_by, total_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		invoice.ID,
		invoice.CustomerName,
		invoice.CustomerPhone,
		invoice.CustomerAddress,
		invoice.CreatedBy,
		invoice.TotalCents,
		invoice.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	if err := insertItems(ctx, tx, invoice); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit invoice: %w", err)
	}

	return nil
}

// Update replaces the invoice header fields and its entire item set in one
// transaction. Old items are discarded wholesale; the caller supplies the
// freshly priced replacement set and the recomputed total.
func (r *invoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE invoices
		SET customer_name = $2, customer_phone = $3, customer_address = $4, total_cents = $5
		WHERE id = $1
	`

	result, err := tx.ExecContext(
		ctx,
		query,
		invoice.ID,
		invoice.CustomerName,
		invoice.CustomerPhone,
		invoice.CustomerAddress,
		invoice.TotalCents,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrInvoiceNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, invoice.ID); err != nil {
		return fmt.Errorf("failed to clear invoice items: %w", err)
	}

	if err := insertItems(ctx, tx, invoice); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit invoice update: %w", err)
	}

	return nil
}

// Delete removes the invoice and all owned items as one atomic unit
func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete invoice items: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrInvoiceNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit invoice deletion: %w", err)
	}

	return nil
}

// FindByID retrieves an invoice header together with its items, with the
// product name resolved at read time
func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	query := `
		SELECT id, customer_name, customer_phone, customer_address, created_by, total_cents, created_at
		FROM invoices
		WHERE id = $1
	`

	invoice, err := scanInvoice(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	items, err := r.findItems(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	invoice.Items = items

	return invoice, nil
}

// List retrieves all invoices with their items
func (r *invoiceRepository) List(ctx context.Context) ([]*domain.Invoice, error) {
	query := `
		SELECT id, customer_name, customer_phone, customer_address, created_by, total_cents, created_at
		FROM invoices
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []*domain.Invoice{}
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	for _, invoice := range invoices {
		items, err := r.findItems(ctx, invoice.ID)
		if err != nil {
			return nil, err
		}
		invoice.Items = items
	}

	return invoices, nil
}

func (r *invoiceRepository) findItems(ctx context.Context, invoiceID uuid.UUID) ([]*domain.InvoiceItem, error) {
	query := `
		SELECT i.id, i.invoice_id, i.product_id, i.quantity, i.unit_price_cents, i.subtotal_cents, p.name
		FROM invoice_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.invoice_id = $1
		ORDER BY i.id
	`

	rows, err := r.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice items: %w", err)
	}
	defer rows.Close()

	items := []*domain.InvoiceItem{}
	for rows.Next() {
		item := &domain.InvoiceItem{}
		var productName sql.NullString
		err := rows.Scan(
			&item.ID,
			&item.InvoiceID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPriceCents,
			&item.SubtotalCents,
			&productName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		item.ProductName = productName.String
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice items: %w", err)
	}

	return items, nil
}

func insertItems(ctx context.Context, tx *sql.Tx, invoice *domain.Invoice) error {
	query := `
		INSERT INTO invoice_items (id, invoice_id, product_id, quantity, unit_price_cents, subtotal_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, item := range invoice.Items {
		_, err := tx.ExecContext(
			ctx,
			query,
			item.ID,
			invoice.ID,
			item.ProductID,
			item.Quantity,
			item.UnitPriceCents,
			item.SubtotalCents,
		)
		if err != nil {
			return fmt.Errorf("failed to create invoice item: %w", err)
		}
	}

	return nil
}

func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	invoice := &domain.Invoice{}
	var createdBy uuid.NullUUID

	err := row.Scan(
		&invoice.ID,
		&invoice.CustomerName,
		&invoice.CustomerPhone,
		&invoice.CustomerAddress,
		&createdBy,
		&invoice.TotalCents,
		&invoice.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}

	if createdBy.Valid {
		invoice.CreatedBy = &createdBy.UUID
	}

	return invoice, nil
}
