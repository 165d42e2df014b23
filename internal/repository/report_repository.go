package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"minimart/internal/domain"
)

// ReportRepository exposes the read-only queries the reporting engine
// aggregates over. Date bounds are half-open: start inclusive, end exclusive.
type ReportRepository interface {
	InvoicesInRange(ctx context.Context, start, end *time.Time) ([]*domain.Invoice, error)
	SaleRowsInRange(ctx context.Context, start, end *time.Time) ([]*domain.SaleRow, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

// InvoicesInRange retrieves invoice headers within the date bounds, oldest first
func (r *reportRepository) InvoicesInRange(ctx context.Context, start, end *time.Time) ([]*domain.Invoice, error) {
	query := `
		SELECT id, customer_name, customer_phone, customer_address, created_by, total_cents, created_at
		FROM invoices
	`
	whereClause, args := dateBounds("created_at", start, end)
	query += whereClause + " ORDER BY created_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices in range: %w", err)
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

	return invoices, nil
}

// SaleRowsInRange retrieves one row per invoice item, joined through to the
// product, its category, and the invoice's creating user in a single query.
func (r *reportRepository) SaleRowsInRange(ctx context.Context, start, end *time.Time) ([]*domain.SaleRow, error) {
	query := `
		SELECT p.name, COALESCE(c.name, ''), COALESCE(u.username, ''), i.subtotal_cents, inv.created_at
		FROM invoice_items i
		JOIN invoices inv ON inv.id = i.invoice_id
		JOIN products p ON p.id = i.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN users u ON u.id = inv.created_by
	`
	whereClause, args := dateBounds("inv.created_at", start, end)
	query += whereClause + " ORDER BY inv.created_at ASC, i.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale rows: %w", err)
	}
	defer rows.Close()

	result := []*domain.SaleRow{}
	for rows.Next() {
		row := &domain.SaleRow{}
		err := rows.Scan(
			&row.ProductName,
			&row.CategoryName,
			&row.SoldBy,
			&row.SubtotalCents,
			&row.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale row: %w", err)
		}
		result = append(result, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale rows: %w", err)
	}

	return result, nil
}

func dateBounds(column string, start, end *time.Time) (string, []interface{}) {
	whereClause := ""
	args := []interface{}{}
	argIndex := 1

	if start != nil {
		whereClause = fmt.Sprintf(" WHERE %s >= $%d", column, argIndex)
		args = append(args, *start)
		argIndex++
	}
	if end != nil {
		if whereClause == "" {
			whereClause = fmt.Sprintf(" WHERE %s < $%d", column, argIndex)
		} else {
			whereClause += fmt.Sprintf(" AND %s < $%d", column, argIndex)
		}
		args = append(args, *end)
	}

	return whereClause, args
}
