package domain

import (
	"time"

	"github.com/google/uuid"
)

// Invoice is a sales invoice header together with its owned line items.
// TotalCents must always equal the sum of item subtotals.
type Invoice struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	CustomerName    string     `json:"customer_name" db:"customer_name"`
	CustomerPhone   string     `json:"customer_phone" db:"customer_phone"`
	CustomerAddress string     `json:"customer_address" db:"customer_address"`
	CreatedBy       *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
	TotalCents      int64      `json:"total_cents" db:"total_cents"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	Items           []*InvoiceItem
}

// InvoiceItem is one priced line of an invoice. UnitPriceCents snapshots the
// catalog price at the time of sale and never changes afterwards.
type InvoiceItem struct {
	ID             uuid.UUID `json:"id" db:"id"`
	InvoiceID      uuid.UUID `json:"invoice_id" db:"invoice_id"`
	ProductID      uuid.UUID `json:"product_id" db:"product_id"`
	Quantity       int       `json:"quantity" db:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents" db:"unit_price_cents"`
	SubtotalCents  int64     `json:"subtotal_cents" db:"subtotal_cents"`

	// ProductName is resolved at read time, not stored on the row.
	ProductName string `json:"product_name" db:"-"`
}
