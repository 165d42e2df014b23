package domain

import "time"

// SaleRow is a read model for reporting: one invoice item joined to its
// invoice, product, and optionally the product's category and the invoice's
// creating user. CategoryName and SoldBy are empty when the respective
// reference is absent.
type SaleRow struct {
	ProductName   string
	CategoryName  string
	SoldBy        string
	SubtotalCents int64
	CreatedAt     time.Time
}
