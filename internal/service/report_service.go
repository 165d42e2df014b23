package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"minimart/internal/domain"
	"minimart/internal/repository"
)

// Bucket is the calendar period invoices are grouped into
type Bucket string

const (
	BucketDaily   Bucket = "daily"
	BucketWeekly  Bucket = "weekly"
	BucketMonthly Bucket = "monthly"
)

// Fallback labels for rows missing an attribution
const (
	UnknownUser   = "Unknown"
	Uncategorized = "Uncategorized"
)

var (
	ErrInvalidBucket = errors.New("range must be one of daily, weekly, monthly")
)

// PeriodTotal is one bucket of the sales report, total in display units
type PeriodTotal struct {
	Period string  `json:"period"`
	Total  float64 `json:"total"`
}

// GroupTotal is one dimension group (category or user), total in display units
type GroupTotal struct {
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

// ItemSale is one per-item row of the product breakdown
type ItemSale struct {
	Product  string  `json:"product"`
	Total    float64 `json:"total"`
	SoldBy   string  `json:"sale_by"`
	DateTime string  `json:"date_time"`
}

// ReportService aggregates persisted sales data. It never mutates state.
// Date bounds are optional; an end date is inclusive of the whole end day.
type ReportService interface {
	SalesReport(ctx context.Context, start, end *time.Time, bucket Bucket) ([]PeriodTotal, error)
	SalesByProduct(ctx context.Context, start, end *time.Time) ([]ItemSale, error)
	SalesByCategory(ctx context.Context, start, end *time.Time) ([]GroupTotal, error)
	SalesByUser(ctx context.Context, start, end *time.Time) ([]GroupTotal, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
}

// NewReportService creates a new instance of ReportService
func NewReportService(reportRepo repository.ReportRepository) ReportService {
	return &reportService{reportRepo: reportRepo}
}

// SalesReport sums invoice totals per calendar bucket. Buckets with no
// invoices are omitted; results are ordered by ascending bucket key.
func (s *reportService) SalesReport(ctx context.Context, start, end *time.Time, bucket Bucket) ([]PeriodTotal, error) {
	switch bucket {
	case BucketDaily, BucketWeekly, BucketMonthly:
	default:
		return nil, ErrInvalidBucket
	}

	invoices, err := s.reportRepo.InvoicesInRange(ctx, start, endExclusive(end))
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int64)
	for _, invoice := range invoices {
		totals[bucketKey(invoice.CreatedAt, bucket)] += invoice.TotalCents
	}

	periods := make([]string, 0, len(totals))
	for period := range totals {
		periods = append(periods, period)
	}
	sort.Strings(periods)

	result := make([]PeriodTotal, 0, len(periods))
	for _, period := range periods {
		result = append(result, PeriodTotal{
			Period: period,
			Total:  domain.Decimal(totals[period]),
		})
	}

	return result, nil
}

// SalesByProduct returns one row per sold item: product name, subtotal,
// attributed user, and the invoice timestamp. Rows are not pre-aggregated.
func (s *reportService) SalesByProduct(ctx context.Context, start, end *time.Time) ([]ItemSale, error) {
	rows, err := s.reportRepo.SaleRowsInRange(ctx, start, endExclusive(end))
	if err != nil {
		return nil, err
	}

	result := make([]ItemSale, 0, len(rows))
	for _, row := range rows {
		soldBy := row.SoldBy
		if soldBy == "" {
			soldBy = UnknownUser
		}
		result = append(result, ItemSale{
			Product:  row.ProductName,
			Total:    domain.Decimal(row.SubtotalCents),
			SoldBy:   soldBy,
			DateTime: row.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return result, nil
}

// SalesByCategory sums item subtotals per category name. Products without a
// category land in the Uncategorized bucket.
func (s *reportService) SalesByCategory(ctx context.Context, start, end *time.Time) ([]GroupTotal, error) {
	rows, err := s.reportRepo.SaleRowsInRange(ctx, start, endExclusive(end))
	if err != nil {
		return nil, err
	}

	return groupRows(rows, func(row *domain.SaleRow) string {
		if row.CategoryName == "" {
			return Uncategorized
		}
		return row.CategoryName
	}), nil
}

// SalesByUser sums item subtotals per attributed user. Invoices without a
// creating user are attributed to Unknown.
func (s *reportService) SalesByUser(ctx context.Context, start, end *time.Time) ([]GroupTotal, error) {
	rows, err := s.reportRepo.SaleRowsInRange(ctx, start, endExclusive(end))
	if err != nil {
		return nil, err
	}

	return groupRows(rows, func(row *domain.SaleRow) string {
		if row.SoldBy == "" {
			return UnknownUser
		}
		return row.SoldBy
	}), nil
}

// groupRows sums subtotals per label, preserving first-occurrence order.
// Sums stay in cents until the final conversion to display units.
func groupRows(rows []*domain.SaleRow, label func(*domain.SaleRow) string) []GroupTotal {
	order := []string{}
	totals := make(map[string]int64)

	for _, row := range rows {
		key := label(row)
		if _, seen := totals[key]; !seen {
			order = append(order, key)
		}
		totals[key] += row.SubtotalCents
	}

	result := make([]GroupTotal, 0, len(order))
	for _, key := range order {
		result = append(result, GroupTotal{Label: key, Total: domain.Decimal(totals[key])})
	}

	return result
}

// bucketKey formats the timestamp into the grouping key for the bucket.
// Weekly keys use the ISO year and week number.
func bucketKey(t time.Time, bucket Bucket) string {
	switch bucket {
	case BucketMonthly:
		return t.Format("2006-01")
	case BucketWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-%02d", year, week)
	default:
		return t.Format("2006-01-02")
	}
}

// endExclusive converts an inclusive end date into the exclusive upper bound
// used by the store: midnight of the following day.
func endExclusive(end *time.Time) *time.Time {
	if end == nil {
		return nil
	}
	e := end.AddDate(0, 0, 1)
	return &e
}
