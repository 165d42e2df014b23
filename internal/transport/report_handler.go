package transport

import (
	"errors"
	"net/http"
	"time"

	"minimart/internal/middleware"
	"minimart/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReportHandler handles HTTP requests for sales reporting
type ReportHandler struct {
	reportService service.ReportService
	logger        *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// RegisterRoutes registers all report routes
func (h *ReportHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/reports", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/sales", h.SalesReport)
		r.Get("/sales-by", h.SalesBy)
	})
}

// SalesReport returns invoice totals bucketed by calendar period.
// Query params: start, end (YYYY-MM-DD, optional, end inclusive) and
// range (daily, weekly, monthly; defaults to daily).
func (h *ReportHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.dateRange(w, r)
	if !ok {
		return
	}

	bucket := service.Bucket(r.URL.Query().Get("range"))
	if bucket == "" {
		bucket = service.BucketDaily
	}

	report, err := h.reportService.SalesReport(r.Context(), start, end, bucket)
	if err != nil {
		if errors.Is(err, service.ErrInvalidBucket) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		h.logger.Error("Failed to build sales report", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to build sales report")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, report)
}

// SalesBy returns sales broken down by one dimension.
// Query params: by (product, category, user) plus the optional date range.
func (h *ReportHandler) SalesBy(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.dateRange(w, r)
	if !ok {
		return
	}

	var (
		result interface{}
		err    error
	)

	// The per-product breakdown is the default dimension
	by := r.URL.Query().Get("by")
	if by == "" {
		by = "product"
	}

	switch by {
	case "product":
		result, err = h.reportService.SalesByProduct(r.Context(), start, end)
	case "category":
		result, err = h.reportService.SalesByCategory(r.Context(), start, end)
	case "user":
		result, err = h.reportService.SalesByUser(r.Context(), start, end)
	default:
		middleware.RespondWithError(w, http.StatusBadRequest, "by must be one of product, category, user")
		return
	}

	if err != nil {
		h.logger.Error("Failed to build sales breakdown", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to build sales breakdown")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// dateRange parses the optional start and end query params. The bool result
// is false when a response has already been written.
func (h *ReportHandler) dateRange(w http.ResponseWriter, r *http.Request) (start, end *time.Time, ok bool) {
	if raw := r.URL.Query().Get("start"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "start must be formatted YYYY-MM-DD")
			return nil, nil, false
		}
		start = &t
	}

	if raw := r.URL.Query().Get("end"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "end must be formatted YYYY-MM-DD")
			return nil, nil, false
		}
		end = &t
	}

	return start, end, true
}
