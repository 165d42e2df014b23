package transport

import (
	"errors"
	"net/http"

	"minimart/internal/domain"
	"minimart/internal/middleware"
	"minimart/internal/repository"
	"minimart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceLineRequest is one requested line in an invoice payload
type InvoiceLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CreateInvoiceRequest represents the invoice creation payload. Prices are
// never accepted from the client; the server prices every line itself.
type CreateInvoiceRequest struct {
	CustomerName    string               `json:"customer_name" validate:"required,max=120"`
	CustomerPhone   string               `json:"customer_phone" validate:"max=40"`
	CustomerAddress string               `json:"customer_address" validate:"max=255"`
	Items           []InvoiceLineRequest `json:"items" validate:"required,min=1,dive"`
}

// InvoiceItemResponse represents one invoice line in API payloads
type InvoiceItemResponse struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

// InvoiceResponse represents an invoice in API payloads
type InvoiceResponse struct {
	ID              string                `json:"id"`
	CustomerName    string                `json:"customer_name"`
	CustomerPhone   string                `json:"customer_phone"`
	CustomerAddress string                `json:"customer_address"`
	CreatedBy       *string               `json:"created_by"`
	CreatedAt       string                `json:"created_at"`
	Total           float64               `json:"total"`
	Items           []InvoiceItemResponse `json:"items"`
}

// InvoiceHandler handles HTTP requests for invoice operations
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	logger         *zap.Logger
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService service.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// RegisterRoutes registers all invoice routes
func (h *InvoiceHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/invoices", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List returns all invoices with their items
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.invoiceService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list invoices", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list invoices")
		return
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, invoice := range invoices {
		result = append(result, toInvoiceResponse(invoice))
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// Create prices and persists a new invoice
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines, err := toLineRequests(req.Items)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product_id")
		return
	}

	var createdBy *uuid.UUID
	if userID, ok := middleware.GetUserUUID(r.Context()); ok {
		createdBy = &userID
	}

	invoice, err := h.invoiceService.Create(r.Context(), toCustomerInfo(req), createdBy, lines)
	if err != nil {
		middleware.CountInvoiceOperation("create", "error")
		h.respondInvoiceError(w, err, "failed to create invoice")
		return
	}

	middleware.CountInvoiceOperation("create", "success")
	h.logger.Info("Invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.Int64("total_cents", invoice.TotalCents))
	middleware.RespondWithJSON(w, http.StatusCreated, toInvoiceResponse(invoice))
}

// Get returns a single invoice with its items
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "invoice not found")
			return
		}

		h.logger.Error("Failed to get invoice", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get invoice")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toInvoiceResponse(invoice))
}

// Update re-prices an invoice, replacing its entire item set
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid invoice ID")
		return
	}

	var req CreateInvoiceRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines, err := toLineRequests(req.Items)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product_id")
		return
	}

	invoice, err := h.invoiceService.Update(r.Context(), id, toCustomerInfo(req), lines)
	if err != nil {
		middleware.CountInvoiceOperation("update", "error")
		h.respondInvoiceError(w, err, "failed to update invoice")
		return
	}

	middleware.CountInvoiceOperation("update", "success")
	middleware.RespondWithJSON(w, http.StatusOK, toInvoiceResponse(invoice))
}

// Delete removes an invoice and its items
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid invoice ID")
		return
	}

	if err := h.invoiceService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "invoice not found")
			return
		}

		middleware.CountInvoiceOperation("delete", "error")
		h.logger.Error("Failed to delete invoice", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete invoice")
		return
	}

	middleware.CountInvoiceOperation("delete", "success")
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "invoice deleted"})
}

// respondInvoiceError maps pricing failures to client errors and everything
// else to a 500
func (h *InvoiceHandler) respondInvoiceError(w http.ResponseWriter, err error, fallback string) {
	var unknownProduct *service.UnknownProductError
	switch {
	case errors.Is(err, repository.ErrInvoiceNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "invoice not found")
	case errors.Is(err, service.ErrNoLineItems):
		middleware.RespondWithError(w, http.StatusBadRequest, service.ErrNoLineItems.Error())
	case errors.Is(err, service.ErrInvalidQuantity):
		middleware.RespondWithError(w, http.StatusBadRequest, service.ErrInvalidQuantity.Error())
	case errors.As(err, &unknownProduct):
		middleware.RespondWithError(w, http.StatusBadRequest, unknownProduct.Error())
	default:
		h.logger.Error("Invoice operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func toCustomerInfo(req CreateInvoiceRequest) service.CustomerInfo {
	return service.CustomerInfo{
		Name:    req.CustomerName,
		Phone:   req.CustomerPhone,
		Address: req.CustomerAddress,
	}
}

func toLineRequests(items []InvoiceLineRequest) ([]service.LineRequest, error) {
	lines := make([]service.LineRequest, 0, len(items))
	for _, item := range items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, service.LineRequest{ProductID: productID, Quantity: item.Quantity})
	}
	return lines, nil
}

func toInvoiceResponse(invoice *domain.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		items = append(items, InvoiceItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   domain.Decimal(item.UnitPriceCents),
			Subtotal:    domain.Decimal(item.SubtotalCents),
		})
	}

	response := InvoiceResponse{
		ID:              invoice.ID.String(),
		CustomerName:    invoice.CustomerName,
		CustomerPhone:   invoice.CustomerPhone,
		CustomerAddress: invoice.CustomerAddress,
		CreatedAt:       invoice.CreatedAt.Format("2006-01-02 15:04:05"),
		Total:           domain.Decimal(invoice.TotalCents),
		Items:           items,
	}

	if invoice.CreatedBy != nil {
		id := invoice.CreatedBy.String()
		response.CreatedBy = &id
	}

	return response
}
