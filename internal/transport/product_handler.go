package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"minimart/internal/domain"
	"minimart/internal/middleware"
	"minimart/internal/repository"
	"minimart/internal/service"
	"minimart/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductResponse represents a product in API payloads. Price is the
// display-unit conversion of the stored integer cents.
type ProductResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	CategoryID  *string `json:"category_id"`
	ImageURL    *string `json:"image_url"`
}

// ProductListResponse wraps a product page with its total count
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	uploads        *storage.UploadStore
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, uploads *storage.UploadStore, maxUploadBytes int64, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		uploads:        uploads,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/search", h.Search)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List returns products with optional category filter, pagination, and sorting
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paginationParams(r)

	var categoryID *uuid.UUID
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		categoryID = &id
	}

	sortBy := r.URL.Query().Get("sort_by")
	sortOrder := repository.SortOrder(r.URL.Query().Get("sort_order"))

	products, total, err := h.productService.List(r.Context(), categoryID, page, pageSize, sortBy, sortOrder)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.toListResponse(products, total, page, pageSize))
}

// Search searches products by name or description
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paginationParams(r)

	products, total, err := h.productService.Search(r.Context(), r.URL.Query().Get("q"), page, pageSize)
	if err != nil {
		h.logger.Error("Failed to search products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to search products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.toListResponse(products, total, page, pageSize))
}

// Create adds a new product from a multipart form, with an optional image
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	input := service.ProductInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}

	if input.Name == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "name is required")
		return
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil || price < 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid price")
		return
	}
	input.Price = price

	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil || quantity < 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid quantity")
		return
	}
	input.Quantity = quantity

	if raw := r.FormValue("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		input.CategoryID = &id
	}

	filename, ok := h.saveImage(w, r)
	if !ok {
		return
	}
	input.ImageFilename = filename

	product, err := h.productService.Create(r.Context(), input)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category_id")
			return
		}

		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, h.toProductResponse(product))
}

// Get returns a single product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.toProductResponse(product))
}

// Update modifies an existing product from a multipart form; only provided
// fields change
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	var update service.ProductUpdate

	if _, ok := r.Form["name"]; ok {
		name := r.FormValue("name")
		update.Name = &name
	}
	if _, ok := r.Form["description"]; ok {
		description := r.FormValue("description")
		update.Description = &description
	}
	if raw := r.FormValue("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price < 0 {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid price")
			return
		}
		update.Price = &price
	}
	if raw := r.FormValue("quantity"); raw != "" {
		quantity, err := strconv.Atoi(raw)
		if err != nil || quantity < 0 {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid quantity")
			return
		}
		update.Quantity = &quantity
	}
	if raw := r.FormValue("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		update.CategoryID = &categoryID
	}

	filename, ok := h.saveImage(w, r)
	if !ok {
		return
	}
	if filename != "" {
		update.ImageFilename = &filename
	}

	product, err := h.productService.Update(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category_id")
			return
		}

		h.logger.Error("Failed to update product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.toProductResponse(product))
}

// Delete removes a product and its stored image
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.productService.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		if errors.Is(err, repository.ErrProductInUse) {
			middleware.RespondWithError(w, http.StatusConflict, "product has recorded sales")
			return
		}

		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	if err := h.uploads.Remove(product.ImageFilename); err != nil {
		h.logger.Warn("Failed to remove product image", zap.Error(err), zap.String("filename", product.ImageFilename))
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// saveImage stores an uploaded image if one was provided. The bool result is
// false when a response has already been written.
func (h *ProductHandler) saveImage(w http.ResponseWriter, r *http.Request) (string, bool) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return "", true
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid image upload")
		return "", false
	}
	defer file.Close()

	filename, err := h.uploads.Save(header.Filename, file)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidImageType) {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid image type")
			return "", false
		}
		if errors.Is(err, storage.ErrEmptyFilename) {
			middleware.RespondWithError(w, http.StatusBadRequest, "no selected image")
			return "", false
		}

		h.logger.Error("Failed to save image", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save image")
		return "", false
	}

	return filename, true
}

func (h *ProductHandler) toProductResponse(product *domain.Product) ProductResponse {
	response := ProductResponse{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		Price:       domain.Decimal(product.PriceCents),
		Quantity:    product.Quantity,
	}

	if product.CategoryID != nil {
		id := product.CategoryID.String()
		response.CategoryID = &id
	}
	if product.ImageFilename != "" {
		url := fmt.Sprintf("/uploads/%s", product.ImageFilename)
		response.ImageURL = &url
	}

	return response
}

func (h *ProductHandler) toListResponse(products []*domain.Product, total, page, pageSize int) ProductListResponse {
	result := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		result = append(result, h.toProductResponse(product))
	}

	return ProductListResponse{
		Products: result,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}

func paginationParams(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	return page, pageSize
}
