package handler

import (
	"net/http"
	"strings"

	"catalog-cms/internal/model"
	"catalog-cms/internal/service"

	"github.com/rs/zerolog"
)

// ProductsPath is the collection path of the product API.
const ProductsPath = "/api/products"

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service      service.CatalogService
	maxBodyBytes int64
	logger       zerolog.Logger
}

// NewProductHandler creates a new product handler. Request bodies larger
// than maxBodyBytes are rejected; zero disables the limit.
func NewProductHandler(service service.CatalogService, maxBodyBytes int64, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service:      service,
		maxBodyBytes: maxBodyBytes,
		logger:       logger.With().Str("handler", "product").Logger(),
	}
}

// ProductID extracts the product ID from /api/products/{id}. ok is false for
// the collection path, an empty ID or a nested path.
func ProductID(path string) (id string, ok bool) {
	rest, found := strings.CutPrefix(path, ProductsPath+"/")
	if !found || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

// List handles GET /api/products requests.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// Get handles GET /api/products/{id} requests.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, ok := ProductID(r.URL.Path)
	if !ok {
		WriteNotFound(w)
		return
	}

	product, err := h.service.Get(r.Context(), productID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /api/products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decode(w, r)
	if !ok {
		return
	}

	product, err := h.service.Insert(r.Context(), input)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/products/{id} requests.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID, ok := ProductID(r.URL.Path)
	if !ok {
		WriteNotFound(w)
		return
	}

	patch, ok := h.decode(w, r)
	if !ok {
		return
	}

	product, err := h.service.Update(r.Context(), productID, patch)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id} requests.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, ok := ProductID(r.URL.Path)
	if !ok {
		WriteNotFound(w)
		return
	}

	if err := h.service.Delete(r.Context(), productID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Categories handles GET /api/categories requests.
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteNotFound(w)
		return
	}

	categories, err := h.service.Categories(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

// decode reads and parses a product payload, writing the error response
// itself when it fails.
func (h *ProductHandler) decode(w http.ResponseWriter, r *http.Request) (model.ProductInput, bool) {
	body, err := readBody(w, r, h.maxBodyBytes)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return model.ProductInput{}, false
	}

	input, err := model.ParseProductInput(body)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return model.ProductInput{}, false
	}

	return input, true
}
