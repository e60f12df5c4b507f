// internal/service/catalog/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"jetcart/internal/service/catalog/application"
	"jetcart/internal/service/catalog/domain"
)

// CatalogHandler 封装了商品目录服务的 HTTP 处理器。
type CatalogHandler struct {
	service *application.CatalogService
}

func NewCatalogHandler(service *application.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /product", h.handleCreateProduct)
	mux.HandleFunc("GET /product", h.handleListProducts)
	mux.HandleFunc("DELETE /product", h.handleDeleteProducts)
	mux.HandleFunc("GET /product/search", h.handleSearchProducts)
	mux.HandleFunc("GET /product/{id}", h.handleFetchProduct)
	mux.HandleFunc("POST /v1/warehouse", h.handleCreateWarehouse)
	mux.HandleFunc("GET /v1/warehouse/{id}", h.handleFetchWarehouse)
}

func (h *CatalogHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if product.Title == "" || product.Category == "" {
		http.Error(w, "title and category are required", http.StatusBadRequest)
		return
	}
	created, err := h.service.CreateProduct(ctx, &product)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *CatalogHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size == 0 {
		size = 10
	}

	var (
		products []*domain.Product
		err      error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		products, err = h.service.FetchProductsByCategory(ctx, category, page, size)
	} else {
		products, err = h.service.FetchAllProducts(ctx, page, size)
	}
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) handleDeleteProducts(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	if err := h.service.DeleteAllProducts(ctx); err != nil {
		writeCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *CatalogHandler) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	filters := map[string]interface{}{}
	if raw := r.URL.Query().Get("filters"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &filters); err != nil {
			http.Error(w, "Invalid filters", http.StatusBadRequest)
			return
		}
	}
	result, err := h.service.SearchProducts(ctx, filters, r.URL.Query().Get("title"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *CatalogHandler) handleFetchProduct(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	product, err := h.service.FetchProduct(ctx, r.PathValue("id"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) handleCreateWarehouse(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var warehouse domain.Warehouse
	if err := json.NewDecoder(r.Body).Decode(&warehouse); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if warehouse.Code == "" || warehouse.Name == "" {
		http.Error(w, "code and name are required", http.StatusBadRequest)
		return
	}
	created, err := h.service.CreateWarehouse(ctx, &warehouse)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *CatalogHandler) handleFetchWarehouse(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	warehouse, err := h.service.FetchWarehouse(ctx, r.PathValue("id"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, warehouse)
}

func writeCatalogError(w http.ResponseWriter, err error) {
	var statusCode int
	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrWarehouseNotFound):
		statusCode = http.StatusBadRequest // 与原有接口保持一致：未知 ID 返回 400
	default:
		statusCode = http.StatusInternalServerError
	}
	writeJSON(w, statusCode, map[string]string{"message": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
