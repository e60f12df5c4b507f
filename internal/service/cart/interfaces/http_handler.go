// internal/service/cart/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"jetcart/internal/service/cart/application"
	"jetcart/internal/service/cart/domain"
	inventorydomain "jetcart/internal/service/inventory/domain"
)

// CartHandler 封装购物车的 HTTP 处理器。
type CartHandler struct {
	carts *application.CartService
}

func NewCartHandler(carts *application.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *CartHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/cart", h.handleCreate)
	mux.HandleFunc("GET /v1/cart/{id}", h.handleFetch)
	mux.HandleFunc("PATCH /v1/cart/{id}", h.handleAddItems)
	mux.HandleFunc("POST /v1/cart/{id}/checkout", h.handleCheckout)
}

type cartItemsRequest struct {
	Items []domain.CartItem `json:"items"`
}

func (h *CartHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req cartItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cart, err := h.carts.CreateCart(ctx, req.Items)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cart)
}

func (h *CartHandler) handleFetch(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	view, err := h.carts.FetchCart(ctx, r.PathValue("id"))
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) handleAddItems(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req cartItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cart, err := h.carts.AddItems(ctx, r.PathValue("id"), req.Items)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	result, err := h.carts.Checkout(ctx, r.PathValue("id"))
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeCartError 把领域错误映射到状态码。结算透传库存子系统
// 的错误语义（库存不足 409 等）。
func writeCartError(w http.ResponseWriter, err error) {
	var statusCode int
	switch {
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidItem),
		errors.Is(err, inventorydomain.ErrInvalidQuantity),
		errors.Is(err, inventorydomain.ErrInvalidSKU):
		statusCode = http.StatusBadRequest
	case errors.Is(err, domain.ErrCartNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyCheckedOut),
		errors.Is(err, inventorydomain.ErrInsufficientStock):
		statusCode = http.StatusConflict
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
