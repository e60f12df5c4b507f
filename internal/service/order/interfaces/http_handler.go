// internal/service/order/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"jetcart/internal/pkg/logger"
	cartapp "jetcart/internal/service/cart/application"
	inventorydomain "jetcart/internal/service/inventory/domain"
	"jetcart/internal/service/order/application"
	"jetcart/internal/service/order/domain"
)

// OrderHandler 封装订单的 HTTP 处理器。查询订单时内嵌购物车视图。
type OrderHandler struct {
	orders *application.OrderService
	carts  *cartapp.CartService
}

func NewOrderHandler(orders *application.OrderService, carts *cartapp.CartService) *OrderHandler {
	return &OrderHandler{orders: orders, carts: carts}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/order/{id}", h.handleFetch)
	mux.HandleFunc("POST /v1/order/{id}/place", h.handlePlace)
}

type orderView struct {
	*domain.Order
	Cart *cartapp.CartView `json:"cart,omitempty"`
}

func (h *OrderHandler) handleFetch(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	order, err := h.orders.FetchOrder(ctx, r.PathValue("id"))
	if err != nil {
		writeOrderError(w, err)
		return
	}
	view := orderView{Order: order}
	cart, err := h.carts.FetchCart(ctx, order.CartID)
	if err != nil {
		// 购物车取不到不影响订单主体返回
		logger.Ctx(ctx).Warn().Err(err).Str("cart_id", order.CartID).Msg("embed cart failed")
	} else {
		view.Cart = cart
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *OrderHandler) handlePlace(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req application.PlaceOrderRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}
	order, err := h.orders.PlaceOrder(ctx, r.PathValue("id"), &req)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// writeOrderError 把领域错误映射到状态码。提交预占失败时透传
// 库存子系统的语义：已过期 410，状态冲突 409。
func writeOrderError(w http.ResponseWriter, err error) {
	var statusCode int
	switch {
	case errors.Is(err, domain.ErrMissingCart):
		statusCode = http.StatusBadRequest
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, inventorydomain.ErrUnknownReservation):
		statusCode = http.StatusNotFound
	case errors.Is(err, domain.ErrOrderAlreadyPlaced),
		errors.Is(err, inventorydomain.ErrInvalidTransition):
		statusCode = http.StatusConflict
	case errors.Is(err, inventorydomain.ErrReservationExpired):
		statusCode = http.StatusGone
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
