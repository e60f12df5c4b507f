// internal/service/inventory/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"jetcart/internal/service/inventory/application"
	"jetcart/internal/service/inventory/domain"
)

// InventoryHandler 封装了库存子系统的 HTTP 处理器。
type InventoryHandler struct {
	stocks  *application.StockService
	manager *application.ReservationManager
}

func NewInventoryHandler(stocks *application.StockService, manager *application.ReservationManager) *InventoryHandler {
	return &InventoryHandler{stocks: stocks, manager: manager}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *InventoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/inventory", h.handleCreate)
	mux.HandleFunc("GET /v1/inventory/{sku}", h.handleFetch)
	mux.HandleFunc("PUT /v1/inventory/{sku}", h.handleRestock)
	mux.HandleFunc("POST /v1/inventory/{sku}/block", h.handleBlock)
	mux.HandleFunc("GET /v1/reservation/{id}", h.handleFetchReservation)
	mux.HandleFunc("POST /v1/reservation/{id}/commit", h.handleCommit)
	mux.HandleFunc("POST /v1/reservation/{id}/release", h.handleRelease)
}

func (h *InventoryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req application.CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	rec, err := h.stocks.CreateRecord(ctx, &req)
	if err != nil {
		writeInventoryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *InventoryHandler) handleFetch(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	rec, err := h.stocks.Fetch(ctx, r.PathValue("sku"))
	if err != nil {
		writeInventoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *InventoryHandler) handleRestock(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	rec, err := h.stocks.Restock(ctx, r.PathValue("sku"), req.Quantity)
	if err != nil {
		writeInventoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *InventoryHandler) handleBlock(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	reservation, err := h.manager.Block(ctx, r.PathValue("sku"), req.Quantity)
	if err != nil {
		writeInventoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reservation_id": reservation.ID,
		"expiry":         reservation.Expiry,
	})
}

func (h *InventoryHandler) handleFetchReservation(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	reservation, err := h.manager.GetReservation(ctx, r.PathValue("id"))
	if err != nil {
		writeInventoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (h *InventoryHandler) handleCommit(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	if err := h.manager.Commit(ctx, r.PathValue("id")); err != nil {
		writeInventoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "committed"})
}

func (h *InventoryHandler) handleRelease(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	if err := h.manager.Release(ctx, r.PathValue("id")); err != nil {
		writeInventoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "released"})
}

// writeInventoryError 根据错误类型返回不同的 HTTP 状态码。
// 业务性结果（库存不足、状态冲突）与校验错误映射到不同的码位。
func writeInventoryError(w http.ResponseWriter, err error) {
	var statusCode int
	switch {
	case errors.Is(err, domain.ErrInvalidSKU),
		errors.Is(err, domain.ErrInvalidQuantity):
		statusCode = http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrSKUExists):
		statusCode = http.StatusConflict
	case errors.Is(err, domain.ErrUnknownReservation):
		statusCode = http.StatusNotFound
	case errors.Is(err, domain.ErrReservationExpired):
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
