// internal/service/tax/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"jetcart/internal/service/tax/application"
	"jetcart/internal/service/tax/domain"
)

// TaxHandler 封装了税务服务的 HTTP 处理器。
type TaxHandler struct {
	service *application.TaxService
}

func NewTaxHandler(service *application.TaxService) *TaxHandler {
	return &TaxHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *TaxHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /tax", h.handleCreateTax)
	mux.HandleFunc("GET /tax", h.handleListTaxes)
	mux.HandleFunc("DELETE /tax", h.handleDeleteTaxes)
	mux.HandleFunc("POST /tax/mapping", h.handleCreateMapping)
	mux.HandleFunc("GET /tax/mapping", h.handleListMappings)
	mux.HandleFunc("GET /tax/{type}", h.handleFetchTax)
}

func (h *TaxHandler) handleCreateTax(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req struct {
		Type  string  `json:"type"`
		Value float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	tax, err := h.service.CreateTax(ctx, req.Type, req.Value)
	if err != nil {
		writeTaxError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tax)
}

func (h *TaxHandler) handleListTaxes(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	taxes, err := h.service.FetchAllTaxes(ctx)
	if err != nil {
		writeTaxError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taxes)
}

func (h *TaxHandler) handleDeleteTaxes(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	if err := h.service.DeleteAllTaxes(ctx); err != nil {
		writeTaxError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *TaxHandler) handleFetchTax(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	tax, err := h.service.FetchTax(ctx, r.PathValue("type"))
	if err != nil {
		writeTaxError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tax)
}

func (h *TaxHandler) handleCreateMapping(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var mapping domain.TaxMapping
	if err := json.NewDecoder(r.Body).Decode(&mapping); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.service.CreateMapping(ctx, &mapping)
	if err != nil {
		writeTaxError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *TaxHandler) handleListMappings(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	mappings, err := h.service.FetchAllMappings(ctx)
	if err != nil {
		writeTaxError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mappings)
}

func writeTaxError(w http.ResponseWriter, err error) {
	var statusCode int
	switch {
	case errors.Is(err, domain.ErrUnknownTaxType):
		statusCode = http.StatusBadRequest
	case errors.Is(err, domain.ErrTaxNotFound),
		errors.Is(err, domain.ErrMappingNotFound):
		statusCode = http.StatusNotFound
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
