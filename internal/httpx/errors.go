package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/currency"
	"github.com/ariefcatur/go-storefront/internal/inventory"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/storage"
	"go.uber.org/zap"
)

type errorResp struct {
	Error     string   `json:"error"`
	Fields    []string `json:"fields,omitempty"`
	Available *int     `json:"available,omitempty"`
	Requested *int     `json:"requested,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResp{Error: msg})
}

// writeError maps domain errors onto status codes; anything unknown is a 500.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var ise *inventory.InsufficientStockError
	var ve *orders.ValidationError
	switch {
	case errors.As(err, &ise):
		writeJSON(w, http.StatusConflict, errorResp{Error: ise.Error(), Available: &ise.Available, Requested: &ise.Requested})
	case errors.Is(err, inventory.ErrOutOfStock):
		writeJSON(w, http.StatusConflict, errorResp{Error: err.Error()})
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, errorResp{Error: ve.Message, Fields: ve.Fields})
	case errors.Is(err, inventory.ErrProductNotFound),
		errors.Is(err, inventory.ErrSizeNotFound),
		errors.Is(err, orders.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResp{Error: err.Error()})
	case errors.Is(err, orders.ErrInvalidTransition),
		errors.Is(err, orders.ErrUnknownShippingMethod),
		errors.Is(err, orders.ErrEmptyCart),
		errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, currency.ErrUnsupported):
		writeJSON(w, http.StatusUnprocessableEntity, errorResp{Error: err.Error()})
	case errors.Is(err, storage.ErrLockTimeout):
		writeJSON(w, http.StatusServiceUnavailable, errorResp{Error: "busy, try again"})
	default:
		log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: "internal error"})
	}
}
