package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/storefront/internal/catalog/search"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/storage"
	"github.com/linemk/storefront/internal/validators"
)

// ответ на тело запроса, которое не удалось разобрать как JSON
const msgMalformed = "request malformed: use JSON format"

var (
	errMalformed = errors.New(msgMalformed)
	errForbidden = errors.New("Forbidden")
)

var validate = validators.New()

// AJAXResponse — ответ на изменение корзины или заказа
type AJAXResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// statusFor сопоставляет ошибку сервиса HTTP-статусу
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrProductNotFound),
		errors.Is(err, storage.ErrCategoryNotFound),
		errors.Is(err, storage.ErrBasketNotFound),
		errors.Is(err, storage.ErrOrderLineNotFound),
		errors.Is(err, storage.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotEnoughStock), errors.Is(err, storage.ErrStockChanged):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrForeignOrder):
		return http.StatusForbidden
	case errors.Is(err, validators.ErrValidation),
		errors.Is(err, models.ErrWrongStateChange),
		errors.Is(err, models.ErrBlankShipment),
		errors.Is(err, service.ErrPageOutOfRange),
		errors.Is(err, service.ErrEmptyBasket),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, search.ErrNoQuerySpecified):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage скрывает текст внутренних ошибок от клиента
func publicMessage(status int, err error) string {
	if status == http.StatusInternalServerError {
		return "internal server error"
	}
	for _, sentinel := range []error{
		storage.ErrProductNotFound, storage.ErrCategoryNotFound, storage.ErrBasketNotFound,
		storage.ErrOrderLineNotFound, storage.ErrOrderNotFound,
		service.ErrNotEnoughStock, storage.ErrStockChanged, service.ErrForeignOrder,
		models.ErrWrongStateChange, models.ErrBlankShipment, service.ErrPageOutOfRange,
		service.ErrEmptyBasket, service.ErrInvalidAmount, search.ErrNoQuerySpecified,
		validators.ErrValidation, errMalformed, errForbidden,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return http.StatusText(status)
}

func writeJSON(log *slog.Logger, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}

// writeAJAX отвечает в формате {"success": ..., "error": ...}
func writeAJAX(log *slog.Logger, w http.ResponseWriter, status int, err error, data interface{}) {
	resp := AJAXResponse{Success: err == nil, Data: data}
	if err != nil {
		resp.Error = publicMessage(status, err)
	}
	writeJSON(log, w, status, resp)
}

// writeError отвечает на ошибку сервиса статусом из statusFor
func writeError(log *slog.Logger, w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", slog.Any("error", err))
	} else {
		log.Warn("request rejected", slog.Int("status", status), slog.Any("error", err))
	}
	http.Error(w, publicMessage(status, err), status)
}
