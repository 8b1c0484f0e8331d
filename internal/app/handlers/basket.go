package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/linemk/storefront/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/validators"
)

// BasketRequest — тело запросов добавления и удаления товара. Без amount берется одна единица.
type BasketRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Amount    *int  `json:"amount" validate:"omitempty,min=1"`
}

func (r BasketRequest) amount() int {
	if r.Amount == nil {
		return 1
	}
	return *r.Amount
}

// CheckoutRequest — тело запроса оформления корзины
type CheckoutRequest struct {
	ShipTo string `json:"ship_to"`
}

// RemoveResponse — сколько единиц товара вернулось на склад
type RemoveResponse struct {
	Released int `json:"released"`
}

// decodeBasketRequest разбирает и проверяет тело; при ошибке ответ уже отправлен
func decodeBasketRequest(logger *slog.Logger, w http.ResponseWriter, r *http.Request) (*BasketRequest, bool) {
	var req BasketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid request: decoding error", slog.Any("error", err))
		writeAJAX(logger, w, http.StatusBadRequest, errMalformed, nil)
		return nil, false
	}
	if err := validate.Struct(req); err != nil {
		writeAJAX(logger, w, http.StatusBadRequest, fmt.Errorf("%w: %s", validators.ErrValidation, err), nil)
		return nil, false
	}
	return &req, true
}

func userFromContext(logger *slog.Logger, w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := jwtmiddleware.FromContext(r.Context())
	if !ok {
		logger.Error("userID not found in context")
		writeAJAX(logger, w, http.StatusForbidden, errForbidden, nil)
	}
	return userID, ok
}

// BasketAddHandler обрабатывает POST /api/basket/add
func BasketAddHandler(log *slog.Logger, basket service.BasketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.BasketAddHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromContext(logger, w, r)
		if !ok {
			return
		}
		req, ok := decodeBasketRequest(logger, w, r)
		if !ok {
			return
		}

		line, err := basket.Add(r.Context(), userID, req.ProductID, req.amount())
		if err != nil {
			status := statusFor(err)
			logger.Warn("failed to add to basket", slog.Int("status", status), slog.Any("error", err))
			writeAJAX(logger, w, status, err, nil)
			return
		}
		writeAJAX(logger, w, http.StatusOK, nil, line)
	}
}

// BasketRemoveHandler обрабатывает POST /api/basket/remove
func BasketRemoveHandler(log *slog.Logger, basket service.BasketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.BasketRemoveHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromContext(logger, w, r)
		if !ok {
			return
		}
		req, ok := decodeBasketRequest(logger, w, r)
		if !ok {
			return
		}

		released, err := basket.Remove(r.Context(), userID, req.ProductID, req.amount())
		if err != nil {
			status := statusFor(err)
			logger.Warn("failed to remove from basket", slog.Int("status", status), slog.Any("error", err))
			writeAJAX(logger, w, status, err, nil)
			return
		}
		writeAJAX(logger, w, http.StatusOK, nil, RemoveResponse{Released: released})
	}
}

// CheckoutHandler обрабатывает POST /api/basket/checkout
func CheckoutHandler(log *slog.Logger, basket service.BasketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromContext(logger, w, r)
		if !ok {
			return
		}

		var req CheckoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("invalid request: decoding error", slog.Any("error", err))
			writeAJAX(logger, w, http.StatusBadRequest, errMalformed, nil)
			return
		}

		order, err := basket.Checkout(r.Context(), userID, req.ShipTo)
		if err != nil {
			status := statusFor(err)
			logger.Warn("checkout failed", slog.Int("status", status), slog.Any("error", err))
			writeAJAX(logger, w, status, err, nil)
			return
		}
		writeAJAX(logger, w, http.StatusOK, nil, order)
	}
}
