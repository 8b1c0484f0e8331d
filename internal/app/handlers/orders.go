package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/storage"
)

// ProfileHandler обрабатывает GET /api/profile
func ProfileHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProfileHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromContext(logger, w, r)
		if !ok {
			return
		}

		profile, err := orders.Profile(r.Context(), userID)
		if err != nil {
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, profile)
	}
}

// orderIDParam разбирает {id}; неверный uuid считается несуществующим заказом
func orderIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, storage.ErrOrderNotFound
	}
	return id, nil
}

// OrderHandler обрабатывает GET /api/orders/{id}; на чужой заказ отвечает 403
func OrderHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromContext(logger, w, r)
		if !ok {
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			writeError(logger, w, err)
			return
		}

		order, err := orders.Order(r.Context(), userID, orderID)
		if err != nil {
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, order)
	}
}

// OrderDoneHandler обрабатывает POST /api/orders/{id}/done
func OrderDoneHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderDoneHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromContext(logger, w, r)
		if !ok {
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			writeAJAX(logger, w, statusFor(err), err, nil)
			return
		}

		order, err := orders.Done(r.Context(), userID, orderID)
		if err != nil {
			status := statusFor(err)
			logger.Warn("failed to confirm order", slog.Int("status", status), slog.Any("error", err))
			writeAJAX(logger, w, status, err, nil)
			return
		}
		writeAJAX(logger, w, http.StatusOK, nil, order)
	}
}
