package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/session"
)

// SessionIDs выдает id для новых сессий
type SessionIDs interface {
	NewID() string
}

// RandomHandler обрабатывает GET /api/random?page=&reset=.
// id сессии берется из cookie; если cookie нет, сессия создается и cookie выставляется.
// Наличие параметра reset сбрасывает порядок перемешивания.
func RandomHandler(log *slog.Logger, random service.RandomService, ids SessionIDs, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RandomHandler"
		logger := log.With(slog.String("op", op))

		page := 1
		if raw := r.URL.Query().Get("page"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				writeError(logger, w, fmt.Errorf("page %q: %w", raw, service.ErrPageOutOfRange))
				return
			}
			page = parsed
		}
		reset := r.URL.Query().Has("reset")

		sessionID := ""
		if cookie, err := r.Cookie(session.CookieName); err == nil && cookie.Value != "" {
			sessionID = cookie.Value
		} else {
			sessionID = ids.NewID()
			logger.Debug("new session started")
		}
		http.SetCookie(w, &http.Cookie{
			Name:     session.CookieName,
			Value:    sessionID,
			Path:     "/",
			MaxAge:   int(ttl.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		result, err := random.Page(r.Context(), sessionID, page, reset)
		if err != nil {
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, result)
	}
}
