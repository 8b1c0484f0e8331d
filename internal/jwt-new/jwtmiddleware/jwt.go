package jwtmiddleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	security "github.com/linemk/storefront/internal/jwt-new"
)

type contextKey string

const UserIDKey contextKey = "userID"

// forbidden — тело ответа, когда токен не прошел проверку
type forbidden struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func forbid(log *slog.Logger, w http.ResponseWriter, reason string) {
	log.Warn("request forbidden", slog.String("reason", reason))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(forbidden{Error: "Forbidden"})
}

// NewJWTMiddleware проверяет "Authorization: Bearer <token>" и кладет id покупателя в контекст.
// Секрет берется из окружения при создании; без него сервер не стартует.
// Запрос без валидного токена получает 403 {"success": false, "error": "Forbidden"}
// до любой другой проверки.
func NewJWTMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	const op = "jwtmiddleware.NewJWTMiddleware"
	log = log.With(slog.String("op", op))

	secret, err := security.Secret()
	if err != nil {
		panic(err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				forbid(log, w, "missing token")
				return
			}
			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenStr == "" {
				forbid(log, w, "invalid token format")
				return
			}

			userID, err := security.ParseUserID(tokenStr, secret)
			if err != nil {
				forbid(log, w, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID кладет id покупателя в контекст
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// FromContext извлекает userID из контекста.
func FromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}
