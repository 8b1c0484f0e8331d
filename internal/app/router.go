package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/storefront/internal/app/handlers"
	"github.com/linemk/storefront/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/storefront/internal/lib/logger/handlers/urllog"
	"github.com/linemk/storefront/internal/service"
)

// Services собирает бизнес-логику, которую обслуживает роутер
type Services struct {
	Auth    service.AuthServiceInterface
	Catalog service.CatalogService
	Random  service.RandomService
	Basket  service.BasketService
	Orders  service.OrderService
}

// NewRouter собирает chi-роутер: каталог открыт всем, корзина и заказы требуют JWT
func NewRouter(log *slog.Logger, s Services, sessions handlers.SessionIDs, sessionTTL time.Duration) http.Handler {
	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// эндпоинт для аутентификации
	router.Post("/api/auth", handlers.AuthHandler(log, s.Auth))

	router.Get("/api/categories", handlers.CategoriesHandler(log, s.Catalog))
	router.Get("/api/catalog/{slug}", handlers.CategoryPageHandler(log, s.Catalog))
	router.Get("/api/catalog/{slug}/{id}", handlers.ProductHandler(log, s.Catalog))
	router.Get("/api/search", handlers.SearchHandler(log, s.Catalog))
	router.Get("/api/random", handlers.RandomHandler(log, s.Random, sessions, sessionTTL))

	router.Group(func(r chi.Router) {
		r.Use(jwtmiddleware.NewJWTMiddleware(log))
		// корзина
		r.Post("/api/basket/add", handlers.BasketAddHandler(log, s.Basket))
		r.Post("/api/basket/remove", handlers.BasketRemoveHandler(log, s.Basket))
		r.Post("/api/basket/checkout", handlers.CheckoutHandler(log, s.Basket))
		// заказы покупателя
		r.Get("/api/profile", handlers.ProfileHandler(log, s.Orders))
		r.Get("/api/orders/{id}", handlers.OrderHandler(log, s.Orders))
		r.Post("/api/orders/{id}/done", handlers.OrderDoneHandler(log, s.Orders))
	})

	return router
}
