package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/storage"
)

// CategoriesHandler обрабатывает GET /api/categories
func CategoriesHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CategoriesHandler"
		logger := log.With(slog.String("op", op))

		categories, err := catalog.Categories(r.Context())
		if err != nil {
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, categories)
	}
}

// CategoryPageHandler обрабатывает GET /api/catalog/{slug}.
// Параметры фильтров и q передаются в query string.
func CategoryPageHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CategoryPageHandler"
		slug := chi.URLParam(r, "slug")
		logger := log.With(slog.String("op", op), slog.String("slug", slug))

		page, err := catalog.CategoryPage(r.Context(), slug, r.URL.Query())
		if err != nil {
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, page)
	}
}

// ProductHandler обрабатывает GET /api/catalog/{slug}/{id}
func ProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductHandler"
		slug := chi.URLParam(r, "slug")
		logger := log.With(slog.String("op", op), slog.String("slug", slug))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			// нечисловой id не может принадлежать ни одному товару
			writeError(logger, w, storage.ErrProductNotFound)
			return
		}

		page, err := catalog.Product(r.Context(), slug, id)
		if err != nil {
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, page)
	}
}

// SearchHandler обрабатывает GET /api/search?q=
func SearchHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SearchHandler"
		query := r.URL.Query().Get("q")
		logger := log.With(slog.String("op", op), slog.String("query", query))

		results, err := catalog.Search(r.Context(), query)
		if err != nil {
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, results)
	}
}
