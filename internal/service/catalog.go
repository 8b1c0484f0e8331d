package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/linemk/storefront/internal/catalog/filters"
	"github.com/linemk/storefront/internal/catalog/search"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
	"github.com/shopspring/decimal"
)

// CatalogService собирает страницы каталога: категории, страницу категории с фильтрами,
// карточку товара и поиск по всему каталогу.
type CatalogService interface {
	Categories(ctx context.Context) ([]models.Category, error)
	CategoryPage(ctx context.Context, slug string, params url.Values) (*CategoryPage, error)
	Product(ctx context.Context, slug string, id int64) (*ProductPage, error)
	Search(ctx context.Context, query string) ([]search.Result, error)
}

type catalogService struct {
	log       *slog.Logger
	repo      storage.CatalogStorage
	showFirst int
}

func NewCatalogService(log *slog.Logger, repo storage.CatalogStorage, showFirst int) CatalogService {
	return &catalogService{log: log, repo: repo, showFirst: showFirst}
}

// FilterView: состояние фильтра для отображения
type FilterView struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Lower       *decimal.Decimal `json:"lower,omitempty"`
	Upper       *decimal.Decimal `json:"upper,omitempty"`
	Min         *decimal.Decimal `json:"min,omitempty"`
	Max         *decimal.Decimal `json:"max,omitempty"`
	Options     []models.Choice  `json:"options,omitempty"`
	Selected    []string         `json:"selected,omitempty"`
	Value       *bool            `json:"value,omitempty"`
}

func viewOf(f filters.Filter) FilterView {
	v := FilterView{Name: f.Name(), Description: f.Describe()}
	switch t := f.(type) {
	case *filters.Bound:
		lower, upper := t.Bounds()
		min, max := t.Selected()
		v.Lower, v.Upper, v.Min, v.Max = &lower, &upper, &min, &max
	case *filters.Choices:
		v.Options = t.Options()
		v.Selected = t.Selected()
	case *filters.Bool:
		if value, ok := t.Value(); ok {
			v.Value = &value
		}
	}
	return v
}

// ProductCard: товар в списке вместе с кратким описанием характеристик
type ProductCard struct {
	models.Product
	Summary string `json:"summary"`
}

type CategoryPage struct {
	Category models.Category `json:"category"`
	Filters  []FilterView    `json:"filters"`
	Products []ProductCard   `json:"products"`
}

type ProductPage struct {
	Category models.Category `json:"category"`
	Product  models.Product  `json:"product"`
	Details  models.Details  `json:"details"`
	Summary  string          `json:"summary"`
}

func (s *catalogService) Categories(ctx context.Context) ([]models.Category, error) {
	const op = "service.CatalogService.Categories"

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		s.log.Error("failed to list categories", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return categories, nil
}

// CategoryPage строит все фильтры по нефильтрованной выборке категории и только потом
// применяет их, иначе варианты значений у фильтров зависели бы от соседних фильтров.
// Параметр q дополнительно сужает выборку поиском по названию товара.
func (s *catalogService) CategoryPage(ctx context.Context, slug string, params url.Values) (*CategoryPage, error) {
	const op = "service.CatalogService.CategoryPage"
	logger := s.log.With(slog.String("op", op), slog.String("slug", slug))

	category, err := s.repo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		logger.Warn("failed to get category", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	details, err := models.NewDetails(category.DetailsType)
	if err != nil {
		logger.Error("category has unknown details type", slog.String("detailsType", category.DetailsType))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	qs := s.repo.PublishedInCategory(ctx, category.ID)
	list, err := filters.Gather(qs, details)
	if err != nil {
		logger.Error("failed to gather filters", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, f := range list {
		f.Parse(params)
	}

	filtered := filters.ApplyAll(qs, list)
	if params.Has("q") {
		filtered = search.NewCategory("name").Filter(params.Get("q"), filtered)
	}

	products, err := s.repo.FindProducts(ctx, filtered)
	if err != nil {
		logger.Error("failed to load products", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	page := &CategoryPage{
		Category: *category,
		Filters:  make([]FilterView, 0, len(list)),
		Products: make([]ProductCard, 0, len(products)),
	}
	for _, f := range list {
		page.Filters = append(page.Filters, viewOf(f))
	}
	for i := range products {
		card := ProductCard{Product: products[i]}
		if d, err := s.repo.LoadDetails(ctx, &products[i]); err == nil {
			card.Summary = d.ShortDetails()
		} else {
			logger.Warn("failed to load details", slog.Int64("productID", products[i].ID), slog.Any("error", err))
		}
		page.Products = append(page.Products, card)
	}

	logger.Debug("category page built", slog.Int("products", len(page.Products)))
	return page, nil
}

// Product возвращает опубликованный товар; товар из другой категории считается ненайденным
func (s *catalogService) Product(ctx context.Context, slug string, id int64) (*ProductPage, error) {
	const op = "service.CatalogService.Product"
	logger := s.log.With(slog.String("op", op), slog.String("slug", slug), slog.Int64("productID", id))

	category, err := s.repo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		logger.Warn("failed to get category", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	product, err := s.repo.GetPublishedProduct(ctx, id)
	if err != nil {
		logger.Warn("failed to get product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if product.CategoryID != category.ID {
		logger.Warn("product requested from wrong category", slog.Int64("categoryID", product.CategoryID))
		return nil, fmt.Errorf("%s: wrong category: %w", op, storage.ErrProductNotFound)
	}

	details, err := s.repo.LoadDetails(ctx, product)
	if err != nil {
		logger.Error("failed to load details", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &ProductPage{
		Category: *category,
		Product:  *product,
		Details:  details,
		Summary:  details.ShortDetails(),
	}, nil
}

// Search ищет по названиям товаров среди опубликованных; совпадение с названием
// категории выдает категорию целиком
func (s *catalogService) Search(ctx context.Context, query string) ([]search.Result, error) {
	const op = "service.CatalogService.Search"
	logger := s.log.With(slog.String("op", op), slog.String("query", query))

	results, err := search.NewCatalog(s.showFirst, "name").
		Search(query, s.repo.Published(ctx), s.repo.Categories(ctx))
	if err != nil {
		logger.Warn("search failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Debug("search done", slog.Int("categories", len(results)))
	return results, nil
}
