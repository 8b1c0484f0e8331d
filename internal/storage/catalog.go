package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linemk/storefront/internal/domain/models"
	"gorm.io/gorm"
)

var ErrCategoryNotFound = errors.New("category not found")

// CatalogStorage читает каталог через gorm.
// Выборки товаров возвращаются как *gorm.DB, чтобы фильтры и поиск могли их сужать.
type CatalogStorage interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	// Categories возвращает выборку всех категорий
	Categories(ctx context.Context) *gorm.DB
	// Published возвращает выборку опубликованных товаров
	Published(ctx context.Context) *gorm.DB
	// PublishedInCategory сужает выборку до одной категории
	PublishedInCategory(ctx context.Context, categoryID int64) *gorm.DB
	GetPublishedProduct(ctx context.Context, id int64) (*models.Product, error)
	// LoadDetails загружает запись варианта характеристик товара
	LoadDetails(ctx context.Context, p *models.Product) (models.Details, error)
	// FindProducts загружает товары выборки, упорядоченные по id
	FindProducts(ctx context.Context, qs *gorm.DB) ([]models.Product, error)
	// PublishedIDs возвращает id опубликованных товаров по возрастанию
	PublishedIDs(ctx context.Context) ([]int64, error)
	// ProductsByIDs загружает товары в порядке ids
	ProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
}

type catalogRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewCatalogRepository создает репозиторий каталога.
// Время сравнивается в UTC, поэтому даты публикации хранятся в UTC.
func NewCatalogRepository(db *gorm.DB) CatalogStorage {
	return &catalogRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *catalogRepository) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("slug = ?", slug).Take(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

func (r *catalogRepository) Categories(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Category{}).Session(&gorm.Session{})
}

func (r *catalogRepository) Published(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("published_at <= ?", r.now()).
		Session(&gorm.Session{})
}

func (r *catalogRepository) PublishedInCategory(ctx context.Context, categoryID int64) *gorm.DB {
	return r.Published(ctx).Where("category_id = ?", categoryID).Session(&gorm.Session{})
}

func (r *catalogRepository) GetPublishedProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.Published(ctx).Where("id = ?", id).Take(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (r *catalogRepository) LoadDetails(ctx context.Context, p *models.Product) (models.Details, error) {
	details, err := models.NewDetails(p.DetailsType)
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).Where("id = ?", p.DetailsID).Take(details).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("details %s/%d: %w", p.DetailsType, p.DetailsID, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to load details: %w", err)
	}
	return details, nil
}

func (r *catalogRepository) FindProducts(ctx context.Context, qs *gorm.DB) ([]models.Product, error) {
	var products []models.Product
	if err := qs.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return products, nil
}

func (r *catalogRepository) PublishedIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.Published(ctx).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list product ids: %w", err)
	}
	return ids, nil
}

func (r *catalogRepository) ProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var found []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[int64]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}
