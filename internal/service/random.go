package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
)

// ErrPageOutOfRange: запрошенной страницы нет
var ErrPageOutOfRange = errors.New("page is out of range")

// DefaultRandomPageSize: товаров на странице случайной витрины
const DefaultRandomPageSize = 10

// SeedStore выдает зерно перемешивания для сессии
type SeedStore interface {
	Seed(ctx context.Context, sessionID string, reset bool) (uint64, error)
}

// RandomService — случайная витрина: опубликованные товары в порядке,
// перемешанном по зерну сессии. Пока зерно не сброшено, порядок страниц стабилен.
type RandomService interface {
	Page(ctx context.Context, sessionID string, page int, reset bool) (*RandomPage, error)
}

type randomService struct {
	log      *slog.Logger
	repo     storage.CatalogStorage
	seeds    SeedStore
	pageSize int
}

func NewRandomService(log *slog.Logger, repo storage.CatalogStorage, seeds SeedStore, pageSize int) RandomService {
	if pageSize <= 0 {
		pageSize = DefaultRandomPageSize
	}
	return &randomService{log: log, repo: repo, seeds: seeds, pageSize: pageSize}
}

type RandomPage struct {
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
	Products []models.Product `json:"products"`
}

// Shuffle возвращает перемешанную копию ids; при одном и том же seed порядок одинаковый
func Shuffle(ids []int64, seed uint64) []int64 {
	shuffled := append([]int64(nil), ids...)
	r := rand.New(rand.NewPCG(seed, seed))
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// Page возвращает страницу page (с 1). Пустой каталог дает одну пустую страницу.
func (s *randomService) Page(ctx context.Context, sessionID string, page int, reset bool) (*RandomPage, error) {
	const op = "service.RandomService.Page"
	logger := s.log.With(slog.String("op", op), slog.Int("page", page), slog.Bool("reset", reset))

	seed, err := s.seeds.Seed(ctx, sessionID, reset)
	if err != nil {
		logger.Error("failed to get session seed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ids, err := s.repo.PublishedIDs(ctx)
	if err != nil {
		logger.Error("failed to list products", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pages := max(1, (len(ids)+s.pageSize-1)/s.pageSize)
	if page < 1 || page > pages {
		logger.Warn("page out of range", slog.Int("pages", pages))
		return nil, fmt.Errorf("%s: page %d of %d: %w", op, page, pages, ErrPageOutOfRange)
	}

	shuffled := Shuffle(ids, seed)
	from := (page - 1) * s.pageSize
	to := min(from+s.pageSize, len(shuffled))

	products, err := s.repo.ProductsByIDs(ctx, shuffled[from:to])
	if err != nil {
		logger.Error("failed to load products", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RandomPage{Page: page, Pages: pages, Products: products}, nil
}
