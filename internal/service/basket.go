package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
)

var (
	// запрошено больше единиц, чем есть на складе
	ErrNotEnoughStock = errors.New("not enough units available")
	// количество должно быть положительным
	ErrInvalidAmount = errors.New("amount must be positive")
	// нельзя оформить пустую корзину
	ErrEmptyBasket = errors.New("basket is empty")
)

type BasketService interface {
	// Add кладет amount единиц товара в корзину пользователя и списывает их со склада
	Add(ctx context.Context, userID, productID int64, amount int) (*models.OrderLine, error)
	// Remove убирает до amount единиц товара из корзины и возвращает их на склад.
	// Возвращает число фактически возвращенных единиц.
	Remove(ctx context.Context, userID, productID int64, amount int) (int, error)
	// Checkout оформляет корзину с адресом доставки shipTo
	Checkout(ctx context.Context, userID int64, shipTo string) (*models.Order, error)
}

type basketService struct {
	log       *slog.Logger
	db        *sql.DB
	stockRepo storage.StockStorage
	orderRepo storage.OrderStorage
	lineRepo  storage.OrderLineStorage
	now       func() time.Time
}

func NewBasketService(log *slog.Logger, db *sql.DB, stockRepo storage.StockStorage,
	orderRepo storage.OrderStorage, lineRepo storage.OrderLineStorage) BasketService {
	return &basketService{
		log:       log,
		db:        db,
		stockRepo: stockRepo,
		orderRepo: orderRepo,
		lineRepo:  lineRepo,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func rollback(tx *sql.Tx, logger *slog.Logger) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Error("transaction rollback failed", slog.Any("error", err))
	}
}

// Add выполняется в одной транзакции. Блокировки берутся в порядке корзина -> товар,
// как и в Remove, чтобы параллельные запросы одного пользователя не взаимоблокировались.
// Если товара не хватает, ничего не меняется и новая корзина не создается.
func (s *basketService) Add(ctx context.Context, userID, productID int64, amount int) (*models.OrderLine, error) {
	const op = "service.BasketService.Add"
	logger := s.log.With(
		slog.String("op", op),
		slog.Int64("userID", userID),
		slog.Int64("productID", productID),
		slog.Int("amount", amount),
	)
	logger.Info("adding product to basket")

	if amount <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidAmount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer rollback(tx, logger)

	basket, err := s.orderRepo.GetBasketTx(ctx, tx, userID)
	if err != nil && !errors.Is(err, storage.ErrBasketNotFound) {
		logger.Error("failed to get basket", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get basket: %w", op, err)
	}

	product, err := s.stockRepo.LockProductTx(ctx, tx, productID, s.now())
	if err != nil {
		logger.Warn("failed to get product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
	}

	if amount > product.UnitsAvailable {
		logger.Warn("not enough units", slog.Int("available", product.UnitsAvailable))
		return nil, fmt.Errorf("%s: %d requested, %d available: %w", op, amount, product.UnitsAvailable, ErrNotEnoughStock)
	}

	if basket == nil {
		basket, err = s.orderRepo.CreateBasketTx(ctx, tx, userID)
		if err != nil {
			logger.Error("failed to create basket", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logger.Info("basket created", slog.String("basketID", basket.ID.String()))
	}

	// цена и скидка фиксируются на момент первого добавления товара
	line := &models.OrderLine{
		OrderID:               basket.ID,
		ProductID:             product.ID,
		ProductName:           product.Name,
		BuyingPrice:           product.Price,
		BuyingDiscountPercent: product.DiscountPercent,
		Amount:                amount,
	}
	if err := s.lineRepo.AddLineTx(ctx, tx, line); err != nil {
		logger.Error("failed to add order line", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.stockRepo.ReserveUnitsTx(ctx, tx, product.ID, amount); err != nil {
		if errors.Is(err, storage.ErrStockChanged) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotEnoughStock)
		}
		logger.Error("failed to reserve units", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("product added to basket", slog.Int("lineAmount", line.Amount))
	return line, nil
}

// Remove возвращает на склад min(amount, количество в строке).
// Строка удаляется, если в ней не остается единиц.
func (s *basketService) Remove(ctx context.Context, userID, productID int64, amount int) (int, error) {
	const op = "service.BasketService.Remove"
	logger := s.log.With(
		slog.String("op", op),
		slog.Int64("userID", userID),
		slog.Int64("productID", productID),
		slog.Int("amount", amount),
	)
	logger.Info("removing product from basket")

	if amount <= 0 {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidAmount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer rollback(tx, logger)

	basket, err := s.orderRepo.GetBasketTx(ctx, tx, userID)
	if err != nil {
		logger.Warn("failed to get basket", slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	line, err := s.lineRepo.LockLineTx(ctx, tx, basket.ID, productID)
	if err != nil {
		logger.Warn("failed to get order line", slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	released := min(line.Amount, amount)
	if line.Amount <= amount {
		err = s.lineRepo.DeleteLineTx(ctx, tx, line.ID)
	} else {
		err = s.lineRepo.DecreaseLineTx(ctx, tx, line.ID, amount)
	}
	if err != nil {
		logger.Error("failed to update order line", slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.stockRepo.ReleaseUnitsTx(ctx, tx, productID, released); err != nil {
		logger.Error("failed to release units", slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("product removed from basket", slog.Int("released", released))
	return released, nil
}

func (s *basketService) Checkout(ctx context.Context, userID int64, shipTo string) (*models.Order, error) {
	const op = "service.BasketService.Checkout"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("checking out basket")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer rollback(tx, logger)

	basket, err := s.orderRepo.GetBasketTx(ctx, tx, userID)
	if err != nil {
		logger.Warn("failed to get basket", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	n, err := s.lineRepo.CountLinesTx(ctx, tx, basket.ID)
	if err != nil {
		logger.Error("failed to count order lines", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyBasket)
	}

	if shipTo = strings.TrimSpace(shipTo); shipTo != "" {
		basket.ShipTo = &shipTo
	}
	if err := basket.MarkOrdered(); err != nil {
		logger.Warn("failed to mark basket ordered", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.orderRepo.SaveStateTx(ctx, tx, basket); err != nil {
		logger.Error("failed to save order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("basket ordered", slog.String("orderID", basket.ID.String()))
	return basket, nil
}
