package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
	"github.com/shopspring/decimal"
)

// ErrForeignOrder: заказ принадлежит другому пользователю
var ErrForeignOrder = errors.New("order belongs to another user")

// OrderService показывает заказы и подтверждает получение
type OrderService interface {
	Profile(ctx context.Context, userID int64) (*ProfileResponse, error)
	Order(ctx context.Context, userID int64, orderID uuid.UUID) (*OrderResponse, error)
	// Done подтверждает получение оформленного заказа
	Done(ctx context.Context, userID int64, orderID uuid.UUID) (*models.Order, error)
}

type orderService struct {
	log       *slog.Logger
	db        *sql.DB
	userRepo  storage.UserStorage
	orderRepo storage.OrderStorage
	lineRepo  storage.OrderLineStorage
}

func NewOrderService(log *slog.Logger, db *sql.DB, userRepo storage.UserStorage,
	orderRepo storage.OrderStorage, lineRepo storage.OrderLineStorage) OrderService {
	return &orderService{
		log:       log,
		db:        db,
		userRepo:  userRepo,
		orderRepo: orderRepo,
		lineRepo:  lineRepo,
	}
}

// ProfileResponse — страница покупателя со списком его заказов
type ProfileResponse struct {
	Email  string          `json:"email"`
	Orders []*OrderSummary `json:"orders"`
}

type OrderSummary struct {
	*models.Order
	State models.OrderState `json:"state"`
}

// OrderResponse — заказ со строками и итоговой суммой по зафиксированным ценам
type OrderResponse struct {
	*models.Order
	State models.OrderState  `json:"state"`
	Lines []*models.OrderLine `json:"lines"`
	Total decimal.Decimal     `json:"total"`
}

var hundred = decimal.NewFromInt(100)

// LineTotal считает стоимость строки с учетом скидки, с округлением до копеек
func LineTotal(line *models.OrderLine) decimal.Decimal {
	factor := hundred.Sub(line.BuyingDiscountPercent).Div(hundred)
	return line.BuyingPrice.Mul(factor).Mul(decimal.NewFromInt(int64(line.Amount))).Round(2)
}

func (s *orderService) Profile(ctx context.Context, userID int64) (*ProfileResponse, error) {
	const op = "service.OrderService.Profile"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("getting profile")

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		logger.Error("failed to get user by id", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		logger.Error("failed to get orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get orders: %w", op, err)
	}

	resp := &ProfileResponse{Email: user.Email, Orders: make([]*OrderSummary, 0, len(orders))}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, &OrderSummary{Order: o, State: o.State()})
	}
	return resp, nil
}

func (s *orderService) Order(ctx context.Context, userID int64, orderID uuid.UUID) (*OrderResponse, error) {
	const op = "service.OrderService.Order"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.String("orderID", orderID.String()))
	logger.Info("getting order")

	order, err := s.orderRepo.GetOrder(ctx, orderID)
	if err != nil {
		logger.Warn("failed to get order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if order.UserID != userID {
		logger.Warn("access to foreign order")
		return nil, fmt.Errorf("%s: %w", op, ErrForeignOrder)
	}

	lines, err := s.lineRepo.GetLines(ctx, orderID)
	if err != nil {
		logger.Error("failed to get order lines", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineTotal(l))
	}
	if lines == nil {
		lines = []*models.OrderLine{}
	}
	return &OrderResponse{Order: order, State: order.State(), Lines: lines, Total: total}, nil
}

func (s *orderService) Done(ctx context.Context, userID int64, orderID uuid.UUID) (*models.Order, error) {
	const op = "service.OrderService.Done"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.String("orderID", orderID.String()))
	logger.Info("confirming order receipt")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer rollback(tx, logger)

	order, err := s.orderRepo.GetOrderTx(ctx, tx, orderID)
	if err != nil {
		logger.Warn("failed to get order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if order.UserID != userID {
		logger.Warn("access to foreign order")
		return nil, fmt.Errorf("%s: %w", op, ErrForeignOrder)
	}

	if err := order.MarkDone(); err != nil {
		logger.Warn("failed to mark order done", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.orderRepo.SaveStateTx(ctx, tx, order); err != nil {
		logger.Error("failed to save order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order done")
	return order, nil
}
