package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/linemk/storefront/internal/domain/models"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrBasketNotFound = errors.New("basket not found")
)

const orderColumns = "id, user_id, ship_to, created_at, ordered, ordered_at, done, done_at"

// OrderStorage описывает методы для работы с заказами и корзинами.
// Корзина: заказ, который еще не оформлен и не выполнен.
type OrderStorage interface {
	// GetBasketTx находит корзину пользователя и блокирует ее строку
	GetBasketTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.Order, error)
	// CreateBasketTx создает пустую корзину пользователя
	CreateBasketTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.Order, error)
	// GetOrderTx загружает заказ по id и блокирует его строку
	GetOrderTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// SaveStateTx сохраняет адрес доставки и флаги жизненного цикла
	SaveStateTx(ctx context.Context, tx *sql.Tx, order *models.Order) error
	// GetOrdersByUserID возвращает заказы пользователя, новые первыми
	GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
}

// orderRepository реализует OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	o := &models.Order{}
	var shipTo sql.NullString
	var orderedAt, doneAt sql.NullTime
	if err := row.Scan(&o.ID, &o.UserID, &shipTo, &o.CreatedAt, &o.Ordered, &orderedAt, &o.Done, &doneAt); err != nil {
		return nil, err
	}
	if shipTo.Valid {
		o.ShipTo = &shipTo.String
	}
	if orderedAt.Valid {
		o.OrderedAt = &orderedAt.Time
	}
	if doneAt.Valid {
		o.DoneAt = &doneAt.Time
	}
	return o, nil
}

func (r *orderRepository) GetBasketTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
	          WHERE user_id = $1 AND NOT ordered AND NOT done
	          ORDER BY created_at LIMIT 1 FOR UPDATE`
	o, err := scanOrder(tx.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBasketNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) CreateBasketTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.Order, error) {
	o := &models.Order{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	query := `INSERT INTO orders (id, user_id, created_at, ordered, done) VALUES ($1, $2, $3, FALSE, FALSE)`
	if _, err := tx.ExecContext(ctx, query, o.ID, o.UserID, o.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create basket: %w", err)
	}
	return o, nil
}

func (r *orderRepository) GetOrderTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	o, err := scanOrder(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) SaveStateTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	query := `UPDATE orders SET ship_to = $1, ordered = $2, ordered_at = $3, done = $4, done_at = $5 WHERE id = $6`
	res, err := tx.ExecContext(ctx, query, order.ShipTo, order.Ordered, order.OrderedAt, order.Done, order.DoneAt, order.ID)
	if err != nil {
		return fmt.Errorf("failed to save order state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
